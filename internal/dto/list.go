package dto

import "time"

// ListQuery is the shared query surface for workflow listings. Status and the
// date window narrow the result set; Search matches a PR-XXXX reference or an
// item name fragment.
type ListQuery struct {
	Status   string `form:"status"`
	StoreID  int64  `form:"storeID"`
	DateFrom string `form:"dateFrom"` // YYYY-MM-DD
	DateTo   string `form:"dateTo"`   // YYYY-MM-DD
	Search   string `form:"search"`
	Limit    int    `form:"limit,default=20"`
	Offset   int    `form:"offset"`
}

// DateWindow parses the from/to bounds. The upper bound is exclusive end of
// day so a single-day window matches the whole day.
func (q ListQuery) DateWindow() (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if q.DateFrom != "" {
		t, err := time.Parse("2006-01-02", q.DateFrom)
		if err != nil {
			return nil, nil, err
		}
		from = &t
	}
	if q.DateTo != "" {
		t, err := time.Parse("2006-01-02", q.DateTo)
		if err != nil {
			return nil, nil, err
		}
		end := t.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, nil
}

// ReimbursementListQuery extends the shared surface with the second approval
// track and draft visibility.
type ReimbursementListQuery struct {
	ListQuery
	InternalControlStatus string `form:"internalControlStatus"`
	IncludeDrafts         bool   `form:"includeDrafts"`
}

// ListResponse wraps a page of results with the dashboard counts.
type ListResponse[T any] struct {
	Items        []T            `json:"items"`
	Total        int            `json:"total"`
	StatusCounts map[string]int `json:"statusCounts,omitempty"`
	Limit        int            `json:"limit"`
	Offset       int            `json:"offset"`
}
