package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Human-facing identifiers are part of the external contract: they appear in
// cross-references (purchase_request_ref) and must round-trip back to ids.

var purchaseRequestRefPattern = regexp.MustCompile(`^PR-(\d+)(?:-(\d+(?:\.\d+)?))?$`)

// FormatPurchaseRequestRef renders a purchase request id as PR-0001.
func FormatPurchaseRequestRef(id int64) string {
	return fmt.Sprintf("PR-%04d", id)
}

// FormatReimbursementRef renders a reimbursement id as RR-0001.
func FormatReimbursementRef(id int64) string {
	return fmt.Sprintf("RR-%04d", id)
}

// FormatApprovedRequestName renders the display name requesters pick as a
// purchase_request_ref, e.g. PR-0015-12000.00.
func FormatApprovedRequestName(id int64, totalAmount string) string {
	return fmt.Sprintf("PR-%04d-%s", id, totalAmount)
}

// FormatVoucherID renders a payment voucher reference, assigned exactly once
// on purchase request approval.
func FormatVoucherID(id int64, createdAt time.Time) string {
	return fmt.Sprintf("PV-%04d-%s", id, createdAt.Format("2006-01-02"))
}

// ParsePurchaseRequestRef extracts the purchase request id from a reference of
// the form PR-<digits>, optionally followed by -<amount>. PR-0015 parses to 15.
func ParsePurchaseRequestRef(ref string) (int64, bool) {
	m := purchaseRequestRefPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// ParsePurchaseRequestRefAmount extracts the optional amount suffix of a
// reference, so PR-0015-6000.00 yields 6000.00. The suffix identifies which
// item of the referenced request the reimbursement line points at.
func ParsePurchaseRequestRefAmount(ref string) (decimal.Decimal, bool) {
	m := purchaseRequestRefPattern.FindStringSubmatch(ref)
	if m == nil || m[2] == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(m[2])
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
