package domain

import "fmt"

// Role is the closed set of approval-chain roles. Transitions are keyed on
// this enum rather than free-form role-name strings.
type Role string

const (
	RoleRestaurantManager Role = "RESTAURANT_MANAGER"
	RoleAreaManager       Role = "AREA_MANAGER"
	RoleInternalControl   Role = "INTERNAL_CONTROL"
	RoleTreasurer         Role = "TREASURER"
	RoleAdmin             Role = "ADMIN"
)

// ParseRole converts a stored role name into the closed enum.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleRestaurantManager, RoleAreaManager, RoleInternalControl, RoleTreasurer, RoleAdmin:
		return Role(name), nil
	}
	return "", fmt.Errorf("unknown role %q", name)
}

// Actor is the authenticated user acting on an aggregate, as supplied by the
// identity collaborator. The core trusts it and performs no authentication.
type Actor struct {
	UserID           string
	Role             Role
	AssignedStoreIDs []int64
	HomeStoreID      int64
}

// CanActOnStore reports whether the actor's store assignments cover the given
// store. Admins may act anywhere; Internal Control and Treasurer operate
// organization-wide.
func (a Actor) CanActOnStore(storeID int64) bool {
	switch a.Role {
	case RoleAdmin, RoleInternalControl, RoleTreasurer:
		return true
	case RoleRestaurantManager:
		return a.HomeStoreID == storeID
	}
	for _, id := range a.AssignedStoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}
