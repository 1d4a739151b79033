// Package rbac resolves role-based permission checks for every mutating
// request. The grant table is read-only at request time; replacing it
// wholesale is an admin concern outside this service.
package rbac

import "strings"

// RoleSuperadmin bypasses the grant table entirely. The bypass is hard-coded
// here and must not be expressible as a table entry for any other role.
const RoleSuperadmin = "superadmin"

// Well-known roles of the dashboard.
const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// Resolver answers allow/deny for (role, permission) pairs. Permissions have
// the shape "resource:operation"; a grant set may hold an exact entry,
// "resource:*", or the global "*".
type Resolver struct {
	grants map[string][]string
}

// NewResolver builds a resolver over the given role -> grant set relation.
// The map is not copied; callers hand over ownership.
func NewResolver(grants map[string][]string) *Resolver {
	if grants == nil {
		grants = map[string][]string{}
	}
	return &Resolver{grants: grants}
}

// DefaultGrants is the grant table shipped with the dashboard.
func DefaultGrants() map[string][]string {
	return map[string][]string{
		RoleAdmin: {
			"dashboard:view", "inventory:*", "customers:*", "orders:*",
			"reports:*", "users:view", "vendors:*", "subscriptions:*",
			"system:view", "integrations:*",
		},
		RoleStaff: {
			"dashboard:view", "inventory:view", "inventory:edit",
			"customers:view", "customers:edit", "orders:view", "orders:edit",
			"reports:view", "subscriptions:view", "subscriptions:edit",
		},
		RoleCustomer: {"dashboard:view"},
	}
}

// Allowed reports whether the role may exercise the permission. It is a pure
// in-memory lookup, safe on the synchronous request path. Unknown roles and
// malformed permission strings deny; superadmin always allows.
func (r *Resolver) Allowed(role, permission string) bool {
	if role == RoleSuperadmin {
		return true
	}

	grants, ok := r.grants[role]
	if !ok {
		return false
	}

	resource, _, ok := strings.Cut(permission, ":")
	if !ok || resource == "" {
		return false
	}

	resourceWildcard := resource + ":*"
	for _, grant := range grants {
		if grant == "*" || grant == permission || grant == resourceWildcard {
			return true
		}
	}
	return false
}
