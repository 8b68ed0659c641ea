// Package routes maps portal roles to the navigation paths they may open.
//
// The table here mirrors server-side permissions for menu building only;
// the backend independently enforces authorization on every API call.
package routes

import "strings"

// Role is a named permission class embedded in the access token.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleDealer     Role = "dealer"
	RoleWarehouse  Role = "warehouse"
	RoleAccountant Role = "accountant"
)

// DefaultRole is assumed when the access token carries no role claim.
const DefaultRole = RoleDealer

// Wildcard grants access to every path.
const Wildcard = "*"

// Table maps each role to the path patterns it may access. A pattern is
// either the wildcard or a literal path matched by equality or by prefix
// (pattern + "/"). A role missing from the table has no access at all.
type Table map[Role][]string

// DefaultTable is the portal's access table. Every recognized role has an
// entry, possibly empty.
var DefaultTable = Table{
	RoleAdmin:      {Wildcard},
	RoleManager:    {"/", "/orders", "/dealers", "/products", "/payments", "/defects", "/reports", "/notifications"},
	RoleDealer:     {"/", "/orders", "/products", "/notifications"},
	RoleWarehouse:  {"/", "/orders", "/defects", "/notifications"},
	RoleAccountant: {"/", "/payments", "/reports", "/notifications"},
}

// Authorizer answers allow/deny questions against a static access table.
// It is pure and safe for concurrent use.
type Authorizer struct {
	table Table
	roles []Role // table iteration order, kept stable for RolesForPath
}

// NewAuthorizer builds an Authorizer over the given table.
func NewAuthorizer(table Table) *Authorizer {
	roles := make([]Role, 0, len(table))
	for r := range table {
		roles = append(roles, r)
	}
	sortRoles(roles)
	return &Authorizer{table: table, roles: roles}
}

func sortRoles(roles []Role) {
	for i := 1; i < len(roles); i++ {
		for j := i; j > 0 && roles[j] < roles[j-1]; j-- {
			roles[j], roles[j-1] = roles[j-1], roles[j]
		}
	}
}

// normalizePath strips exactly one trailing slash; the root path stays "/".
func normalizePath(path string) string {
	if path != "/" && strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}
	return path
}

// matches reports whether the normalized path falls under the pattern:
// exact equality or pattern + "/" prefix.
func matches(pattern, path string) bool {
	if pattern == Wildcard {
		return true
	}
	return path == pattern || strings.HasPrefix(path, pattern+"/")
}

// CanAccess reports whether role may open path. A role absent from the
// table is denied.
func (a *Authorizer) CanAccess(role Role, path string) bool {
	patterns, ok := a.table[role]
	if !ok {
		return false
	}
	path = normalizePath(path)
	for _, p := range patterns {
		if matches(p, path) {
			return true
		}
	}
	return false
}

// RolesForPath returns every role whose pattern list matches path, in
// stable (sorted) order. Used to compute which navigation items to render
// without duplicating the access table.
func (a *Authorizer) RolesForPath(path string) []Role {
	path = normalizePath(path)
	var out []Role
	for _, role := range a.roles {
		for _, p := range a.table[role] {
			if matches(p, path) {
				out = append(out, role)
				break
			}
		}
	}
	return out
}
