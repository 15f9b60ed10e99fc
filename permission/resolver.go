package permission

// DefaultAdminRole is the reserved administrator role code.
const DefaultAdminRole = "ROLE_ADMIN"

// RoleGrant is the part of a role that takes part in resolution: its code and the codes
// of its attached permissions.
type RoleGrant struct {
	Code        string
	Permissions []string
}

// Resolver derives effective permission sets from role grants.
//
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	universe  *Registry
	adminRole string
}

// NewResolver builds a resolver over universe. A nil universe selects
// [DefaultUniverse]; an empty adminRole selects [DefaultAdminRole].
func NewResolver(universe *Registry, adminRole string) *Resolver {
	if universe == nil {
		universe = DefaultUniverse()
	}
	if adminRole == "" {
		adminRole = DefaultAdminRole
	}
	return &Resolver{
		universe:  universe,
		adminRole: adminRole,
	}
}

// AdminRole returns the administrator role code.
func (r *Resolver) AdminRole() string {
	return r.adminRole
}

// Universe returns the registry backing the administrator override.
func (r *Resolver) Universe() *Registry {
	return r.universe
}

// IsAdmin reports whether any grant carries the administrator code.
func (r *Resolver) IsAdmin(roles []RoleGrant) bool {
	for _, role := range roles {
		if role.Code == r.adminRole {
			return true
		}
	}
	return false
}

// Resolve returns the effective permission set for roles:
// empty for no roles, the whole universe when any role is the administrator,
// and otherwise the deduplicated union of every role's permission codes.
func (r *Resolver) Resolve(roles []RoleGrant) Set {
	if len(roles) == 0 {
		return Set{}
	}

	if r.IsAdmin(roles) {
		return r.universe.All()
	}

	out := make(Set)
	for _, role := range roles {
		for _, code := range role.Permissions {
			out.Add(code)
		}
	}
	return out
}

// Augment unions the supplementary codes into base without modifying base.
func (r *Resolver) Augment(base Set, extra []string) Set {
	return base.Union(NewSet(extra...))
}
