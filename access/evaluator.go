package access

import "github.com/navgate/navgate/principal"

// HasRole reports whether any of the principal's roles carries the given
// name. Matching is case-sensitive and exact. A nil principal never holds a
// role.
func HasRole(p *principal.Principal, role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r.Name == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the principal holds at least one of the named
// roles. An empty requirement set is satisfied by any non-nil principal: no
// roles specified means the route only requires authentication. A nil
// principal is denied regardless of the requirement set.
func HasAnyRole(p *principal.Principal, roles []string) bool {
	if p == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if HasRole(p, role) {
			return true
		}
	}
	return false
}

// HasSectionAccess reports whether any of the principal's roles authorizes
// the given section. Sections are matched by exact string equality; unknown
// sections simply yield false. A nil principal has no section access.
func HasSectionAccess(p *principal.Principal, section string) bool {
	if p == nil || section == "" {
		return false
	}
	for _, r := range p.Roles {
		for _, s := range r.AuthorizedSections {
			if s == section {
				return true
			}
		}
	}
	return false
}
