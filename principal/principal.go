package principal

// Principal is the authenticated identity plus its role assignments at
// login/restore time. Display attributes are carried for UI collaborators and
// play no part in authorization decisions.
//
// Roles is a snapshot: the Principal does not own role lifecycle, it holds
// the assignments as they were when the record was loaded. A Principal with
// zero roles has no section access.
type Principal struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PictureProfile string `json:"picture_profile"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
	Roles          []Role `json:"roles"`
}

// Role is a named bundle of authorized sections. Sections are opaque string
// tokens matched by exact equality; there is no hierarchy or wildcard form.
type Role struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	AuthorizedSections []string `json:"authorized_sections"`
}

// Sections returns the union of all sections the principal's roles authorize.
// Duplicates are collapsed; order is unspecified.
func (p *Principal) Sections() []string {
	if p == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, role := range p.Roles {
		for _, section := range role.AuthorizedSections {
			if _, ok := seen[section]; ok {
				continue
			}
			seen[section] = struct{}{}
			out = append(out, section)
		}
	}
	return out
}
