package models

// Capability is a tag describing something a principal may do.
type Capability string

const (
	CapabilityStudent      Capability = "student"
	CapabilityAdmin        Capability = "admin"
	CapabilityAdminOnly    Capability = "admin_only"
	CapabilityPlacementRep Capability = "placement_rep"
)

// RoleCapability returns the capability tag carried by a role.
func RoleCapability(r Role) Capability {
	return Capability("role:" + string(r))
}

// Principal is an authenticated actor with its two authorization sources.
type Principal struct {
	Email     string       `json:"email"`
	Profile   *UserProfile `json:"profile,omitempty"`
	AdminRole *AdminRole   `json:"admin_role,omitempty"`
}

// ProfileID returns the profile id or an empty string.
func (p *Principal) ProfileID() string {
	if p == nil || p.Profile == nil {
		return ""
	}
	return p.Profile.ID
}

// CapabilitySet is computed once per request from a Principal.
type CapabilitySet map[Capability]struct{}

// Has reports whether every capability is present.
func (s CapabilitySet) Has(caps ...Capability) bool {
	for _, c := range caps {
		if _, ok := s[c]; !ok {
			return false
		}
	}
	return true
}

// HasAny reports whether at least one capability is present.
func (s CapabilitySet) HasAny(caps ...Capability) bool {
	for _, c := range caps {
		if _, ok := s[c]; ok {
			return true
		}
	}
	return false
}

// List returns the tags in a stable order.
func (s CapabilitySet) List() []Capability {
	order := []Capability{CapabilityStudent, CapabilityAdmin, CapabilityAdminOnly, CapabilityPlacementRep}
	for _, r := range []Role{RoleStudent, RolePlacementRep, RolePlacementOfficer, RolePlacementCoordinator} {
		order = append(order, RoleCapability(r))
	}
	out := make([]Capability, 0, len(s))
	for _, c := range order {
		if _, ok := s[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Landing pages used by the route guard when redirecting.
const (
	LandingAdminDashboard   = "/admin/dashboard"
	LandingStudentDashboard = "/dashboard"
	LandingLogin            = "/login"
)

// GuardState is the outcome of evaluating a route guard.
type GuardState string

const (
	GuardChecking    GuardState = "checking"
	GuardAuthorized  GuardState = "authorized"
	GuardRedirecting GuardState = "redirecting"
)

// GuardDecision tells the caller whether to render or where to go instead.
type GuardDecision struct {
	State    GuardState `json:"state"`
	Redirect string     `json:"redirect,omitempty"`
}
