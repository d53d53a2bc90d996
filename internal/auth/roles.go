package auth

type Role string

const (
	RoleContentEditor Role = "content_editor"
	RoleSuperAdmin    Role = "super_admin"
)

type Scope string

const (
	ScopeResources Scope = "resources"
	ScopeMedia     Scope = "media"
	ScopeAlumni    Scope = "alumni"
)

var roleScopes = map[Role][]Scope{
	RoleContentEditor: {ScopeResources, ScopeMedia},
	RoleSuperAdmin:    {ScopeResources, ScopeMedia, ScopeAlumni},
}

var landingPaths = map[Role]string{
	RoleContentEditor: "/admin/resources",
	RoleSuperAdmin:    "/admin/alumni",
}

func (r Role) Valid() bool {
	_, ok := roleScopes[r]
	return ok
}

// Scopes lists what the role may touch. Unknown roles get nothing.
func (r Role) Scopes() []Scope {
	return roleScopes[r]
}

// HasScope reports whether the role holds every scope given.
func (r Role) HasScope(scopes ...Scope) bool {
	allowed := roleScopes[r]
	for _, want := range scopes {
		found := false
		for _, s := range allowed {
			if s == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// LandingPath is where the admin UI sends a freshly logged-in user.
func (r Role) LandingPath() string {
	if p, ok := landingPaths[r]; ok {
		return p
	}
	return "/admin"
}
