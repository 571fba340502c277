// Package policy decides, per request, whether a visitor may reach a path.
//
// The Engine is pure: it holds the public-route set, the role areas under
// the dashboard and the role menus, all fixed at construction. Decide reads
// nothing else, so the same inputs always give the same decision.
package policy

import (
	"net/url"
	"path"
	"strings"

	"jobboard/internal/domain"
)

type Kind int

const (
	Allow Kind = iota
	Redirect
	Deny
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "deny"
	}
}

type Decision struct {
	Kind     Kind
	Location string // set for Redirect
}

func allow() Decision                { return Decision{Kind: Allow} }
func redirectTo(loc string) Decision { return Decision{Kind: Redirect, Location: loc} }

// Request is everything a decision depends on. Role and Status are empty
// when no profile could be resolved.
type Request struct {
	Authenticated bool
	Role          domain.Role
	Status        domain.AccountStatus
	Path          string
}

// Routes names the paths the engine reasons about.
type Routes struct {
	Home            string
	Login           string
	Signup          string
	Blocked         string
	Callback        string
	Jobs            string
	JobDetailPrefix string
	Dashboard       string
	// ReturnParam carries the original path on the login redirect.
	ReturnParam string
}

func DefaultRoutes() Routes {
	return Routes{
		Home:            "/",
		Login:           "/auth/login",
		Signup:          "/auth/signup",
		Blocked:         "/auth/blocked",
		Callback:        "/auth/callback",
		Jobs:            "/jobs",
		JobDetailPrefix: "/jobs/",
		Dashboard:       "/dashboard",
		ReturnParam:     "redirectTo",
	}
}

type area struct {
	prefix string
	role   domain.Role
}

type Engine struct {
	routes Routes
	public map[string]struct{}
	areas  []area
	static []string
	menus  map[domain.Role][]MenuEntry
}

type Options struct {
	Routes Routes
	// Areas maps each role to its dashboard sub-area, e.g. "/dashboard/job-seeker".
	Areas map[domain.Role]string
	// Static holds prefixes (ending in "/") or exact paths of assets that
	// bypass every rule.
	Static []string
	Menus  map[domain.Role][]MenuEntry
}

func DefaultOptions() Options {
	r := DefaultRoutes()
	return Options{
		Routes: r,
		Areas: map[domain.Role]string{
			domain.RoleAdmin:     r.Dashboard + "/admin",
			domain.RoleEmployer:  r.Dashboard + "/employer",
			domain.RoleJobSeeker: r.Dashboard + "/job-seeker",
		},
		Static: []string{"/static/", "/favicon.ico", "/robots.txt"},
		Menus:  DefaultMenus(),
	}
}

func New(o Options) *Engine {
	e := &Engine{
		routes: o.Routes,
		public: map[string]struct{}{},
		static: append([]string(nil), o.Static...),
		menus:  map[domain.Role][]MenuEntry{},
	}
	for _, p := range []string{o.Routes.Home, o.Routes.Login, o.Routes.Signup, o.Routes.Blocked, o.Routes.Callback, o.Routes.Jobs} {
		e.public[p] = struct{}{}
	}
	// fixed order keeps Decide deterministic
	for _, r := range domain.Roles {
		if p, ok := o.Areas[r]; ok {
			e.areas = append(e.areas, area{prefix: p, role: r})
		}
	}
	for r, items := range o.Menus {
		e.menus[r] = append([]MenuEntry(nil), items...)
	}
	return e
}

func NewDefault() *Engine { return New(DefaultOptions()) }

func (e *Engine) Routes() Routes { return e.routes }

// Decide applies the rules in order; the first match wins.
func (e *Engine) Decide(r Request) Decision {
	p, ok := cleanPath(r.Path)
	if !ok {
		return Decision{Kind: Deny}
	}
	if e.IsStatic(p) {
		return allow()
	}

	if r.Status == domain.StatusBlocked && p != e.routes.Blocked {
		return redirectTo(e.routes.Blocked)
	}

	if !r.Authenticated && !e.IsPublic(p) {
		q := url.Values{}
		q.Set(e.routes.ReturnParam, p)
		return redirectTo(e.routes.Login + "?" + q.Encode())
	}

	if r.Authenticated && (p == e.routes.Login || p == e.routes.Signup) {
		return redirectTo(e.routes.Dashboard)
	}

	if r.Authenticated && under(p, e.routes.Dashboard) {
		for _, a := range e.areas {
			if under(p, a.prefix) && r.Role != a.role {
				return redirectTo(e.routes.Dashboard)
			}
		}
	}
	return allow()
}

// IsPublic reports whether p is reachable without an identity.
func (e *Engine) IsPublic(p string) bool {
	if _, ok := e.public[p]; ok {
		return true
	}
	return strings.HasPrefix(p, e.routes.JobDetailPrefix)
}

func (e *Engine) IsStatic(p string) bool {
	for _, s := range e.static {
		if strings.HasSuffix(s, "/") {
			if strings.HasPrefix(p, s) {
				return true
			}
		} else if p == s {
			return true
		}
	}
	return false
}

// HomeFor is where /dashboard sends a role; unknown roles go to the site home.
func (e *Engine) HomeFor(role domain.Role) string {
	for _, a := range e.areas {
		if a.role == role {
			return a.prefix
		}
	}
	return e.routes.Home
}

// SafeReturn accepts only local absolute paths for post-login redirects.
// Browsers drop tab and newline while parsing a URL, so any control byte
// is refused outright.
func (e *Engine) SafeReturn(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") ||
		strings.Contains(target, `\`) || hasControl(target) {
		return e.routes.Dashboard
	}
	p, ok := cleanPath(target)
	if !ok || p == e.routes.Login || p == e.routes.Signup {
		return e.routes.Dashboard
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(u.Path, "//") {
		return e.routes.Dashboard
	}
	return p
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}

func under(p, prefix string) bool {
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// cleanPath resolves dot segments and duplicate slashes so that
// "/dashboard/employer/../admin" is judged as "/dashboard/admin".
func cleanPath(p string) (string, bool) {
	if p == "" {
		return "/", true
	}
	if !strings.HasPrefix(p, "/") {
		return "", false
	}
	return path.Clean(p), true
}
