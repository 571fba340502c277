package policy

import "jobboard/internal/domain"

type MenuEntry struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

func DefaultMenus() map[domain.Role][]MenuEntry {
	return map[domain.Role][]MenuEntry{
		domain.RoleAdmin: {
			{Href: "/dashboard/admin", Label: "Dashboard"},
			{Href: "/dashboard/admin/users", Label: "Users"},
			{Href: "/dashboard/admin/jobs", Label: "Jobs"},
			{Href: "/dashboard/admin/applications", Label: "Applications"},
		},
		domain.RoleEmployer: {
			{Href: "/dashboard/employer", Label: "Dashboard"},
			{Href: "/dashboard/employer/jobs", Label: "My Jobs"},
			{Href: "/dashboard/employer/jobs/new", Label: "Post Job"},
		},
		domain.RoleJobSeeker: {
			{Href: "/dashboard/job-seeker", Label: "Dashboard"},
			{Href: "/jobs", Label: "Browse Jobs"},
			{Href: "/dashboard/job-seeker/applications", Label: "My Applications"},
		},
	}
}

// Menu returns a copy of the role's entries, nil for an unknown role.
func (e *Engine) Menu(role domain.Role) []MenuEntry {
	items, ok := e.menus[role]
	if !ok {
		return nil
	}
	return append([]MenuEntry(nil), items...)
}
