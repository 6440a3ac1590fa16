package service

import "compliance_edu_backend/internal/model"

type NavItem struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

type navEntry struct {
	item  NavItem
	roles []model.UserRole // 为空表示所有角色可见
}

var navigation = []navEntry{
	{item: NavItem{Key: "dashboard", Title: "Dashboard", Path: "/dashboard", Icon: "home"}},
	{item: NavItem{Key: "modules", Title: "Training Modules", Path: "/modules", Icon: "book"}},
	{item: NavItem{Key: "scenarios", Title: "Scenarios", Path: "/scenarios", Icon: "git-branch"}},
	{item: NavItem{Key: "assessments", Title: "Assessments", Path: "/assessments", Icon: "check-square"}},
	{item: NavItem{Key: "certificates", Title: "Certificates", Path: "/certificates", Icon: "award"}},
	{item: NavItem{Key: "reports", Title: "Reports", Path: "/reports", Icon: "bar-chart"}, roles: []model.UserRole{model.Admin, model.ComplianceOfficer}},
	{item: NavItem{Key: "users", Title: "Users", Path: "/users", Icon: "users"}, roles: []model.UserRole{model.Admin}},
	{item: NavItem{Key: "profile", Title: "Profile", Path: "/profile", Icon: "user"}},
}

// NavItems 按角色过滤导航
func NavItems(role model.UserRole) []NavItem {
	items := make([]NavItem, 0, len(navigation))
	for _, e := range navigation {
		if len(e.roles) == 0 || hasRole(e.roles, role) {
			items = append(items, e.item)
		}
	}
	return items
}

func hasRole(roles []model.UserRole, role model.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
