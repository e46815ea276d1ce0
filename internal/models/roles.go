package models

const (
	Exporter = "exporter"
	Investor = "investor"
)

// DefaultRole is assigned to profiles created at signup.
const DefaultRole = Investor

// RoleOption describes a selectable role for the role picker.
type RoleOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Roles lists the selectable roles in display order.
var Roles = []RoleOption{
	{ID: Exporter, Title: "Exporter"},
	{ID: Investor, Title: "Investor/Buyer"},
}

// ValidRole reports whether role is one of the selectable roles.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r.ID == role {
			return true
		}
	}
	return false
}
