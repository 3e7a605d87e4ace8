package models

// RoleAdmin and RoleClaimBounties are the role names the gateway forwards.
const (
	RoleAdmin         = "admin"
	RoleClaimBounties = "claim-bounties"
)

// User is the acting identity resolved by the gateway.
// The zero value is an anonymous visitor.
type User struct {
	ID     string   `json:"id"`
	Handle string   `json:"handle"`
	Roles  []string `json:"roles"`
}

// Anonymous reports whether no one is signed in.
func (u User) Anonymous() bool {
	return u.ID == ""
}

// HasRole reports whether the user carries any of the given roles.
func (u User) HasRole(roles ...string) bool {
	for _, have := range u.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
