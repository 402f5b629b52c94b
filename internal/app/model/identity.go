package model

// Identity is the authenticated caller of a single request.
type Identity struct {
	ID   string   `json:"id"`
	Role UserRole `json:"role"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
