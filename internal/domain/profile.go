package domain

import "time"

// Profile is a hotel user as seen by the ledger. Credentials live with the
// identity provider.
type Profile struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"hotel_id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnerID returns the id of the profile created first, or "" when there are
// none. Ties on CreatedAt are broken by id so the answer is stable.
func OwnerID(profiles []Profile) string {
	var owner *Profile
	for i := range profiles {
		p := &profiles[i]
		if owner == nil ||
			p.CreatedAt.Before(owner.CreatedAt) ||
			(p.CreatedAt.Equal(owner.CreatedAt) && p.ID < owner.ID) {
			owner = p
		}
	}
	if owner == nil {
		return ""
	}
	return owner.ID
}
