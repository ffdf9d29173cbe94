package domain

import "time"

// Profile is the marketplace record of an identity-provider user.
// Owner details are only present for owners.
type Profile struct {
	UserID    string
	Role      Role
	FullName  string
	Phone     string
	Owner     *OwnerDetails
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OwnerDetails struct {
	BusinessName string
	SignatureURL string
}
