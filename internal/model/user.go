// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Google OAuth is the identity provider, so the stable external identifier is
// the Google "sub" claim (a numeric string). Likes and lists reference users by
// ExternalID, which is also the owner id carried in the session token. We still
// generate our own internal ID (xid) so primary keys are not tied to a
// third-party numbering scheme.
//
// Email and Picture are optional at the provider; empty strings stand in for
// "not shared".
type User struct {
	ID         string    `json:"-"`
	ExternalID string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Picture    string    `json:"picture"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Owner is the authenticated caller on whose behalf likes and lists are
// written. The profile fields are needed to create the owning user row when it
// is missing.
type Owner struct {
	ExternalID string
	Name       string
	Email      string
	Picture    string
}

// User builds the user row that backs this owner.
func (o Owner) User() *User {
	return &User{
		ExternalID: o.ExternalID,
		Name:       o.Name,
		Email:      o.Email,
		Picture:    o.Picture,
	}
}
