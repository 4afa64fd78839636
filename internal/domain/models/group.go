// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupAccess is a group's visibility and join policy.
type GroupAccess string

const (
	// AccessPublic groups are visible to everyone and anyone signed in may join.
	AccessPublic GroupAccess = "public"
	// AccessPublicInvite groups are visible to everyone; managers may also invite.
	AccessPublicInvite GroupAccess = "public-invite"
	// AccessPrivate groups are visible to members only and cannot be self-joined.
	AccessPrivate GroupAccess = "private"
)

// GroupAccesses lists the access modes in display order.
var GroupAccesses = []GroupAccess{AccessPublic, AccessPublicInvite, AccessPrivate}

// Valid reports whether a is a known access mode.
func (a GroupAccess) Valid() bool {
	switch a {
	case AccessPublic, AccessPublicInvite, AccessPrivate:
		return true
	}
	return false
}

// Group is a named collection of users that share maps and layers.
//
// NOTE:
//   - Members are not embedded; see the group_members collection.
//   - Slug is the public identifier used in URLs and never changes.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Slug        string             `bson:"slug" json:"slug"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	Description string             `bson:"description" json:"description"`
	Keywords    []string           `bson:"keywords,omitempty" json:"keywords,omitempty"`
	Access      GroupAccess        `bson:"access" json:"access"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
