// internal/domain/models/groupinvitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation states.
const (
	InvitePending  = "pending"
	InviteAccepted = "accepted"
	InviteDeclined = "declined"
)

// GroupInvitation offers a user (or an e-mail address that has no account
// yet) a role in a group. It is looked up by its random Token.
type GroupInvitation struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Token       string              `bson:"token" json:"token"`
	GroupID     primitive.ObjectID  `bson:"group_id" json:"group_id"`
	UserID      *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Email       string              `bson:"email,omitempty" json:"email,omitempty"` // lowercased
	Role        GroupRole           `bson:"role" json:"role"`
	InvitedByID primitive.ObjectID  `bson:"invited_by_id" json:"invited_by_id"`
	State       string              `bson:"state" json:"state"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	RespondedAt *time.Time `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
}

// IsPending reports whether the invitation can still be accepted or declined.
func (gi GroupInvitation) IsPending() bool {
	return gi.State == InvitePending
}
