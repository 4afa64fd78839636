// internal/domain/models/groupmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupRole is the role a user holds inside a group.
type GroupRole string

const (
	RoleManager GroupRole = "manager"
	RoleMember  GroupRole = "member"
)

// GroupRoles lists the roles in display order.
var GroupRoles = []GroupRole{RoleManager, RoleMember}

// Valid reports whether r is a known role.
func (r GroupRole) Valid() bool {
	return r == RoleManager || r == RoleMember
}

// GroupMember is the authoritative join between users and groups.
// Exactly one document per (group_id, user_id).
type GroupMember struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID  primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role     GroupRole          `bson:"role" json:"role"`
	JoinedAt time.Time          `bson:"joined_at" json:"joined_at"`
}
