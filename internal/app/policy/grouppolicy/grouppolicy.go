// internal/app/policy/grouppolicy/grouppolicy.go
package grouppolicy

import (
	"context"
	"net/http"

	"github.com/dalemusser/geogroups/internal/app/system/authz"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Capability is something a viewer may do with a group.
type Capability int

const (
	// View: see the group page, members, maps and layers.
	View Capability = iota
	// Join: add yourself as a member.
	Join
	// Invite: send invitations.
	Invite
	// Manage: edit, delete, add and remove members.
	Manage
)

func (c Capability) String() string {
	switch c {
	case View:
		return "view"
	case Join:
		return "join"
	case Invite:
		return "invite"
	case Manage:
		return "manage"
	}
	return "unknown"
}

// Allows reports whether a viewer holding role in g may exercise c.
// role is nil when the viewer is not a member; signedIn is false for
// anonymous viewers.
func Allows(g models.Group, role *models.GroupRole, signedIn bool, c Capability) bool {
	isManager := role != nil && *role == models.RoleManager
	switch c {
	case View:
		return g.Access != models.AccessPrivate || (signedIn && role != nil)
	case Join:
		return signedIn && g.Access != models.AccessPrivate
	case Invite, Manage:
		return signedIn && isManager
	}
	return false
}

// Permissions is the evaluated set of capabilities for one viewer and group.
type Permissions struct {
	Role      *models.GroupRole
	SignedIn  bool
	CanView   bool
	CanJoin   bool
	CanInvite bool
	CanManage bool
}

// IsMember reports whether the viewer holds any role.
func (p Permissions) IsMember() bool { return p.Role != nil }

// IsManager reports whether the viewer is a manager.
func (p Permissions) IsManager() bool { return p.Role != nil && *p.Role == models.RoleManager }

// Evaluate computes every capability at once.
func Evaluate(g models.Group, role *models.GroupRole, signedIn bool) Permissions {
	return Permissions{
		Role:      role,
		SignedIn:  signedIn,
		CanView:   Allows(g, role, signedIn, View),
		CanJoin:   Allows(g, role, signedIn, Join),
		CanInvite: Allows(g, role, signedIn, Invite),
		CanManage: Allows(g, role, signedIn, Manage),
	}
}

// RoleLookup finds a user's role in a group; nil means not a member.
type RoleLookup interface {
	RoleOf(ctx context.Context, groupID, userID primitive.ObjectID) (*models.GroupRole, error)
}

// ForRequest evaluates the current request user's permissions on g.
// Returns an error if the membership lookup fails, allowing callers to
// distinguish "not authorized" from "database error".
func ForRequest(ctx context.Context, roles RoleLookup, r *http.Request, g models.Group) (Permissions, error) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return Evaluate(g, nil, false), nil
	}
	role, err := roles.RoleOf(ctx, g.ID, uid)
	if err != nil {
		return Permissions{}, err
	}
	return Evaluate(g, role, true), nil
}
