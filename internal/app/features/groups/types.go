// internal/app/features/groups/types.go
package groups

import (
	"html/template"
	"strings"
	"time"

	"github.com/dalemusser/geogroups/internal/app/policy/grouppolicy"
	auditstore "github.com/dalemusser/geogroups/internal/app/store/audit"
	membershipstore "github.com/dalemusser/geogroups/internal/app/store/memberships"
	"github.com/dalemusser/geogroups/internal/app/system/formutil"
	"github.com/dalemusser/geogroups/internal/app/system/paging"
	"github.com/dalemusser/geogroups/internal/app/system/viewdata"
	"github.com/dalemusser/geogroups/internal/domain/models"
)

// createGroupInput defines validation rules for creating a group.
type createGroupInput struct {
	Title  string `form:"title" label:"Title" validate:"required,max=200"`
	Slug   string `form:"slug" label:"Slug" validate:"required,max=100,slug"`
	Access string `form:"access" label:"Access" validate:"required,groupaccess"`
}

// updateGroupInput defines validation rules for editing a group.
// The slug is immutable and never bound.
type updateGroupInput struct {
	Title  string `form:"title" label:"Title" validate:"required,max=200"`
	Access string `form:"access" label:"Access" validate:"required,groupaccess"`
}

// memberFormInput is the add-members form on the members page.
type memberFormInput struct {
	Role        string `form:"role" label:"Role" validate:"required,grouprole"`
	Identifiers string `form:"user_identifiers" label:"Users" validate:"required"`
}

// inviteFormInput is the invite form on the members page.
type inviteFormInput struct {
	Role        string `form:"invite_role" label:"Role" validate:"required,grouprole"`
	Identifiers string `form:"invite_user_identifiers" label:"Users" validate:"required"`
}

// accessOption is one choice in the access select.
type accessOption struct {
	Value    string
	Label    string
	Selected bool
}

func accessOptions(selected models.GroupAccess) []accessOption {
	labels := map[models.GroupAccess]string{
		models.AccessPublic:       "Public (anyone can view and join)",
		models.AccessPublicInvite: "Public (anyone can view; members by invitation)",
		models.AccessPrivate:      "Private (members only)",
	}
	out := make([]accessOption, 0, len(models.GroupAccesses))
	for _, a := range models.GroupAccesses {
		out = append(out, accessOption{Value: string(a), Label: labels[a], Selected: a == selected})
	}
	return out
}

// roleOption is one choice in a role select.
type roleOption struct {
	Value    string
	Label    string
	Selected bool
}

func roleOptions(selected models.GroupRole) []roleOption {
	out := make([]roleOption, 0, len(models.GroupRoles))
	for _, role := range models.GroupRoles {
		label := string(role)
		out = append(out, roleOption{
			Value:    label,
			Label:    strings.ToUpper(label[:1]) + label[1:],
			Selected: role == selected,
		})
	}
	return out
}

// groupListItem represents a single group row in the list.
type groupListItem struct {
	Slug        string
	Title       string
	Summary     string // description with markup stripped
	Access      string
	IsPrivate   bool
	IsMember    bool
	MemberCount int64
}

// groupListData is the view model for the groups list page.
type groupListData struct {
	viewdata.BaseVM

	SearchQuery string
	Searching   bool
	Groups      []groupListItem
	Window      paging.Window
	PrevURL     string
	NextURL     string
	CanCreate   bool
}

// groupFormData backs the create and update pages.
type groupFormData struct {
	formutil.Base

	IsEdit      bool
	Slug        string
	GroupTitle  string
	Description string
	Keywords    string
	Access      []accessOption
}

// memberRow is one member on the detail and members pages.
type memberRow struct {
	Username  string
	Name      string
	Role      string
	IsManager bool
	RemoveURL string
}

// resourceRow is one map or layer shared with the group.
type resourceRow struct {
	Title string
}

// pendingInviteRow is one outstanding invitation shown to managers.
type pendingInviteRow struct {
	Invitee   string
	Role      string
	CreatedAt time.Time
}

// activityRow is one audit event shown to managers on the members page.
type activityRow struct {
	When      time.Time
	EventType string
	Summary   string
}

// memberFormData is the add-members form state.
type memberFormData struct {
	Identifiers string
	Roles       []roleOption
	Error       string
}

// inviteFormData is the invite form state.
type inviteFormData struct {
	Identifiers string
	Roles       []roleOption
	Error       string
}

// groupPageData is the single view model behind the detail page and the
// members page.
type groupPageData struct {
	viewdata.BaseVM

	MembersView     bool
	Slug            string
	GroupTitle      string
	DescriptionHTML template.HTML
	Keywords        []string
	Access          string
	IsPrivate       bool

	Maps        []resourceRow
	Layers      []resourceRow
	Members     []memberRow
	MemberTotal int64

	IsMember  bool
	IsManager bool
	Perms     grouppolicy.Permissions

	// Members page only
	MemberForm     *memberFormData
	InviteForm     *inviteFormData
	PendingInvites []pendingInviteRow
	Activity       []activityRow
	Notice         string
}

// inviteResponseData is the view model for the accept/decline page.
type inviteResponseData struct {
	viewdata.BaseVM

	Token       string
	Slug        string
	GroupTitle  string
	Role        string
	InviterName string
	IsPending   bool
	State       string
}

// groupRemoveData is the view model for the delete confirmation page.
type groupRemoveData struct {
	viewdata.BaseVM

	Slug        string
	GroupTitle  string
	MemberTotal int64
	CanManage   bool
}

func toMemberRows(slug string, members []membershipstore.Member, canManage bool) []memberRow {
	out := make([]memberRow, 0, len(members))
	for _, m := range members {
		row := memberRow{
			Username:  m.User.Username,
			Name:      m.User.DisplayName(),
			Role:      string(m.Role),
			IsManager: m.Role == models.RoleManager,
		}
		if canManage {
			row.RemoveURL = memberRemoveURL(slug, m.User.Username)
		}
		out = append(out, row)
	}
	return out
}

func toResourceRows(rs []models.Resource) []resourceRow {
	out := make([]resourceRow, 0, len(rs))
	for _, res := range rs {
		out = append(out, resourceRow{Title: res.Title})
	}
	return out
}

func toActivityRows(events []auditstore.Event) []activityRow {
	out := make([]activityRow, 0, len(events))
	for _, e := range events {
		summary := strings.ReplaceAll(e.EventType, "_", " ")
		if role := e.Details["role"]; role != "" {
			summary += " (" + role + ")"
		}
		out = append(out, activityRow{When: e.Timestamp, EventType: e.EventType, Summary: summary})
	}
	return out
}
