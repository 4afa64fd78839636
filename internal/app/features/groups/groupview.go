// internal/app/features/groups/groupview.go
package groups

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/geogroups/internal/app/policy/grouppolicy"
	"github.com/dalemusser/geogroups/internal/app/system/htmlsanitize"
	"github.com/dalemusser/geogroups/internal/app/system/navigation"
	"github.com/dalemusser/geogroups/internal/app/system/render"
	"github.com/dalemusser/geogroups/internal/app/system/timeouts"
	"github.com/dalemusser/geogroups/internal/app/system/viewdata"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const activityLimit = 20

// pageOptions selects which variant of the group page to render and
// carries form state when a members-page form is re-rendered with errors.
type pageOptions struct {
	membersView bool
	memberForm  *memberFormData
	inviteForm  *inviteFormData
	status      int
}

// ServeGroup renders the group detail page.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, perms, ok := h.loadViewable(ctx, w, r)
	if !ok {
		return
	}
	h.serveGroupPage(ctx, w, r, g, perms, pageOptions{})
}

// ServeMembers renders the members page: the detail data plus the
// add-member and invite forms for viewers allowed to use them.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, perms, ok := h.loadViewable(ctx, w, r)
	if !ok {
		return
	}
	h.serveGroupPage(ctx, w, r, g, perms, pageOptions{membersView: true})
}

// invitesAllowed reports whether g's access mode takes invitations.
func invitesAllowed(g models.Group) bool {
	return g.Access == models.AccessPublicInvite || g.Access == models.AccessPrivate
}

// serveGroupPage loads everything shown about g and renders either the
// detail page or the members page.
func (h *Handler) serveGroupPage(ctx context.Context, w http.ResponseWriter, r *http.Request, g models.Group, perms grouppolicy.Permissions, opts pageOptions) {
	members, err := h.members.ListByGroup(ctx, g.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing members", err, "A database error occurred.", "/groups/")
		return
	}
	maps, err := h.resources.ListByGroup(ctx, g.ID, models.ResourceMap)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing maps", err, "A database error occurred.", "/groups/")
		return
	}
	layers, err := h.resources.ListByGroup(ctx, g.ID, models.ResourceLayer)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing layers", err, "A database error occurred.", "/groups/")
		return
	}

	title := g.Title
	if opts.membersView {
		title = g.Title + " · Members"
	}

	data := groupPageData{
		BaseVM:          viewdata.NewBaseVM(r, title, "/groups/"),
		MembersView:     opts.membersView,
		Slug:            g.Slug,
		GroupTitle:      g.Title,
		DescriptionHTML: htmlsanitize.PrepareForDisplay(g.Description),
		Keywords:        g.Keywords,
		Access:          string(g.Access),
		IsPrivate:       g.Access == models.AccessPrivate,
		Maps:            toResourceRows(maps),
		Layers:          toResourceRows(layers),
		Members:         toMemberRows(g.Slug, members, perms.CanManage),
		MemberTotal:     int64(len(members)),
		IsMember:        perms.IsMember(),
		IsManager:       perms.IsManager(),
		Perms:           perms,
	}
	if opts.membersView {
		data.BackURL = navigation.GroupURL(g.Slug)
		if n, err := strconv.Atoi(query.Get(r, "sent")); err == nil && n > 0 {
			data.Notice = fmt.Sprintf("%d invitation(s) sent.", n)
		}
		if err := h.fillMembersView(ctx, &data, g, perms, opts); err != nil {
			h.ErrLog.LogServerError(w, r, "database error loading members page", err, "A database error occurred.", navigation.GroupURL(g.Slug))
			return
		}
	}

	if opts.status != 0 && opts.status != http.StatusOK {
		render.PageStatus(w, r, opts.status, "group_page", data)
		return
	}
	render.Page(w, r, "group_page", data)
}

// fillMembersView adds the forms and the manager-only panels.
func (h *Handler) fillMembersView(ctx context.Context, data *groupPageData, g models.Group, perms grouppolicy.Permissions, opts pageOptions) error {
	if perms.CanManage {
		data.MemberForm = opts.memberForm
		if data.MemberForm == nil {
			data.MemberForm = &memberFormData{Roles: roleOptions(models.RoleMember)}
		}
	}
	if perms.CanInvite && invitesAllowed(g) {
		data.InviteForm = opts.inviteForm
		if data.InviteForm == nil {
			data.InviteForm = &inviteFormData{Roles: roleOptions(models.RoleMember)}
		}
	}
	if !perms.CanManage {
		return nil
	}

	pending, err := h.invitations.ListPendingByGroup(ctx, g.ID)
	if err != nil {
		return err
	}
	for _, inv := range pending {
		row := pendingInviteRow{Invitee: inv.Email, Role: string(inv.Role), CreatedAt: inv.CreatedAt}
		if inv.UserID != nil {
			u, err := h.users.GetByID(ctx, *inv.UserID)
			if err != nil {
				h.Log.Warn("invitee lookup failed",
					zap.String("user_id", inv.UserID.Hex()),
					zap.Error(err))
				row.Invitee = "(unknown user)"
			} else {
				row.Invitee = u.Username
			}
		}
		data.PendingInvites = append(data.PendingInvites, row)
	}

	events, err := h.activity.ListByGroup(ctx, g.ID, activityLimit)
	if err != nil {
		return err
	}
	data.Activity = toActivityRows(events)
	return nil
}
