// internal/app/features/groups/invite.go
package groups

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/geogroups/internal/app/features/errors"
	groupstore "github.com/dalemusser/geogroups/internal/app/store/groups"
	invitationstore "github.com/dalemusser/geogroups/internal/app/store/invitations"
	userstore "github.com/dalemusser/geogroups/internal/app/store/users"
	"github.com/dalemusser/geogroups/internal/app/system/authz"
	"github.com/dalemusser/geogroups/internal/app/system/gates"
	"github.com/dalemusser/geogroups/internal/app/system/inputval"
	"github.com/dalemusser/geogroups/internal/app/system/limits"
	"github.com/dalemusser/geogroups/internal/app/system/mailer"
	"github.com/dalemusser/geogroups/internal/app/system/navigation"
	"github.com/dalemusser/geogroups/internal/app/system/normalize"
	"github.com/dalemusser/geogroups/internal/app/system/render"
	"github.com/dalemusser/geogroups/internal/app/system/timeouts"
	"github.com/dalemusser/geogroups/internal/app/system/txn"
	"github.com/dalemusser/geogroups/internal/app/system/viewdata"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// invitee is one resolved line of the invite form: a known user, or an
// e-mail address with no account behind it yet.
type invitee struct {
	user  *models.User
	email string
}

func (i invitee) address() string {
	if i.user != nil {
		return i.user.Email
	}
	return i.email
}

// HandleInvite sends invitations to the users and addresses listed in the
// invite form. Viewers who may not invite get 404 whether or not they are
// signed in.
func (h *Handler) HandleInvite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, ok := h.loadGroup(ctx, w, r)
	if !ok {
		return
	}
	perms, ok := h.permissions(ctx, w, r, g)
	if !ok {
		return
	}
	if !perms.CanInvite {
		uierrors.RenderNotFound(w, r, "Group not found.", "/groups/")
		return
	}
	_, inviterName, inviterID, _ := authz.UserCtx(r)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxMemberFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", navigation.GroupMembersURL(g.Slug))
		return
	}

	role := strings.TrimSpace(r.FormValue("invite_role"))
	raw := r.FormValue("invite_user_identifiers")
	form := &inviteFormData{Identifiers: raw, Roles: roleOptions(models.GroupRole(role))}

	fail := func(msg string) {
		form.Error = msg
		h.serveGroupPage(ctx, w, r, g, perms, pageOptions{membersView: true, inviteForm: form})
	}

	if result := inputval.Validate(inviteFormInput{Role: role, Identifiers: strings.TrimSpace(raw)}); result.HasErrors() {
		fail(result.First())
		return
	}
	ids := normalize.Identifiers(raw)
	if len(ids) == 0 {
		fail("Users is required.")
		return
	}
	if len(ids) > limits.MaxIdentifiersPerRequest {
		fail(fmt.Sprintf("Invite at most %d people at a time.", limits.MaxIdentifiersPerRequest))
		return
	}

	invitees, bad, err := h.resolveInvitees(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error resolving invitees", err, "A database error occurred.", navigation.GroupMembersURL(g.Slug))
		return
	}
	if len(bad) > 0 {
		fail("Not a known user or a valid e-mail address: " + strings.Join(bad, ", "))
		return
	}

	sent := 0
	for _, iv := range invitees {
		inv := models.GroupInvitation{
			GroupID:     g.ID,
			Email:       iv.email,
			Role:        models.GroupRole(role),
			InvitedByID: inviterID,
		}
		if iv.user != nil {
			uid := iv.user.ID
			inv.UserID = &uid
		}
		created, err := h.invitations.Create(ctx, inv)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error creating invitation", err, "A database error occurred.", navigation.GroupMembersURL(g.Slug))
			return
		}
		sent++
		h.Audit.InvitationSent(ctx, r, inviterID, created)
		h.mailInvitation(ctx, g, created, iv.address(), inviterName)
	}

	http.Redirect(w, r, navigation.GroupMembersURL(g.Slug)+"?sent="+strconv.Itoa(sent), http.StatusSeeOther)
}

// resolveInvitees maps each identifier to a user, or for unknown e-mail
// addresses to an address-only invitee. Identifiers that are neither are
// returned in bad.
func (h *Handler) resolveInvitees(ctx context.Context, ids []string) (out []invitee, bad []string, err error) {
	for _, id := range ids {
		var u models.User
		if strings.Contains(id, "@") {
			u, err = h.users.GetByEmail(ctx, id)
		} else {
			u, err = h.users.GetByUsername(ctx, id)
		}
		switch {
		case err == nil:
			out = append(out, invitee{user: &u})
		case errors.Is(err, userstore.ErrNotFound):
			if inputval.IsValidEmail(id) {
				out = append(out, invitee{email: normalize.Email(id)})
			} else {
				bad = append(bad, id)
			}
		default:
			return nil, nil, err
		}
	}
	return out, bad, nil
}

// mailInvitation e-mails the respond link. Delivery problems are logged;
// the invitation itself is already stored and listed for managers.
func (h *Handler) mailInvitation(ctx context.Context, g models.Group, inv models.GroupInvitation, to, inviterName string) {
	if !h.Mailer.Enabled() || to == "" {
		return
	}
	if inviterName == "" {
		inviterName = "A group manager"
	}
	email := mailer.BuildInvitationEmail(to, mailer.InvitationEmailData{
		SiteName:    viewdata.SiteName,
		GroupTitle:  g.Title,
		InviterName: inviterName,
		Role:        string(inv.Role),
		RespondURL:  strings.TrimRight(h.BaseURL, "/") + invitationURL(inv.Token),
	})
	if err := h.Mailer.Send(ctx, email); err != nil {
		h.Log.Warn("invitation e-mail failed",
			zap.String("slug", g.Slug),
			zap.String("to", to),
			zap.Error(err))
	}
}

func invitationURL(token string) string {
	return "/groups/invitations/" + url.PathEscape(token)
}

// isInvitee reports whether the signed-in user is the one inv addresses:
// the same account for user invitations, the same address for e-mail ones.
func (h *Handler) isInvitee(ctx context.Context, inv models.GroupInvitation, uid primitive.ObjectID) (bool, error) {
	if inv.UserID != nil {
		return *inv.UserID == uid, nil
	}
	u, err := h.users.GetByID(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.EmailCI != "" && u.EmailCI == normalize.Email(inv.Email), nil
}

// HandleInviteResponse shows an invitation (GET) or records the answer
// (POST with "accept" or "decline"). Anyone other than the invitee is sent
// to the group page and nothing changes.
func (h *Handler) HandleInviteResponse(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	token := chi.URLParam(r, "token")
	inv, err := h.invitations.GetByToken(ctx, token)
	if errors.Is(err, invitationstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "Invitation not found.", "/groups/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading invitation", err, "A database error occurred.", "/groups/")
		return
	}

	g, err := h.groups.GetByID(ctx, inv.GroupID)
	if errors.Is(err, groupstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "Group not found.", "/groups/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading group", err, "A database error occurred.", "/groups/")
		return
	}
	detail := navigation.GroupURL(g.Slug)

	mine, err := h.isInvitee(ctx, inv, res.UserID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error checking invitee", err, "A database error occurred.", "/groups/")
		return
	}
	if !mine {
		h.Log.Info("invitation response by someone else",
			zap.String("slug", g.Slug),
			zap.String("user", res.Username))
		http.Redirect(w, r, detail, http.StatusSeeOther)
		return
	}

	if r.Method != http.MethodPost {
		h.serveInviteResponse(ctx, w, r, g, inv)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxMemberFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", detail)
		return
	}

	switch {
	case r.Form.Has("accept") || r.FormValue("action") == "accept":
		var accepted models.GroupInvitation
		err = txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
			var err error
			accepted, err = h.invitations.Accept(ctx, token, res.UserID)
			if err != nil {
				return err
			}
			role, err := h.roleOnAccept(ctx, g.ID, res.UserID, accepted.Role)
			if err != nil {
				return err
			}
			return h.members.UpsertRole(ctx, g.ID, res.UserID, role)
		})
		if err == nil {
			h.Audit.InvitationAnswered(ctx, r, res.UserID, accepted, true)
		}
	case r.Form.Has("decline") || r.FormValue("action") == "decline":
		var declined models.GroupInvitation
		declined, err = h.invitations.Decline(ctx, token)
		if err == nil {
			h.Audit.InvitationAnswered(ctx, r, res.UserID, declined, false)
		}
	}

	if err != nil && !errors.Is(err, invitationstore.ErrNotPending) {
		h.ErrLog.LogServerError(w, r, "database error answering invitation", err, "A database error occurred.", detail)
		return
	}
	http.Redirect(w, r, detail, http.StatusSeeOther)
}

// roleOnAccept returns the role an accepted invitation grants. The invited
// role wins, except that the group's only manager keeps the manager role.
func (h *Handler) roleOnAccept(ctx context.Context, groupID, userID primitive.ObjectID, invited models.GroupRole) (models.GroupRole, error) {
	if invited == models.RoleManager {
		return invited, nil
	}
	current, err := h.members.RoleOf(ctx, groupID, userID)
	if err != nil || current == nil || *current != models.RoleManager {
		return invited, err
	}
	managers, err := h.members.CountByGroup(ctx, groupID, models.RoleManager)
	if err != nil {
		return invited, err
	}
	if managers <= 1 {
		return models.RoleManager, nil
	}
	return invited, nil
}

func (h *Handler) serveInviteResponse(ctx context.Context, w http.ResponseWriter, r *http.Request, g models.Group, inv models.GroupInvitation) {
	inviterName := "A group manager"
	if inviter, err := h.users.GetByID(ctx, inv.InvitedByID); err == nil {
		inviterName = inviter.DisplayName()
	} else if !errors.Is(err, userstore.ErrNotFound) {
		h.Log.Warn("inviter lookup failed", zap.Error(err))
	}

	data := inviteResponseData{
		BaseVM:      viewdata.NewBaseVM(r, "Invitation to "+g.Title, navigation.GroupURL(g.Slug)),
		Token:       inv.Token,
		Slug:        g.Slug,
		GroupTitle:  g.Title,
		Role:        string(inv.Role),
		InviterName: inviterName,
		IsPending:   inv.IsPending(),
		State:       inv.State,
	}
	render.Page(w, r, "group_invite_response", data)
}
