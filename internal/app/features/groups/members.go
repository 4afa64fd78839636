// internal/app/features/groups/members.go
package groups

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/geogroups/internal/app/features/errors"
	membershipstore "github.com/dalemusser/geogroups/internal/app/store/memberships"
	userstore "github.com/dalemusser/geogroups/internal/app/store/users"
	"github.com/dalemusser/geogroups/internal/app/system/gates"
	"github.com/dalemusser/geogroups/internal/app/system/inputval"
	"github.com/dalemusser/geogroups/internal/app/system/limits"
	"github.com/dalemusser/geogroups/internal/app/system/navigation"
	"github.com/dalemusser/geogroups/internal/app/system/normalize"
	"github.com/dalemusser/geogroups/internal/app/system/timeouts"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// HandleAddMembers adds users to a group or changes the role of users who
// already belong. Every identifier must name an existing user; otherwise
// nothing is written and the members page is shown with the error.
func (h *Handler) HandleAddMembers(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}

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
	if !perms.CanManage {
		uierrors.RenderForbidden(w, r, "You do not have access to manage this group's members.", navigation.GroupURL(g.Slug))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxMemberFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", navigation.GroupMembersURL(g.Slug))
		return
	}

	role := strings.TrimSpace(r.FormValue("role"))
	raw := r.FormValue("user_identifiers")
	form := &memberFormData{Identifiers: raw, Roles: roleOptions(models.GroupRole(role))}

	fail := func(msg string) {
		form.Error = msg
		h.serveGroupPage(ctx, w, r, g, perms, pageOptions{membersView: true, memberForm: form})
	}

	if result := inputval.Validate(memberFormInput{Role: role, Identifiers: strings.TrimSpace(raw)}); result.HasErrors() {
		fail(result.First())
		return
	}
	ids := normalize.Identifiers(raw)
	if len(ids) == 0 {
		fail("Users is required.")
		return
	}
	if len(ids) > limits.MaxIdentifiersPerRequest {
		fail(fmt.Sprintf("Add at most %d users at a time.", limits.MaxIdentifiersPerRequest))
		return
	}

	users, unknown, err := h.users.ResolveIdentifiers(ctx, ids)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error resolving users", err, "A database error occurred.", navigation.GroupMembersURL(g.Slug))
		return
	}
	if len(unknown) > 0 {
		fail("No user found for: " + strings.Join(unknown, ", "))
		return
	}

	for _, u := range users {
		if err := h.members.UpsertRole(ctx, g.ID, u.ID, models.GroupRole(role)); err != nil {
			h.ErrLog.LogServerError(w, r, "database error adding member", err, "A database error occurred.", navigation.GroupMembersURL(g.Slug))
			return
		}
		h.Audit.MemberAdded(ctx, r, res.UserID, g.ID, u.ID, models.GroupRole(role))
	}

	h.Log.Info("members added",
		zap.String("slug", g.Slug),
		zap.Int("count", len(users)),
		zap.String("role", role),
		zap.String("by", res.Username))

	http.Redirect(w, r, navigation.GroupURL(g.Slug), http.StatusSeeOther)
}

// HandleRemoveMember deletes one user's membership. It answers both GET
// and POST so the link on the members page works without a form.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}
	// GET still removes; refuse it when another site triggered it.
	if r.Method == http.MethodGet && crossSite(r) {
		uierrors.RenderForbidden(w, r, "Remove members from the group's members page.", "/groups/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, ok := h.loadGroup(ctx, w, r)
	if !ok {
		return
	}

	u, err := h.users.GetByUsername(ctx, chi.URLParam(r, "username"))
	if errors.Is(err, userstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "User not found.", navigation.GroupMembersURL(g.Slug))
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading user", err, "A database error occurred.", navigation.GroupMembersURL(g.Slug))
		return
	}

	perms, ok := h.permissions(ctx, w, r, g)
	if !ok {
		return
	}
	if !perms.CanManage {
		uierrors.RenderForbidden(w, r, "You do not have access to manage this group's members.", navigation.GroupURL(g.Slug))
		return
	}

	err = h.members.Remove(ctx, g.ID, u.ID)
	if errors.Is(err, membershipstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, u.Username+" is not a member of this group.", navigation.GroupMembersURL(g.Slug))
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error removing member", err, "A database error occurred.", navigation.GroupMembersURL(g.Slug))
		return
	}

	h.Audit.MemberRemoved(ctx, r, res.UserID, g.ID, u.ID)

	http.Redirect(w, r, navigation.GroupURL(g.Slug), http.StatusSeeOther)
}

// HandleJoin adds the signed-in user to a public or public-invite group
// as a member. Joining a group you already belong to changes nothing.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, ok := h.loadGroup(ctx, w, r)
	if !ok {
		return
	}
	if g.Access == models.AccessPrivate {
		uierrors.RenderNotFound(w, r, "Group not found.", "/groups/")
		return
	}

	created, err := h.members.Join(ctx, g.ID, res.UserID, models.RoleMember)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error joining group", err, "A database error occurred.", navigation.GroupURL(g.Slug))
		return
	}
	if created {
		h.Audit.MemberJoined(ctx, r, g.ID, res.UserID)
	}

	http.Redirect(w, r, navigation.GroupURL(g.Slug), http.StatusSeeOther)
}
