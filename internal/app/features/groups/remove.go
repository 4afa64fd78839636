// internal/app/features/groups/remove.go
package groups

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/geogroups/internal/app/features/errors"
	groupstore "github.com/dalemusser/geogroups/internal/app/store/groups"
	"github.com/dalemusser/geogroups/internal/app/system/gates"
	"github.com/dalemusser/geogroups/internal/app/system/navigation"
	"github.com/dalemusser/geogroups/internal/app/system/render"
	"github.com/dalemusser/geogroups/internal/app/system/timeouts"
	"github.com/dalemusser/geogroups/internal/app/system/txn"
	"github.com/dalemusser/geogroups/internal/app/system/viewdata"
	"go.uber.org/zap"
)

// HandleRemove shows the delete confirmation on GET and deletes the group
// on POST. Other methods get 405.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		uierrors.RenderMethodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		return
	}

	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if r.Method == http.MethodGet {
		g, perms, ok := h.loadViewable(ctx, w, r)
		if !ok {
			return
		}
		total, err := h.members.CountByGroup(ctx, g.ID, "")
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error counting members", err, "A database error occurred.", navigation.GroupURL(g.Slug))
			return
		}
		data := groupRemoveData{
			BaseVM:      viewdata.NewBaseVM(r, "Remove "+g.Title, navigation.GroupURL(g.Slug)),
			Slug:        g.Slug,
			GroupTitle:  g.Title,
			MemberTotal: total,
			CanManage:   perms.CanManage,
		}
		render.Page(w, r, "group_remove", data)
		return
	}

	g, ok := h.loadGroup(ctx, w, r)
	if !ok {
		return
	}
	perms, ok := h.permissions(ctx, w, r, g)
	if !ok {
		return
	}
	if !perms.CanManage {
		uierrors.RenderForbidden(w, r, "You do not have access to remove this group.", navigation.GroupURL(g.Slug))
		return
	}

	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		if _, err := h.members.DeleteByGroup(ctx, g.ID); err != nil {
			return err
		}
		if _, err := h.invitations.DeleteByGroup(ctx, g.ID); err != nil {
			return err
		}
		if _, err := h.resources.UnlinkGroup(ctx, g.ID); err != nil {
			return err
		}
		if _, err := h.activity.DeleteByGroup(ctx, g.ID); err != nil {
			return err
		}
		n, err := h.groups.Delete(ctx, g.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return groupstore.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, groupstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "Group not found.", "/groups/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error removing group", err, "Failed to remove group.", navigation.GroupURL(g.Slug))
		return
	}

	h.unindex(g)
	h.Audit.GroupDeleted(ctx, r, res.UserID, g)
	h.Log.Info("group removed",
		zap.String("slug", g.Slug),
		zap.String("by", res.Username))

	http.Redirect(w, r, "/groups/", http.StatusSeeOther)
}
