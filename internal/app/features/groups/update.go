// internal/app/features/groups/update.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/geogroups/internal/app/features/errors"
	groupstore "github.com/dalemusser/geogroups/internal/app/store/groups"
	"github.com/dalemusser/geogroups/internal/app/system/formutil"
	"github.com/dalemusser/geogroups/internal/app/system/gates"
	"github.com/dalemusser/geogroups/internal/app/system/htmlsanitize"
	"github.com/dalemusser/geogroups/internal/app/system/inputval"
	"github.com/dalemusser/geogroups/internal/app/system/limits"
	"github.com/dalemusser/geogroups/internal/app/system/navigation"
	"github.com/dalemusser/geogroups/internal/app/system/normalize"
	"github.com/dalemusser/geogroups/internal/app/system/render"
	"github.com/dalemusser/geogroups/internal/app/system/timeouts"
	"github.com/dalemusser/geogroups/internal/domain/models"
)

// ServeUpdate renders the edit form for a group the viewer manages.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	if res := gates.RequireAuth(w, r, "/login"); !res.OK {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
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
		uierrors.RenderForbidden(w, r, "You do not have access to edit this group.", navigation.GroupURL(g.Slug))
		return
	}

	data := groupFormData{
		IsEdit:      true,
		Slug:        g.Slug,
		GroupTitle:  g.Title,
		Description: g.Description,
		Keywords:    strings.Join(g.Keywords, ", "),
		Access:      accessOptions(g.Access),
	}
	formutil.SetBase(&data.Base, r, "Edit Group", navigation.GroupURL(g.Slug))
	render.Page(w, r, "group_update", data)
}

// HandleUpdate saves the edit form. The slug never changes.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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
		uierrors.RenderForbidden(w, r, "You do not have access to edit this group.", navigation.GroupURL(g.Slug))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxGroupFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", navigation.GroupURL(g.Slug))
		return
	}

	title := normalize.Name(r.FormValue("title"))
	access := strings.TrimSpace(r.FormValue("access"))
	rawDesc := r.FormValue("description")
	rawKeywords := r.FormValue("keywords")

	data := groupFormData{
		IsEdit:      true,
		Slug:        g.Slug,
		GroupTitle:  title,
		Description: rawDesc,
		Keywords:    rawKeywords,
		Access:      accessOptions(models.GroupAccess(access)),
	}
	formutil.SetBase(&data.Base, r, "Edit Group", navigation.GroupURL(g.Slug))

	if result := inputval.Validate(updateGroupInput{Title: title, Access: access}); result.HasErrors() {
		data.SetErrors(result)
		render.Page(w, r, "group_update", data)
		return
	}

	g.Title = title
	g.Description = htmlsanitize.Sanitize(rawDesc)
	g.Keywords = normalize.Keywords(rawKeywords)
	g.Access = models.GroupAccess(access)

	updated, err := h.groups.Update(ctx, g)
	if errors.Is(err, groupstore.ErrNotFound) {
		// removed by someone else while the form was open
		uierrors.RenderNotFound(w, r, "Group not found.", "/groups/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error updating group", err, "Failed to save group.", navigation.GroupURL(g.Slug))
		return
	}

	h.reindex(updated)
	h.Audit.GroupUpdated(ctx, r, res.UserID, updated)

	http.Redirect(w, r, navigation.GroupURL(updated.Slug), http.StatusSeeOther)
}
