// internal/app/features/groups/create.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"strings"

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
	"github.com/dalemusser/geogroups/internal/app/system/txn"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"go.uber.org/zap"
)

// ServeCreate renders the Create Group page.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	if res := gates.RequireAuth(w, r, "/login"); !res.OK {
		return
	}

	data := groupFormData{Access: accessOptions(models.AccessPublic)}
	formutil.SetBase(&data.Base, r, "Create Group", "/groups/")
	render.Page(w, r, "group_create", data)
}

// HandleCreate processes the Create Group form. The group is inserted and
// the creator joins it as a manager in one transaction.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	res := gates.RequireAuth(w, r, "/login")
	if !res.OK {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxGroupFormSize)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", httpnav.ResolveBackURL(r, "/groups/"))
		return
	}

	title := normalize.Name(r.FormValue("title"))
	slug := normalize.Slug(r.FormValue("slug"))
	access := strings.TrimSpace(r.FormValue("access"))
	if access == "" {
		access = string(models.AccessPublic)
	}
	rawDesc := r.FormValue("description")
	rawKeywords := r.FormValue("keywords")

	data := groupFormData{
		Slug:        slug,
		GroupTitle:  title,
		Description: rawDesc,
		Keywords:    rawKeywords,
		Access:      accessOptions(models.GroupAccess(access)),
	}
	formutil.SetBase(&data.Base, r, "Create Group", "/groups/")

	data.SetErrors(inputval.Validate(createGroupInput{Title: title, Slug: slug, Access: access}))
	if data.FieldError("slug") == "" && reservedSlugs[slug] {
		data.SetFieldError("slug", "That slug is reserved. Please choose another.")
	}
	if data.HasErrors() {
		render.Page(w, r, "group_create", data)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g := models.Group{
		Slug:        slug,
		Title:       title,
		Description: htmlsanitize.Sanitize(rawDesc),
		Keywords:    normalize.Keywords(rawKeywords),
		Access:      models.GroupAccess(access),
	}

	var created models.Group
	err := txn.Run(ctx, h.DB, h.Log, func(ctx context.Context) error {
		var err error
		created, err = h.groups.Create(ctx, g)
		if err != nil {
			return err
		}
		if _, err = h.members.Join(ctx, created.ID, res.UserID, models.RoleManager); err != nil {
			// Without a transaction the group would otherwise stay behind
			// with no manager.
			if _, derr := h.groups.Delete(ctx, created.ID); derr != nil {
				h.Log.Warn("cleanup of managerless group failed",
					zap.String("slug", created.Slug),
					zap.Error(derr))
			}
			return err
		}
		return nil
	})
	if errors.Is(err, groupstore.ErrDuplicateSlug) {
		data.SetFieldError("slug", "A group with that slug already exists.")
		render.Page(w, r, "group_create", data)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error creating group", err, "Failed to create group.", "/groups/")
		return
	}

	h.Log.Info("group created",
		zap.String("slug", created.Slug),
		zap.String("by", res.Username))
	h.reindex(created)
	h.Audit.GroupCreated(ctx, r, res.UserID, created)

	http.Redirect(w, r, navigation.GroupURL(created.Slug), http.StatusSeeOther)
}
