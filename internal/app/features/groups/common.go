// internal/app/features/groups/common.go
package groups

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	uierrors "github.com/dalemusser/geogroups/internal/app/features/errors"
	"github.com/dalemusser/geogroups/internal/app/policy/grouppolicy"
	groupstore "github.com/dalemusser/geogroups/internal/app/store/groups"
	"github.com/dalemusser/geogroups/internal/app/system/navigation"
	"github.com/dalemusser/geogroups/internal/app/system/normalize"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// reservedSlugs collide with static routes under /groups.
var reservedSlugs = map[string]bool{
	"create":      true,
	"invitations": true,
}

// loadGroup fetches the group named by the {slug} URL parameter. Unknown
// slugs render 404; database failures render 500. ok is false when a
// response has already been written.
func (h *Handler) loadGroup(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Group, bool) {
	slug := normalize.Slug(chi.URLParam(r, "slug"))
	g, err := h.groups.GetBySlug(ctx, slug)
	if errors.Is(err, groupstore.ErrNotFound) {
		uierrors.RenderNotFound(w, r, "Group not found.", "/groups/")
		return models.Group{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error loading group", err, "A database error occurred.", "/groups/")
		return models.Group{}, false
	}
	return g, true
}

// permissions evaluates the current viewer's capabilities on g.
func (h *Handler) permissions(ctx context.Context, w http.ResponseWriter, r *http.Request, g models.Group) (grouppolicy.Permissions, bool) {
	perms, err := grouppolicy.ForRequest(ctx, h.members, r, g)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error checking group membership", err, "A database error occurred.", "/groups/")
		return grouppolicy.Permissions{}, false
	}
	return perms, true
}

// loadViewable loads the group and its permissions, rendering 404 when the
// viewer may not see it so a private group's existence is never revealed.
func (h *Handler) loadViewable(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Group, grouppolicy.Permissions, bool) {
	g, ok := h.loadGroup(ctx, w, r)
	if !ok {
		return g, grouppolicy.Permissions{}, false
	}
	perms, ok := h.permissions(ctx, w, r, g)
	if !ok {
		return g, perms, false
	}
	if !perms.CanView {
		uierrors.RenderNotFound(w, r, "Group not found.", "/groups/")
		return g, perms, false
	}
	return g, perms, true
}

// reindex refreshes g in the search index. The database is the source of
// truth, so a failure here is logged and the request carries on; the
// periodic resync repairs the index.
func (h *Handler) reindex(g models.Group) {
	if h.Index == nil {
		return
	}
	if err := h.Index.Put(g); err != nil {
		h.Log.Warn("search index update failed",
			zap.String("slug", g.Slug),
			zap.Error(err))
	}
}

func (h *Handler) unindex(g models.Group) {
	if h.Index == nil {
		return
	}
	if err := h.Index.Delete(g.ID); err != nil {
		h.Log.Warn("search index delete failed",
			zap.String("slug", g.Slug),
			zap.Error(err))
	}
}

func memberRemoveURL(slug, username string) string {
	return navigation.GroupMembersURL(slug) + "/" + url.PathEscape(username) + "/remove"
}

func (h *Handler) pageSize() int {
	if h.PageSize > 0 {
		return h.PageSize
	}
	return 25
}

// crossSite reports whether a browser sent r from another site. It reads
// Sec-Fetch-Site and falls back to the Referer host for older browsers.
// A request carrying neither header is treated as same-site.
func crossSite(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "same-origin", "none":
		return false
	case "":
	default:
		return true
	}
	ref := r.Header.Get("Referer")
	if ref == "" {
		return false
	}
	u, err := url.Parse(ref)
	return err != nil || u.Host != r.Host
}
