// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/geogroups/internal/app/system/authz"
	"github.com/dalemusser/geogroups/internal/app/system/htmlsanitize"
	"github.com/dalemusser/geogroups/internal/app/system/paging"
	"github.com/dalemusser/geogroups/internal/app/system/render"
	"github.com/dalemusser/geogroups/internal/app/system/timeouts"
	"github.com/dalemusser/geogroups/internal/app/system/viewdata"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const summaryLen = 200

// ServeList renders the groups list. Without a query it browses every
// visible group by title; with q it ranks groups through the search index.
// Private groups appear only for their members.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	q := query.Get(r, "q")
	page := paging.ParsePage(r)

	var memberOf []primitive.ObjectID
	_, _, uid, signedIn := authz.UserCtx(r)
	if signedIn {
		ids, err := h.members.GroupIDsForUser(ctx, uid)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error loading memberships", err, "A database error occurred.", "/")
			return
		}
		memberOf = ids
	}

	var (
		groups []models.Group
		window paging.Window
	)
	if q == "" || h.Index == nil {
		// Count first so an out-of-range page clamps to the last one.
		total, err := h.groups.CountVisible(ctx, memberOf)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error counting groups", err, "A database error occurred.", "/")
			return
		}
		window = paging.NewWindow(page, h.pageSize(), total)
		groups, _, err = h.groups.Browse(ctx, memberOf, window.Skip(), window.Limit())
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error listing groups", err, "A database error occurred.", "/")
			return
		}
	} else {
		hits, err := h.Index.Search(q, 0)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "group search failed", err, "Search is unavailable right now.", "/groups/")
			return
		}
		ids := make([]primitive.ObjectID, 0, len(hits))
		for _, hit := range hits {
			ids = append(ids, hit.ID)
		}
		visible, err := h.groups.GetVisibleByIDs(ctx, ids, memberOf)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error loading search results", err, "A database error occurred.", "/groups/")
			return
		}
		window = paging.NewWindow(page, h.pageSize(), int64(len(visible)))
		groups = paging.Slice(visible, window)
		h.Log.Debug("group search",
			zap.String("q", q),
			zap.Int("hits", len(hits)),
			zap.Int("visible", len(visible)))
	}

	isMember := make(map[primitive.ObjectID]bool, len(memberOf))
	for _, id := range memberOf {
		isMember[id] = true
	}

	items := make([]groupListItem, 0, len(groups))
	for _, g := range groups {
		count, err := h.members.CountByGroup(ctx, g.ID, "")
		if err != nil {
			h.ErrLog.LogServerError(w, r, "database error counting members", err, "A database error occurred.", "/")
			return
		}
		items = append(items, groupListItem{
			Slug:        g.Slug,
			Title:       g.Title,
			Summary:     summarize(g.Description),
			Access:      string(g.Access),
			IsPrivate:   g.Access == models.AccessPrivate,
			IsMember:    isMember[g.ID],
			MemberCount: count,
		})
	}

	data := groupListData{
		BaseVM:      viewdata.NewBaseVM(r, "Groups", "/"),
		SearchQuery: q,
		Searching:   q != "",
		Groups:      items,
		Window:      window,
		CanCreate:   signedIn,
	}
	if window.HasPrev {
		data.PrevURL = pageURL(q, window.PrevPage)
	}
	if window.HasNext {
		data.NextURL = pageURL(q, window.NextPage)
	}
	render.Page(w, r, "group_list", data)
}

// summarize strips markup from a description and trims it for list rows.
func summarize(desc string) string {
	s := htmlsanitize.StripTags(desc)
	runes := []rune(s)
	if len(runes) <= summaryLen {
		return s
	}
	return string(runes[:summaryLen]) + "…"
}

// pageURL keeps the search query when linking to another page.
func pageURL(q string, page int) string {
	v := url.Values{}
	if q != "" {
		v.Set("q", q)
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return "/groups/"
	}
	return "/groups/?" + v.Encode()
}
