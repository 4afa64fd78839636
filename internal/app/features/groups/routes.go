// internal/app/features/groups/routes.go
package groups

import (
	"github.com/dalemusser/geogroups/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /groups. Static segments ("create", "invitations")
// win over {slug} in chi, so those words are reserved slugs.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Public, view-gated pages
	r.Get("/", h.ServeList)
	r.Get("/{slug}", h.ServeGroup)
	r.Get("/{slug}/members", h.ServeMembers)

	// Invite answers 404 to anyone who may not invite, signed in or not.
	r.Post("/{slug}/invite", h.HandleInvite)

	// Signed-in actions
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// CREATE
		pr.Get("/create", h.ServeCreate)
		pr.Post("/create", h.HandleCreate)

		// UPDATE
		pr.Get("/{slug}/update", h.ServeUpdate)
		pr.Post("/{slug}/update", h.HandleUpdate)

		// MEMBERSHIP
		pr.Post("/{slug}/members/add", h.HandleAddMembers)
		pr.Get("/{slug}/members/{username}/remove", h.HandleRemoveMember)
		pr.Post("/{slug}/members/{username}/remove", h.HandleRemoveMember)
		pr.Post("/{slug}/join", h.HandleJoin)

		// INVITATION RESPONSE
		pr.Get("/invitations/{token}", h.HandleInviteResponse)
		pr.Post("/invitations/{token}", h.HandleInviteResponse)

		// REMOVE
		pr.Get("/{slug}/remove", h.HandleRemove)
		pr.Post("/{slug}/remove", h.HandleRemove)
	})

	// Other methods on remove reach the handler without a sign-in so the
	// answer is always 405 with an Allow header.
	r.Put("/{slug}/remove", h.HandleRemove)
	r.Patch("/{slug}/remove", h.HandleRemove)
	r.Delete("/{slug}/remove", h.HandleRemove)

	return r
}
