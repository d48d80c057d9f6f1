// internal/app/features/groups/routes.go
package groups

import (
	"net/http"

	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves /groups. When laagRoutes is non-nil it is mounted at
// /groups/{id}/laags so the laags feature shares the group URL space.
func Routes(h *Handler, sm *auth.SessionManager, laagRoutes http.Handler) chi.Router {
	r := chi.NewRouter()

	// Everything under /groups requires authentication
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// LIST / CREATE
		pr.Get("/", h.ServeGroupsList)
		pr.Post("/", h.HandleCreateGroup)

		// VIEW / EDIT / DELETE
		pr.Get("/{id}", h.ServeGroup)
		pr.Post("/{id}/edit", h.HandleEditGroup)
		pr.Post("/{id}/picture", h.HandleGroupPicture)
		pr.Post("/{id}/delete", h.HandleDeleteGroup)

		// MEMBERS
		pr.Get("/{id}/members", h.ServeMembers)
		pr.Post("/{id}/members/add", h.HandleAddMember)
		pr.Post("/{id}/members/remove", h.HandleRemoveMember)

		if laagRoutes != nil {
			pr.Mount("/{id}/laags", laagRoutes)
		}
	})

	return r
}
