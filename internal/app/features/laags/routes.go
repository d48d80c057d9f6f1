// internal/app/features/laags/routes.go
package laags

import (
	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves laags of one group. It is mounted at /groups/{id}/laags,
// so every handler reads the group from the "id" URL parameter.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{laagID}", func(lr chi.Router) {
		lr.Get("/", h.ServeLaag)
		lr.Post("/edit", h.HandleEdit)
		lr.Post("/cancel", h.HandleCancel)
		lr.Post("/complete", h.HandleComplete)
		lr.Post("/delete", h.HandleDelete)

		lr.Post("/images", h.HandleAddImages)
		lr.Post("/images/{imageID}/delete", h.HandleDeleteImage)

		lr.Get("/comments", h.ServeComments)
		lr.Post("/comments", h.HandleAddComment)
		lr.Post("/comments/{commentID}/edit", h.HandleEditComment)
		lr.Post("/comments/{commentID}/delete", h.HandleDeleteComment)
	})

	return r
}

// FeedRoutes serves /feed: public laags plus laags of the caller's groups.
func FeedRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeFeed)
	return r
}
