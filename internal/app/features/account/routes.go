// internal/app/features/account/routes.go
package account

import (
	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves /account for signed-in profiles.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeAccount)
	r.Post("/", h.HandleUpdate)
	r.Post("/avatar", h.HandleAvatar)
	return r
}
