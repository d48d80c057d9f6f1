// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/dalemusser/laag/internal/app/system/auth"
	"github.com/dalemusser/laag/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the signed-in views under whatever mount point the
// top-level router chooses. Final paths are /dashboard and /leaderboard
// when mounted at "/".
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/dashboard", h.ServeDashboard)
		pr.Get("/leaderboard", h.ServeLeaderboard)
	})

	return r
}

// AdminRoutes serves the admin-only screens, mounted at "/admin".
func AdminRoutes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleAdmin))

		pr.Get("/dashboard", h.ServeAdmin)
		pr.Get("/profiles", h.ServeProfiles)
		pr.Post("/profiles/{id}/delete", h.HandleDeleteProfile)
	})

	return r
}
