package health

import (
	"context"
	"net/http"

	"github.com/dalemusser/laag/internal/app/system/httpx"
	"github.com/dalemusser/laag/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is satisfied by anything that can report its own liveness, such as
// the realtime broker's Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Extra  map[string]Pinger
	Log    *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client and logger.
func NewHandler(client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Extra:  map[string]Pinger{},
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Services map[string]string `json:"services,omitempty"`
	Message  string            `json:"message,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
//
// Extra services are reported under "services" and never fail the check.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		httpx.WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}

	if len(h.Extra) > 0 {
		resp.Services = make(map[string]string, len(h.Extra))
		for name, p := range h.Extra {
			if err := p.Ping(ctx); err != nil {
				h.Log.Warn("health-check: service ping failed", zap.String("service", name), zap.Error(err))
				resp.Services[name] = "unavailable"
				continue
			}
			resp.Services[name] = "ok"
		}
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}
