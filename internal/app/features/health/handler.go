package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/geogroups/internal/app/system/search"
	"github.com/dalemusser/geogroups/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	Index  *search.GroupIndex
	Log    *zap.Logger
}

// NewHandler constructs a health Handler. index may be nil when search is
// disabled.
func NewHandler(client *mongo.Client, index *search.GroupIndex, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		Index:  index,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string       `json:"status"`
	Database string       `json:"database"`
	Search   *searchState `json:"search,omitempty"`
	Message  string       `json:"message,omitempty"`
	Error    string       `json:"error,omitempty"`
}

type searchState struct {
	Groups uint64 `json:"groups"`
	Error  string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "search":{"groups":12} }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
//
// A search index problem is reported but does not fail the check; the
// list page falls back to browsing the database.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.Index != nil {
		n, err := h.Index.Count()
		resp.Search = &searchState{Groups: n}
		if err != nil {
			h.Log.Warn("health-check: search index count failed", zap.Error(err))
			resp.Search.Error = err.Error()
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
