package health_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/geogroups/internal/app/features/health"
	"github.com/dalemusser/geogroups/internal/app/system/search"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/dalemusser/geogroups/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Search   *struct {
		Groups uint64 `json:"groups"`
		Error  string `json:"error"`
	} `json:"search"`
	Message string `json:"message"`
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)

	idx, err := search.Open("", zap.NewNop())
	if err != nil {
		t.Fatalf("search.Open: %v", err)
	}
	defer idx.Close()
	g := models.Group{ID: primitive.NewObjectID(), Slug: "geo", Title: "Geo"}
	if err := idx.Put(g); err != nil {
		t.Fatalf("Put: %v", err)
	}

	handler := health.NewHandler(db.Client(), idx, zap.NewNop())

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handler.Serve(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}

	var got response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Status != "ok" || got.Database != "connected" {
		t.Errorf("status=%q database=%q", got.Status, got.Database)
	}
	if got.Search == nil || got.Search.Groups != 1 {
		t.Errorf("search: got %+v, want 1 group", got.Search)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	// A client pointed at a closed port never connects; Ping fails within
	// the server selection timeout.
	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(200*time.Millisecond))
	if err != nil {
		t.Fatalf("mongo.Connect: %v", err)
	}
	defer client.Disconnect(context.Background())

	handler := health.NewHandler(client, nil, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	var got response
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got.Status != "error" || got.Database != "disconnected" {
		t.Errorf("status=%q database=%q", got.Status, got.Database)
	}
	if got.Search != nil {
		t.Error("search state should be omitted when the database is down")
	}
}
