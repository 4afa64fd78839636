package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/geogroups/internal/app/system/normalize"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Calling it again on the same request adds to the existing params.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates an active user. The e-mail may be empty.
func (f *Fixtures) CreateUser(ctx context.Context, username, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		FullName:   fullName,
		Email:      email,
		EmailCI:    normalize.Email(email),
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateGroup creates a group with the given access mode.
func (f *Fixtures) CreateGroup(ctx context.Context, slug, title string, access models.GroupAccess) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:          primitive.NewObjectID(),
		Slug:        slug,
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: "Test group description",
		Access:      access,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// AddMember creates a membership row linking a user to a group.
func (f *Fixtures) AddMember(ctx context.Context, groupID, userID primitive.ObjectID, role models.GroupRole) models.GroupMember {
	f.t.Helper()

	m := models.GroupMember{
		ID:       primitive.NewObjectID(),
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateResource creates a map or layer shared with groupIDs.
func (f *Fixtures) CreateResource(ctx context.Context, typ, title string, groupIDs ...primitive.ObjectID) models.Resource {
	f.t.Helper()

	res := models.Resource{
		ID:        primitive.NewObjectID(),
		Type:      typ,
		Title:     title,
		TitleCI:   text.Fold(title),
		GroupIDs:  groupIDs,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("resources").InsertOne(ctx, res); err != nil {
		f.t.Fatalf("failed to create test resource: %v", err)
	}
	return res
}

// CreateInvitation creates a pending invitation for a user.
func (f *Fixtures) CreateInvitation(ctx context.Context, token string, groupID, userID, invitedBy primitive.ObjectID, role models.GroupRole) models.GroupInvitation {
	f.t.Helper()

	inv := models.GroupInvitation{
		ID:          primitive.NewObjectID(),
		Token:       token,
		GroupID:     groupID,
		UserID:      &userID,
		Role:        role,
		InvitedByID: invitedBy,
		State:       models.InvitePending,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_invitations").InsertOne(ctx, inv); err != nil {
		f.t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}
