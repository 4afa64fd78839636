// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/geogroups/internal/app/system/normalize"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound   = errors.New("invitation not found")
	ErrNotPending = errors.New("invitation has already been answered")
	ErrNoInvitee  = errors.New("invitation needs a user or an e-mail address")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_invitations")}
}

// Create stores a pending invitation with a new random token.
func (s *Store) Create(ctx context.Context, inv models.GroupInvitation) (models.GroupInvitation, error) {
	if inv.UserID == nil && inv.Email == "" {
		return models.GroupInvitation{}, ErrNoInvitee
	}
	inv.ID = primitive.NewObjectID()
	inv.Token = uuid.NewString()
	inv.Email = normalize.Email(inv.Email)
	inv.State = models.InvitePending
	inv.CreatedAt = time.Now().UTC()
	inv.RespondedAt = nil
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.GroupInvitation{}, fmt.Errorf("insert invitation: %w", err)
	}
	return inv, nil
}

// GetByToken returns ErrNotFound for unknown tokens.
func (s *Store) GetByToken(ctx context.Context, token string) (models.GroupInvitation, error) {
	var inv models.GroupInvitation
	if err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroupInvitation{}, ErrNotFound
		}
		return models.GroupInvitation{}, fmt.Errorf("find invitation: %w", err)
	}
	return inv, nil
}

// Accept moves a pending invitation to accepted and records userID as the
// invitee, which binds e-mail invitations to the account that accepted them.
func (s *Store) Accept(ctx context.Context, token string, userID primitive.ObjectID) (models.GroupInvitation, error) {
	return s.transition(ctx, token, bson.M{"state": models.InviteAccepted, "user_id": userID})
}

// Decline moves a pending invitation to declined.
func (s *Store) Decline(ctx context.Context, token string) (models.GroupInvitation, error) {
	return s.transition(ctx, token, bson.M{"state": models.InviteDeclined})
}

// transition changes state only if the invitation is still pending, so two
// concurrent responses cannot both succeed.
func (s *Store) transition(ctx context.Context, token string, set bson.M) (models.GroupInvitation, error) {
	set["responded_at"] = time.Now().UTC()
	var inv models.GroupInvitation
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"token": token, "state": models.InvitePending},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&inv)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.GroupInvitation{}, fmt.Errorf("update invitation: %w", err)
	}
	if _, err := s.GetByToken(ctx, token); err != nil {
		return models.GroupInvitation{}, err
	}
	return models.GroupInvitation{}, ErrNotPending
}

// ListPendingByGroup returns pending invitations, newest first.
func (s *Store) ListPendingByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.GroupInvitation, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"group_id": groupID, "state": models.InvitePending},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer cur.Close(ctx)
	var out []models.GroupInvitation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByGroup removes all invitations for a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
