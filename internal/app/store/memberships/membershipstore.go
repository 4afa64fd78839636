// internal/app/store/memberships/membershipstore.go
package membershipstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Username: the human-readable name users type to sign in and that appears in URLs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/geogroups/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("membership not found")
	ErrBadRole  = errors.New(`role must be "manager" or "member"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_members")}
}

// Member is a membership row joined with its user.
type Member struct {
	User models.User      `bson:"user"`
	Role models.GroupRole `bson:"role"`
}

// Join adds userID to groupID with role unless a membership already exists,
// in which case nothing changes. It reports whether a row was created.
func (s *Store) Join(ctx context.Context, groupID, userID primitive.ObjectID, role models.GroupRole) (bool, error) {
	if !role.Valid() {
		return false, ErrBadRole
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"group_id": groupID, "user_id": userID},
		// group_id and user_id are copied from the filter on insert.
		bson.M{"$setOnInsert": bson.M{
			"role":      role,
			"joined_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true))
	if err != nil {
		if wafflemongo.IsDup(err) {
			// lost an insert race; the other writer created the row
			return false, nil
		}
		return false, fmt.Errorf("join group: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

// UpsertRole sets userID's role in groupID, creating the membership if
// needed. The unique (group_id, user_id) index guarantees one row.
func (s *Store) UpsertRole(ctx context.Context, groupID, userID primitive.ObjectID, role models.GroupRole) error {
	if !role.Valid() {
		return ErrBadRole
	}
	upsert := func() error {
		_, err := s.c.UpdateOne(ctx,
			bson.M{"group_id": groupID, "user_id": userID},
			bson.M{
				"$set": bson.M{"role": role},
				"$setOnInsert": bson.M{"joined_at": time.Now().UTC()},
			},
			options.Update().SetUpsert(true))
		return err
	}
	err := upsert()
	if wafflemongo.IsDup(err) {
		// Two upserts raced to insert; the row exists now, so retry as an update.
		err = upsert()
	}
	if err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

// Remove deletes the membership document for (groupID, userID).
// It returns ErrNotFound when there is no such membership.
func (s *Store) Remove(ctx context.Context, groupID, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RoleOf returns userID's role in groupID, or nil when not a member.
func (s *Store) RoleOf(ctx context.Context, groupID, userID primitive.ObjectID) (*models.GroupRole, error) {
	var m models.GroupMember
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_id": userID},
		options.FindOne().SetProjection(bson.M{"role": 1})).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load role: %w", err)
	}
	return &m.Role, nil
}

// ListByGroup returns the group's members with their users, managers
// first, then by username.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]Member, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"group_id": groupID}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: "$user"}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"role_rank": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$role", models.RoleManager}}, 0, 1,
			}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "role_rank", Value: 1},
			{Key: "user.username_ci", Value: 1},
			{Key: "user._id", Value: 1},
		}}},
		bson.D{{Key: "$project", Value: bson.M{"user": "$user", "role": 1}}},
	}

	cur, err := s.c.Aggregate(ctx, pipe)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer cur.Close(ctx)

	var out []Member
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByGroup returns the count of memberships for a group, optionally filtered by role.
// If role is empty, counts all memberships.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID, role models.GroupRole) (int64, error) {
	filter := bson.M{"group_id": groupID}
	if role != "" {
		filter["role"] = role
	}
	return s.c.CountDocuments(ctx, filter)
}

// DeleteByGroup removes all memberships for a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// GroupIDsForUser returns the ids of every group userID belongs to.
func (s *Store) GroupIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetProjection(bson.M{"group_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var m models.GroupMember
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		ids = append(ids, m.GroupID)
	}
	return ids, cur.Err()
}
