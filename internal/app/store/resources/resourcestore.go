// internal/app/store/resources/resourcestore.go
package resourcestore

import (
	"context"
	"fmt"

	"github.com/dalemusser/geogroups/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Maps and layers are owned elsewhere; this store only reads them by group
// and removes group links when a group is deleted.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("resources")}
}

// ListByGroup returns resources of type typ ("map" or "layer") shared with
// groupID, sorted by title.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID, typ string) ([]models.Resource, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"group_ids": groupID, "type": typ},
		options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %ss: %w", typ, err)
	}
	defer cur.Close(ctx)
	var out []models.Resource
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnlinkGroup removes groupID from every resource's group list.
// Returns the number of resources modified.
func (s *Store) UnlinkGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"group_ids": groupID},
		bson.M{"$pull": bson.M{"group_ids": groupID}})
	if err != nil {
		return 0, fmt.Errorf("unlink group from resources: %w", err)
	}
	return res.ModifiedCount, nil
}
