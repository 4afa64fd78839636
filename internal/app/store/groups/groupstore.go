// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/geogroups/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound      = errors.New("group not found")
	ErrDuplicateSlug = errors.New("a group with this slug already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetBySlug returns ErrNotFound when no group has the slug.
func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Group, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, filter).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, ErrNotFound
		}
		return models.Group{}, fmt.Errorf("find group: %w", err)
	}
	return g, nil
}

// Create inserts g with a fresh ID and timestamps. Access defaults to public.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.TitleCI = text.Fold(g.Title)
	if g.Access == "" {
		g.Access = models.AccessPublic
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateSlug
		}
		return models.Group{}, fmt.Errorf("insert group: %w", err)
	}
	return g, nil
}

// Update saves the editable fields of g. The slug is never changed.
func (s *Store) Update(ctx context.Context, g models.Group) (models.Group, error) {
	g.TitleCI = text.Fold(g.Title)
	g.UpdatedAt = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, g.ID, bson.M{"$set": bson.M{
		"title":       g.Title,
		"title_ci":    g.TitleCI,
		"description": g.Description,
		"keywords":    g.Keywords,
		"access":      g.Access,
		"updated_at":  g.UpdatedAt,
	}})
	if err != nil {
		return models.Group{}, fmt.Errorf("update group: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Group{}, ErrNotFound
	}
	return g, nil
}

// Delete removes a group by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// visibleFilter matches non-private groups plus the private groups in memberOf.
func visibleFilter(memberOf []primitive.ObjectID) bson.M {
	or := bson.A{bson.M{"access": bson.M{"$ne": models.AccessPrivate}}}
	if len(memberOf) > 0 {
		or = append(or, bson.M{"_id": bson.M{"$in": memberOf}})
	}
	return bson.M{"$or": or}
}

// CountVisible returns how many groups a viewer who belongs to memberOf may see.
func (s *Store) CountVisible(ctx context.Context, memberOf []primitive.ObjectID) (int64, error) {
	n, err := s.c.CountDocuments(ctx, visibleFilter(memberOf))
	if err != nil {
		return 0, fmt.Errorf("count groups: %w", err)
	}
	return n, nil
}

// Browse returns one page of groups visible to a viewer who belongs to
// memberOf, sorted by title, and the total number of visible groups.
func (s *Store) Browse(ctx context.Context, memberOf []primitive.ObjectID, skip, limit int64) ([]models.Group, int64, error) {
	filter := visibleFilter(memberOf)
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count groups: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("browse groups: %w", err)
	}
	defer cur.Close(ctx)
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetVisibleByIDs loads the groups in ids that the viewer may see,
// preserving the order of ids. Missing or hidden ids are skipped.
func (s *Store) GetVisibleByIDs(ctx context.Context, ids, memberOf []primitive.ObjectID) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	filter := bson.M{"$and": bson.A{
		bson.M{"_id": bson.M{"$in": ids}},
		visibleFilter(memberOf),
	}}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	defer cur.Close(ctx)

	byID := make(map[primitive.ObjectID]models.Group, len(ids))
	for cur.Next(ctx) {
		var g models.Group
		if err := cur.Decode(&g); err != nil {
			return nil, err
		}
		byID[g.ID] = g
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	out := make([]models.Group, 0, len(byID))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

// All returns every group. Used to rebuild the search index at startup.
func (s *Store) All(ctx context.Context) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Group
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
