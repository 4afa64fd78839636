package resourcestore_test

import (
	"testing"

	resourcestore "github.com/dalemusser/geogroups/internal/app/store/resources"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/dalemusser/geogroups/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_ListByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := resourcestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := primitive.NewObjectID()
	other := primitive.NewObjectID()
	fixtures.CreateResource(ctx, models.ResourceMap, "Watersheds", g)
	fixtures.CreateResource(ctx, models.ResourceMap, "Aquifers", g, other)
	fixtures.CreateResource(ctx, models.ResourceLayer, "Rivers", g)
	fixtures.CreateResource(ctx, models.ResourceMap, "Roads", other)

	maps, err := store.ListByGroup(ctx, g, models.ResourceMap)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(maps) != 2 || maps[0].Title != "Aquifers" || maps[1].Title != "Watersheds" {
		t.Errorf("maps: got %+v", maps)
	}

	layers, err := store.ListByGroup(ctx, g, models.ResourceLayer)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(layers) != 1 || layers[0].Title != "Rivers" {
		t.Errorf("layers: got %+v", layers)
	}
}

func TestStore_UnlinkGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := resourcestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := primitive.NewObjectID()
	other := primitive.NewObjectID()
	fixtures.CreateResource(ctx, models.ResourceMap, "Shared", g, other)
	fixtures.CreateResource(ctx, models.ResourceLayer, "Only G", g)

	n, err := store.UnlinkGroup(ctx, g)
	if err != nil {
		t.Fatalf("UnlinkGroup failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 resources modified, got %d", n)
	}

	left, _ := store.ListByGroup(ctx, g, models.ResourceMap)
	if len(left) != 0 {
		t.Errorf("expected no maps for unlinked group, got %d", len(left))
	}
	kept, _ := store.ListByGroup(ctx, other, models.ResourceMap)
	if len(kept) != 1 {
		t.Errorf("other group should keep its map, got %d", len(kept))
	}
}
