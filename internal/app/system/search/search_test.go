package search

import (
	"testing"

	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newGroup(slug, title, desc string, keywords ...string) models.Group {
	return models.Group{
		ID:          primitive.NewObjectID(),
		Slug:        slug,
		Title:       title,
		Description: desc,
		Keywords:    keywords,
		Access:      models.AccessPublic,
	}
}

func ids(hits []Hit) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.ID)
	}
	return out
}

func openMem(t *testing.T) *GroupIndex {
	t.Helper()
	gi, err := Open("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = gi.Close() })
	return gi
}

func TestGroupIndex_PutAndSearch(t *testing.T) {
	gi := openMem(t)

	geo := newGroup("geo-team", "Geo Team", "<p>Mapping <strong>rivers</strong></p>", "hydrology")
	city := newGroup("city-planners", "City Planners", "Zoning layers")
	require.NoError(t, gi.Put(geo))
	require.NoError(t, gi.Put(city))

	n, err := gi.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	hits, err := gi.Search("rivers", 10)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{geo.ID}, ids(hits))

	hits, err = gi.Search("hydro", 10)
	require.NoError(t, err)
	assert.Contains(t, ids(hits), geo.ID, "prefix of a keyword should match")

	hits, err = gi.Search("Plan", 10)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{city.ID}, ids(hits))

	hits, err = gi.Search("strong", 10)
	require.NoError(t, err)
	assert.Empty(t, hits, "markup should not be indexed")
}

func TestGroupIndex_EmptyQuery(t *testing.T) {
	gi := openMem(t)
	hits, err := gi.Search("   ", 10)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestGroupIndex_UpdateAndDelete(t *testing.T) {
	gi := openMem(t)
	g := newGroup("geo-team", "Geo Team", "")
	require.NoError(t, gi.Put(g))

	g.Title = "Survey Crew"
	require.NoError(t, gi.Put(g))

	hits, err := gi.Search("geo", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = gi.Search("survey", 10)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{g.ID}, ids(hits))

	require.NoError(t, gi.Delete(g.ID))
	n, err := gi.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGroupIndex_Rebuild(t *testing.T) {
	gi := openMem(t)
	stale := newGroup("old", "Old Group", "")
	require.NoError(t, gi.Put(stale))

	fresh := []models.Group{
		newGroup("a", "Alpha Mappers", ""),
		newGroup("b", "Beta Surveyors", ""),
	}
	require.NoError(t, gi.Rebuild(fresh))

	n, err := gi.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	hits, err := gi.Search("old", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestGroupIndex_OnDisk(t *testing.T) {
	path := t.TempDir() + "/groups.bleve"
	gi, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	g := newGroup("geo-team", "Geo Team", "")
	require.NoError(t, gi.Put(g))
	require.NoError(t, gi.Close())

	reopened, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()
	n, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}
