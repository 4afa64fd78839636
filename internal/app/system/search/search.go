// Package search keeps a bleve full-text index of groups. Mongo stays the
// source of truth; the index only maps a query to ranked group ids.
package search

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/dalemusser/geogroups/internal/app/system/htmlsanitize"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultLimit = 100

// Hit is one ranked search result.
type Hit struct {
	ID    primitive.ObjectID
	Score float64
}

type groupDoc struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// GroupIndex is safe for concurrent use.
type GroupIndex struct {
	mu  sync.RWMutex
	idx bleve.Index
	log *zap.Logger
}

// Open opens the index at path, creating it if needed. An empty path
// gives an in-memory index that is rebuilt on every start.
func Open(path string, logger *zap.Logger) (*GroupIndex, error) {
	m := newMapping()
	var (
		idx bleve.Index
		err error
	)
	switch {
	case path == "":
		idx, err = bleve.NewMemOnly(m)
	default:
		idx, err = bleve.Open(path)
		if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
			idx, err = bleve.New(path, m)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open group search index: %w", err)
	}
	logger.Info("group search index ready", zap.String("path", path), zap.Bool("in_memory", path == ""))
	return &GroupIndex{idx: idx, log: logger}, nil
}

func newMapping() mapping.IndexMapping {
	text := bleve.NewTextFieldMapping()
	keyword := bleve.NewKeywordFieldMapping()

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("description", text)
	doc.AddFieldMappingsAt("keywords", text)
	doc.AddFieldMappingsAt("slug", keyword)

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// Put indexes or reindexes g.
func (gi *GroupIndex) Put(g models.Group) error {
	doc := groupDoc{
		Slug:        g.Slug,
		Title:       g.Title,
		Description: htmlsanitize.StripTags(g.Description),
		Keywords:    strings.Join(g.Keywords, " "),
	}
	gi.mu.Lock()
	defer gi.mu.Unlock()
	if err := gi.idx.Index(g.ID.Hex(), doc); err != nil {
		return fmt.Errorf("index group %s: %w", g.Slug, err)
	}
	return nil
}

// Delete removes a group from the index. Deleting an unknown id is not an error.
func (gi *GroupIndex) Delete(id primitive.ObjectID) error {
	gi.mu.Lock()
	defer gi.mu.Unlock()
	return gi.idx.Delete(id.Hex())
}

// Rebuild replaces the index contents with groups.
func (gi *GroupIndex) Rebuild(groups []models.Group) error {
	gi.mu.Lock()
	defer gi.mu.Unlock()

	b := gi.idx.NewBatch()
	ids, err := gi.allIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		b.Delete(id)
	}
	for _, g := range groups {
		err := b.Index(g.ID.Hex(), groupDoc{
			Slug:        g.Slug,
			Title:       g.Title,
			Description: htmlsanitize.StripTags(g.Description),
			Keywords:    strings.Join(g.Keywords, " "),
		})
		if err != nil {
			return fmt.Errorf("batch group %s: %w", g.Slug, err)
		}
	}
	if err := gi.idx.Batch(b); err != nil {
		return fmt.Errorf("rebuild group index: %w", err)
	}
	gi.log.Info("group search index rebuilt", zap.Int("groups", len(groups)))
	return nil
}

func (gi *GroupIndex) allIDs() ([]string, error) {
	n, err := gi.idx.DocCount()
	if err != nil || n == 0 {
		return nil, err
	}
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(n)
	res, err := gi.idx.Search(req)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Search returns ids of groups matching q, best match first. Whole words
// match anywhere; partial words match the start of title or keyword terms.
func (gi *GroupIndex) Search(q string, limit int) ([]Hit, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	queries := []query.Query{bleve.NewMatchQuery(q)}
	for _, term := range strings.Fields(strings.ToLower(q)) {
		for _, field := range []string{"title", "keywords"} {
			pq := bleve.NewPrefixQuery(term)
			pq.SetField(field)
			queries = append(queries, pq)
		}
	}
	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = limit

	gi.mu.RLock()
	res, err := gi.idx.Search(req)
	gi.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search groups: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		oid, err := primitive.ObjectIDFromHex(h.ID)
		if err != nil {
			gi.log.Warn("skipping malformed id in group index", zap.String("id", h.ID))
			continue
		}
		hits = append(hits, Hit{ID: oid, Score: h.Score})
	}
	return hits, nil
}

// Count returns the number of indexed groups.
func (gi *GroupIndex) Count() (uint64, error) {
	gi.mu.RLock()
	defer gi.mu.RUnlock()
	return gi.idx.DocCount()
}

// Close releases the index.
func (gi *GroupIndex) Close() error {
	gi.mu.Lock()
	defer gi.mu.Unlock()
	return gi.idx.Close()
}
