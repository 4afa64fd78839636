package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/geogroups/internal/app/system/indexes"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoURIEnv names a MongoDB to test against. When unset, a throwaway
// mongo:7 container is started once per test binary.
const MongoURIEnv = "GEOGROUPS_TEST_MONGO_URI"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// TestContext returns a context suitable for a single test's database work.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB returns an empty database unique to t and drops it when t
// finishes. The test is skipped if no MongoDB is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	clientOnce.Do(func() { client, clientErr = connect() })
	if clientErr != nil {
		t.Skipf("mongodb unavailable: %v", clientErr)
	}

	db := client.Database("geogroups_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

// SetupIndexedDB is SetupTestDB plus the production indexes, so unique
// constraints behave as they do in a running server.
func SetupIndexedDB(t *testing.T) *mongo.Database {
	t.Helper()
	db := SetupTestDB(t)
	ctx, cancel := TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return db
}

func connect() (c *mongo.Client, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		if testing.Short() {
			return nil, fmt.Errorf("%s not set and -short given", MongoURIEnv)
		}
		uri, err = startContainer(ctx)
		if err != nil {
			return nil, err
		}
	}

	c, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}
	return c, nil
}

// startContainer runs mongo:7. The container is reaped by testcontainers
// when the test binary exits.
func startContainer(ctx context.Context) (uri string, err error) {
	defer func() {
		// testcontainers panics when no Docker host can be found.
		if r := recover(); r != nil {
			err = fmt.Errorf("start mongo container: %v", r)
		}
	}()

	ctr, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		return "", fmt.Errorf("start mongo container: %w", err)
	}
	return ctr.ConnectionString(ctx)
}
