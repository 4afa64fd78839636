package txn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/geogroups/internal/app/system/txn"
	"github.com/dalemusser/geogroups/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unrelated", errors.New("duplicate key"), false},
		{"not a replica set member", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"illegal operation code", mongo.CommandError{Code: 51}, true},
		{"operation not in transaction", mongo.CommandError{Code: 263}, true},
		{"other command error", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"wrapped command error", errors.Join(errors.New("create group"), mongo.CommandError{Code: 20}), true},
		{"message only", errors.New("Transaction requires a Replica Set"), true},
		{"session state", errors.New("cannot start a transaction in this session"), true},
		{"transaction alone", errors.New("transaction aborted"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := txn.IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRun_AppliesWrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := txn.Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		if _, err := db.Collection("groups").InsertOne(ctx, bson.M{"slug": "geo"}); err != nil {
			return err
		}
		_, err := db.Collection("group_members").InsertOne(ctx, bson.M{"slug": "geo", "role": "manager"})
		return err
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, coll := range []string{"groups", "group_members"} {
		n, err := db.Collection(coll).CountDocuments(ctx, bson.M{"slug": "geo"})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 1 {
			t.Errorf("%s: got %d documents, want 1", coll, n)
		}
	}
}

func TestRun_ReturnsCallbackError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sentinel := errors.New("slug taken")
	err := txn.Run(ctx, db, nil, func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Run error: got %v, want %v", err, sentinel)
	}
}
