package membershipstore_test

import (
	"errors"
	"testing"

	membershipstore "github.com/dalemusser/geogroups/internal/app/store/memberships"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/dalemusser/geogroups/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Join_ThenRoleIsMember(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "geo-team", "Geo Team", models.AccessPublic)
	u := fixtures.CreateUser(ctx, "bob", "Bob", "bob@example.org")

	created, err := store.Join(ctx, g.ID, u.ID, models.RoleMember)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if !created {
		t.Error("expected first Join to create a row")
	}

	role, err := store.RoleOf(ctx, g.ID, u.ID)
	if err != nil {
		t.Fatalf("RoleOf failed: %v", err)
	}
	if role == nil || *role != models.RoleMember {
		t.Fatalf("expected member role, got %v", role)
	}
}

func TestStore_Join_ExistingIsNoop(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "geo-team", "Geo Team", models.AccessPublic)
	u := fixtures.CreateUser(ctx, "alice", "Alice", "")
	fixtures.AddMember(ctx, g.ID, u.ID, models.RoleManager)

	created, err := store.Join(ctx, g.ID, u.ID, models.RoleMember)
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if created {
		t.Error("Join on an existing member should not create a row")
	}
	role, _ := store.RoleOf(ctx, g.ID, u.ID)
	if role == nil || *role != models.RoleManager {
		t.Errorf("existing role must be kept, got %v", role)
	}
}

func TestStore_UpsertRole_OneRowLatestRole(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "geo-team", "Geo Team", models.AccessPublic)
	u := fixtures.CreateUser(ctx, "bob", "Bob", "")

	if err := store.UpsertRole(ctx, g.ID, u.ID, models.RoleMember); err != nil {
		t.Fatalf("first UpsertRole failed: %v", err)
	}
	if err := store.UpsertRole(ctx, g.ID, u.ID, models.RoleManager); err != nil {
		t.Fatalf("second UpsertRole failed: %v", err)
	}

	n, err := db.Collection("group_members").CountDocuments(ctx, bson.M{"group_id": g.ID, "user_id": u.ID})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one membership row, got %d", n)
	}
	role, _ := store.RoleOf(ctx, g.ID, u.ID)
	if role == nil || *role != models.RoleManager {
		t.Errorf("expected latest role manager, got %v", role)
	}
}

func TestStore_UpsertRole_Concurrent(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "geo-team", "Geo Team", models.AccessPublic)
	u := fixtures.CreateUser(ctx, "bob", "Bob", "")

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() { errs <- store.UpsertRole(ctx, g.ID, u.ID, models.RoleMember) }()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Errorf("UpsertRole failed: %v", err)
		}
	}
	n, _ := store.CountByGroup(ctx, g.ID, "")
	if n != 1 {
		t.Errorf("expected one row after concurrent upserts, got %d", n)
	}
}

func TestStore_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := primitive.NewObjectID()
	if err := store.UpsertRole(ctx, id, id, "owner"); !errors.Is(err, membershipstore.ErrBadRole) {
		t.Errorf("UpsertRole: expected ErrBadRole, got %v", err)
	}
	if _, err := store.Join(ctx, id, id, ""); !errors.Is(err, membershipstore.ErrBadRole) {
		t.Errorf("Join: expected ErrBadRole, got %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "geo-team", "Geo Team", models.AccessPublic)
	u := fixtures.CreateUser(ctx, "bob", "Bob", "")
	fixtures.AddMember(ctx, g.ID, u.ID, models.RoleMember)

	if err := store.Remove(ctx, g.ID, u.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	role, err := store.RoleOf(ctx, g.ID, u.ID)
	if err != nil || role != nil {
		t.Errorf("expected no role after removal, got %v (err %v)", role, err)
	}
	if err := store.Remove(ctx, g.ID, u.ID); !errors.Is(err, membershipstore.ErrNotFound) {
		t.Errorf("second Remove: expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListByGroup_ManagersFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := membershipstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "geo-team", "Geo Team", models.AccessPublic)
	other := fixtures.CreateGroup(ctx, "other", "Other", models.AccessPublic)
	alice := fixtures.CreateUser(ctx, "alice", "Alice", "")
	bob := fixtures.CreateUser(ctx, "bob", "Bob", "")
	zed := fixtures.CreateUser(ctx, "zed", "Zed", "")
	fixtures.AddMember(ctx, g.ID, bob.ID, models.RoleMember)
	fixtures.AddMember(ctx, g.ID, alice.ID, models.RoleMember)
	fixtures.AddMember(ctx, g.ID, zed.ID, models.RoleManager)
	fixtures.AddMember(ctx, other.ID, bob.ID, models.RoleManager)

	members, err := store.ListByGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	want := []string{"zed", "alice", "bob"}
	if len(members) != len(want) {
		t.Fatalf("expected %d members, got %d", len(want), len(members))
	}
	for i, m := range members {
		if m.User.Username != want[i] {
			t.Errorf("member %d: got %q, want %q", i, m.User.Username, want[i])
		}
	}
	if members[0].Role != models.RoleManager {
		t.Errorf("expected first member to be manager, got %q", members[0].Role)
	}

	managers, _ := store.CountByGroup(ctx, g.ID, models.RoleManager)
	if managers != 1 {
		t.Errorf("CountByGroup(manager) = %d, want 1", managers)
	}

	ids, err := store.GroupIDsForUser(ctx, bob.ID)
	if err != nil || len(ids) != 2 {
		t.Errorf("GroupIDsForUser: got %v (err %v)", ids, err)
	}

	n, err := store.DeleteByGroup(ctx, g.ID)
	if err != nil || n != 3 {
		t.Errorf("DeleteByGroup: n=%d err=%v", n, err)
	}
}
