package invitationstore_test

import (
	"errors"
	"testing"

	invitationstore "github.com/dalemusser/geogroups/internal/app/store/invitations"
	"github.com/dalemusser/geogroups/internal/domain/models"
	"github.com/dalemusser/geogroups/internal/testutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	inv, err := store.Create(ctx, models.GroupInvitation{
		GroupID:     groupID,
		Email:       "  New.Person@Example.org ",
		Role:        models.RoleMember,
		InvitedByID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := uuid.Parse(inv.Token); err != nil {
		t.Errorf("token should be a uuid, got %q", inv.Token)
	}
	if inv.State != models.InvitePending {
		t.Errorf("State: got %q, want pending", inv.State)
	}
	if inv.Email != "new.person@example.org" {
		t.Errorf("Email: got %q", inv.Email)
	}

	got, err := store.GetByToken(ctx, inv.Token)
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}
	if got.ID != inv.ID || got.GroupID != groupID {
		t.Errorf("GetByToken returned %+v", got)
	}

	pending, err := store.ListPendingByGroup(ctx, groupID)
	if err != nil || len(pending) != 1 {
		t.Errorf("ListPendingByGroup: got %d (err %v)", len(pending), err)
	}
}

func TestStore_Create_RequiresInvitee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.GroupInvitation{GroupID: primitive.NewObjectID(), Role: models.RoleMember})
	if !errors.Is(err, invitationstore.ErrNoInvitee) {
		t.Fatalf("expected ErrNoInvitee, got %v", err)
	}
}

func TestStore_GetByToken_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByToken(ctx, "nope"); !errors.Is(err, invitationstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Accept(ctx, "nope", primitive.NewObjectID()); !errors.Is(err, invitationstore.ErrNotFound) {
		t.Fatalf("Accept: expected ErrNotFound, got %v", err)
	}
}

func TestStore_AcceptOnlyOnce(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := invitationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	inv := fixtures.CreateInvitation(ctx, "tok-1", primitive.NewObjectID(), userID, primitive.NewObjectID(), models.RoleManager)

	accepted, err := store.Accept(ctx, inv.Token, userID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if accepted.State != models.InviteAccepted || accepted.RespondedAt == nil {
		t.Errorf("unexpected accepted invitation: %+v", accepted)
	}
	if accepted.UserID == nil || *accepted.UserID != userID {
		t.Errorf("UserID: got %v, want %v", accepted.UserID, userID)
	}

	if _, err := store.Decline(ctx, inv.Token); !errors.Is(err, invitationstore.ErrNotPending) {
		t.Errorf("Decline after accept: expected ErrNotPending, got %v", err)
	}
	if _, err := store.Accept(ctx, inv.Token, userID); !errors.Is(err, invitationstore.ErrNotPending) {
		t.Errorf("second Accept: expected ErrNotPending, got %v", err)
	}
}

func TestStore_DeclineAndDeleteByGroup(t *testing.T) {
	db := testutil.SetupIndexedDB(t)
	store := invitationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	a := fixtures.CreateInvitation(ctx, "tok-a", groupID, primitive.NewObjectID(), primitive.NewObjectID(), models.RoleMember)
	fixtures.CreateInvitation(ctx, "tok-b", groupID, primitive.NewObjectID(), primitive.NewObjectID(), models.RoleMember)

	declined, err := store.Decline(ctx, a.Token)
	if err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if declined.State != models.InviteDeclined {
		t.Errorf("State: got %q", declined.State)
	}

	pending, _ := store.ListPendingByGroup(ctx, groupID)
	if len(pending) != 1 {
		t.Errorf("expected 1 pending invitation, got %d", len(pending))
	}

	n, err := store.DeleteByGroup(ctx, groupID)
	if err != nil || n != 2 {
		t.Errorf("DeleteByGroup: n=%d err=%v", n, err)
	}
}
