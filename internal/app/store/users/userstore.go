package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/geogroups/internal/app/system/normalize"
	"github.com/dalemusser/geogroups/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username is already taken")
	ErrBadCredentials    = errors.New("invalid username or password")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByUsername looks up a user by case-insensitive username.
func (s *Store) GetByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findOne(ctx, bson.M{"username_ci": normalize.Username(username)})
}

// GetByEmail looks up an active user by case-insensitive email. E-mail is
// not unique; the earliest account wins.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.User{}, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"email_ci": email, "status": StatusActive})
}

// ResolveIdentifiers maps each username or e-mail address to a user.
// Identifiers containing "@" are looked up by e-mail, the rest by username.
// Unresolved identifiers are returned in input order.
func (s *Store) ResolveIdentifiers(ctx context.Context, ids []string) (found []models.User, unknown []string, err error) {
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		var u models.User
		if strings.Contains(id, "@") {
			u, err = s.GetByEmail(ctx, id)
		} else {
			u, err = s.GetByUsername(ctx, id)
		}
		switch {
		case errors.Is(err, ErrNotFound):
			unknown = append(unknown, id)
			continue
		case err != nil:
			return nil, nil, err
		}
		if !seen[u.ID] {
			seen[u.ID] = true
			found = append(found, u)
		}
	}
	return found, unknown, nil
}

// NewUser describes an account to create.
type NewUser struct {
	Username string
	FullName string
	Email    string
	Password string
}

// Create inserts an active user with a bcrypt password hash.
func (s *Store) Create(ctx context.Context, nu NewUser) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     strings.TrimSpace(nu.Username),
		UsernameCI:   normalize.Username(nu.Username),
		FullName:     normalize.Name(nu.FullName),
		Email:        strings.TrimSpace(nu.Email),
		EmailCI:      normalize.Email(nu.Email),
		PasswordHash: string(hash),
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// Authenticate returns the active user whose password matches.
// Unknown users, disabled users and wrong passwords all yield ErrBadCredentials.
func (s *Store) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if u.Status != StatusActive || u.PasswordHash == "" {
		return models.User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	return u, nil
}

// EnsureSeed creates the account if no user has the username yet.
// It reports whether an account was created.
func (s *Store) EnsureSeed(ctx context.Context, username, password string) (bool, error) {
	if _, err := s.GetByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := s.Create(ctx, NewUser{Username: username, FullName: username, Password: password}); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
