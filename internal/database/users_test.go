package database

import (
	"context"
	"errors"
	"testing"

	"wallet-ledger-go/internal/store"
)

func TestCreateUser(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	user, err := service.CreateUser(ctx, "u1", "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Id != "u1" || user.Name != "Alice" {
		t.Errorf("Unexpected user: %+v", user)
	}

	// Re-creating with the same id is a no-op, not an error.
	again, err := service.CreateUser(ctx, "u1", "Someone Else", "other@example.com")
	if err != nil {
		t.Fatalf("Second CreateUser failed: %v", err)
	}
	if again.Name != "Alice" {
		t.Errorf("Existing user was overwritten: %+v", again)
	}
}

func TestGetUserById_NotFound(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	_, err := service.GetUserById(context.Background(), "missing")
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestGetUsers(t *testing.T) {
	service, cleanup := setupTestDb(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := service.CreateUser(ctx, "u1", "Alice", "alice@example.com"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := service.CreateUser(ctx, "u2", "Bob", "bob@example.com"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	users, err := service.GetUsers(ctx)
	if err != nil {
		t.Fatalf("GetUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}
}
