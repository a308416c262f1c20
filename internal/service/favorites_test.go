package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kmoran-dev/soundshelf/internal/domain"
	"github.com/kmoran-dev/soundshelf/internal/service"
)

func TestFavoritesService_AddListRemove(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewFavoritesService(db.Favorites())
	ctx := context.Background()
	user := seedUserForTest(t, db, "fan@example.com")

	if _, err := svc.Add(ctx, user, testTrack(1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(ctx, user, testTrack(2)); err != nil {
		t.Fatalf("Add: %v", err)
	}

	favorites, err := svc.List(ctx, user)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(favorites) != 2 {
		t.Fatalf("expected 2 favorites, got %d", len(favorites))
	}

	ok, err := svc.Contains(ctx, user, 1)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !ok {
		t.Fatal("expected track 1 to be favorited")
	}

	if err := svc.Remove(ctx, user, 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	favorites, _ = svc.List(ctx, user)
	if len(favorites) != 1 {
		t.Fatalf("expected 1 favorite after removal, got %d", len(favorites))
	}
}

func TestFavoritesService_Add_Duplicate(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewFavoritesService(db.Favorites())
	ctx := context.Background()
	user := seedUserForTest(t, db, "fan@example.com")

	if _, err := svc.Add(ctx, user, testTrack(1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := svc.Add(ctx, user, testTrack(1)); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestFavoritesService_Remove_NotPresent(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewFavoritesService(db.Favorites())
	user := seedUserForTest(t, db, "fan@example.com")

	if err := svc.Remove(context.Background(), user, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFavoritesService_PerUserIsolation(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewFavoritesService(db.Favorites())
	ctx := context.Background()
	alice := seedUserForTest(t, db, "alice@example.com")
	bob := seedUserForTest(t, db, "bob@example.com")

	if _, err := svc.Add(ctx, alice, testTrack(1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// Same track for a different user is not a conflict.
	if _, err := svc.Add(ctx, bob, testTrack(1)); err != nil {
		t.Fatalf("Add for second user: %v", err)
	}

	bobFavorites, _ := svc.List(ctx, bob)
	if len(bobFavorites) != 1 {
		t.Fatalf("expected 1 favorite for bob, got %d", len(bobFavorites))
	}
}
