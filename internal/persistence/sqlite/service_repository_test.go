package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/example/hotel-booking/internal/persistence"
)

func TestServiceRepository(t *testing.T) {
	storage, cleanup := setupStorageTest(t)
	defer cleanup()

	ctx := context.Background()
	services := []persistence.Service{
		{ID: 2, Name: "Family Suite", Description: "Two rooms", Price: 7200},
		{ID: 1, Name: "Deluxe Room", Description: "City view", Price: 3500},
	}
	for _, service := range services {
		if err := storage.Services.UpsertService(ctx, service); err != nil {
			t.Fatalf("UpsertService failed: %v", err)
		}
	}

	list, err := storage.Services.ListServices(ctx)
	if err != nil {
		t.Fatalf("ListServices failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 services, got %d", len(list))
	}

	updated := services[1]
	updated.Price = 3900
	if err := storage.Services.UpsertService(ctx, updated); err != nil {
		t.Fatalf("UpsertService update failed: %v", err)
	}
	got, err := storage.Services.GetService(ctx, 1)
	if err != nil {
		t.Fatalf("GetService failed: %v", err)
	}
	if got.Price != 3900 || got.Name != "Deluxe Room" {
		t.Errorf("Unexpected service after upsert: %+v", got)
	}

	if _, err := storage.Services.GetService(ctx, 404); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := storage.Services.UpsertService(ctx, persistence.Service{ID: 0, Name: "x"}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("Expected ErrConstraintViolation, got %v", err)
	}
}
