package cache_test

import (
	"testing"
	"time"

	"github.com/helpers-app/helpers-api/internal/domain"
	"github.com/helpers-app/helpers-api/internal/infra/cache"
)

const activeKey = "categories:active"

func activeCategories() []domain.ServiceCategory {
	return []domain.ServiceCategory{
		{ID: "cat-1", Name: "Cleaning", IsActive: true},
		{ID: "cat-2", Name: "Plumbing", IsActive: true},
	}
}

func TestCache_ServesStoredListing(t *testing.T) {
	c := cache.New[[]domain.ServiceCategory](5 * time.Minute)

	c.Set(activeKey, activeCategories())
	got, ok := c.Get(activeKey)
	if !ok {
		t.Fatal("expected cached listing to be served")
	}
	if len(got) != 2 || got[0].Name != "Cleaning" {
		t.Errorf("unexpected cached listing %+v", got)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := cache.New[[]domain.ServiceCategory](5 * time.Minute)

	if _, ok := c.Get(activeKey); ok {
		t.Fatal("expected miss before anything was cached")
	}
}

func TestCache_ListingExpires(t *testing.T) {
	c := cache.New[[]domain.ServiceCategory](50 * time.Millisecond)

	c.Set(activeKey, activeCategories())
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get(activeKey); ok {
		t.Fatal("expected listing to expire after the TTL")
	}
}

func TestCache_InvalidationRemovesListing(t *testing.T) {
	c := cache.New[[]domain.ServiceCategory](5 * time.Minute)

	// Admin catalog writes invalidate the public listing.
	c.Set(activeKey, activeCategories())
	c.Delete(activeKey)

	if _, ok := c.Get(activeKey); ok {
		t.Fatal("expected listing to be gone after invalidation")
	}
}
