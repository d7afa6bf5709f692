package service_test

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"gorm.io/gorm"
)

// pngHeader is enough for content sniffing to report image/png.
const pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(pngHeader+"payload"))
}

// memoryImageStore records saved and deleted images.
type memoryImageStore struct {
	mu      sync.Mutex
	saved   map[string][]byte
	deleted []string
}

func newMemoryImageStore() *memoryImageStore {
	return &memoryImageStore{saved: map[string][]byte{}}
}

func (m *memoryImageStore) Save(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "/media/" + key
	m.saved[url] = data
	return url, nil
}

func (m *memoryImageStore) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !strings.HasPrefix(url, "/media/") {
		return nil
	}
	delete(m.saved, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func (m *memoryImageStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

type fixture struct {
	db           *gorm.DB
	images       *memoryImageStore
	catalog      *service.CatalogService
	membership   *service.MembershipService
	recipes      *service.RecipeService
	subs         *service.SubscriptionService
	shoppingList *service.ShoppingListService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	images := newMemoryImageStore()
	membership := service.NewMembershipService(db, nil, nil)
	return &fixture{
		db:           db,
		images:       images,
		catalog:      service.NewCatalogService(db),
		membership:   membership,
		recipes:      service.NewRecipeService(db, membership, images, nil, nil),
		subs:         service.NewSubscriptionService(db, nil, nil),
		shoppingList: service.NewShoppingListService(db, nil, nil),
	}
}

func ptr[T any](v T) *T {
	return &v
}

func ids(values ...uuid.UUID) []uuid.UUID {
	return values
}
