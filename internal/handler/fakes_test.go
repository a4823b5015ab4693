package handler

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bilemo/bilemo/internal/apierr"
	"github.com/bilemo/bilemo/internal/auth"
	"github.com/bilemo/bilemo/internal/httpcache"
	"github.com/bilemo/bilemo/internal/metrics"
	"github.com/bilemo/bilemo/internal/middleware"
	"github.com/bilemo/bilemo/internal/model"
	"github.com/bilemo/bilemo/internal/paginate"
	"github.com/bilemo/bilemo/internal/repository"
	"github.com/bilemo/bilemo/internal/service"
	"github.com/bilemo/bilemo/internal/view"
)

// memStore backs users, products and API keys in memory.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	products map[string]*model.Product
	keys     []*model.APIKey
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*model.User{}, products: map[string]*model.Product{}}
}

func (m *memStore) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memStore) EmailExists(_ context.Context, email, exceptID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) GetProductByID(_ context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *memStore) GetAPIKeysByPrefix(_ context.Context, prefix string) ([]*model.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.APIKey
	for _, k := range m.keys {
		if k.KeyPrefix == prefix {
			out = append(out, k)
		}
	}
	return out, nil
}

func (m *memStore) UpdateAPIKeyLastUsed(context.Context, string) error { return nil }

type userPages struct{ m *memStore }

func (s userPages) list(q paginate.Query) []*model.User {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	owner, _ := q.Args["customer_id"].(string)
	var out []*model.User
	for _, u := range s.m.users {
		if u.CustomerID == owner {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s userPages) Count(_ context.Context, q paginate.Query) (int, error) { return len(s.list(q)), nil }

func (s userPages) Fetch(_ context.Context, q paginate.Query, w paginate.Window) ([]*model.User, error) {
	return slice(s.list(q), w), nil
}

type productPages struct{ m *memStore }

func (s productPages) list() []*model.Product {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]*model.Product, 0, len(s.m.products))
	for _, p := range s.m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s productPages) Count(context.Context, paginate.Query) (int, error) { return len(s.list()), nil }

func (s productPages) Fetch(_ context.Context, _ paginate.Query, w paginate.Window) ([]*model.Product, error) {
	return slice(s.list(), w), nil
}

func slice[T any](items []T, w paginate.Window) []T {
	if w.Offset >= len(items) {
		return nil
	}
	end := min(w.Offset+w.Limit, len(items))
	return items[w.Offset:end]
}

// testAPI is a fully wired router over memStore.
type testAPI struct {
	router   *chi.Mux
	store    *memStore
	recorder *metrics.InMemoryRecorder
}

const testBaseURL = "https://api.test"

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := newMemStore()
	recorder := metrics.NewInMemory()
	errs := apierr.NewTranslator(logger)
	pageOpts := paginate.DefaultOptions()
	respond := NewResponder(errs, httpcache.New(httpcache.DefaultMaxAge), view.NewRoutes(testBaseURL), recorder)

	users := service.NewUserService(store, userPages{store}, pageOpts, recorder)
	products := service.NewProductService(store, productPages{store}, pageOpts, recorder)

	router := NewRouter(RouterConfig{
		Logger:      logger,
		Errors:      errs,
		Metrics:     recorder,
		Snapshotter: recorder,
		Root:        New(respond),
		Health:      NewHealthHandler(nil, nil),
		Users:       NewUserHandler(users, respond, pageOpts, logger),
		Products:    NewProductHandler(products, respond, pageOpts),
		Auth: middleware.AuthConfig{
			Logger:  logger,
			Keys:    store,
			Errors:  errs,
			Metrics: recorder,
		},
		RateLimit: middleware.RateLimitConfig{Logger: logger, Errors: errs},
		Security:  middleware.SecurityConfig{IsDevelopment: true},
		CORS:      middleware.DefaultCORSConfig(),
	})

	return &testAPI{router: router, store: store, recorder: recorder}
}

// issueKey registers a new API key for customerID and returns its plaintext.
func (a *testAPI) issueKey(t *testing.T, customerID string) string {
	t.Helper()
	generated, err := auth.GenerateAPIKey(auth.EnvTest)
	if err != nil {
		t.Fatalf("GenerateAPIKey failed: %v", err)
	}
	a.store.mu.Lock()
	a.store.keys = append(a.store.keys, &model.APIKey{
		ID:            "key-" + customerID,
		CustomerID:    customerID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		RateLimitTier: model.TierFree,
	})
	a.store.mu.Unlock()
	return generated.Plaintext
}

func (a *testAPI) addProduct(p *model.Product) {
	a.store.mu.Lock()
	a.store.products[p.ID] = p
	a.store.mu.Unlock()
}

func (a *testAPI) addUser(u *model.User) {
	a.store.mu.Lock()
	a.store.users[u.ID] = u
	a.store.mu.Unlock()
}
