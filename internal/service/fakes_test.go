package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bilemo/bilemo/internal/model"
	"github.com/bilemo/bilemo/internal/paginate"
	"github.com/bilemo/bilemo/internal/repository"
)

// memoryStore is an in-memory UserStore, ProductStore and page source.
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]*model.User
	products map[string]*model.Product
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[string]*model.User),
		products: make(map[string]*model.Product),
	}
}

func (m *memoryStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memoryStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryStore) UpdateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memoryStore) EmailExists(_ context.Context, email, exceptID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) GetProductByID(_ context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *memoryStore) userCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// ownedUsers filters by the customer_id argument of OwnedBy queries.
type ownedUsers struct{ m *memoryStore }

func (s ownedUsers) matching(q paginate.Query) []*model.User {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	owner, _ := q.Args["customer_id"].(string)
	var out []*model.User
	for _, u := range s.m.users {
		if owner == "" || u.CustomerID == owner {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s ownedUsers) Count(_ context.Context, q paginate.Query) (int, error) {
	return len(s.matching(q)), nil
}

func (s ownedUsers) Fetch(_ context.Context, q paginate.Query, w paginate.Window) ([]*model.User, error) {
	return window(s.matching(q), w), nil
}

type catalog struct{ m *memoryStore }

func (s catalog) all() []*model.Product {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]*model.Product, 0, len(s.m.products))
	for _, p := range s.m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s catalog) Count(context.Context, paginate.Query) (int, error) {
	return len(s.all()), nil
}

func (s catalog) Fetch(_ context.Context, _ paginate.Query, w paginate.Window) ([]*model.Product, error) {
	return window(s.all(), w), nil
}

func window[T any](items []T, w paginate.Window) []T {
	if w.Offset >= len(items) {
		return nil
	}
	end := w.Offset + w.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[w.Offset:end]
}
