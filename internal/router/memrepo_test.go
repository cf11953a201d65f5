package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

type memUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return apperrors.ErrConflict
		}
	}
	u.ID = uuid.New()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Role = role
	return nil
}

type memProducts struct {
	mu    sync.Mutex
	items map[uuid.UUID]*model.Product
	calls int
}

func (m *memProducts) touch() {
	m.calls++
}

func (m *memProducts) Create(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	for _, existing := range m.items {
		if existing.Code == p.Code {
			return apperrors.ErrConflict
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memProducts) Update(_ context.Context, p *model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	cp := *p
	m.items[p.ID] = &cp
	return nil
}

func (m *memProducts) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	p, ok := m.items[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) FindByCode(_ context.Context, code string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	for _, p := range m.items {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *memProducts) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	if _, ok := m.items[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memProducts) List(ctx context.Context, q repository.ProductQuery) ([]model.Product, int64, error) {
	all, err := m.ListAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(all))
	start := (q.Page - 1) * q.Limit
	if start > len(all) {
		start = len(all)
	}
	end := start + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *memProducts) ListAll(context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touch()
	out := make([]model.Product, 0, len(m.items))
	for _, p := range m.items {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memProducts) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type memCarts struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*model.Cart
}

func (m *memCarts) Create(_ context.Context, c *model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.carts {
		if existing.OwnerUserID == c.OwnerUserID {
			return apperrors.ErrConflict
		}
	}
	c.ID = uuid.New()
	m.carts[c.ID] = cloneCart(c)
	return nil
}

func (m *memCarts) Save(_ context.Context, c *model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[c.ID] = cloneCart(c)
	return nil
}

func (m *memCarts) FindByID(_ context.Context, id uuid.UUID) (*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneCart(c), nil
}

func (m *memCarts) FindByOwner(_ context.Context, owner uuid.UUID) (*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.carts {
		if c.OwnerUserID == owner {
			return cloneCart(c), nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func cloneCart(c *model.Cart) *model.Cart {
	cp := *c
	cp.Items = append([]model.CartItem{}, c.Items...)
	return &cp
}

type memMessages struct {
	mu   sync.Mutex
	msgs []model.ChatMessage
}

func (m *memMessages) Create(_ context.Context, msg *model.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memMessages) ListRecent(_ context.Context, limit int) ([]model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	start := len(m.msgs) - limit
	if start < 0 {
		start = 0
	}
	return append([]model.ChatMessage{}, m.msgs[start:]...), nil
}
