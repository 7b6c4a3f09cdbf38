package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"smart-store/internal/domain"
	"smart-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errDatabaseDown = errors.New("database down")

// mockProductRepository keeps products in memory. failCreateOn makes the
// n-th Create call fail (1-based).
type mockProductRepository struct {
	mu           sync.Mutex
	products     map[uuid.UUID]*domain.Product
	createCalls  int
	failCreateOn int
	failList     bool
	failAll      bool
	clock        time.Time
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[uuid.UUID]*domain.Product),
		clock:    time.Now(),
	}
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failList || m.failAll {
		return nil, errDatabaseDown
	}
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls++
	if m.failAll || (m.failCreateOn > 0 && m.createCalls == m.failCreateOn) {
		return errDatabaseDown
	}
	// strictly increasing timestamps keep List ordering deterministic
	m.clock = m.clock.Add(time.Millisecond)
	cp := *product
	cp.CreatedAt = m.clock
	cp.UpdatedAt = m.clock
	m.products[product.ID] = &cp
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return nil, errDatabaseDown
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	update.Apply(p)
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return errDatabaseDown
	}
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failAll {
		return nil, errDatabaseDown
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) Ping(ctx context.Context) error {
	if m.failAll {
		return errDatabaseDown
	}
	return nil
}

func (m *mockProductRepository) seed(name string, price float64) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clock = m.clock.Add(time.Millisecond)
	p := &domain.Product{ID: uuid.New(), Name: name, Price: price, CreatedAt: m.clock, UpdatedAt: m.clock}
	m.products[p.ID] = p
	cp := *p
	return &cp
}

// mockImageStore returns predictable URLs and records uploads
type mockImageStore struct {
	uploads []string
	fail    bool
}

func (m *mockImageStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if m.fail {
		return "", errors.New("bucket unavailable")
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	m.uploads = append(m.uploads, filename)
	return "https://img.example.com/" + filename, nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
