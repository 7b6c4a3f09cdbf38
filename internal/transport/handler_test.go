package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"smart-store/internal/checkout"
	"smart-store/internal/domain"
	"smart-store/internal/importer"
	"smart-store/internal/middleware"
	"smart-store/internal/repository"
	"smart-store/internal/service"
	"smart-store/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const testAdminPassword = "open-sesame"

// mockProductRepository keeps products in memory
type mockProductRepository struct {
	mu          sync.Mutex
	products    map[uuid.UUID]*domain.Product
	clock       time.Time
	createCalls int
	failOn      int
	failAll     bool
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[uuid.UUID]*domain.Product), clock: time.Now()}
}

func (m *mockProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errors.New("database down")
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
	if m.failAll || (m.failOn > 0 && m.createCalls == m.failOn) {
		return errors.New("insert failed")
	}
	m.clock = m.clock.Add(time.Millisecond)
	cp := *product
	cp.CreatedAt, cp.UpdatedAt = m.clock, m.clock
	m.products[cp.ID] = &cp
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) Ping(ctx context.Context) error {
	if m.failAll {
		return errors.New("database down")
	}
	return nil
}

func (m *mockProductRepository) seed(name string, price float64) *domain.Product {
	p := &domain.Product{ID: uuid.New(), Name: name, Price: price}
	if err := m.Create(context.Background(), p); err != nil {
		panic(err)
	}
	m.createCalls = 0
	return p
}

type mockImageStore struct {
	fail bool
}

func (m *mockImageStore) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if m.fail {
		return "", errors.New("bucket unavailable")
	}
	return "https://img.example.com/" + filename, nil
}

// testServer wires the real services over in-memory collaborators
type testServer struct {
	router http.Handler
	repo   *mockProductRepository
	images *mockImageStore
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	repo := newMockProductRepository()
	images := &mockImageStore{}
	store := session.NewMemoryStore(time.Hour)
	codec := session.NewCookieCodec("test-secret", time.Hour, false)
	formatter := checkout.NewFormatter(checkout.Config{
		StoreName:      "S-Mart",
		CountryCode:    "91",
		CurrencySymbol: "₹",
		DeliveryFee:    40,
		WhatsAppNumber: "919999999999",
	})

	shopService := service.NewShopService(repo, store, formatter, logger)
	adminService := service.NewAdminService(repo, images, store, testAdminPassword, importer.DefaultMaxRows, logger)

	router := chi.NewRouter()
	router.Use(middleware.SessionMiddleware(codec, logger))
	NewShopHandler(shopService, logger).RegisterRoutes(router)
	NewAdminHandler(adminService, logger).RegisterRoutes(router, middleware.RequireAdmin(adminService, logger))
	NewHealthHandler(nil, repo, logger).RegisterRoutes(router)

	return &testServer{router: router, repo: repo, images: images}
}

// do sends a request, carrying the session cookie between calls
func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			s.cookie = c
		}
	}
	return w
}

func (s *testServer) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req)
}

func (s *testServer) doUpload(t *testing.T, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(formFileField, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(t, req)
}

func (s *testServer) login(t *testing.T) {
	t.Helper()

	w := s.doJSON(t, "POST", "/api/admin/login", LoginRequest{Password: testAdminPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}
