package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"time"

	"smart-store/internal/domain"
	"smart-store/internal/importer"
	"smart-store/internal/repository"
	"smart-store/internal/session"
	"smart-store/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdminService manages the catalog. Callers are expected to have checked
// IsAdmin before calling anything but Login.
type AdminService interface {
	Login(ctx context.Context, sessionID, password string) error
	Logout(ctx context.Context, sessionID string) error
	IsAdmin(ctx context.Context, sessionID string) (bool, error)

	ListProducts(ctx context.Context) ([]*domain.Product, error)
	AddProduct(ctx context.Context, input domain.NewProductInput) (*domain.Product, error)
	CreateProduct(ctx context.Context, input domain.NewProductInput) (*MutationResult, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*MutationResult, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (*MutationResult, error)
	UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error)

	ImportCSV(ctx context.Context, sessionID string, r io.Reader) (*ImportResult, error)
	StagedRows(ctx context.Context, sessionID string) ([]domain.StagedImportRow, error)
	AttachStagedImage(ctx context.Context, sessionID, tempID, filename, contentType string, r io.Reader) ([]domain.StagedImportRow, error)
	SubmitStaged(ctx context.Context, sessionID string) (*SubmitResult, error)
	CancelStaged(ctx context.Context, sessionID string) error
}

// MutationResult carries the changed product and the reloaded catalog
type MutationResult struct {
	Product  *domain.Product   `json:"product,omitempty"`
	Products []*domain.Product `json:"products"`
}

// ImportResult describes the rows staged from a CSV file
type ImportResult struct {
	Rows       []domain.StagedImportRow `json:"rows"`
	Considered int                      `json:"considered"`
	Truncated  bool                     `json:"truncated"`
	// DroppedCount is always reported; Dropped carries the per-row reasons
	DroppedCount int                 `json:"dropped_count"`
	Dropped      []importer.RowIssue `json:"dropped,omitempty"`
}

// SubmitResult reports a batch submission. Added counts rows committed even
// when the batch stopped early.
type SubmitResult struct {
	Added    int               `json:"added"`
	Products []*domain.Product `json:"products"`
}

type adminService struct {
	products      repository.ProductRepository
	images        storage.ImageStore
	sessions      session.Store
	adminPassword string
	maxImportRows int
	logger        *zap.Logger
	now           func() time.Time
}

// NewAdminService creates a new instance of AdminService. An empty password
// disables admin login entirely.
func NewAdminService(
	products repository.ProductRepository,
	images storage.ImageStore,
	sessions session.Store,
	adminPassword string,
	maxImportRows int,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		products:      products,
		images:        images,
		sessions:      sessions,
		adminPassword: adminPassword,
		maxImportRows: maxImportRows,
		logger:        logger,
		now:           time.Now,
	}
}

// Login marks the session as admin when password matches the configured one
func (s *adminService) Login(ctx context.Context, sessionID, password string) error {
	if !s.passwordMatches(password) {
		s.logger.Warn("Admin login rejected", zap.String("session_id", sessionID))
		return ErrInvalidPassword
	}

	_, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.IsAdmin = true
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Admin logged in", zap.String("session_id", sessionID))
	return nil
}

func (s *adminService) passwordMatches(password string) bool {
	if s.adminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) == 1
}

// Logout drops the admin flag together with any staged import
func (s *adminService) Logout(ctx context.Context, sessionID string) error {
	_, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.IsAdmin = false
		sess.Staged = nil
		return nil
	})
	return err
}

func (s *adminService) IsAdmin(ctx context.Context, sessionID string) (bool, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sess.IsAdmin, nil
}

func (s *adminService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, domain.NewRepositoryError(OpListProducts, err)
	}
	return products, nil
}

func (s *adminService) CreateProduct(ctx context.Context, input domain.NewProductInput) (*MutationResult, error) {
	product, err := s.AddProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, product)
}

// AddProduct validates and stores a single product
func (s *adminService) AddProduct(ctx context.Context, input domain.NewProductInput) (*domain.Product, error) {
	name := importer.SanitizeName(input.Name)
	if name == "" || !importer.ValidPrice(input.Price) {
		return nil, ErrInvalidProduct
	}

	now := s.now()
	product := &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Price:     input.Price,
		ImageURL:  input.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", zap.Error(err), zap.String("name", name))
		return nil, domain.NewRepositoryError(OpSaveProduct, err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name),
	)

	return product, nil
}

// UpdateProduct changes only the supplied fields
func (s *adminService) UpdateProduct(ctx context.Context, id uuid.UUID, update domain.ProductUpdate) (*MutationResult, error) {
	if update.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if update.Name != nil {
		name := importer.SanitizeName(*update.Name)
		if name == "" {
			return nil, ErrInvalidProduct
		}
		update.Name = &name
	}
	if update.Price != nil && !importer.ValidPrice(*update.Price) {
		return nil, ErrInvalidProduct
	}

	product, err := s.products.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("Failed to update product", zap.Error(err), zap.String("product_id", id.String()))
		return nil, domain.NewRepositoryError(OpSaveProduct, err)
	}

	return s.reload(ctx, product)
}

func (s *adminService) DeleteProduct(ctx context.Context, id uuid.UUID) (*MutationResult, error) {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("Failed to delete product", zap.Error(err), zap.String("product_id", id.String()))
		return nil, domain.NewRepositoryError(OpDeleteProduct, err)
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))

	return s.reload(ctx, nil)
}

// UploadImage stores an image and returns its public URL
func (s *adminService) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	url, err := s.images.Upload(ctx, filename, contentType, r)
	if err != nil {
		s.logger.Error("Failed to upload image", zap.Error(err), zap.String("filename", filename))
		return "", domain.NewRepositoryError(OpUploadImage, err)
	}
	return url, nil
}

// ImportCSV parses a CSV file and replaces the session's staging list with
// the accepted rows. On a parse error nothing is staged.
func (s *adminService) ImportCSV(ctx context.Context, sessionID string, r io.Reader) (*ImportResult, error) {
	parsed, err := importer.Parse(r, s.maxImportRows)
	if err != nil {
		s.logger.Warn("Failed to parse CSV", zap.Error(err))
		return nil, err
	}

	batch := importer.NewBatch(parsed)
	_, err = s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.Staged = batch
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("CSV staged",
		zap.String("session_id", sessionID),
		zap.Int("rows", batch.Len()),
		zap.Int("considered", parsed.Considered),
		zap.Bool("truncated", parsed.Truncated),
	)

	return &ImportResult{
		Rows:         batch.Rows,
		Considered:   parsed.Considered,
		Truncated:    parsed.Truncated,
		DroppedCount: len(parsed.Dropped),
		Dropped:      parsed.Dropped,
	}, nil
}

func (s *adminService) StagedRows(ctx context.Context, sessionID string) ([]domain.StagedImportRow, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return []domain.StagedImportRow{}, nil
	}
	if err != nil {
		return nil, err
	}
	if sess.Staged == nil {
		return []domain.StagedImportRow{}, nil
	}
	return sess.Staged.Rows, nil
}

// AttachStagedImage uploads an image for one staged row. A failed upload
// leaves the staging list as it was.
func (s *adminService) AttachStagedImage(ctx context.Context, sessionID, tempID, filename, contentType string, r io.Reader) ([]domain.StagedImportRow, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrNoStagedImport
	}
	if err != nil {
		return nil, err
	}
	if sess.Staged.Len() == 0 {
		return nil, ErrNoStagedImport
	}
	if _, ok := sess.Staged.Find(tempID); !ok {
		return nil, ErrStagedRowNotFound
	}

	url, err := s.UploadImage(ctx, filename, contentType, r)
	if err != nil {
		return nil, err
	}

	sess, err = s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		if !sess.Staged.AttachImage(tempID, url) {
			return ErrStagedRowNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sess.Staged.Rows, nil
}

// SubmitStaged adds every staged row to the catalog one after another. The
// staging list is cleared whether or not every row made it.
func (s *adminService) SubmitStaged(ctx context.Context, sessionID string) (*SubmitResult, error) {
	var batch *importer.Batch
	_, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		if sess.Staged.Len() == 0 {
			return ErrNoStagedImport
		}
		batch = sess.Staged
		sess.Staged = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	added, submitErr := batch.Submit(ctx, s)
	if submitErr != nil {
		s.logger.Error("Batch submission stopped",
			zap.Error(submitErr),
			zap.Int("added", added),
			zap.Int("staged", batch.Len()),
		)
	} else {
		s.logger.Info("Batch submitted", zap.Int("added", added))
	}

	result := &SubmitResult{Added: added}
	products, listErr := s.ListProducts(ctx)
	if listErr == nil {
		result.Products = products
	}

	if submitErr != nil {
		return result, domain.NewRepositoryError(OpAddProducts, submitErr)
	}
	if listErr != nil {
		return result, listErr
	}
	return result, nil
}

func (s *adminService) CancelStaged(ctx context.Context, sessionID string) error {
	_, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		sess.Staged = nil
		return nil
	})
	return err
}

func (s *adminService) reload(ctx context.Context, product *domain.Product) (*MutationResult, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Product: product, Products: products}, nil
}
