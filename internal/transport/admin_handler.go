package transport

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"smart-store/internal/domain"
	"smart-store/internal/importer"
	"smart-store/internal/middleware"
	"smart-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoginRequest represents the admin login payload
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminStatusResponse reports whether the session passed the admin gate
type AdminStatusResponse struct {
	IsAdmin bool `json:"is_admin"`
}

// CreateProductRequest represents the add-product form
type CreateProductRequest struct {
	Name     string   `json:"name" validate:"required"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	ImageURL string   `json:"image_url" validate:"omitempty,url"`
}

// UpdateProductRequest carries only the fields to change
type UpdateProductRequest struct {
	Name     *string  `json:"name" validate:"omitempty"`
	Price    *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURL *string  `json:"image_url" validate:"omitempty"`
}

// MutationResponse carries the notice and the reloaded catalog
type MutationResponse struct {
	Message  string            `json:"message"`
	Product  *domain.Product   `json:"product,omitempty"`
	Products []*domain.Product `json:"products"`
}

// ImageResponse carries the public URL of an uploaded image
type ImageResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// ImportResponse describes the staged rows
type ImportResponse struct {
	Message string `json:"message,omitempty"`
	*service.ImportResult
}

// StagedRowsResponse lists the staging list
type StagedRowsResponse struct {
	Message string                   `json:"message,omitempty"`
	Rows    []domain.StagedImportRow `json:"rows"`
}

// SubmitResponse reports a completed batch submission
type SubmitResponse struct {
	Message  string            `json:"message"`
	Added    int               `json:"added"`
	Products []*domain.Product `json:"products"`
}

// AdminHandler handles HTTP requests from the admin panel
type AdminHandler struct {
	adminService service.AdminService
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// RegisterRoutes registers all admin routes. requireAdmin guards everything
// except login and logout.
func (h *AdminHandler) RegisterRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/session", h.Status)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Get("/products", h.ListProducts)
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)

			r.Post("/images", h.UploadImage)

			r.Post("/import", h.ImportCSV)
			r.Get("/import", h.StagedRows)
			r.Delete("/import", h.CancelImport)
			r.Post("/import/submit", h.SubmitImport)
			r.Post("/import/{tempID}/image", h.AttachImage)
		})
	})
}

// Status reports whether the current session is an admin session
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	isAdmin, err := h.adminService.IsAdmin(r.Context(), sid)
	if err != nil {
		h.logger.Error("Failed to read admin status", zap.Error(err))
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AdminStatusResponse{IsAdmin: isAdmin})
}

// Login checks the shared admin password
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		// a blank password is just a wrong password
		middleware.RespondWithError(w, http.StatusUnauthorized, MsgInvalidPassword)
		return
	}

	if err := h.adminService.Login(r.Context(), sid, req.Password); err != nil {
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AdminStatusResponse{IsAdmin: true})
}

// Logout leaves the admin panel
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.adminService.Logout(r.Context(), sid); err != nil {
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AdminStatusResponse{IsAdmin: false})
}

// ListProducts returns the catalog for the admin panel
func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.adminService.ListProducts(r.Context())
	if err != nil {
		respondServiceError(w, err, MsgLoadFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

// CreateProduct adds a product
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.adminService.CreateProduct(r.Context(), domain.NewProductInput{
		Name:     req.Name,
		Price:    *req.Price,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondServiceError(w, err, MsgSaveFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, MutationResponse{
		Message:  MsgProductAdded,
		Product:  result.Product,
		Products: result.Products,
	})
}

// UpdateProduct changes the supplied fields of product {id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.adminService.UpdateProduct(r.Context(), id, domain.ProductUpdate{
		Name:     req.Name,
		Price:    req.Price,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondServiceError(w, err, MsgSaveFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MutationResponse{
		Message:  MsgProductUpdated,
		Product:  result.Product,
		Products: result.Products,
	})
}

// DeleteProduct removes product {id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	result, err := h.adminService.DeleteProduct(r.Context(), id)
	if err != nil {
		respondServiceError(w, err, MsgDeleteFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MutationResponse{
		Message:  MsgProductDeleted,
		Products: result.Products,
	})
}

// UploadImage stores the multipart "file" and returns its URL
func (h *AdminHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, ok := h.formFile(w, r, maxImageBytes, MsgUploadFailed)
	if !ok {
		return
	}
	defer file.Close()

	url, err := h.adminService.UploadImage(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondServiceError(w, err, MsgUploadFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ImageResponse{Message: MsgImageUploaded, URL: url})
}

// ImportCSV stages the rows of the uploaded CSV file. Per-row reasons for
// dropped rows are included only with ?diagnostics=true.
func (h *AdminHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	file, _, ok := h.formFile(w, r, maxCSVBytes, MsgCSVReadFailed)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.adminService.ImportCSV(r.Context(), sid, file)
	if err != nil {
		respondServiceError(w, err, MsgCSVParseFailed)
		return
	}

	if r.URL.Query().Get("diagnostics") != "true" {
		trimmed := *result
		trimmed.Dropped = nil
		result = &trimmed
	}

	middleware.RespondWithJSON(w, http.StatusOK, ImportResponse{
		Message:      fmt.Sprintf(MsgCSVLoaded, len(result.Rows)),
		ImportResult: result,
	})
}

// StagedRows returns the staging list
func (h *AdminHandler) StagedRows(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	rows, err := h.adminService.StagedRows(r.Context(), sid)
	if err != nil {
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StagedRowsResponse{Rows: rows})
}

// CancelImport drops the staging list
func (h *AdminHandler) CancelImport(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.adminService.CancelStaged(r.Context(), sid); err != nil {
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StagedRowsResponse{Rows: []domain.StagedImportRow{}})
}

// AttachImage uploads an image for staged row {tempID}
func (h *AdminHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	file, header, ok := h.formFile(w, r, maxImageBytes, MsgUploadFailed)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := h.adminService.AttachStagedImage(
		r.Context(),
		sid,
		chi.URLParam(r, "tempID"),
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		respondServiceError(w, err, MsgUploadFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StagedRowsResponse{Message: MsgRowImageUploaded, Rows: rows})
}

// SubmitImport adds the staged rows to the catalog. When the batch stops
// early the error details carry how many rows were added and the reloaded
// catalog.
func (h *AdminHandler) SubmitImport(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.adminService.SubmitStaged(r.Context(), sid)
	if err != nil {
		var submitErr *importer.SubmitError
		if result == nil || !errors.As(err, &submitErr) {
			respondServiceError(w, err, MsgAddProductsFailed)
			return
		}

		details := map[string]interface{}{"added": result.Added}
		if result.Products != nil {
			details["products"] = result.Products
		}
		middleware.RespondWithErrorDetails(w, http.StatusInternalServerError, MsgAddProductsFailed, details)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SubmitResponse{
		Message:  fmt.Sprintf(MsgProductsAdded, result.Added),
		Added:    result.Added,
		Products: result.Products,
	})
}

func (h *AdminHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return uuid.Nil, false
	}
	return id, true
}

// formFile opens the multipart "file" field, answering the client itself
// when that fails
func (h *AdminHandler) formFile(w http.ResponseWriter, r *http.Request, limit int64, failMsg string) (multipart.File, *multipart.FileHeader, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	file, header, err := r.FormFile(formFileField)
	if err != nil {
		h.logger.Debug("Failed to read uploaded file", zap.Error(err))

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, failMsg)
			return nil, nil, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, failMsg)
		return nil, nil, false
	}
	return file, header, true
}
