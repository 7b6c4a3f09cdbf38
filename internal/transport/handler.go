package transport

import (
	"errors"
	"net/http"

	"smart-store/internal/checkout"
	"smart-store/internal/domain"
	"smart-store/internal/importer"
	"smart-store/internal/middleware"
	"smart-store/internal/service"
	"smart-store/internal/session"
	"smart-store/internal/storage"

	"go.uber.org/zap"
)

// Notices shown to the user after an action
const (
	MsgAddedToCart       = "Added to Cart!"
	MsgOrderPlaced       = "Order placed successfully! 🎉"
	MsgEmptyCart         = "Your cart is empty"
	MsgInvalidPassword   = "Invalid password"
	MsgProductAdded      = "Product added successfully!"
	MsgProductUpdated    = "Product updated successfully!"
	MsgProductDeleted    = "Product deleted successfully!"
	MsgProductNotFound   = "Product not found"
	MsgSaveFailed        = "Error saving product"
	MsgDeleteFailed      = "Error deleting product"
	MsgLoadFailed        = "Error loading products"
	MsgImageUploaded     = "Image uploaded successfully!"
	MsgRowImageUploaded  = "Image uploaded!"
	MsgUploadFailed      = "Error uploading image"
	MsgCSVLoaded         = "Loaded %d products from CSV"
	MsgCSVParseFailed    = "Error parsing CSV"
	MsgCSVReadFailed     = "Error reading CSV file"
	MsgProductsAdded     = "Successfully added %d products!"
	MsgAddProductsFailed = "Error adding products"
	MsgNoStagedImport    = "No products to import"
	MsgStagedRowNotFound = "Staged product not found"
	MsgTryAgain          = "Please try again"
)

// upload limits
const (
	maxImageBytes = 10 << 20
	maxCSVBytes   = 5 << 20
	formFileField = "file"
)

// sessionID returns the id the session middleware put in the context
func sessionID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	id, ok := middleware.GetSessionID(r.Context())
	if !ok {
		logger.Error("Session middleware not installed", zap.String("path", r.URL.Path))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return "", false
	}
	return id, true
}

// decodeJSON decodes and validates a request body, answering the client
// itself when that fails
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}, logger *zap.Logger) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		logger.Debug("Request validation failed", zap.Error(err), zap.String("path", r.URL.Path))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respondServiceError maps a service error to a status and a short notice.
// fallback is the notice for repository failures of the current action.
func respondServiceError(w http.ResponseWriter, err error, fallback string) {
	var repoErr *domain.RepositoryError
	var parseErr *importer.ParseError

	switch {
	case errors.Is(err, service.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, MsgProductNotFound)
	case errors.Is(err, service.ErrInvalidProduct), errors.Is(err, service.ErrEmptyUpdate):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidPassword):
		middleware.RespondWithError(w, http.StatusUnauthorized, MsgInvalidPassword)
	case errors.Is(err, service.ErrNoStagedImport):
		middleware.RespondWithError(w, http.StatusBadRequest, MsgNoStagedImport)
	case errors.Is(err, service.ErrStagedRowNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, MsgStagedRowNotFound)
	case errors.Is(err, checkout.ErrEmptyCart):
		middleware.RespondWithError(w, http.StatusBadRequest, MsgEmptyCart)
	case errors.Is(err, session.ErrConflict):
		middleware.RespondWithError(w, http.StatusConflict, MsgTryAgain)
	case errors.As(err, &parseErr):
		middleware.RespondWithError(w, http.StatusBadRequest, MsgCSVParseFailed)
	case errors.Is(err, storage.ErrStorageNotConfigured):
		middleware.RespondWithError(w, http.StatusServiceUnavailable, MsgUploadFailed)
	case errors.As(err, &repoErr) && repoErr.Op == service.OpListProducts:
		middleware.RespondWithError(w, http.StatusInternalServerError, MsgLoadFailed)
	default:
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
