package transport

import (
	"net/http"
	"strconv"

	"smart-store/internal/cart"
	"smart-store/internal/domain"
	"smart-store/internal/middleware"
	"smart-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartRequest represents the add-to-cart payload
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// ChangeQuantityRequest represents a quantity step for one cart line.
// Any integer is accepted; zero leaves the line as it is.
type ChangeQuantityRequest struct {
	Delta *int `json:"delta" validate:"required"`
}

// CartResponse is the cart view plus an optional notice
type CartResponse struct {
	Cart    cart.Summary `json:"cart"`
	Message string       `json:"message,omitempty"`
}

// ProductsResponse lists the catalog
type ProductsResponse struct {
	Products []*domain.Product `json:"products"`
	Message  string            `json:"message,omitempty"`
}

// CheckoutResponse carries the handoff link the client opens
type CheckoutResponse struct {
	Message string                  `json:"message"`
	Order   *service.CheckoutResult `json:"order"`
}

// ShopHandler handles HTTP requests from shoppers
type ShopHandler struct {
	shopService service.ShopService
	logger      *zap.Logger
}

// NewShopHandler creates a new ShopHandler
func NewShopHandler(shopService service.ShopService, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{
		shopService: shopService,
		logger:      logger,
	}
}

// RegisterRoutes registers all shop routes
func (h *ShopHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/products", h.ListProducts)

	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddToCart)
		r.Patch("/items/{index}", h.ChangeQuantity)
	})

	r.Post("/api/checkout", h.Checkout)
}

// ListProducts returns the catalog, newest first
func (h *ShopHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.shopService.Products(r.Context())
	if err != nil {
		respondServiceError(w, err, MsgLoadFailed)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

// GetCart returns the session's cart with totals
func (h *ShopHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.shopService.Cart(r.Context(), sid)
	if err != nil {
		h.logger.Error("Failed to load cart", zap.Error(err))
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Cart: summary})
}

// AddToCart puts one unit of a product into the cart
func (h *ShopHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	summary, err := h.shopService.AddToCart(r.Context(), sid, productID)
	if err != nil {
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Cart: summary, Message: MsgAddedToCart})
}

// ChangeQuantity steps the quantity of the line at {index}
func (h *ShopHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart line index")
		return
	}

	var req ChangeQuantityRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	summary, err := h.shopService.ChangeQuantity(r.Context(), sid, index, *req.Delta)
	if err != nil {
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Cart: summary})
}

// ClearCart empties the cart
func (h *ShopHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	summary, err := h.shopService.ClearCart(r.Context(), sid)
	if err != nil {
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CartResponse{Cart: summary})
}

// Checkout validates the customer form and returns the order handoff link
func (h *ShopHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r, h.logger)
	if !ok {
		return
	}

	var customer domain.CustomerInfo
	if !decodeJSON(w, r, &customer, h.logger) {
		return
	}

	result, err := h.shopService.Checkout(r.Context(), sid, customer)
	if err != nil {
		respondServiceError(w, err, "internal server error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CheckoutResponse{Message: MsgOrderPlaced, Order: result})
}
