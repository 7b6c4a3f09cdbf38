package service

import (
	"context"
	"errors"

	"smart-store/internal/cart"
	"smart-store/internal/checkout"
	"smart-store/internal/domain"
	"smart-store/internal/repository"
	"smart-store/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ShopService is what shoppers can do: browse, fill a cart and check out
type ShopService interface {
	Products(ctx context.Context) ([]*domain.Product, error)
	Cart(ctx context.Context, sessionID string) (cart.Summary, error)
	AddToCart(ctx context.Context, sessionID string, productID uuid.UUID) (cart.Summary, error)
	ChangeQuantity(ctx context.Context, sessionID string, index, delta int) (cart.Summary, error)
	ClearCart(ctx context.Context, sessionID string) (cart.Summary, error)
	Checkout(ctx context.Context, sessionID string, customer domain.CustomerInfo) (*CheckoutResult, error)
}

// CheckoutResult is the order handed off to the messaging app
type CheckoutResult struct {
	Message checkout.Message `json:"message"`
	URL     string           `json:"url"`
	Total   float64          `json:"total"`
}

type shopService struct {
	products  repository.ProductRepository
	sessions  session.Store
	formatter *checkout.Formatter
	logger    *zap.Logger
}

// NewShopService creates a new instance of ShopService
func NewShopService(
	products repository.ProductRepository,
	sessions session.Store,
	formatter *checkout.Formatter,
	logger *zap.Logger,
) ShopService {
	return &shopService{
		products:  products,
		sessions:  sessions,
		formatter: formatter,
		logger:    logger,
	}
}

func (s *shopService) Products(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, domain.NewRepositoryError(OpListProducts, err)
	}
	return products, nil
}

func (s *shopService) Cart(ctx context.Context, sessionID string) (cart.Summary, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return s.summary(session.New(sessionID)), nil
	}
	if err != nil {
		return cart.Summary{}, err
	}
	return s.summary(sess), nil
}

// AddToCart snapshots the current product into the cart
func (s *shopService) AddToCart(ctx context.Context, sessionID string, productID uuid.UUID) (cart.Summary, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return cart.Summary{}, ErrProductNotFound
		}
		s.logger.Error("Failed to find product", zap.Error(err), zap.String("product_id", productID.String()))
		return cart.Summary{}, domain.NewRepositoryError(OpFindProduct, err)
	}

	return s.updateCart(ctx, sessionID, func(c *cart.Cart) {
		c.Add(*product)
	})
}

// ChangeQuantity adjusts a cart line. An index outside the cart changes nothing.
func (s *shopService) ChangeQuantity(ctx context.Context, sessionID string, index, delta int) (cart.Summary, error) {
	return s.updateCart(ctx, sessionID, func(c *cart.Cart) {
		c.ChangeQuantity(index, delta)
	})
}

func (s *shopService) ClearCart(ctx context.Context, sessionID string) (cart.Summary, error) {
	return s.updateCart(ctx, sessionID, func(c *cart.Cart) {
		c.Clear()
	})
}

// Checkout composes the order message and empties the cart. Nothing is
// persisted; the order exists only as the returned handoff.
func (s *shopService) Checkout(ctx context.Context, sessionID string, customer domain.CustomerInfo) (*CheckoutResult, error) {
	var result *CheckoutResult

	_, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		msg, err := s.formatter.Format(sess.Cart.Snapshot(), customer)
		if err != nil {
			return err
		}

		result = &CheckoutResult{
			Message: msg,
			URL:     msg.URL(),
			Total:   sess.Cart.Total(s.formatter.DeliveryFee()),
		}
		sess.Cart.Clear()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order handed off",
		zap.String("session_id", sessionID),
		zap.Float64("total", result.Total),
	)

	return result, nil
}

func (s *shopService) updateCart(ctx context.Context, sessionID string, mutate func(c *cart.Cart)) (cart.Summary, error) {
	sess, err := s.sessions.Update(ctx, sessionID, func(sess *session.Session) error {
		mutate(&sess.Cart)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update cart", zap.Error(err), zap.String("session_id", sessionID))
		return cart.Summary{}, err
	}
	return s.summary(sess), nil
}

func (s *shopService) summary(sess *session.Session) cart.Summary {
	return sess.Cart.Summarize(s.formatter.DeliveryFee())
}
