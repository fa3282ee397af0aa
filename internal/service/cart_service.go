package service

import (
	"context"
	"errors"

	"github.com/luxdecor-shop/internal/constants"
	"github.com/luxdecor-shop/internal/inventory"
	"github.com/luxdecor-shop/internal/logger"
	"github.com/luxdecor-shop/internal/models"
	"github.com/luxdecor-shop/internal/repository"
)

// CartLineView 购物车项展示
type CartLineView struct {
	CartItemID    uint         `json:"cartItemId"`
	ProductID     uint         `json:"productId"`
	ProductName   string       `json:"productName"`
	Price         models.Money `json:"price"`
	Image         string       `json:"image"`
	StockQuantity int          `json:"stockQuantity"`
	Quantity      int          `json:"quantity"`
	Subtotal      models.Money `json:"subtotal"`
}

// CartView 购物车展示
type CartView struct {
	CartID     uint           `json:"cartId"`
	UserID     uint           `json:"userId"`
	TotalItems int            `json:"totalItems"`
	TotalPrice models.Money   `json:"totalPrice"`
	Items      []CartLineView `json:"items"`
}

// CartService 购物车服务
type CartService struct {
	cartRepo  repository.CartRepository
	inventory inventory.Client
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, inventoryClient inventory.Client) *CartService {
	return &CartService{
		cartRepo:  cartRepo,
		inventory: inventoryClient,
	}
}

// AddItem 加入购物车，已存在的商品累加数量
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int) (*CartView, error) {
	if userID == 0 || productID == 0 || quantity <= 0 {
		return nil, ErrInvalidArgument
	}
	if _, err := s.inventory.FetchProduct(ctx, productID); err != nil {
		return nil, err
	}
	cart, err := s.cartRepo.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.AddQuantity(cart.ID, productID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem 移除购物车项；购物车或商品不存在时视为成功
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) error {
	if userID == 0 || productID == 0 {
		return ErrInvalidArgument
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	return s.cartRepo.DeleteItem(cart.ID, productID)
}

// GetCart 获取购物车展示；商品查询失败时该行显示为不可用而不是整体失败
func (s *CartService) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrInvalidArgument
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	view := &CartView{
		CartID: cart.ID,
		UserID: cart.UserID,
		Items:  make([]CartLineView, 0, len(cart.Items)),
	}
	for _, item := range cart.Items {
		line := CartLineView{
			CartItemID: item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
		}
		snapshot, err := s.inventory.FetchProduct(ctx, item.ProductID)
		if err != nil {
			if !errors.Is(err, inventory.ErrProductNotFound) {
				logger.Warnw("cart_product_lookup_failed",
					"user_id", userID,
					"product_id", item.ProductID,
					"error", err,
				)
			}
			line.ProductName = constants.CartUnavailableProductName
		} else {
			line.ProductName = snapshot.Name
			line.Price = snapshot.Price
			line.Image = snapshot.Image
			line.StockQuantity = snapshot.StockQuantity
		}
		line.Subtotal = line.Price.MulQuantity(line.Quantity)
		view.TotalItems += item.Quantity
		view.TotalPrice = view.TotalPrice.Plus(line.Subtotal)
		view.Items = append(view.Items, line)
	}
	return view, nil
}
