package public

import (
	"strconv"

	"github.com/luxdecor-shop/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// AddToCart 加入购物车
func (h *Handler) AddToCart(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithMsg(c, response.CodeBadRequest, "bad request", nil)
		return
	}
	view, err := h.CartService.AddItem(c.Request.Context(), identity.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// GetMyCart 获取当前用户购物车
func (h *Handler) GetMyCart(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	view, err := h.CartService.GetCart(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveFromCart 移除购物车项，重复移除同样返回成功
func (h *Handler) RemoveFromCart(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		return
	}
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil || productID == 0 {
		respondErrorWithMsg(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}
	if err := h.CartService.RemoveItem(c.Request.Context(), identity.UserID, uint(productID)); err != nil {
		respondError(c, err)
		return
	}
	response.SuccessWithMsg(c, "removed", gin.H{"productId": productID})
}
