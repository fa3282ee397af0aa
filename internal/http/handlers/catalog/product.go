package catalog

import (
	"strconv"
	"strings"

	handlershared "github.com/luxdecor-shop/internal/http/handlers/shared"
	"github.com/luxdecor-shop/internal/http/response"
	"github.com/luxdecor-shop/internal/inventory"

	"github.com/gin-gonic/gin"
)

// GetProduct 商品快照
func (h *Handler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondLedgerError(c, inventory.ErrProductNotFound)
		return
	}
	snapshot, err := h.Ledger.FetchProduct(uint(productID))
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	response.Success(c, snapshot)
}

// ReduceStock 批量扣减库存
func (h *Handler) ReduceStock(c *gin.Context) {
	items, ok := bindStockItems(c)
	if !ok {
		return
	}
	reference := strings.TrimSpace(c.Query("reference"))
	if err := h.Ledger.ReduceStock(reference, items); err != nil {
		respondLedgerError(c, err)
		return
	}
	response.SuccessWithMsg(c, "stock reduced", gin.H{"reference": reference})
}

// RestoreStock 批量归还库存
func (h *Handler) RestoreStock(c *gin.Context) {
	items, ok := bindStockItems(c)
	if !ok {
		return
	}
	reference := strings.TrimSpace(c.Query("reference"))
	if err := h.Ledger.RestoreStock(reference, items); err != nil {
		respondLedgerError(c, err)
		return
	}
	response.SuccessWithMsg(c, "stock restored", gin.H{"reference": reference})
}

func bindStockItems(c *gin.Context) ([]inventory.StockItem, bool) {
	var items []inventory.StockItem
	if err := c.ShouldBindJSON(&items); err != nil {
		respondLedgerError(c, inventory.ErrInvalidStockItem)
		return nil, false
	}
	return items, true
}

// respondLedgerError 输出带原因码的错误，HTTP 客户端据此还原错误类型
func respondLedgerError(c *gin.Context, err error) {
	status, detail := inventory.DescribeError(err)
	data := gin.H{"reason": detail.Reason}
	if detail.ProductID != 0 {
		data["productId"] = detail.ProductID
	}
	message := err.Error()
	if status >= response.CodeInternal {
		handlershared.RequestLog(c).Errorw("catalog_ledger_error", "error", err)
		message = "internal error"
	}
	response.ErrorWithData(c, status, message, data)
}
