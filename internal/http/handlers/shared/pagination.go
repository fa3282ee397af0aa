package shared

import (
	"strconv"

	"github.com/luxdecor-shop/internal/repository"

	"github.com/gin-gonic/gin"
)

// ParsePagination 读取 page/size 查询参数并归一化，page 从 1 开始。
func ParsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "0"))
	return repository.NormalizePage(page, size)
}
