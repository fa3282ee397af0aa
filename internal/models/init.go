package models

import (
	"strings"

	"github.com/luxdecor-shop/internal/logger"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DemoProducts 演示用商品目录
func DemoProducts() []Product {
	return []Product{
		{Name: "Brass Table Lamp", Price: NewMoneyFromDecimal(decimal.NewFromInt(1250000)), Image: "/images/brass-table-lamp.jpg", StockQuantity: 40, IsActive: true},
		{Name: "Ceramic Bud Vase", Price: NewMoneyFromDecimal(decimal.NewFromInt(320000)), Image: "/images/ceramic-bud-vase.jpg", StockQuantity: 120, IsActive: true},
		{Name: "Rattan Lounge Chair", Price: NewMoneyFromDecimal(decimal.NewFromInt(4800000)), Image: "/images/rattan-lounge-chair.jpg", StockQuantity: 15, IsActive: true},
		{Name: "Linen Cushion Cover", Price: NewMoneyFromDecimal(decimal.NewFromInt(210000)), Image: "/images/linen-cushion-cover.jpg", StockQuantity: 200, IsActive: true},
		{Name: "Oak Wall Shelf", Price: NewMoneyFromDecimal(decimal.NewFromInt(890000)), Image: "/images/oak-wall-shelf.jpg", StockQuantity: 60, IsActive: true},
		{Name: "Woven Jute Rug", Price: NewMoneyFromDecimal(decimal.NewFromInt(2150000)), Image: "/images/woven-jute-rug.jpg", StockQuantity: 25, IsActive: true},
		{Name: "Marble Candle Holder", Price: NewMoneyFromDecimal(decimal.NewFromInt(450000)), Image: "/images/marble-candle-holder.jpg", StockQuantity: 0, IsActive: true},
		{Name: "Vintage Mirror", Price: NewMoneyFromDecimal(decimal.NewFromInt(3100000)), Image: "/images/vintage-mirror.jpg", StockQuantity: 8, IsActive: false},
	}
}

// SeedProducts 按名称幂等写入商品，已存在的商品不会被覆盖，返回新建数量
func SeedProducts(db *gorm.DB, products []Product) (int, error) {
	created := 0
	for _, product := range products {
		name := strings.TrimSpace(product.Name)
		if name == "" {
			continue
		}
		var count int64
		if err := db.Model(&Product{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			logger.Debugw("seed_product_exists", "name", name)
			continue
		}
		item := product
		item.ID = 0
		item.Name = name
		if err := db.Create(&item).Error; err != nil {
			return created, err
		}
		// gorm 对零值 bool 使用列默认值 true，下架商品需单独回写
		if !product.IsActive {
			if err := db.Model(&Product{}).Where("id = ?", item.ID).Update("is_active", false).Error; err != nil {
				return created, err
			}
		}
		created++
		logger.Infow("seed_product_created", "id", item.ID, "name", name, "stock", item.StockQuantity)
	}
	return created, nil
}
