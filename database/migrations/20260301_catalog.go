package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/minimalshop/app/models"
	"github.com/shashiranjanraj/minimalshop/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_products_table", &CreateProductsTable{})
	migration.Register("20260301000001_create_discounts_table", &CreateDiscountsTable{})
}

// -------- 0001: products --------

type CreateProductsTable struct{}

func (m *CreateProductsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Product{})
}

func (m *CreateProductsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("products")
}

// -------- 0002: discounts --------

type CreateDiscountsTable struct{}

func (m *CreateDiscountsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Discount{})
}

func (m *CreateDiscountsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("discounts")
}
