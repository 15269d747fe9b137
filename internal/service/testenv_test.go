package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stockroom-app/stockroom/internal/models"
	"github.com/stockroom-app/stockroom/internal/repo"
	"github.com/stockroom-app/stockroom/pkg/hash"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// A single connection keeps every session on the same in-memory database
	// and serializes concurrent transactions.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return repo.New(db)
}

func createTestUser(t *testing.T, r *repo.GormRepo, email, role string) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword("test_password")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	if err := r.DB.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestProduct(t *testing.T, r *repo.GormRepo, name string, priceCents int64, stock int, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:          name,
		Description:   "test_description",
		PriceCents:    priceCents,
		StockQuantity: stock,
		IsActive:      active,
	}
	if err := r.DB.Create(product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	return product
}
