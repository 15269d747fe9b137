package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	authmw "github.com/stockroom-app/stockroom/internal/middleware/auth"
	"github.com/stockroom-app/stockroom/internal/models"
	"github.com/stockroom-app/stockroom/internal/repo"
	"github.com/stockroom-app/stockroom/internal/service"
	"github.com/stockroom-app/stockroom/pkg/hash"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	Repo   *repo.GormRepo
	Auth   *AuthHTTP
	Orders *OrderHTTP
	Prods  *ProductHTTP
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	r := repo.New(db)
	secret := []byte("test-jwt-secret")

	return &testEnv{
		T:      t,
		E:      echo.New(),
		Repo:   r,
		Auth:   &AuthHTTP{Svc: &service.AuthService{Repo: r, JWTSecret: secret}, Repo: r},
		Orders: &OrderHTTP{Svc: &service.OrderService{Repo: r}, Repo: r},
		Prods:  &ProductHTTP{Svc: &service.ProductService{Repo: r}, Repo: r},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) actAs(c echo.Context, user *models.User) {
	c.Set(authmw.CtxUserID, user.ID.String())
	c.Set(authmw.CtxRole, user.Role)
}

func (env *testEnv) createUser(email, role string) *models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword("test_password")
	require.NoError(env.T, err)

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(env.T, env.Repo.DB.Create(user).Error)
	return user
}

func (env *testEnv) createProduct(name string, priceCents int64, stock int, active bool) *models.Product {
	env.T.Helper()

	product := &models.Product{
		Name:          name,
		Description:   "test_description",
		PriceCents:    priceCents,
		StockQuantity: stock,
		IsActive:      active,
	}
	require.NoError(env.T, env.Repo.DB.Create(product).Error)
	return product
}

func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T: %v", err, err)
	return he
}
