package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/utils/jwt"
)

func setupAdminApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	database.DB = gormDB

	app := fiber.New()
	app.Get("/admin/stats", AuthMiddleware(), RequireAdmin(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app, mock
}

func TestRequireAdminRejectsNonAdminToken(t *testing.T) {
	app, mock := setupAdminApp(t)

	token, err := jwt.GenerateToken(42, "jamie@example.com", "Jamie Rivera")
	require.NoError(t, err)

	// Valid token, but no admin role row.
	mock.ExpectQuery(`SELECT \* FROM "user_roles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role"}))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	app, mock := setupAdminApp(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet(), "role lookup must not run without a token")
}

func TestRequireAdminAllowsAdminRole(t *testing.T) {
	app, mock := setupAdminApp(t)

	token, err := jwt.GenerateToken(42, "admin@example.com", "Admin User")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "user_roles"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "role"}).
			AddRow(1, 42, "admin"))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
