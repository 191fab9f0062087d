package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sreevishnu-spericorn/jag-backend/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedAdmin_CreatesHashedLogin(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "boss@backoffice.test")
	t.Setenv("ADMIN_PASSWORD", "hunter22")
	db := newTestDB(t)

	require.NoError(t, SeedAdmin(db))

	var admin models.User
	require.NoError(t, db.First(&admin, "email = ?", "boss@backoffice.test").Error)
	require.Equal(t, models.RoleAdmin, admin.Role)
	require.Len(t, admin.APIKeyHash, 64)

	require.NotEqual(t, "hunter22", admin.Password, "password must never be stored in the clear")
	require.True(t, models.CheckPasswordHash("hunter22", admin.Password))
	require.False(t, models.CheckPasswordHash("wrong-password", admin.Password))
}

func TestSeedAdmin_SecondRunIsANoOp(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "boss@backoffice.test")
	t.Setenv("ADMIN_PASSWORD", "hunter22")
	db := newTestDB(t)

	require.NoError(t, SeedAdmin(db))
	require.NoError(t, SeedAdmin(db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestSeedAdmin_SkipsWithoutCredentials(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD", "")
	db := newTestDB(t)

	require.NoError(t, SeedAdmin(db))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}
