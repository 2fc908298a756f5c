package services

import (
	"fmt"
	"testing"
	"time"

	"invoicing-backend/config"
	"invoicing-backend/models"
	"invoicing-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.ConnectDB(
		config.DatabaseConfig{Driver: "sqlite", URL: dsn},
		config.LogConfig{Level: "error"},
		zap.NewNop(),
	)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{FirstName: "Test", LastName: "User", Email: email, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createClient(t *testing.T, db *gorm.DB, userID uint, name string) models.Client {
	t.Helper()
	client := models.Client{UserID: userID, Name: name, Number: "100", VATNumber: "BG100"}
	require.NoError(t, db.Create(&client).Error)
	return client
}

func createArticle(t *testing.T, db *gorm.DB, userID uint, name string, price float64) models.Article {
	t.Helper()
	article := models.Article{UserID: userID, Name: name, Price: decimal.NewFromFloat(price), Status: models.ArticleActive}
	require.NoError(t, db.Create(&article).Error)
	return article
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(value)
	require.NoError(t, err)
	return d
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func uintPtr(v uint) *uint {
	return &v
}
