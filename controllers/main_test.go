package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"invoicing-backend/config"
	"invoicing-backend/models"
	"invoicing-backend/routes"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost
	utils.SetupValidator()
	os.Exit(m.Run())
}

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

type serverOption func(*config.Config)

func withSalesAPI(cfg *config.Config) { cfg.Features.SalesAPI = true }

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.ConnectDB(config.DatabaseConfig{Driver: "sqlite", URL: dsn}, config.LogConfig{Level: "error"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tokens := utils.NewTokenManager("test-secret-key-at-least-32-chars", time.Hour, utils.NewInMemoryTokenBlacklist())
	router := routes.SetupRouter(routes.Dependencies{
		Config: cfg,
		DB:     db,
		Logger: zap.NewNop(),
		Tokens: tokens,
	})
	return &testServer{t: t, db: db, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func registrationBody(email string) gin.H {
	return gin.H{
		"first_name":            "Ivan",
		"last_name":             "Petrov",
		"email":                 email,
		"password":              "password123",
		"password_confirmation": "password123",
		"company": gin.H{
			"name":    "Petrov Ltd",
			"eik":     "123456789",
			"address": "Sofia, Vitosha 1",
			"mol":     "Ivan Petrov",
			"phone":   "+359888123456",
		},
	}
}

// register creates a user through the API and returns its token and id
func (s *testServer) register(email string) (string, uint) {
	s.t.Helper()

	rec := s.do(http.MethodPost, "/api/register", "", registrationBody(email))
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(s.t, rec)
	user := body["user"].(map[string]interface{})
	return body["token"].(string), uint(user["id"].(float64))
}

func (s *testServer) createClient(token, name string) uint {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/clients", token, gin.H{"name": name, "number": "201", "vat_number": "BG201"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return idOf(s.t, decode(s.t, rec)["client"])
}

func (s *testServer) createArticle(token, name string, price float64) uint {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/articles", token, gin.H{"name": name, "price": price, "status": models.ArticleActive})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return idOf(s.t, decode(s.t, rec)["article"])
}

func idOf(t *testing.T, v interface{}) uint {
	t.Helper()
	m, ok := v.(map[string]interface{})
	require.True(t, ok, "expected object, got %v", v)
	return uint(m["id"].(float64))
}

func errorsOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	fields, ok := decode(t, rec)["errors"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return fields
}
