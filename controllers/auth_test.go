package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"invoicing-backend/models"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndFetchUser(t *testing.T) {
	s := newTestServer(t)

	token, userID := s.register("ivan@example.com")
	assert.NotEmpty(t, token)

	rec := s.do(http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	user := decode(t, rec)
	assert.EqualValues(t, userID, user["id"])
	assert.Equal(t, "ivan@example.com", user["email"])
	assert.NotContains(t, user, "password")
	company := user["company"].(map[string]interface{})
	assert.Equal(t, "Petrov Ltd", company["name"])
	assert.Equal(t, "Ivan Petrov", company["mol"])
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	body := registrationBody("bad")
	body["password_confirmation"] = "different1"
	body["company"] = gin.H{"name": "Only name"}

	fields := errorsOf(t, s.do(http.MethodPost, "/api/register", "", body))
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "company.eik")
	assert.Contains(t, fields, "company.address")

	t.Run("mol is required on registration", func(t *testing.T) {
		body := registrationBody("mol@example.com")
		delete(body["company"].(gin.H), "mol")

		fields := errorsOf(t, s.do(http.MethodPost, "/api/register", "", body))
		assert.Contains(t, fields, "company.mol")
	})

	t.Run("email taken", func(t *testing.T) {
		s.register("taken@example.com")
		fields := errorsOf(t, s.do(http.MethodPost, "/api/register", "", registrationBody("taken@example.com")))
		assert.Equal(t, []interface{}{"The email has already been taken."}, fields["email"])
	})
}

func TestRegisterCheckUserData(t *testing.T) {
	s := newTestServer(t)

	body := registrationBody("check@example.com")
	delete(body, "company")

	rec := s.do(http.MethodPost, "/api/register-check-user-data", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["success"])

	var users int64
	require.NoError(t, s.db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users, "nothing is persisted")

	body["first_name"] = ""
	fields := errorsOf(t, s.do(http.MethodPost, "/api/register-check-user-data", "", body))
	assert.Contains(t, fields, "first_name")
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register("login@example.com")

	rec := s.do(http.MethodPost, "/api/login", "", gin.H{"email": "login@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.NotNil(t, user["company"])

	wrongPassword := s.do(http.MethodPost, "/api/login", "", gin.H{"email": "login@example.com", "password": "nope-nope"})
	unknownEmail := s.do(http.MethodPost, "/api/login", "", gin.H{"email": "ghost@example.com", "password": "password123"})

	for _, rec := range []*httptest.ResponseRecorder{wrongPassword, unknownEmail} {
		fields := errorsOf(t, rec)
		assert.Equal(t, []interface{}{"The provided credentials are incorrect."}, fields["email"])
	}
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginWithoutCompany(t *testing.T) {
	s := newTestServer(t)

	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&models.User{FirstName: "No", LastName: "Company", Email: "solo@example.com", Password: hash}).Error)

	rec := s.do(http.MethodPost, "/api/login", "", gin.H{"email": "solo@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	user := decode(t, rec)["user"].(map[string]interface{})
	assert.Contains(t, user, "company")
	assert.Nil(t, user["company"])
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("logout@example.com")

	rec := s.do(http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully logged out", decode(t, rec)["message"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/user", token, nil).Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/user", "/api/clients", "/api/dashboard", "/api/invoices"} {
		rec := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/user", "garbage", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestProfile(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register("profile@example.com")
	s.register("other@example.com")

	t.Run("personal", func(t *testing.T) {
		fields := errorsOf(t, s.do(http.MethodPut, "/api/profile/personal", token, gin.H{
			"first_name": "Ivan", "last_name": "Ivanov", "email": "other@example.com",
		}))
		assert.Contains(t, fields, "email")

		rec := s.do(http.MethodPut, "/api/profile/personal", token, gin.H{
			"first_name": "Ivan", "last_name": "Ivanov", "email": "profile@example.com",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		user := decode(t, rec)["user"].(map[string]interface{})
		assert.Equal(t, "Ivanov", user["last_name"])
	})

	t.Run("company is updated in place", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/profile/company", token, gin.H{
			"name": "Renamed Ltd", "eik": "987654321", "address": "Plovdiv",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var companies []models.Company
		require.NoError(t, s.db.Where("name = ?", "Renamed Ltd").Find(&companies).Error)
		require.Len(t, companies, 1)

		var total int64
		require.NoError(t, s.db.Model(&models.Company{}).Count(&total).Error)
		assert.EqualValues(t, 2, total)
	})

	t.Run("password", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/api/profile/password", token, gin.H{
			"current_password": "wrong-password", "new_password": "newpassword1", "new_password_confirmation": "newpassword1",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Current password is incorrect", decode(t, rec)["message"])

		fields := errorsOf(t, s.do(http.MethodPut, "/api/profile/password", token, gin.H{
			"current_password": "password123", "new_password": "newpassword1", "new_password_confirmation": "mismatch11",
		}))
		assert.Contains(t, fields, "new_password")

		rec = s.do(http.MethodPut, "/api/profile/password", token, gin.H{
			"current_password": "password123", "new_password": "newpassword1", "new_password_confirmation": "newpassword1",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = s.do(http.MethodPost, "/api/login", "", gin.H{"email": "profile@example.com", "password": "newpassword1"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestProfileCompanyCreatedWhenMissing(t *testing.T) {
	s := newTestServer(t)

	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := models.User{FirstName: "No", LastName: "Company", Email: "nocompany@example.com", Password: hash}
	require.NoError(t, s.db.Create(&user).Error)

	rec := s.do(http.MethodPost, "/api/login", "", gin.H{"email": user.Email, "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode(t, rec)["token"].(string)

	rec = s.do(http.MethodPut, "/api/profile/company", token, gin.H{"name": "Fresh Ltd", "eik": "111", "address": "Varna"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	company := decode(t, rec)["company"].(map[string]interface{})
	assert.EqualValues(t, user.ID, company["user_id"])

	rec = s.do(http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode(t, rec)["company"])
}
