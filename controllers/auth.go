package controllers

import (
	"errors"
	"net/http"
	"strings"

	"invoicing-backend/models"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invalidCredentials = "The provided credentials are incorrect."

// RegisterUserInput holds the personal part of a registration
type RegisterUserInput struct {
	FirstName            string `json:"first_name" binding:"required,max=255"`
	LastName             string `json:"last_name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,min=8"`
}

type RegisterInput struct {
	FirstName            string       `json:"first_name" binding:"required,max=255"`
	LastName             string       `json:"last_name" binding:"required,max=255"`
	Email                string       `json:"email" binding:"required,email,max=255"`
	Password             string       `json:"password" binding:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string       `json:"password_confirmation" binding:"required,min=8"`
	Company              CompanyInput `json:"company"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	db     *gorm.DB
	tokens *utils.TokenManager
	logger *zap.Logger
}

func NewAuthController(db *gorm.DB, tokens *utils.TokenManager, logger *zap.Logger) *AuthController {
	return &AuthController{db: db, tokens: tokens, logger: logger}
}

// CheckUserData validates the personal fields before the company step
func (ac *AuthController) CheckUserData(c *gin.Context) {
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if !emailAvailable(c, ac.db, input.Email, 0) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Validation successful"})
}

// Register creates the user and its company in one transaction
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if strings.TrimSpace(input.Company.MOL) == "" {
		fields := utils.FieldErrors{}
		fields.Add("company.mol", "The mol field is required.")
		utils.RespondWithValidation(c, fields)
		return
	}
	if !emailAvailable(c, ac.db, input.Email, 0) {
		return
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := models.User{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     strings.ToLower(input.Email),
		Password:  hash,
	}
	err = ac.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Company").Create(&user).Error; err != nil {
			return err
		}
		company := models.Company{UserID: user.ID}
		input.Company.apply(&company)
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		user.Company = &company
		return nil
	})
	if err != nil {
		ac.logger.Error("registration failed", zap.String("email", user.Email), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := ac.tokens.GenerateToken(user.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login answers the same way for an unknown email and a wrong password
func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	var user models.User
	err := ac.db.WithContext(c.Request.Context()).
		Preload("Company").
		Where("email = ?", strings.ToLower(strings.TrimSpace(input.Email))).
		First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if err != nil || !utils.CheckPasswordHash(input.Password, user.Password) {
		fields := utils.FieldErrors{}
		fields.Add("email", invalidCredentials)
		utils.RespondWithValidation(c, fields)
		return
	}

	token, err := ac.tokens.GenerateToken(user.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Logout revokes the token used for this request
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.tokens.Revoke(c.Request.Context(), utils.CurrentClaims(c)); err != nil {
		ac.logger.Error("failed to revoke token", zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to log out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// Me returns the current user with its company, null when none exists
func (ac *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, utils.CurrentUser(c))
}

// emailAvailable answers 422 when a user already registered with email.
// ignoreID excludes the caller's own row on profile updates.
func emailAvailable(c *gin.Context, db *gorm.DB, email string, ignoreID uint) bool {
	var count int64
	q := db.WithContext(c.Request.Context()).Model(&models.User{}).Where("email = ?", strings.ToLower(email))
	if ignoreID != 0 {
		q = q.Where("id <> ?", ignoreID)
	}
	if err := q.Count(&count).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return false
	}
	if count > 0 {
		fields := utils.FieldErrors{}
		fields.Add("email", "The email has already been taken.")
		utils.RespondWithValidation(c, fields)
		return false
	}
	return true
}
