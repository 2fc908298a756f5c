package controllers

import (
	"net/http"
	"strings"

	"invoicing-backend/models"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PersonalInput struct {
	FirstName string `json:"first_name" binding:"required,max=255"`
	LastName  string `json:"last_name" binding:"required,max=255"`
	Email     string `json:"email" binding:"required,email"`
}

// CompanyInput is shared by registration and the company profile;
// registration additionally requires mol.
type CompanyInput struct {
	Name        string `json:"name" binding:"required,max=255"`
	EIK         string `json:"eik" binding:"required,max=20"`
	VATNumber   string `json:"vat_number" binding:"max=20"`
	Address     string `json:"address" binding:"required,max=255"`
	Phone       string `json:"phone" binding:"max=20"`
	Email       string `json:"email" binding:"omitempty,email,max=255"`
	BankName    string `json:"bank_name" binding:"max=255"`
	BankAccount string `json:"bank_account" binding:"max=50"`
	MOL         string `json:"mol" binding:"max=255"`
}

func (in CompanyInput) apply(company *models.Company) {
	company.Name = in.Name
	company.EIK = in.EIK
	company.VATNumber = in.VATNumber
	company.Address = in.Address
	company.Phone = in.Phone
	company.Email = in.Email
	company.BankName = in.BankName
	company.BankAccount = in.BankAccount
	company.MOL = in.MOL
}

type PasswordInput struct {
	CurrentPassword         string `json:"current_password" binding:"required"`
	NewPassword             string `json:"new_password" binding:"required,min=8,eqfield=NewPasswordConfirmation"`
	NewPasswordConfirmation string `json:"new_password_confirmation"`
}

type ProfileController struct {
	db *gorm.DB
}

func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db}
}

func (pc *ProfileController) UpdatePersonal(c *gin.Context) {
	user := utils.CurrentUser(c)

	var input PersonalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if !emailAvailable(c, pc.db, input.Email, user.ID) {
		return
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Email = strings.ToLower(input.Email)
	err := pc.db.WithContext(c.Request.Context()).Model(user).Updates(map[string]interface{}{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
	}).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Personal information updated successfully", "user": user})
}

// UpdateCompany creates the company on first use, later updates it in place
func (pc *ProfileController) UpdateCompany(c *gin.Context) {
	user := utils.CurrentUser(c)

	var input CompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	db := pc.db.WithContext(c.Request.Context())
	var company models.Company
	err := db.Where(models.Company{UserID: user.ID}).FirstOrInit(&company).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	input.apply(&company)
	if err := db.Save(&company).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update company")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company information updated successfully", "company": company})
}

func (pc *ProfileController) ChangePassword(c *gin.Context) {
	user := utils.CurrentUser(c)

	var input PasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		utils.RespondWithError(c, http.StatusUnprocessableEntity, "Current password is incorrect")
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to change password")
		return
	}
	if err := pc.db.WithContext(c.Request.Context()).Model(user).Update("password", hash).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
