package controllers

import (
	"net/http"

	"invoicing-backend/models"
	"invoicing-backend/services"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ClientInput defines the expected JSON structure for creating or updating a client
type ClientInput struct {
	Name      string `json:"name" binding:"required,max=255"`
	Number    string `json:"number" binding:"max=20"`
	VATNumber string `json:"vat_number" binding:"max=20"`
	AccPerson string `json:"acc_person" binding:"max=255"`
	Address   string `json:"address" binding:"max=255"`
}

type ClientController struct {
	db *gorm.DB
}

func NewClientController(db *gorm.DB) *ClientController {
	return &ClientController{db: db}
}

// List returns the caller's clients, optionally filtered by ?search=
func (ctl *ClientController) List(c *gin.Context) {
	user := utils.CurrentUser(c)
	q := services.NewListQuery(user.ID).
		Where(services.Search(c.Query("search"), "name", "number", "vat_number")).
		OrderBy("name")

	page, perPage := pageParams(c)
	result, err := services.Paginate[models.Client](ctl.db.WithContext(c.Request.Context()), q, page, perPage)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create creates a new client for the caller
func (ctl *ClientController) Create(c *gin.Context) {
	var input ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	client := models.Client{UserID: utils.CurrentUser(c).ID}
	input.apply(&client)
	if err := ctl.db.WithContext(c.Request.Context()).Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create client")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Client created successfully", "client": client})
}

func (ctl *ClientController) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var client models.Client
	if !findOwned(c, ctl.db, &client, id) {
		return
	}
	c.JSON(http.StatusOK, client)
}

// Update overwrites every client field
func (ctl *ClientController) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var client models.Client
	if !findOwned(c, ctl.db, &client, id) {
		return
	}

	var input ClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	input.apply(&client)
	if err := ctl.db.WithContext(c.Request.Context()).Save(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Client updated successfully", "client": client})
}

// Delete removes a client that has no sales and no invoices
func (ctl *ClientController) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var client models.Client
	if !findOwned(c, ctl.db, &client, id) {
		return
	}

	db := ctl.db.WithContext(c.Request.Context())
	var sales, invoices int64
	if err := db.Model(&models.Sale{}).Where("client_id = ?", client.ID).Count(&sales).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if err := db.Model(&models.Invoice{}).Where("client_id = ?", client.ID).Count(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if sales > 0 || invoices > 0 {
		utils.RespondWithError(c, http.StatusUnprocessableEntity, "Cannot delete client with related sales or invoices")
		return
	}

	if err := db.Delete(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

func (in ClientInput) apply(client *models.Client) {
	client.Name = in.Name
	client.Number = in.Number
	client.VATNumber = in.VATNumber
	client.AccPerson = in.AccPerson
	client.Address = in.Address
}
