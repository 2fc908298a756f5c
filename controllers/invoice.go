package controllers

import (
	"net/http"
	"time"

	"invoicing-backend/models"
	"invoicing-backend/services"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InvoiceInput defines the expected JSON structure for creating or updating an invoice
type InvoiceInput struct {
	ClientID uint     `json:"client_id" binding:"required"`
	SaleID   *uint    `json:"sale_id"`
	Date     string   `json:"date" binding:"required,datetime=2006-01-02"`
	DueDate  string   `json:"due_date" binding:"required,datetime=2006-01-02"`
	Amount   *float64 `json:"amount" binding:"required,min=0"`
	Status   string   `json:"status" binding:"required,oneof=paid pending overdue"`
	Notes    string   `json:"notes"`
}

type InvoiceController struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewInvoiceController(db *gorm.DB, logger *zap.Logger) *InvoiceController {
	return &InvoiceController{db: db, logger: logger, now: time.Now}
}

// List supports ?search= on the invoice number, ?status= and ?client=
func (ctl *InvoiceController) List(c *gin.Context) {
	user := utils.CurrentUser(c)
	q := services.NewListQuery(user.ID).
		Where(
			services.Search(c.Query("search"), "invoice_number"),
			services.StatusIs(c.Query("status")),
			services.ClientIs(queryID(c, "client")),
		).
		OrderBy("date DESC, id DESC")

	page, perPage := pageParams(c)
	result, err := services.Paginate[models.Invoice](ctl.db.WithContext(c.Request.Context()), q, page, perPage, "Client")
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Create numbers and stores a new invoice
func (ctl *InvoiceController) Create(c *gin.Context) {
	user := utils.CurrentUser(c)
	invoice := models.Invoice{UserID: user.ID}
	if !ctl.bind(c, &invoice) {
		return
	}

	tx := ctl.db.WithContext(c.Request.Context()).Begin()
	if tx.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	number, err := services.NextInvoiceNumber(tx, ctl.now())
	if err != nil {
		tx.Rollback()
		ctl.logger.Error("failed to number invoice", zap.Uint("user_id", user.ID), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}
	invoice.InvoiceNumber = number

	if err := tx.Omit("Client", "Sale").Create(&invoice).Error; err != nil {
		tx.Rollback()
		ctl.logger.Error("failed to create invoice", zap.String("invoice_number", number), zap.Error(err))
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create invoice")
		return
	}

	ctl.respondWithInvoice(c, http.StatusCreated, "Invoice created successfully", invoice.ID)
}

func (ctl *InvoiceController) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	invoice, ok := ctl.load(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (ctl *InvoiceController) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var invoice models.Invoice
	if !findOwned(c, ctl.db, &invoice, id) {
		return
	}
	if !ctl.bind(c, &invoice) {
		return
	}

	err := ctl.db.WithContext(c.Request.Context()).Model(&invoice).Updates(map[string]interface{}{
		"client_id": invoice.ClientID,
		"sale_id":   invoice.SaleID,
		"date":      invoice.Date,
		"due_date":  invoice.DueDate,
		"amount":    invoice.Amount,
		"status":    invoice.Status,
		"notes":     invoice.Notes,
	}).Error
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	ctl.respondWithInvoice(c, http.StatusOK, "Invoice updated successfully", invoice.ID)
}

func (ctl *InvoiceController) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var invoice models.Invoice
	if !findOwned(c, ctl.db, &invoice, id) {
		return
	}

	if err := ctl.db.WithContext(c.Request.Context()).Delete(&invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

// bind validates the request body and copies it onto invoice
func (ctl *InvoiceController) bind(c *gin.Context, invoice *models.Invoice) bool {
	var input InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return false
	}

	// both dates already passed the datetime rule
	date, _ := utils.ParseDate(input.Date)
	dueDate, _ := utils.ParseDate(input.DueDate)

	fields := utils.FieldErrors{}
	if dueDate.Before(date) {
		fields.Add("due_date", "The due date field must be a date after or equal to date.")
	}

	db := ctl.db.WithContext(c.Request.Context())
	ok, err := owns(db, &models.Client{}, input.ClientID, invoice.UserID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return false
	}
	if !ok {
		fields.Add("client_id", "The selected client id is invalid.")
	}
	if input.SaleID != nil {
		ok, err := owns(db, &models.Sale{}, *input.SaleID, invoice.UserID)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return false
		}
		if !ok {
			fields.Add("sale_id", "The selected sale id is invalid.")
		}
	}
	if len(fields) > 0 {
		utils.RespondWithValidation(c, fields)
		return false
	}

	invoice.ClientID = input.ClientID
	invoice.SaleID = input.SaleID
	invoice.Date = date
	invoice.DueDate = dueDate
	invoice.Amount = money(input.Amount)
	invoice.Status = input.Status
	invoice.Notes = input.Notes
	return true
}

func (ctl *InvoiceController) load(c *gin.Context, id uint) (*models.Invoice, bool) {
	var invoice models.Invoice
	ok := findOwned(c, ctl.db.Preload("Client").Preload("Sale.Items.Article"), &invoice, id)
	return &invoice, ok
}

func (ctl *InvoiceController) respondWithInvoice(c *gin.Context, status int, message string, id uint) {
	invoice, ok := ctl.load(c, id)
	if !ok {
		return
	}
	c.JSON(status, gin.H{"message": message, "invoice": invoice})
}
