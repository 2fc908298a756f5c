package controllers

import (
	"net/http"

	"invoicing-backend/services"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
)

type SaleItemInput struct {
	ID        *uint    `json:"id"`
	ArticleID uint     `json:"article_id" binding:"required"`
	Quantity  int      `json:"quantity" binding:"required,min=1"`
	Price     *float64 `json:"price" binding:"required,min=0"`
	Total     *float64 `json:"total" binding:"required,min=0"`
}

type SaleInput struct {
	ClientID uint            `json:"client_id" binding:"required"`
	Date     string          `json:"date" binding:"required,datetime=2006-01-02"`
	Subtotal *float64        `json:"subtotal" binding:"required,min=0"`
	Discount *float64        `json:"discount" binding:"required,min=0"`
	Total    *float64        `json:"total" binding:"required,min=0"`
	Notes    string          `json:"notes"`
	Items    []SaleItemInput `json:"items" binding:"required,min=1,dive"`
}

func (in SaleInput) toService() services.SaleInput {
	date, _ := utils.ParseDate(in.Date)
	out := services.SaleInput{
		ClientID: in.ClientID,
		Date:     date,
		Subtotal: money(in.Subtotal),
		Discount: money(in.Discount),
		Total:    money(in.Total),
		Notes:    in.Notes,
		Items:    make([]services.SaleItemInput, len(in.Items)),
	}
	for i, item := range in.Items {
		out.Items[i] = services.SaleItemInput{
			ID:        item.ID,
			ArticleID: item.ArticleID,
			Quantity:  item.Quantity,
			Price:     money(item.Price),
			Total:     money(item.Total),
		}
	}
	return out
}

// SaleController is only routed when the sales API is enabled
type SaleController struct {
	sales *services.SaleService
}

func NewSaleController(sales *services.SaleService) *SaleController {
	return &SaleController{sales: sales}
}

func (ctl *SaleController) List(c *gin.Context) {
	user := utils.CurrentUser(c)
	q := services.NewListQuery(user.ID).Where(
		services.Search(c.Query("search"), "sale_number"),
		services.ClientIs(queryID(c, "client")),
	)

	page, perPage := pageParams(c)
	result, err := ctl.sales.List(c.Request.Context(), q, page, perPage)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve sales")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ctl *SaleController) Create(c *gin.Context) {
	var input SaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	sale, err := ctl.sales.Create(c.Request.Context(), utils.CurrentUser(c).ID, input.toService())
	if err != nil {
		respondServiceError(c, err, "create")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Sale created successfully", "sale": sale})
}

func (ctl *SaleController) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sale, err := ctl.sales.Get(c.Request.Context(), utils.CurrentUser(c).ID, id)
	if err != nil {
		respondServiceError(c, err, "load")
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (ctl *SaleController) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input SaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	sale, err := ctl.sales.Update(c.Request.Context(), utils.CurrentUser(c).ID, id, input.toService())
	if err != nil {
		respondServiceError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale updated successfully", "sale": sale})
}

func (ctl *SaleController) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := ctl.sales.Delete(c.Request.Context(), utils.CurrentUser(c).ID, id); err != nil {
		respondServiceError(c, err, "delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted successfully"})
}
