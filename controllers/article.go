package controllers

import (
	"net/http"

	"invoicing-backend/models"
	"invoicing-backend/services"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ArticleInput struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Price       *float64 `json:"price" binding:"required,min=0"`
	Status      string   `json:"status" binding:"required,oneof=active inactive"`
	Description string   `json:"description"`
}

type ArticleController struct {
	db *gorm.DB
}

func NewArticleController(db *gorm.DB) *ArticleController {
	return &ArticleController{db: db}
}

func (ctl *ArticleController) List(c *gin.Context) {
	user := utils.CurrentUser(c)
	q := services.NewListQuery(user.ID).
		Where(
			services.Search(c.Query("search"), "name"),
			services.StatusIs(c.Query("status")),
		).
		OrderBy("name")

	page, perPage := pageParams(c)
	result, err := services.Paginate[models.Article](ctl.db.WithContext(c.Request.Context()), q, page, perPage)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve articles")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ctl *ArticleController) Create(c *gin.Context) {
	var input ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	article := models.Article{UserID: utils.CurrentUser(c).ID}
	input.apply(&article)
	if err := ctl.db.WithContext(c.Request.Context()).Create(&article).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create article")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Article created successfully", "article": article})
}

func (ctl *ArticleController) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var article models.Article
	if !findOwned(c, ctl.db, &article, id) {
		return
	}
	c.JSON(http.StatusOK, article)
}

func (ctl *ArticleController) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var article models.Article
	if !findOwned(c, ctl.db, &article, id) {
		return
	}

	var input ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithBindError(c, err)
		return
	}

	input.apply(&article)
	if err := ctl.db.WithContext(c.Request.Context()).Save(&article).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update article")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Article updated successfully", "article": article})
}

// Delete removes an article no sale item refers to
func (ctl *ArticleController) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var article models.Article
	if !findOwned(c, ctl.db, &article, id) {
		return
	}

	db := ctl.db.WithContext(c.Request.Context())
	var items int64
	if err := db.Model(&models.SaleItem{}).Where("article_id = ?", article.ID).Count(&items).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if items > 0 {
		utils.RespondWithError(c, http.StatusUnprocessableEntity, "Cannot delete article with related sales")
		return
	}

	if err := db.Delete(&article).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete article")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article deleted successfully"})
}

func (in ArticleInput) apply(article *models.Article) {
	article.Name = in.Name
	article.Price = money(in.Price)
	article.Status = in.Status
	article.Description = in.Description
}
