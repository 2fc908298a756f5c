package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"invoicing-backend/services"
	"invoicing-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const notFoundMessage = "Record not found."

// parseID reads the :id path parameter; anything non-numeric is a 404
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.RespondWithError(c, http.StatusNotFound, notFoundMessage)
		return 0, false
	}
	return uint(id), true
}

// pageParams reads ?page= and ?per_page=
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	perPage, _ := strconv.Atoi(c.Query("per_page"))
	return services.NormalizePage(page, perPage)
}

// queryID reads an optional numeric filter such as ?client=
func queryID(c *gin.Context, key string) uint {
	id, _ := strconv.ParseUint(c.Query(key), 10, 64)
	return uint(id)
}

// findOwned loads the caller's record with the given id into dest
func findOwned(c *gin.Context, db *gorm.DB, dest interface{}, id uint) bool {
	user := utils.CurrentUser(c)
	err := db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, user.ID).
		First(dest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, notFoundMessage)
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return false
	}
	return true
}

// owns reports whether a row of model with id belongs to userID
func owns(db *gorm.DB, model interface{}, id, userID uint) (bool, error) {
	var count int64
	err := db.Model(model).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error
	return count > 0, err
}

func money(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v).Round(2)
}

// respondServiceError maps domain errors from the services package.
// op names the failed sale operation for 500 responses.
func respondServiceError(c *gin.Context, err error, op string) {
	var conflict *services.ConflictError
	var invalid *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, notFoundMessage)
	case errors.As(err, &conflict):
		utils.RespondWithError(c, http.StatusUnprocessableEntity, conflict.Message)
	case errors.As(err, &invalid):
		utils.RespondWithValidation(c, invalid.Fields)
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to " + op + " sale",
			"error":   err.Error(),
		})
	}
}
