package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RespondWithError writes {"message": ...} with the given status
func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// RespondWithValidation writes a 422 with per-field messages
func RespondWithValidation(c *gin.Context, fields FieldErrors) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"message": fields.First(),
		"errors":  fields,
	})
}

// RespondWithBindError answers a failed ShouldBind* call
func RespondWithBindError(c *gin.Context, err error) {
	if fields, ok := BindingErrors(err); ok {
		RespondWithValidation(c, fields)
		return
	}
	RespondWithError(c, http.StatusUnprocessableEntity, "Invalid input: "+err.Error())
}
