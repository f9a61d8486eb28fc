package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CuraLab-Diagnostics/service-booking/pkg/domain"
)

// envelope is the uniform JSON body for all responses.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// paginatedEnvelope adds paging metadata to a list response.
type paginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 response carrying a page of items.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, paginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Error: message})
}

// Error maps a domain error onto the appropriate HTTP status code.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindInvalidState:
		status = http.StatusUnprocessableEntity
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindUnauthorized:
		status = http.StatusUnauthorized
	case domain.KindUnavailable:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, envelope{Success: false, Error: err.Error()})
}
