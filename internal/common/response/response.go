package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hotelstay/service-booking/internal/common/domain"
)

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorData  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorData describes a failed request.
type ErrorData struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Meta carries pagination details.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Success writes a 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Created writes a 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

// Paginated writes a 200 with items and pagination meta.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    items,
		Meta:    &Meta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	})
}

// Fail writes an error envelope with an explicit status and code.
func Fail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &ErrorData{Code: code, Message: message},
	})
}

// BadRequest writes a 400.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, string(domain.KindValidation), message)
}

// Unauthorized writes a 401.
func Unauthorized(c *gin.Context, message string) {
	Fail(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden writes a 403.
func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, string(domain.KindForbidden), message)
}

// Error maps err to a status code. Unknown errors never leak their text.
func Error(c *gin.Context, err error) {
	if de, ok := domain.AsDomainError(err); ok {
		c.AbortWithStatusJSON(de.HTTPStatus(), Response{
			Success: false,
			Error: &ErrorData{
				Code:      string(de.Kind),
				Message:   de.Message,
				Retryable: de.Retryable(),
			},
		})
		return
	}
	_ = c.Error(err)
	Fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
