package models

import (
	"net/http"
	"time"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/gin-gonic/gin"
)

// ResponseKind is the outcome class carried in every envelope.
type ResponseKind string

const (
	KindSuccess         ResponseKind = "SUCCESS"
	KindFailure         ResponseKind = "FAILURE"
	KindValidationError ResponseKind = "VALIDATION_ERROR"
	KindBadRequest      ResponseKind = "BAD_REQUEST"
	KindNotFound        ResponseKind = "RECORD_NOT_FOUND"
	KindInternalError   ResponseKind = "SERVER_ERROR"
)

// StatusCode is the HTTP status sent with the kind.
func (k ResponseKind) StatusCode() int {
	switch k {
	case KindSuccess:
		return http.StatusOK
	case KindFailure, KindBadRequest:
		return http.StatusBadRequest
	case KindValidationError:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// DefaultMessage is used when a handler has nothing more specific to say.
func (k ResponseKind) DefaultMessage() string {
	switch k {
	case KindSuccess:
		return "Your request is successfully executed"
	case KindFailure:
		return "Some error occurred while performing action."
	case KindValidationError:
		return "Invalid Data, Validation Failed."
	case KindBadRequest:
		return "Request parameters are invalid or missing."
	case KindNotFound:
		return "Record not found with specified criteria."
	default:
		return "Internal server error."
	}
}

type ApiResponse struct {
	Status          ResponseKind `json:"status,omitempty"`
	Message         string       `json:"message"`
	Data            any          `json:"data,omitempty"`
	Error           bool         `json:"error,omitempty"`
	Meta            *Pagination  `json:"meta"`
	Rate            *RateLimiter `json:"rate_limit,omitempty"`
	RequestedEntity string       `json:"requested_entity,omitempty"`
}

type Pagination struct {
	Page        int  `json:"page" example:"1"`
	Limit       int  `json:"limit" example:"10"`
	Total       int  `json:"total" example:"42"`
	TotalPages  int  `json:"total_pages" example:"5"`
	HasPrevPage bool `json:"has_prev_page"`
	HasNextPage bool `json:"has_next_page"`
}

type RateLimiter struct {
	Limit          int       `json:"limit"`
	Remaining      int       `json:"remaining"`
	ResetAt        time.Time `json:"reset_at"`
	ResetInSeconds int       `json:"reset_in_seconds"`
}

// helper to fetch rate limiter info from Gin context
func getRateFromContext(c *gin.Context) *RateLimiter {
	if c == nil {
		return nil
	}
	if rate, exists := c.Get("rateLimiter"); exists {
		if rl, ok := rate.(*RateLimiter); ok {
			return rl
		}
	}
	return nil
}

func requestedEntity(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	return c.Request.Method + " " + c.FullPath()
}

func SuccessResponse(c *gin.Context, message string, data any) ApiResponse {
	return ApiResponse{
		Status:          KindSuccess,
		Message:         message,
		Data:            data,
		Rate:            getRateFromContext(c),
		RequestedEntity: requestedEntity(c),
	}
}

func PaginatedResponse(c *gin.Context, message string, data any, meta *Pagination) ApiResponse {
	return ApiResponse{
		Status:          KindSuccess,
		Message:         message,
		Data:            data,
		Meta:            meta,
		Rate:            getRateFromContext(c),
		RequestedEntity: requestedEntity(c),
	}
}

func ErrorResponse(c *gin.Context, message string) ApiResponse {
	return ApiResponse{
		Status:          KindFailure,
		Message:         message,
		Error:           true,
		Rate:            getRateFromContext(c),
		RequestedEntity: requestedEntity(c),
	}
}

// Respond writes an envelope of the given kind. An empty message falls back
// to the kind's default.
func Respond(c *gin.Context, kind ResponseKind, message string, data any) {
	respond(c, kind.StatusCode(), kind, message, data)
}

func respond(c *gin.Context, status int, kind ResponseKind, message string, data any) {
	if message == "" {
		message = kind.DefaultMessage()
	}
	c.JSON(status, ApiResponse{
		Status:          kind,
		Message:         message,
		Data:            data,
		Error:           kind != KindSuccess,
		Rate:            getRateFromContext(c),
		RequestedEntity: requestedEntity(c),
	})
}

// RespondPage writes a successful paginated envelope.
func RespondPage(c *gin.Context, data any, meta *Pagination) {
	c.JSON(http.StatusOK, PaginatedResponse(c, KindSuccess.DefaultMessage(), data, meta))
}

// KindFromErr classifies a service error.
func KindFromErr(err error) ResponseKind {
	switch {
	case ierr.IsValidation(err):
		return KindValidationError
	case ierr.IsBadRequest(err):
		return KindBadRequest
	case ierr.IsNotFound(err):
		return KindNotFound
	case ierr.IsPermissionDenied(err):
		return KindFailure
	default:
		return KindInternalError
	}
}

// RespondError translates a service error into exactly one envelope kind,
// sent with the status the error is marked with. Internal errors carry the
// underlying message unchanged.
func RespondError(c *gin.Context, err error) {
	kind := KindFromErr(err)
	message := err.Error()
	if kind == KindNotFound {
		message = kind.DefaultMessage()
	}
	respond(c, ierr.HTTPStatusFromErr(err), kind, message, nil)
}
