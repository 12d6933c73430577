package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/buildstock/backend/internal/infrastructure/logger"
	"github.com/buildstock/backend/internal/infrastructure/telemetry"
	"github.com/buildstock/backend/internal/interfaces/http/dto"
	"github.com/buildstock/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	logger *zap.Logger
}

// newBaseHandler creates a BaseHandler that logs persistence failures to l
func newBaseHandler(l *zap.Logger) BaseHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return BaseHandler{logger: l}
}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// errorResponse builds the error envelope tagged with the request and trace ids
func errorResponse(c *gin.Context, code, message string) dto.Response {
	resp := dto.NewErrorResponseWithRequestID(code, message, getRequestID(c))
	resp.Error.TraceID = telemetry.GetTraceID(c.Request.Context())
	return resp
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, errorResponse(c, code, message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	resp := errorResponse(c, dto.ErrCodeBadRequest, message)
	resp.Error.Category = dto.CategoryValidation
	c.JSON(http.StatusBadRequest, resp)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	resp := dto.NewValidationErrorResponse("Request validation failed", getRequestID(c), details)
	resp.Error.TraceID = telemetry.GetTraceID(c.Request.Context())
	c.JSON(http.StatusBadRequest, resp)
}

// HandleBindError answers a request whose body or query could not be bound
func (h *BaseHandler) HandleBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]dto.ValidationDetail, len(verrs))
		for i, fe := range verrs {
			details[i] = dto.ValidationDetail{
				Field:   toSnakeCase(fe.Field()),
				Message: validationMessage(fe),
			}
		}
		h.ValidationError(c, details)
		return
	}
	resp := errorResponse(c, dto.ErrCodeInvalidJSON, "Invalid request body: "+err.Error())
	resp.Error.Category = dto.CategoryValidation
	c.JSON(http.StatusBadRequest, resp)
}

// HandleError maps any service error to the JSON error envelope.
// Persistence failures answer with an opaque message and are logged.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	category := shared.CategoryOf(err)

	var stockErr *inventory.InsufficientStockError
	if errors.As(err, &stockErr) {
		resp := errorResponse(c, dto.ErrCodeInsufficientStock, stockErr.Error())
		resp.Error.Category = string(category)
		resp.Error.Stock = &dto.StockShortfall{
			Requested: stockErr.Requested.String(),
			Available: stockErr.Available.String(),
			Shortfall: stockErr.Shortfall().String(),
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	if category != shared.CategoryPersistence {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			code := dto.NormalizeErrorCode(domainErr.Code)
			resp := errorResponse(c, code, domainErr.Message)
			resp.Error.Category = string(category)
			c.JSON(dto.GetHTTPStatus(code), resp)
			return
		}
	}

	_ = c.Error(err)
	logger.L(c.Request.Context(), h.logger).Error("Request failed",
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	resp := errorResponse(c, dto.ErrCodePersistence, "An unexpected error occurred")
	resp.Error.Category = dto.CategoryPersistence
	c.JSON(http.StatusInternalServerError, resp)
}

// parseID reads a UUID path parameter, answering 400 when malformed
func (h *BaseHandler) parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		h.BadRequest(c, "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}

// dateLayouts are accepted for dates in bodies and query strings
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// parseDate parses a calendar date or timestamp. Empty input yields nil.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// parseDateQuery reads an optional date query parameter, answering 400 when malformed
func (h *BaseHandler) parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	t, err := parseDate(c.Query(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": expected YYYY-MM-DD or RFC 3339")
		return nil, false
	}
	return t, true
}

// parseUUIDQuery reads an optional UUID query parameter
func (h *BaseHandler) parseUUIDQuery(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return nil, false
	}
	return &id, true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(prev >= 'A' && prev <= 'Z') {
				b.WriteByte('_')
			}
			prev = r
			r += 'a' - 'A'
		} else {
			prev = r
		}
		b.WriteRune(r)
	}
	return b.String()
}
