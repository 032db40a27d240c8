package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "juntos/internal/errors"
	"juntos/internal/logger"
	"juntos/internal/middleware"
	"juntos/internal/uuid"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}

// parsePathID reads a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parsePathInt reads an integer path parameter.
func parsePathInt(c *gin.Context, param string) (int, error) {
	n, err := strconv.Atoi(c.Param(param))
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return n, nil
}

const dateOnly = "2006-01-02"

// parseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(dateOnly, value)
}

// parseOptionalDate parses value when non-empty; field names the input in
// error messages.
func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, apperrors.WithMessagef(apperrors.ErrInvalidInput, "invalid %s format", field)
	}
	return &t, nil
}

// parseOptionalEndDate is parseOptionalDate for inclusive range ends: a plain
// date covers the whole day.
func parseOptionalEndDate(value, field string) (*time.Time, error) {
	t, err := parseOptionalDate(value, field)
	if err != nil || t == nil {
		return t, err
	}
	if _, dateErr := time.Parse(dateOnly, value); dateErr == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		return &end, nil
	}
	return t, nil
}

// nullableID is an optional reference in a PATCH-style body. It tells an
// absent key apart from an explicit null, which clears the link.
type nullableID struct {
	Set   bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *nullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = ""
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// patch converts the field to the service convention: nil leaves the link
// unchanged and a pointer to "" clears it.
func (n nullableID) patch(field string) (*string, error) {
	if !n.Set {
		return nil, nil
	}
	if n.Value != "" && !uuid.IsValid(n.Value) {
		return nil, apperrors.WithMessagef(apperrors.ErrInvalidInput, "invalid %s", field)
	}
	v := n.Value
	return &v, nil
}

// bindError converts a binding failure into an INVALID_INPUT error.
func bindError(err error) error {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// respondWithSuccess writes the success envelope. message may be empty.
func respondWithSuccess(c *gin.Context, status int, data interface{}, message string) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, middleware.ErrorBody(appErr))
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, middleware.ErrorBody(apperrors.ErrInternalServer))
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Account not found"`
	Code    string `json:"code" example:"ACCOUNT_NOT_FOUND"`
}

// SuccessResponse is the success envelope.
type SuccessResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}
