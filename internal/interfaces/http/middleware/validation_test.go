package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller/backend/internal/interfaces/http/dto"
)

type adjustPayload struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  string `json:"quantity" binding:"required"`
	Reason    string `json:"reason" binding:"required,oneof=MANUAL_ADJUSTMENT BULK_ADJUSTMENT"`
}

func TestHandleValidationError_ReportsJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := bytes.NewBufferString(`{"product_id":"not-a-uuid","reason":"OTHER"}`)
	c.Request = httptest.NewRequest(http.MethodPost, "/stock/adjustments", body)
	c.Request.Header.Set("Content-Type", "application/json")

	var req adjustPayload
	err := c.ShouldBindJSON(&req)
	require.Error(t, err)

	HandleValidationError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	fields := make(map[string]string)
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Contains(t, fields, "product_id")
	assert.Equal(t, "This field is required", fields["quantity"])
	assert.Contains(t, fields["reason"], "Must be one of:")
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(errors.New("unexpected EOF"))

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
}
