package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type returnLine struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type returnBody struct {
	SaleID string       `json:"sale_id" binding:"required"`
	Reason string       `json:"reason" binding:"max=10"`
	Items  []returnLine `json:"items" binding:"required,min=1,dive"`
	Method string       `json:"payment_method" binding:"omitempty,oneof=cash card"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req returnBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(router *gin.Engine, body string) (*httptest.ResponseRecorder, dto.Response) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHandleValidationError_FieldDetails(t *testing.T) {
	w, resp := postJSON(validationRouter(), `{"sale_id":"x","reason":"far too long a reason","items":[{"product_id":"p","quantity":0}],"payment_method":"cheque"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, w.Header().Get(RequestIDHeader), resp.Error.RequestID)

	messages := map[string]string{}
	for _, f := range resp.Error.Fields {
		messages[f.Field] = f.Message
	}
	assert.Equal(t, "Must be at most 10 characters", messages["reason"])
	assert.Equal(t, "This field is required", messages["items[0].quantity"])
	assert.Equal(t, "Must be one of: cash card", messages["payment_method"])
}

func TestHandleValidationError_EmptyItems(t *testing.T) {
	_, resp := postJSON(validationRouter(), `{"sale_id":"x","items":[]}`)

	require.NotNil(t, resp.Error)
	require.Len(t, resp.Error.Fields, 1)
	assert.Equal(t, "items", resp.Error.Fields[0].Field)
	assert.Equal(t, "Must contain at least 1 items", resp.Error.Fields[0].Message)
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	w, resp := postJSON(validationRouter(), `{"sale_id":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Invalid request body", resp.Error.Message)
	assert.Empty(t, resp.Error.Fields)
}

func TestHandleValidationError_Valid(t *testing.T) {
	w, _ := postJSON(validationRouter(), `{"sale_id":"x","items":[{"product_id":"p","quantity":2}]}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
