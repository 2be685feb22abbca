package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestFormatValidationErrors(t *testing.T) {
	type receiveInput struct {
		LPN      string  `json:"lpn" binding:"required"`
		Quantity float64 `json:"quantity" binding:"required,gt=0"`
	}

	SetupValidator()

	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req receiveInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(nil))
	})

	t.Run("reports a detail per failing field using json names", func(t *testing.T) {
		body := strings.NewReader(`{"lpn": "", "quantity": -1}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		require.NoError(t, err)

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)

		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.Contains(t, fields, "lpn")
		assert.Contains(t, fields, "quantity")
	})

	t.Run("passes valid input through", func(t *testing.T) {
		body := strings.NewReader(`{"lpn": "LPN-0001", "quantity": 5}`)
		req := httptest.NewRequest("POST", "/test", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestValidationMessage(t *testing.T) {
	type input struct {
		Required string `validate:"required"`
		Min      string `validate:"min=5"`
		Max      string `validate:"max=3"`
		UUID     string `validate:"required,uuid"`
		OneOf    string `validate:"oneof=FEFO LIFO BEST_FIT"`
		GTE      int    `validate:"gte=10"`
		GT       int    `validate:"gt=0"`
	}

	v := validator.New()
	err := v.Struct(input{Min: "ab", Max: "abcd", UUID: "nope", OneOf: "RANDOM", GTE: 1, GT: -1})
	require.Error(t, err)

	expected := map[string]string{
		"Required": "This field is required",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 3 characters",
		"UUID":     "Must be a valid UUID",
		"OneOf":    "Must be one of: FEFO LIFO BEST_FIT",
		"GTE":      "Must be greater than or equal to 10",
		"GT":       "Must be greater than 0",
	}

	for _, e := range err.(validator.ValidationErrors) {
		want, ok := expected[e.Field()]
		require.True(t, ok, "unexpected field %s", e.Field())
		assert.Equal(t, want, validationMessage(e))
	}
}

func TestHandleValidationError(t *testing.T) {
	t.Run("carries the request ID into the response", func(t *testing.T) {
		type input struct {
			Name string `json:"name" binding:"required"`
		}

		router := gin.New()
		router.POST("/test", func(c *gin.Context) {
			c.Set(RequestIDKey, "req-123")
			var in input
			if err := c.ShouldBindJSON(&in); err != nil {
				HandleValidationError(c, err)
				return
			}
		})

		req := httptest.NewRequest("POST", "/test", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
		assert.Contains(t, w.Body.String(), "req-123")
	})
}
