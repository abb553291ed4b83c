package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ncnwin/backoffice-api/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", services.ErrNotFound), http.StatusNotFound},
		{"validation", services.ErrValidation, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("%w: 金額は0より大きい必要があります", services.ErrValidation), http.StatusBadRequest},
		{"invalid credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive account", services.ErrInactiveAccount, http.StatusUnauthorized},
		{"unauthorized", services.ErrUnauthorized, http.StatusForbidden},
		{"invalid state", services.ErrInvalidState, http.StatusConflict},
		{"referenced", services.ErrReferenced, http.StatusConflict},
		{"system entry", services.ErrSystemEntry, http.StatusConflict},
		{"insufficient stock", services.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestListQueryFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET",
		"/?page=3&per_page=50&search_term=焼肉&sort_by=name&sort_dir=desc&status=issued&ignored=x", nil)

	query := listQueryFromContext(c, "status")

	assert.Equal(t, 3, query.Page)
	assert.Equal(t, 50, query.PerPage)
	assert.Equal(t, "焼肉", query.Search)
	assert.Equal(t, "name", query.SortBy)
	assert.Equal(t, "desc", query.SortDir)
	assert.Equal(t, "issued", query.Filters["status"])
	assert.NotContains(t, query.Filters, "ignored")
}

func TestListQueryFromContext_Defaults(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	query := listQueryFromContext(c)

	assert.Equal(t, 1, query.Page)
	assert.Equal(t, 20, query.PerPage)
	assert.Empty(t, query.Filters)
}

func TestPaginationResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?page=2&per_page=10", nil)

	query := listQueryFromContext(c)
	pagination := paginationResponse(query, 25)

	assert.Equal(t, 2, pagination["page"])
	assert.Equal(t, int64(25), pagination["total"])
	assert.Equal(t, int64(3), pagination["total_pages"])
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	assert.Equal(t, uint(42), paramID(c, "id"))

	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	assert.Equal(t, uint(0), paramID(c, "id"))
}
