package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

type mockedAPI struct {
	router   *gin.Engine
	auth     *mocks.MockAuthService
	recipes  *mocks.MockRecipeService
	shopping *mocks.MockShoppingListService
	logs     *observer.ObservedLogs
	userID   uuid.UUID
}

func setupMockedAPI(t *testing.T) *mockedAPI {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	m := &mockedAPI{
		auth:     new(mocks.MockAuthService),
		recipes:  new(mocks.MockRecipeService),
		shopping: new(mocks.MockShoppingListService),
		logs:     logs,
		userID:   uuid.New(),
	}
	m.auth.AcceptToken("good-token", m.userID, "alice")
	m.auth.On("ValidateToken", mock.Anything).Return(nil, service.ErrInvalidToken)

	handler := NewHandler(Services{
		Auth:         m.auth,
		Recipes:      m.recipes,
		ShoppingList: m.shopping,
	}, RateLimiters{}, nil, nil, zap.New(core))
	m.router = gin.New()
	handler.RegisterRoutes(m.router)

	t.Cleanup(func() {
		m.recipes.AssertExpectations(t)
		m.shopping.AssertExpectations(t)
	})
	return m
}

func (m *mockedAPI) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	m.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDomainErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", service.ErrRecipeNotFound, http.StatusNotFound, "recipe_not_found"},
		{"not author", service.ErrNotRecipeAuthor, http.StatusForbidden, "not_recipe_author"},
		{"wrapped", errors.Join(errors.New("tx"), service.ErrRecipeNotFound), http.StatusNotFound, "recipe_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupMockedAPI(t)
			recipeID := uuid.New()
			m.recipes.On("Delete", mock.Anything, m.userID, recipeID).Return(tt.err).Once()

			w := m.do(http.MethodDelete, "/api/v1/recipes/"+recipeID.String())

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
			assert.Zero(t, m.logs.Len())
		})
	}
}

func TestUnexpectedErrorIsHidden(t *testing.T) {
	m := setupMockedAPI(t)
	m.shopping.On("BuildExport", mock.Anything, m.userID).Return(nil, errors.New("connection reset")).Once()

	w := m.do(http.MethodGet, "/api/v1/recipes/download_shopping_cart")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "internal server error", body.Error)
	assert.Equal(t, "internal_error", body.Code)

	entries := m.logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "connection reset", entries[0].ContextMap()["error"])
}

func TestDownloadUsesExportMetadata(t *testing.T) {
	m := setupMockedAPI(t)
	m.shopping.On("BuildExport", mock.Anything, m.userID).Return(&types.TextExport{
		Filename:    "shopping_list.txt",
		ContentType: "text/plain",
		Body:        []byte("Eggs - 3 pcs\n"),
	}, nil).Once()

	w := m.do(http.MethodGet, "/api/v1/recipes/download_shopping_cart")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Eggs - 3 pcs\n", w.Body.String())
}

func TestMalformedIDNeverReachesService(t *testing.T) {
	m := setupMockedAPI(t)

	w := m.do(http.MethodDelete, "/api/v1/recipes/not-a-uuid")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeError(t, w).Code)
	m.recipes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectedTokenNeverReachesService(t *testing.T) {
	m := setupMockedAPI(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/recipes/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", "Bearer forged")
	w := httptest.NewRecorder()
	m.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_token", decodeError(t, w).Code)
}
