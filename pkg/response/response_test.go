package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/t", handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	return w
}

func TestError(t *testing.T) {
	t.Run("业务错误映射HTTP状态码", func(t *testing.T) {
		w := perform(func(c *gin.Context) { Error(c, apperrors.ErrForbidden) })

		assert.Equal(t, http.StatusForbidden, w.Code)
		var body ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apperrors.ErrCodeForbidden, body.Code)
		assert.Equal(t, "Access denied", body.Message)
	})

	t.Run("校验错误携带字段详情", func(t *testing.T) {
		w := perform(func(c *gin.Context) { Error(c, apperrors.InvalidField("price", "Price must be a positive number")) })

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"price"`)
	})

	t.Run("未知错误不泄露内部信息", func(t *testing.T) {
		w := perform(func(c *gin.Context) { Error(c, errors.New("secret dsn root:pw@tcp")) })

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
		assert.Contains(t, w.Body.String(), "Server error")
	})

	t.Run("限流错误保留提示信息", func(t *testing.T) {
		w := perform(func(c *gin.Context) { Error(c, apperrors.ErrServerBusy) })

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "Server busy")
	})
}

func TestCreatedAndMessage(t *testing.T) {
	w := perform(func(c *gin.Context) { Created(c, gin.H{"message": "ok"}) })
	assert.Equal(t, http.StatusCreated, w.Code)

	w = perform(func(c *gin.Context) { Message(c, "Book deleted successfully") })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Book deleted successfully"}`, w.Body.String())
}
