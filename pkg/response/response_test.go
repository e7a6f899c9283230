package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/charlesng35/dbnav/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Success(ctx, http.StatusOK, gin.H{"message": "ok"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.True(t, resp.Success)
	require.Nil(t, resp.Error)
	require.Nil(t, resp.Meta)
}

func TestSuccessWithMeta(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	meta := &Meta{Offset: 0, Limit: 2, Total: 5, Grouped: true}
	SuccessWithMeta(ctx, http.StatusOK, []string{"a", "b"}, meta)

	resp := decode(t, rec)
	require.NotNil(t, resp.Meta)
	require.Equal(t, 5, resp.Meta.Total)
	require.True(t, resp.Meta.Grouped)
}

func TestMetaHasMore(t *testing.T) {
	require.True(t, (&Meta{Offset: 0, Limit: 2, Total: 5}).HasMore())
	require.False(t, (&Meta{Offset: 4, Limit: 2, Total: 5}).HasMore())
	require.False(t, (&Meta{Total: 5}).HasMore())

	var nilMeta *Meta
	require.False(t, nilMeta.HasMore())
}

func TestErrorWithAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Error(ctx, appErrors.ErrNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, appErrors.ErrNotFound.Code, resp.Error.Code)
	require.Len(t, ctx.Errors, 1)
}

func TestErrorWithGenericError(t *testing.T) {
	rec := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(rec)

	Error(ctx, errors.New("boom"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	require.Equal(t, appErrors.ErrInternalServer.Code, resp.Error.Code)
}
