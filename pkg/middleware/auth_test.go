package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/teamsteps/teamsteps/internal/identity"
	"github.com/teamsteps/teamsteps/internal/users"
	"github.com/teamsteps/teamsteps/internal/users/repository"
)

func init() { gin.SetMode(gin.TestMode) }

type authFixture struct {
	engine     *gin.Engine
	store      *users.Store
	userToken  string
	adminToken string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	ctx := context.Background()
	store, err := users.New(ctx, repository.NewMemoryRepo())
	require.NoError(t, err)
	token, err := store.AddUser(ctx, "Al", "Red")
	require.NoError(t, err)

	resolver := identity.NewResolver("admin-secret", store)
	g := gin.New()
	g.GET("/me", TokenAuth(resolver), func(c *gin.Context) {
		id, ok := GetIdentity(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, id.View())
	})
	g.GET("/admin", TokenAuth(resolver), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return &authFixture{engine: g, store: store, userToken: token, adminToken: "admin-secret"}
}

func (f *authFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rw := httptest.NewRecorder()
	f.engine.ServeHTTP(rw, req)
	return rw
}

func TestTokenAuth_NoToken(t *testing.T) {
	f := newAuthFixture(t)
	rw := f.do(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Contains(t, rw.Body.String(), "token")
}

func TestTokenAuth_QueryToken(t *testing.T) {
	f := newAuthFixture(t)
	rw := f.do(httptest.NewRequest(http.MethodGet, "/me?token="+f.userToken, nil))
	require.Equal(t, http.StatusOK, rw.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "Al", got["name"])
	require.NotContains(t, got, "token")
}

func TestTokenAuth_HeaderToken(t *testing.T) {
	f := newAuthFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("token", f.userToken)
	rw := f.do(req)
	require.Equal(t, http.StatusOK, rw.Code)
}

func TestTokenAuth_UnknownToken(t *testing.T) {
	f := newAuthFixture(t)
	rw := f.do(httptest.NewRequest(http.MethodGet, "/me?token=bogus", nil))
	require.Equal(t, http.StatusNotFound, rw.Code)
}

func TestTokenAuth_AdminTokenView(t *testing.T) {
	f := newAuthFixture(t)
	rw := f.do(httptest.NewRequest(http.MethodGet, "/me?token="+f.adminToken, nil))
	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "Admin", got["name"])
	require.Equal(t, true, got["isAdmin"])
}

func TestRequireAdmin(t *testing.T) {
	f := newAuthFixture(t)

	rw := f.do(httptest.NewRequest(http.MethodGet, "/admin?token="+f.userToken, nil))
	require.Equal(t, http.StatusForbidden, rw.Code)

	rw = f.do(httptest.NewRequest(http.MethodGet, "/admin?token="+f.adminToken, nil))
	require.Equal(t, http.StatusOK, rw.Code)

	require.NoError(t, f.store.SetAdmin(context.Background(), "Al", true))
	rw = f.do(httptest.NewRequest(http.MethodGet, "/admin?token="+f.userToken, nil))
	require.Equal(t, http.StatusOK, rw.Code)

	rw = f.do(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestRequireAdmin_WithoutTokenAuth(t *testing.T) {
	g := gin.New()
	g.GET("/", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestStatusForError(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, StatusForError(identity.ErrUnauthenticated))
	require.Equal(t, http.StatusForbidden, StatusForError(identity.ErrForbidden))
	require.Equal(t, http.StatusNotFound, StatusForError(users.ErrNotFound))
	require.Equal(t, http.StatusConflict, StatusForError(users.ErrConflict))
	require.Equal(t, http.StatusInternalServerError, StatusForError(users.ErrPersist))
}
