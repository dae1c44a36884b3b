package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestSwaggerEndpoints(t *testing.T) {
	g := gin.New()
	RegisterSwagger(g)

	req := httptest.NewRequest("GET", "/swagger/index.html", nil)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "swagger-ui")

	req2 := httptest.NewRequest("GET", "/swagger/doc.json", nil)
	w2 := httptest.NewRecorder()
	g.ServeHTTP(w2, req2)
	require.Equal(t, 200, w2.Code)

	var doc struct {
		OpenAPI string                 `json:"openapi"`
		Paths   map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &doc), "doc.json must be valid JSON")
	require.Equal(t, "3.0.0", doc.OpenAPI)
	for _, p := range []string{"/api/users", "/api/teamStats", "/api/me", "/api/mySteps", "/api/mySteps/_delete",
		"/api/usersWithTokens", "/api/addUser", "/api/editUser", "/api/deleteUser", "/api/setAdmin"} {
		require.Contains(t, doc.Paths, p)
	}
}
