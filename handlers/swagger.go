package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>teamsteps Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Token-protected operations accept the login token as ?token= or a "token" header.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "teamsteps", "version": "v1.0.0" },
  "components": {
    "securitySchemes": {
      "tokenQuery": { "type": "apiKey", "in": "query", "name": "token" },
      "tokenHeader": { "type": "apiKey", "in": "header", "name": "token" }
    },
    "schemas": {
      "StepSubmission": { "type": "object", "properties": { "date": {"type":"string","format":"date-time"}, "steps": {"type":"integer"} } },
      "User": { "type": "object", "properties": { "name": {"type":"string"}, "team": {"type":"string"}, "isAdmin": {"type":"boolean"}, "totalSteps": {"type":"integer"}, "steps": {"type":"array","items":{"$ref":"#/components/schemas/StepSubmission"}} } },
      "TeamStat": { "type": "object", "properties": { "name": {"type":"string"}, "steps": {"type":"integer"}, "members": {"type":"array","items":{"$ref":"#/components/schemas/User"}} } }
    }
  },
  "paths": {
    "/api/users": { "get": { "summary": "List users (public)", "responses": { "200": { "description": "users without tokens" } } } },
    "/api/teamStats": { "get": { "summary": "Team leaderboard (public)", "responses": { "200": { "description": "team totals with members" } } } },
    "/api/me": { "get": { "summary": "Current user", "security": [{"tokenQuery":[]},{"tokenHeader":[]}], "responses": { "200": { "description": "user" }, "401": { "description": "no token" }, "404": { "description": "unknown token" } } } },
    "/api/mySteps": {
      "get": { "summary": "Own step submissions", "security": [{"tokenQuery":[]},{"tokenHeader":[]}], "responses": { "200": { "description": "submissions, newest first" }, "401": { "description": "no token" } } },
      "post": { "summary": "Submit steps", "security": [{"tokenQuery":[]},{"tokenHeader":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"steps":{"type":"integer"}}}}}}, "responses": { "200": { "description": "recorded" }, "400": { "description": "steps missing" }, "401": { "description": "no token" }, "404": { "description": "user not found" } } }
    },
    "/api/mySteps/_delete": { "post": { "summary": "Delete a submission by date", "security": [{"tokenQuery":[]},{"tokenHeader":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"date":{"type":"string"}}}}}}, "responses": { "200": { "description": "deleted" }, "404": { "description": "user not found" } } } },
    "/api/usersWithTokens": { "get": { "summary": "List users with tokens (admin)", "security": [{"tokenQuery":[]},{"tokenHeader":[]}], "responses": { "200": { "description": "users with tokens" }, "403": { "description": "not admin" } } } },
    "/api/addUser": { "post": { "summary": "Add user (admin)", "security": [{"tokenQuery":[]},{"tokenHeader":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"team":{"type":"string"}}}}}}, "responses": { "200": { "description": "new token as text/plain" }, "400": { "description": "missing fields" }, "409": { "description": "name exists" } } } },
    "/api/editUser": { "post": { "summary": "Edit user (admin)", "security": [{"tokenQuery":[]},{"tokenHeader":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"previousName":{"type":"string"},"name":{"type":"string"},"team":{"type":"string"}}}}}}, "responses": { "200": { "description": "updated" }, "400": { "description": "missing fields" }, "404": { "description": "user not found" }, "409": { "description": "name exists" } } } },
    "/api/deleteUser": { "post": { "summary": "Delete user (admin)", "security": [{"tokenQuery":[]},{"tokenHeader":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"}}}}}}, "responses": { "200": { "description": "deleted" }, "400": { "description": "name missing" }, "404": { "description": "user not found" } } } },
    "/api/setAdmin": { "post": { "summary": "Grant or revoke admin (admin)", "security": [{"tokenQuery":[]},{"tokenHeader":[]}], "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"isAdmin":{"type":"boolean"}}}}}}, "responses": { "200": { "description": "updated" }, "400": { "description": "missing fields" }, "404": { "description": "user not found" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
