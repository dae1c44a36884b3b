package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teamsteps/teamsteps/internal/identity"
	"github.com/teamsteps/teamsteps/internal/teamstats"
	"github.com/teamsteps/teamsteps/internal/users"
	"github.com/teamsteps/teamsteps/pkg/middleware"
)

// APIHandler serves the step tracking API under /api.
type APIHandler struct {
	store    *users.Store
	resolver *identity.Resolver
	limiter  gin.HandlerFunc
}

// APIOption customises an APIHandler.
type APIOption func(*APIHandler)

// WithRateLimiter limits every /api route. On token routes it runs after
// TokenAuth, so callers are limited per user rather than per IP.
func WithRateLimiter(limiter gin.HandlerFunc) APIOption {
	return func(h *APIHandler) { h.limiter = limiter }
}

func NewAPIHandler(store *users.Store, resolver *identity.Resolver, opts ...APIOption) *APIHandler {
	h := &APIHandler{store: store, resolver: resolver}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// chain appends the limiter, when configured, to hs.
func (h *APIHandler) chain(hs ...gin.HandlerFunc) []gin.HandlerFunc {
	if h.limiter != nil {
		hs = append(hs, h.limiter)
	}
	return hs
}

// Register mounts the public, logged-in and admin route tiers.
func (h *APIHandler) Register(r *gin.Engine) {
	api := r.Group("/api")
	public := api.Group("", h.chain()...)
	public.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	public.GET("/teamStats", h.TeamStats)
	public.GET("/users", h.ListUsers)

	loggedIn := api.Group("", h.chain(middleware.TokenAuth(h.resolver))...)
	loggedIn.GET("/me", h.Me)
	loggedIn.GET("/mySteps", h.MySteps)
	loggedIn.POST("/mySteps", h.SubmitSteps)
	loggedIn.POST("/mySteps/_delete", h.DeleteSteps)

	admin := api.Group("", h.chain(middleware.TokenAuth(h.resolver), middleware.RequireAdmin())...)
	admin.GET("/usersWithTokens", h.ListUsersWithTokens)
	admin.POST("/addUser", h.AddUser)
	admin.POST("/editUser", h.EditUser)
	admin.POST("/deleteUser", h.DeleteUser)
	admin.POST("/setAdmin", h.SetAdmin)

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.String(http.StatusNotFound, "Not found")
			return
		}
		c.Status(http.StatusNotFound)
	})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// TeamStats returns per-team totals with their members.
func (h *APIHandler) TeamStats(c *gin.Context) {
	c.JSON(http.StatusOK, teamstats.Compute(h.store.GetAll(c.Request.Context())))
}

// ListUsers returns all users without tokens.
func (h *APIHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.GetAll(c.Request.Context()))
}

// ListUsersWithTokens returns all users including their login tokens.
func (h *APIHandler) ListUsersWithTokens(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.GetAllWithToken(c.Request.Context()))
}

// Me returns the caller. The admin secret renders as a synthetic admin user.
func (h *APIHandler) Me(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)
	c.JSON(http.StatusOK, id.View())
}

// MySteps returns the caller's submissions, newest first.
func (h *APIHandler) MySteps(c *gin.Context) {
	id, _ := middleware.GetIdentity(c)
	c.JSON(http.StatusOK, id.View().Steps)
}

// stepOwner returns the name of the caller's record. The admin identity has none.
func stepOwner(c *gin.Context) (string, error) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		return "", identity.ErrUnauthenticated
	}
	if id.Kind == identity.KindAdmin || id.User == nil {
		return "", fmt.Errorf("%w: the admin token has no step record", users.ErrNotFound)
	}
	return id.User.Name, nil
}

// SubmitSteps records {steps} for the caller.
func (h *APIHandler) SubmitSteps(c *gin.Context) {
	var req struct {
		Steps *int `json:"steps"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Steps == nil {
		badRequest(c, "steps is required")
		return
	}
	name, err := stepOwner(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	if err := h.store.SubmitSteps(c.Request.Context(), name, *req.Steps); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// DeleteSteps removes the caller's submission(s) with the given {date}.
func (h *APIHandler) DeleteSteps(c *gin.Context) {
	var req struct {
		Date string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" {
		badRequest(c, "date is required")
		return
	}
	name, err := stepOwner(c)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	if err := h.store.DeleteSteps(c.Request.Context(), name, req.Date); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// AddUser creates {name, team} and responds with the new token as plain text.
func (h *APIHandler) AddUser(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
		Team string `json:"team"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Team == "" {
		badRequest(c, "Both name and team are required")
		return
	}
	token, err := h.store.AddUser(c.Request.Context(), req.Name, req.Team)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.String(http.StatusOK, token)
}

// EditUser applies {name} and/or {team} to the user called {previousName}.
func (h *APIHandler) EditUser(c *gin.Context) {
	var req struct {
		PreviousName string `json:"previousName"`
		Name         string `json:"name"`
		Team         string `json:"team"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PreviousName == "" || (req.Name == "" && req.Team == "") {
		badRequest(c, "previousName is required with either name or team")
		return
	}
	if err := h.store.EditUser(c.Request.Context(), req.PreviousName, req.Name, req.Team); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// DeleteUser removes {name}.
func (h *APIHandler) DeleteUser(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		badRequest(c, "name is required")
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), req.Name); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// SetAdmin sets {isAdmin} on {name}.
func (h *APIHandler) SetAdmin(c *gin.Context) {
	var req struct {
		Name    string `json:"name"`
		IsAdmin *bool  `json:"isAdmin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.IsAdmin == nil {
		badRequest(c, "name and isAdmin are required")
		return
	}
	if err := h.store.SetAdmin(c.Request.Context(), req.Name, *req.IsAdmin); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
