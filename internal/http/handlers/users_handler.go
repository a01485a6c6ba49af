package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/modules/users"
)

type UsersHandler struct {
	users *users.Service
}

func NewUsersHandler(svc *users.Service) *UsersHandler {
	return &UsersHandler{users: svc}
}

// Info handles GET /user/.
func (h *UsersHandler) Info(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"message": "User management API",
		"endpoints": gin.H{
			"users":   "/user/users",
			"profile": "/user/profile",
		},
	})
}

// List handles GET /user/users.
func (h *UsersHandler) List(c *gin.Context) {
	all, err := h.users.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"users": all})
}

// Create handles POST /user/users.
func (h *UsersHandler) Create(c *gin.Context) {
	var d users.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.users.Create(c.Request.Context(), d)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"message": "User created successfully", "user": u})
}

// Profile handles GET /user/profile.
func (h *UsersHandler) Profile(c *gin.Context) {
	p, err := h.users.Profile(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// UpdateProfile handles PUT /user/profile.
func (h *UsersHandler) UpdateProfile(c *gin.Context) {
	var update map[string]any
	if err := c.ShouldBindJSON(&update); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := h.users.UpdateProfile(c.Request.Context(), update)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"message":      "Profile updated successfully",
		"updated_data": update,
		"profile":      p,
	})
}
