package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"diploma360/middlewares"
	"diploma360/models"
	"diploma360/utils"
)

// POST /api/user
// Create-or-fetch by email: an existing record is returned unchanged so a
// returning login never clobbers the profile. Either way the session cookie
// is set.
func (d *deps) createOrFetchUser(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		PhotoURL string `json:"photoURL" binding:"required"`
		UID      string `json:"uid" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, email, photoURL and uid are required."})
		return
	}

	token, err := utils.GenerateToken(req.Email)
	if err != nil {
		fail(c, err)
		return
	}

	existing, err := d.users.GetByEmail(c.Request.Context(), req.Email)
	if err == nil {
		d.setSessionCookie(c, token)
		c.JSON(http.StatusOK, existing)
		return
	}
	if !errors.Is(err, models.ErrNotFound) {
		fail(c, err)
		return
	}

	u := models.User{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
		UID:      req.UID,
		Role:     models.RoleStudent,
	}
	if err := d.users.Create(c.Request.Context(), &u); err != nil {
		fail(c, err)
		return
	}
	d.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, u)
}

// POST /api/user/jwt
// Re-login: re-issues the cookie for a known email without re-validating
// existence.
func (d *deps) issueJWT(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required."})
		return
	}

	token, err := utils.GenerateToken(req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	d.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "Token issued."})
}

// DELETE /api/user/logout
func (d *deps) logout(c *gin.Context) {
	d.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

// GET /api/user/me
func (d *deps) whoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"email": c.GetString(middlewares.CtxEmail),
		"role":  c.GetString(middlewares.CtxRole),
	})
}

// GET /api/user/is-admin
func (d *deps) isAdmin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"isAdmin": c.GetString(middlewares.CtxRole) == models.RoleSuperAdmin,
	})
}

type userSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// GET /api/user/all (super_admin)
func (d *deps) listUsers(c *gin.Context) {
	users, err := d.users.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]userSummary, 0, len(users))
	for _, u := range users {
		out = append(out, userSummary{
			ID:        u.ID.Hex(),
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// PATCH /api/user/:id/role (super_admin)
func (d *deps) updateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "role is required."})
		return
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown role."})
		return
	}

	if err := d.users.UpdateRole(c.Request.Context(), c.Param("id"), req.Role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Role updated."})
}
