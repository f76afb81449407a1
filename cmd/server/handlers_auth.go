package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kavica-app/kavica/internal/auth"
	"github.com/kavica-app/kavica/internal/authz"
	"github.com/kavica-app/kavica/internal/loyalty"
	"github.com/kavica-app/kavica/internal/profile"
)

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	FullName string `json:"full_name"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

// registerHandler creates the profile, the default user role and a loyalty
// account with a fresh card code, so new customers have a scannable card
// from their first login.
func registerHandler(profiles profile.Repository, az authz.Repository, loy loyalty.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if !strings.Contains(email, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
			return
		}
		if len(req.Password) < 8 || len(req.Password) > 72 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password must be 8-72 characters"})
			return
		}

		hash, err := profile.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
			return
		}

		p := &profile.Profile{
			UserID:       uuid.NewString(),
			Email:        email,
			FullName:     strings.TrimSpace(req.FullName),
			PasswordHash: hash,
		}
		if err := profiles.Create(c.Request.Context(), p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
			return
		}
		if err := az.GrantRole(c.Request.Context(), p.UserID, authz.RoleUser); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		acct, err := loy.CreateAccount(c.Request.Context(), p.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"user_id":   p.UserID,
			"card_code": acct.CardCode,
		})
	}
}

func loginHandler(profiles profile.Repository, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		p, err := profiles.GetByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			if errors.Is(err, profile.ErrNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		if !profile.CheckPassword(p.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		token, err := auth.GenerateToken(p.UserID, jwtSecret)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// homeHandler sends the caller to the landing page for their highest role.
func homeHandler(az authz.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles, err := az.RolesOf(c.Request.Context(), auth.UserID(c))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		switch authz.Highest(roles) {
		case authz.RoleSuperAdmin:
			c.Redirect(http.StatusFound, "/super/locations")
		case authz.RoleAdmin:
			c.Redirect(http.StatusFound, "/admin/orders")
		default:
			c.Redirect(http.StatusFound, "/app/menu")
		}
	}
}
