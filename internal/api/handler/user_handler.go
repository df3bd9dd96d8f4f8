package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jfarango/user-upload-be/internal/api/domain"
	"github.com/jfarango/user-upload-be/internal/api/dto"
	"github.com/jfarango/user-upload-be/internal/api/model"
)

// ListUsers handles GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.storage.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list users", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to list users",
		})
		return
	}

	response := make([]dto.UserResponse, len(users))
	for i, user := range users {
		response[i] = userToDTO(&user)
	}

	c.JSON(http.StatusOK, gin.H{
		"users": response,
		"total": len(response),
	})
}

// CreateUser handles POST /api/v1/users
// Creates one user; a duplicate email rejects the request
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request body",
		})
		return
	}

	user := &model.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		IsActive: true,
	}

	if err := h.storage.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{
				"error": "email already registered",
			})
			return
		}
		h.logger.Error("Failed to create user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create user",
		})
		return
	}

	h.logger.Info("User created",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	c.JSON(http.StatusCreated, userToDTO(user))
}

// GetUser handles GET /api/v1/users/:user_id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "user_id must be an integer",
		})
		return
	}

	user, err := h.storage.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "user not found",
			})
			return
		}
		h.logger.Error("Failed to get user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to get user",
		})
		return
	}

	c.JSON(http.StatusOK, userToDTO(user))
}

func userToDTO(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		IsActive: user.IsActive,
	}
}
