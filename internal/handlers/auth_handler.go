package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rewards-backend/internal/auth"
	"rewards-backend/internal/services"
)

type AuthHandler struct {
	users    *services.UserService
	botToken string
}

func NewAuthHandler(users *services.UserService, botToken string) *AuthHandler {
	return &AuthHandler{users: users, botToken: botToken}
}

// TelegramLogin validates Telegram WebApp init data, finds or creates the
// user and returns a JWT for subsequent requests
func (h *AuthHandler) TelegramLogin(c *gin.Context) {
	var req struct {
		InitData     string `json:"init_data" binding:"required"`
		ReferralCode string `json:"referral_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tgUser, err := auth.ValidateInitData(req.InitData, h.botToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid init data"})
		return
	}

	// A start_param carried by the mini-app link doubles as a referral code
	referralCode := req.ReferralCode
	if referralCode == "" {
		referralCode = tgUser.StartParam
	}

	user, created, err := h.users.GetOrCreateFromTelegram(tgUser, referralCode)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.TelegramID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"token":    token,
		"user":     user,
		"new_user": created,
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	profile, err := h.users.GetProfile(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    profile,
	})
}
