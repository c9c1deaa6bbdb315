package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rewards-backend/internal/auth"
	"rewards-backend/internal/services"
)

type BonusHandler struct {
	bonuses *services.DailyBonusService
}

func NewBonusHandler(bonuses *services.DailyBonusService) *BonusHandler {
	return &BonusHandler{bonuses: bonuses}
}

// GetStatus returns whether the user can claim and what the next reward is
func (h *BonusHandler) GetStatus(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	status, err := h.bonuses.CanClaim(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}

// Claim claims the daily bonus for the current user
func (h *BonusHandler) Claim(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.bonuses.Claim(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
