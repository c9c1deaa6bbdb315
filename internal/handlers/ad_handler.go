package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rewards-backend/internal/auth"
	"rewards-backend/internal/models"
	"rewards-backend/internal/services"
)

type AdHandler struct {
	ads *services.AdService
}

func NewAdHandler(ads *services.AdService) *AdHandler {
	return &AdHandler{ads: ads}
}

// RecordWatch credits the reward for one watched ad
func (h *AdHandler) RecordWatch(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		AdType   string `json:"ad_type" binding:"required"`
		Platform string `json:"platform"`
		AdUnitID string `json:"ad_unit_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ads.RecordAdWatch(userID, models.AdType(req.AdType), req.Platform, req.AdUnitID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetWatchedToday returns how many ads the user has watched today
func (h *AdHandler) GetWatchedToday(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	watched, err := h.ads.WatchedToday(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"watched_today": watched},
	})
}
