package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"rewards-backend/internal/models"
	"rewards-backend/internal/services"
)

type AdminHandler struct {
	db          *gorm.DB
	tasks       *services.TaskService
	withdrawals *services.WithdrawalService
}

func NewAdminHandler(db *gorm.DB, tasks *services.TaskService, withdrawals *services.WithdrawalService) *AdminHandler {
	return &AdminHandler{
		db:          db,
		tasks:       tasks,
		withdrawals: withdrawals,
	}
}

// AdminMiddleware checks if the authenticated user is an admin
func (h *AdminHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		var user models.User
		if err := h.db.First(&user, userID.(uint)).Error; err != nil || !user.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not an admin"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetDashboard returns platform-wide counters
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	var totalUsers int64
	var totalTasks int64
	var totalCompletions int64
	var pendingWithdrawals int64

	h.db.Model(&models.User{}).Count(&totalUsers)
	h.db.Model(&models.Task{}).Where("is_active = ?", true).Count(&totalTasks)
	h.db.Model(&models.TaskCompletion{}).Count(&totalCompletions)
	h.db.Model(&models.Withdrawal{}).Where("status = ?", models.WithdrawalPending).Count(&pendingWithdrawals)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total_users":         totalUsers,
			"active_tasks":        totalTasks,
			"task_completions":    totalCompletions,
			"pending_withdrawals": pendingWithdrawals,
		},
	})
}

// GetUsers returns a paginated user list
func (h *AdminHandler) GetUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var users []models.User
	var total int64
	h.db.Model(&models.User{}).Count(&total)
	if err := h.db.Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// CreateTask creates a new task
func (h *AdminHandler) CreateTask(c *gin.Context) {
	var req struct {
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		Reward       int64  `json:"reward" binding:"required,gt=0"`
		BonusReward  int64  `json:"bonus_reward"`
		Verification string `json:"verification"`
		LinkURL      string `json:"link_url"`
		ChatID       string `json:"chat_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	verification := models.TaskVerification(req.Verification)
	if req.Verification == "" {
		verification = models.VerificationNone
	}

	task := models.Task{
		Title:        req.Title,
		Description:  req.Description,
		Reward:       req.Reward,
		BonusReward:  req.BonusReward,
		Verification: verification,
		LinkURL:      req.LinkURL,
		ChatID:       req.ChatID,
		IsActive:     true,
	}
	if err := h.db.Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    task,
	})
}

// UpdateTask updates task fields
func (h *AdminHandler) UpdateTask(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Reward      *int64  `json:"reward"`
		BonusReward *int64  `json:"bonus_reward"`
		IsActive    *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Reward != nil {
		updates["reward"] = *req.Reward
	}
	if req.BonusReward != nil {
		updates["bonus_reward"] = *req.BonusReward
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	res := h.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifyCompletion marks a manually reviewed task completion as verified
func (h *AdminHandler) VerifyCompletion(c *gin.Context) {
	completionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completion ID"})
		return
	}

	if err := h.tasks.VerifyCompletion(uint(completionID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListPendingWithdrawals returns withdrawals awaiting review
func (h *AdminHandler) ListPendingWithdrawals(c *gin.Context) {
	withdrawals, err := h.withdrawals.ListPending()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    withdrawals,
		"count":   len(withdrawals),
	})
}

// ApproveWithdrawal pays a pending withdrawal out
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	withdrawalID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal ID"})
		return
	}

	withdrawal, err := h.withdrawals.Approve(c.Request.Context(), uint(withdrawalID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    withdrawal,
	})
}

// RejectWithdrawal rejects a pending withdrawal and refunds the user
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	withdrawalID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal ID"})
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	withdrawal, err := h.withdrawals.Reject(uint(withdrawalID), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    withdrawal,
	})
}
