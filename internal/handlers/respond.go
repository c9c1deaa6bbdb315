package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rewards-backend/internal/services"
)

// statusFor maps declinable service outcomes to client-facing status codes.
// Anything unmapped is an infrastructure failure and stays a 500.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrReferralCodeNotFound),
		errors.Is(err, services.ErrWithdrawalNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, services.ErrTaskAlreadyCompleted),
		errors.Is(err, services.ErrAlreadyReferred),
		errors.Is(err, services.ErrBonusCooldown),
		errors.Is(err, services.ErrWithdrawalNotPending):
		return http.StatusConflict, true
	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrSelfReferral),
		errors.Is(err, services.ErrTaskInactive),
		errors.Is(err, services.ErrVerificationFailed),
		errors.Is(err, services.ErrAdLimitReached),
		errors.Is(err, services.ErrUnknownAdType),
		errors.Is(err, services.ErrInvalidWalletAddress),
		errors.Is(err, services.ErrBelowMinimumWithdrawal):
		return http.StatusBadRequest, true
	}
	return http.StatusInternalServerError, false
}

func respondError(c *gin.Context, err error) {
	status, known := statusFor(err)
	msg := "Internal server error"
	if known {
		msg = err.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}
