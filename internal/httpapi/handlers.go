package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orgball2608/post-publisher-bot/internal/scheduling"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
)

const eventPaymentSucceeded = "payment.succeeded"

type handler struct {
	scheduler  Scheduler
	reconciler Reconciler
	logger     logger.Logger
}

type scheduleRequest struct {
	SenderID  int64      `json:"sender_id" binding:"required"`
	PublishAt *time.Time `json:"publish_at" binding:"required"`
}

type yookassaNotification struct {
	Type   string `json:"type"`
	Event  string `json:"event" binding:"required"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"object"`
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// yookassaWebhook only wakes the reconciliation loop. The loop re-reads the
// status from the provider, so a forged notification cannot mark anything paid.
func (h *handler) yookassaWebhook(c *gin.Context) {
	var n yookassaNotification
	if err := c.ShouldBindJSON(&n); err != nil {
		respondError(c, http.StatusBadRequest, "invalid notification")
		return
	}

	triggered := false
	if n.Event == eventPaymentSucceeded {
		triggered = h.reconciler.Trigger()
		h.logger.Info("Payment notification received",
			"paymentID", n.Object.ID,
			"triggered", triggered)
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted", "triggered": triggered})
}

func (h *handler) schedule(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || postID <= 0 {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid data")
		return
	}

	err = h.scheduler.Schedule(c.Request.Context(), postID, req.SenderID, *req.PublishAt)

	var conflict *scheduling.ConflictError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "scheduled", "publish_at": req.PublishAt})
	case errors.As(err, &conflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "slot rejected", "reason": conflict.Reason})
	case errors.Is(err, scheduling.ErrAlreadyPublished):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "slot rejected", "reason": "already_published"})
	case pkgerrors.IsBadRequest(err):
		respondError(c, http.StatusBadRequest, pkgerrors.GetMessage(err))
	case pkgerrors.IsNotFound(err):
		respondError(c, http.StatusNotFound, pkgerrors.GetMessage(err))
	case pkgerrors.IsForbidden(err):
		respondError(c, http.StatusForbidden, pkgerrors.GetMessage(err))
	default:
		h.logger.Error("Failed to schedule post", "postID", postID, "error", err, "code", pkgerrors.GetCode(err))
		respondError(c, http.StatusInternalServerError, "db error")
	}
}
