package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/repository"
	"github.com/rangerops/clubhouse-rbs/internal/service/dispatch"
)

type BroadcastHandler struct {
	dispatcher dispatch.Dispatcher
	retry      dispatch.RetryCoordinator
	alerts     repository.AlertRepository
	broadcasts repository.BroadcastRepository
	messages   repository.MessageRepository
}

func NewBroadcastHandler(
	d dispatch.Dispatcher,
	r dispatch.RetryCoordinator,
	alerts repository.AlertRepository,
	broadcasts repository.BroadcastRepository,
	messages repository.MessageRepository,
) *BroadcastHandler {
	return &BroadcastHandler{
		dispatcher: d,
		retry:      r,
		alerts:     alerts,
		broadcasts: broadcasts,
		messages:   messages,
	}
}

func (h *BroadcastHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/broadcast")
	g.POST("", h.Transmit)
	g.GET("", h.List)
	g.GET("/preview", h.Preview)
	g.GET("/:id/messages", h.Messages)
	g.POST("/:id/retry", h.Retry)

	r.GET("/api/alert", h.Alerts)
}

type alertView struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	OnPlaya bool   `json:"on_playa"`
	Mode    string `json:"mode"`
}

// Alerts lists the alert categories a sender can broadcast against.
func (h *BroadcastHandler) Alerts(c *gin.Context) {
	alerts, err := h.alerts.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]alertView, len(alerts))
	for i, a := range alerts {
		views[i] = alertView{ID: a.ID, Title: a.Title, OnPlaya: a.OnPlaya, Mode: string(a.Mode)}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": views})
}

type transmitRequest struct {
	AlertID       int64           `json:"alert_id" binding:"required"`
	SenderID      int64           `json:"sender_id" binding:"required"`
	SendSMS       bool            `json:"send_sms"`
	SendEmail     bool            `json:"send_email"`
	SendClubhouse bool            `json:"send_clubhouse"`
	From          string          `json:"from"`
	Subject       string          `json:"subject"`
	Message       string          `json:"message"`
	SMSMessage    string          `json:"sms_message"`
	Criteria      criteriaPayload `json:"criteria"`
}

func (h *BroadcastHandler) Transmit(c *gin.Context) {
	var req transmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	alert, err := h.alerts.GetByID(c.Request.Context(), req.AlertID)
	if err != nil {
		writeError(c, err)
		return
	}
	criteria, err := buildCriteria(alert.Mode, req.Criteria)
	if err != nil {
		writeError(c, err)
		return
	}
	summary, err := h.dispatcher.Transmit(c.Request.Context(), req.AlertID, criteria, domain.TransmitRequest{
		SenderID:      req.SenderID,
		SendSMS:       req.SendSMS,
		SendEmail:     req.SendEmail,
		SendClubhouse: req.SendClubhouse,
		From:          req.From,
		Subject:       req.Subject,
		Message:       req.Message,
		SMSMessage:    req.SMSMessage,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

type previewRequest struct {
	AlertID int64 `form:"alert_id" binding:"required"`
	criteriaPayload
}

func (h *BroadcastHandler) Preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	alert, err := h.alerts.GetByID(c.Request.Context(), req.AlertID)
	if err != nil {
		writeError(c, err)
		return
	}
	criteria, err := buildCriteria(alert.Mode, req.criteriaPayload)
	if err != nil {
		writeError(c, err)
		return
	}
	count, err := h.dispatcher.Preview(c.Request.Context(), req.AlertID, criteria)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipient_count": count})
}

type listRequest struct {
	SenderID int64 `form:"sender_id" binding:"required"`
	Limit    int   `form:"limit"`
}

type broadcastView struct {
	ID             uint64 `json:"id"`
	SenderID       int64  `json:"sender_id"`
	AlertID        int64  `json:"alert_id"`
	Subject        string `json:"subject"`
	RecipientCount int    `json:"recipient_count"`
	SentSMS        bool   `json:"sent_sms"`
	SentEmail      bool   `json:"sent_email"`
	SentClubhouse  bool   `json:"sent_clubhouse"`
	CreatedAt      string `json:"created_at"`
}

func (h *BroadcastHandler) List(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 20
	}
	broadcasts, err := h.broadcasts.ListBySender(c.Request.Context(), req.SenderID, req.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]broadcastView, len(broadcasts))
	for i, b := range broadcasts {
		views[i] = broadcastView{
			ID:             b.ID,
			SenderID:       b.SenderID,
			AlertID:        b.AlertID,
			Subject:        b.Subject,
			RecipientCount: b.RecipientCount,
			SentSMS:        b.SentSMS,
			SentEmail:      b.SentEmail,
			SentClubhouse:  b.SentClubhouse,
			CreatedAt:      b.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, gin.H{"broadcasts": views})
}

type messageView struct {
	ID        uint64 `json:"id"`
	PersonID  int64  `json:"person_id"`
	Channel   string `json:"channel"`
	Address   string `json:"address"`
	Direction string `json:"direction"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Messages returns the delivery log of one broadcast, the view operators
// read before deciding to retry.
func (h *BroadcastHandler) Messages(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid broadcast id"})
		return
	}
	if _, err := h.broadcasts.GetByID(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	msgs, err := h.messages.ListByBroadcast(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	views := make([]messageView, len(msgs))
	for i, m := range msgs {
		views[i] = messageView{
			ID:        m.ID,
			PersonID:  m.PersonID,
			Channel:   string(m.Channel),
			Address:   m.Address,
			Direction: string(m.Direction),
			Status:    string(m.Status),
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		}
	}
	c.JSON(http.StatusOK, gin.H{"messages": views})
}

func (h *BroadcastHandler) Retry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid broadcast id"})
		return
	}
	summary, err := h.retry.Retry(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
