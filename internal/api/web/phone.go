package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/repository"
	"github.com/rangerops/clubhouse-rbs/internal/service/phone"
)

type PhoneHandler struct {
	svc     phone.Service
	persons repository.PersonRepository
}

func NewPhoneHandler(svc phone.Service, persons repository.PersonRepository) *PhoneHandler {
	return &PhoneHandler{svc: svc, persons: persons}
}

func (h *PhoneHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/person/:id")
	g.POST("/phones", h.SetNumbers)
	g.POST("/phone/verify", h.IssueChallenge)
	g.POST("/phone/confirm", h.Confirm)

	r.POST("/api/sms/inbound", h.Inbound)
}

type setNumbersRequest struct {
	OnPlaya  string `json:"on_playa"`
	OffPlaya string `json:"off_playa"`
}

func (h *PhoneHandler) SetNumbers(c *gin.Context) {
	personID, ok := personID(c)
	if !ok {
		return
	}
	var req setNumbersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.svc.SetNumbers(c.Request.Context(), personID, req.OnPlaya, req.OffPlaya)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type slotRequest struct {
	Slot string `json:"slot" binding:"required"`
}

func (h *PhoneHandler) IssueChallenge(c *gin.Context) {
	personID, ok := personID(c)
	if !ok {
		return
	}
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slot, err := domain.ParsePhoneSlot(req.Slot)
	if err != nil {
		writeError(c, err)
		return
	}
	// The service trusts its caller on this; refusing a re-challenge of a
	// verified slot is this layer's job.
	person, err := h.persons.GetByID(c.Request.Context(), personID)
	if err != nil {
		writeError(c, err)
		return
	}
	if person.Slot(slot).Verified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot already verified"})
		return
	}
	sent, err := h.svc.IssueChallenge(c.Request.Context(), personID, slot)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

type confirmRequest struct {
	Slot string `json:"slot" binding:"required"`
	Code string `json:"code" binding:"required"`
}

func (h *PhoneHandler) Confirm(c *gin.Context) {
	personID, ok := personID(c)
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slot, err := domain.ParsePhoneSlot(req.Slot)
	if err != nil {
		writeError(c, err)
		return
	}
	outcome, err := h.svc.Confirm(c.Request.Context(), personID, slot, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": outcome})
}

type inboundRequest struct {
	From string `json:"from"`
	Body string `json:"body"`
}

// Inbound takes the provider's received-SMS callback. Twilio posts form
// fields; JSON is accepted for local tooling.
func (h *PhoneHandler) Inbound(c *gin.Context) {
	req := inboundRequest{
		From: c.PostForm("From"),
		Body: c.PostForm("Body"),
	}
	if req.From == "" {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if err := h.svc.HandleInbound(c.Request.Context(), req.From, req.Body); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func personID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid person id"})
		return 0, false
	}
	return id, true
}
