package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"tutorlink/config"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"
	"tutorlink/internal/service"

	"github.com/gin-gonic/gin"
)

// paymentEvent is the processor's notification. The booking id rides in the
// payment session metadata, so it arrives back as either a JSON number or a
// string depending on the processor's serializer.
type paymentEvent struct {
	EventType string      `json:"event_type"`
	BookingID json.Number `json:"booking_id"`
}

type PaymentWebhookHandler struct {
	cfg           *config.Config
	settlementSvc *service.SettlementService
	auditRepo     *repository.AuditLogRepository
}

func NewPaymentWebhookHandler(cfg *config.Config, settlementSvc *service.SettlementService, auditRepo *repository.AuditLogRepository) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{cfg: cfg, settlementSvc: settlementSvc, auditRepo: auditRepo}
}

// Handle processes a payment_succeeded notification. Delivery is
// at-least-once, so the response contract matters: 200 for anything the
// processor must not redeliver (success, idempotent no-op, permanent caller
// errors), 500 only for transient storage failures where a redelivery can
// succeed.
// POST /webhooks/payment
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.Payment.WebhookSecret != "" {
		if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}
	var ev paymentEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if ev.EventType != "payment_succeeded" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	bookingID, err := strconv.ParseUint(ev.BookingID.String(), 10, 64)
	if err != nil {
		log.Printf("[webhook] unparseable booking_id %q", ev.BookingID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.settlementSvc.Settle(uint(bookingID)); err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			// Permanent: the id is wrong and always will be. Ack so the
			// processor stops redelivering.
			log.Printf("[webhook] settlement for unknown booking %d", bookingID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		log.Printf("[webhook] settlement of booking %d failed, requesting redelivery: %v", bookingID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
		return
	}

	_ = h.auditRepo.Create(&models.AuditLog{
		Action:     "booking_settled",
		Resource:   "booking",
		ResourceID: ev.BookingID.String(),
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *PaymentWebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.cfg.Payment.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}
