package handler

import (
	"errors"
	"net/http"
	"strconv"

	"tutorlink/internal/middleware"
	"tutorlink/internal/models"
	"tutorlink/internal/repository"
	"tutorlink/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingHandler struct {
	bookingSvc  *service.BookingService
	bookingRepo *repository.BookingRepository
	auditRepo   *repository.AuditLogRepository
}

func NewBookingHandler(bookingSvc *service.BookingService, bookingRepo *repository.BookingRepository, auditRepo *repository.AuditLogRepository) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc, bookingRepo: bookingRepo, auditRepo: auditRepo}
}

type createBookingRequest struct {
	ProviderID        uint            `json:"provider_id" binding:"required"`
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	ServiceDescriptor string          `json:"service_descriptor"`
}

// Create records a pending charge intent. The caller passes the returned
// booking id into the payment session metadata so it round-trips in the
// processor's webhook.
// POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payerID := middleware.GetProfileID(c)
	b, err := h.bookingSvc.Create(payerID, req.ProviderID, req.Amount, req.ServiceDescriptor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount),
			errors.Is(err, service.ErrSameParty),
			errors.Is(err, service.ErrUnknownProvider):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create booking"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": bookingJSON(b)})
}

// Cancel voids an unsettled booking.
// POST /bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	payerID := middleware.GetProfileID(c)
	b, err := h.bookingSvc.Cancel(uint(id), payerID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, service.ErrNotBookingOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		case errors.Is(err, repository.ErrNotCancellable):
			c.JSON(http.StatusConflict, gin.H{"error": "booking can no longer be cancelled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel booking"})
		}
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		ProfileID:  &payerID,
		Action:     "booking_cancelled",
		Resource:   "booking",
		ResourceID: c.Param("id"),
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, gin.H{"booking": bookingJSON(b)})
}

// ListMine returns the caller's bookings, newest first.
// GET /me/bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.bookingRepo.ListByPayer(middleware.GetProfileID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list bookings"})
		return
	}
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, bookingJSON(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out, "total": len(out)})
}

func bookingJSON(b *models.Booking) gin.H {
	return gin.H{
		"id":                 b.ID,
		"provider_id":        b.ProviderID,
		"amount":             b.Amount,
		"service_descriptor": b.ServiceDescriptor,
		"booking_status":     b.BookingStatus,
		"settlement_status":  b.SettlementStatus,
		"created_at":         b.CreatedAt,
	}
}
