package handler

import (
	"net/http"
	"strconv"

	"tutorlink/internal/middleware"
	"tutorlink/internal/repository"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerRepo *repository.LedgerRepository
}

func NewLedgerHandler(ledgerRepo *repository.LedgerRepository) *LedgerHandler {
	return &LedgerHandler{ledgerRepo: ledgerRepo}
}

// GetTransactions returns the caller's ledger entries, newest first.
// GET /me/transactions
func (h *LedgerHandler) GetTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.ledgerRepo.ListByOwner(middleware.GetProfileID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list transactions"})
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, t := range list {
		out = append(out, gin.H{
			"id":          t.ID,
			"booking_id":  t.BookingID,
			"kind":        t.Kind,
			"status":      t.Status,
			"amount":      t.Amount,
			"description": t.Description,
			"created_at":  t.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out, "total": len(out)})
}

// GetBalance returns the caller's settled balance plus the pending payouts
// and commissions awaiting the batch payout run.
// GET /me/balance
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	profileID := middleware.GetProfileID(c)
	settled, err := h.ledgerRepo.SettledBalance(profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute balance"})
		return
	}
	pending, err := h.ledgerRepo.PendingBalance(profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute balance"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settled": settled, "pending": pending})
}
