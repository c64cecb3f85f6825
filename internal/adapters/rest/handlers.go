package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/flowpay/paycore/internal/core/domain"
	"github.com/flowpay/paycore/internal/core/service"
)

type handlers struct {
	svc    *service.PaymentService
	logger *slog.Logger
}

type errorResponse struct {
	Success bool        `json:"success"`
	Error   errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps core errors to HTTP responses using the service taxonomy.
func (h *handlers) writeError(c *gin.Context, err error) {
	status := service.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, errorResponse{
		Success: false,
		Error: errorDetail{
			Code:    service.ToErrorCode(err),
			Message: err.Error(),
		},
	})
}

func idempotencyKey(c *gin.Context) string {
	return c.GetHeader("Idempotency-Key")
}

type createIntentRequest struct {
	Amount        int64             `json:"amount" binding:"required"`
	Currency      string            `json:"currency"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
	CustomerID    string            `json:"customer_id"`
	Description   string            `json:"description"`
	Metadata      map[string]string `json:"metadata"`
}

func (h *handlers) createPaymentIntent(c *gin.Context) {
	var req createIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.NewMissingRequiredFieldError("valid request body"))
		return
	}

	result, err := h.svc.CreatePaymentIntent(c.Request.Context(), service.CreateIntentRequest{
		Amount:         req.Amount,
		Currency:       req.Currency,
		PaymentMethod:  req.PaymentMethod,
		CustomerID:     req.CustomerID,
		Description:    req.Description,
		Metadata:       req.Metadata,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type refundRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Amount        int64  `json:"amount"`
	Reason        string `json:"reason" binding:"required"`
}

func (h *handlers) processRefund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.NewMissingRequiredFieldError("valid request body"))
		return
	}

	result, err := h.svc.ProcessRefund(c.Request.Context(), service.RefundRequest{
		TransactionID:  req.TransactionID,
		Amount:         req.Amount,
		Reason:         req.Reason,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type walletTransactionRequest struct {
	Amount      int64  `json:"amount" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

func (h *handlers) processWalletTransaction(c *gin.Context) {
	var req walletTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.NewMissingRequiredFieldError("valid request body"))
		return
	}

	result, err := h.svc.ProcessWalletTransaction(c.Request.Context(), service.WalletTransactionRequest{
		UserID:         c.Param("user_id"),
		Amount:         req.Amount,
		Type:           req.Type,
		Currency:       req.Currency,
		Description:    req.Description,
		IdempotencyKey: idempotencyKey(c),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	UserID string `json:"user_id"`
}

func (h *handlers) updateTransactionStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, domain.NewMissingRequiredFieldError("valid request body"))
		return
	}

	tx, err := h.svc.UpdateTransactionStatus(c.Request.Context(), c.Param("id"), req.Status, req.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(tx))
}

func (h *handlers) getTransaction(c *gin.Context) {
	tx, err := h.svc.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(tx))
}

func (h *handlers) getWalletBalance(c *gin.Context) {
	w, err := h.svc.GetWalletBalance(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":           w.UserID,
		"available_balance": w.AvailableBalance,
		"pending_balance":   w.PendingBalance,
		"total_balance":     w.TotalBalance,
		"currency":          w.Currency,
	})
}

func (h *handlers) queryAudit(c *gin.Context) {
	filter := domain.AuditFilter{
		UserID: c.Query("user_id"),
		Action: domain.AuditAction(c.Query("action")),
	}
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.writeError(c, domain.NewMissingRequiredFieldError("valid RFC3339 start time"))
			return
		}
		filter.Start = t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.writeError(c, domain.NewMissingRequiredFieldError("valid RFC3339 end time"))
			return
		}
		filter.End = t
	}

	entries, err := h.svc.QueryAuditLog(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if entries == nil {
		entries = []*domain.AuditEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type transactionResponse struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id"`
	Amount        int64             `json:"amount"`
	Currency      domain.Currency   `json:"currency"`
	Status        string            `json:"status"`
	Type          string            `json:"type"`
	PaymentMethod string            `json:"payment_method"`
	Description   string            `json:"description,omitempty"`
	ReferenceID   string            `json:"reference_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     *time.Time        `json:"updated_at,omitempty"`
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:            tx.ID,
		UserID:        tx.UserID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Status:        string(tx.Status),
		Type:          string(tx.Type),
		PaymentMethod: tx.PaymentMethod,
		Description:   tx.Description,
		Metadata:      tx.Metadata,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
	if tx.ReferenceID != nil {
		resp.ReferenceID = *tx.ReferenceID
	}
	return resp
}
