package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/draftea/order-system/payment-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// PaymentHandlers contains payment HTTP handlers
type PaymentHandlers struct {
	ledger *domain.Ledger
	logger *zap.Logger
}

// NewPaymentHandlers creates new payment handlers
func NewPaymentHandlers(ledger *domain.Ledger, logger *zap.Logger) *PaymentHandlers {
	return &PaymentHandlers{
		ledger: ledger,
		logger: logger,
	}
}

type chargeRequest struct {
	OrderID  string `json:"orderId"`
	Amount   *int64 `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

type chargeResponse struct {
	OrderID  string `json:"orderId"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

// CreateCharge handles charge requests. The order id doubles as the
// idempotency key: replaying a known charge returns the recorded
// decision.
func (h *PaymentHandlers) CreateCharge(w http.ResponseWriter, r *http.Request) {
	var req chargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.OrderID == "" {
		req.OrderID = r.Header.Get("Idempotency-Key")
	}

	orderID, err := models.NewID(req.OrderID)
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	amount := int64(0)
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount < 0 {
		http.Error(w, "Amount must not be negative", http.StatusBadRequest)
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	charge := h.ledger.Charge(orderID, models.NewMoney(amount, currency))

	h.logger.Info("charge decided",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(charge.Status)),
		zap.Int64("amount", charge.Amount.Amount),
	)

	// 200 approved, 400 declined: the wire contract keys on the status
	// code, the body carries the reason
	status := http.StatusOK
	if charge.Status == domain.ChargeStatusDeclined {
		status = http.StatusBadRequest
	}

	writeCharge(w, status, charge)
}

// RefundCharge handles refund requests; refunding twice is a no-op
func (h *PaymentHandlers) RefundCharge(w http.ResponseWriter, r *http.Request) {
	orderID, err := models.NewID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	charge, err := h.ledger.Refund(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrChargeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.Info("charge refunded", zap.String("order_id", orderID.String()))

	writeCharge(w, http.StatusOK, charge)
}

// GetCharge handles charge retrieval requests
func (h *PaymentHandlers) GetCharge(w http.ResponseWriter, r *http.Request) {
	orderID, err := models.NewID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	charge, ok := h.ledger.Get(orderID)
	if !ok {
		http.Error(w, domain.ErrChargeNotFound.Error(), http.StatusNotFound)
		return
	}

	writeCharge(w, http.StatusOK, charge)
}

func writeCharge(w http.ResponseWriter, status int, charge domain.Charge) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(chargeResponse{
		OrderID:  charge.OrderID.String(),
		Status:   string(charge.Status),
		Amount:   charge.Amount.Amount,
		Currency: charge.Amount.Currency,
	})
}

// RegisterRoutes registers payment routes
func (h *PaymentHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/payments", h.CreateCharge)
	r.Route("/payments/{id}", func(r chi.Router) {
		r.Get("/", h.GetCharge)
		r.Delete("/", h.RefundCharge)
	})
}
