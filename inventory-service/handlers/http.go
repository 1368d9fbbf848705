package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/draftea/order-system/inventory-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// InventoryHandlers contains inventory HTTP handlers
type InventoryHandlers struct {
	stock  *domain.Stock
	logger *zap.Logger
}

// NewInventoryHandlers creates new inventory handlers
func NewInventoryHandlers(stock *domain.Stock, logger *zap.Logger) *InventoryHandlers {
	return &InventoryHandlers{
		stock:  stock,
		logger: logger,
	}
}

type reserveRequest struct {
	OrderID string `json:"orderId"`
}

type reservationResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type availabilityResponse struct {
	Available int64 `json:"available"`
}

// CreateReservation handles reservation requests. The order id doubles
// as the idempotency key: replaying a known reservation returns the
// recorded decision without consuming another unit.
func (h *InventoryHandlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
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

	reservation := h.stock.Reserve(orderID)

	h.logger.Info("reservation decided",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(reservation.Status)),
		zap.Int64("available", h.stock.Available()),
	)

	// 200 reserved, 400 out of stock: the wire contract keys on the
	// status code, the body carries the reason
	status := http.StatusOK
	if reservation.Status == domain.ReservationStatusOutOfStock {
		status = http.StatusBadRequest
	}

	writeReservation(w, status, reservation)
}

// ReleaseReservation handles release requests; releasing twice is a no-op
func (h *InventoryHandlers) ReleaseReservation(w http.ResponseWriter, r *http.Request) {
	orderID, err := models.NewID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	reservation, err := h.stock.Release(orderID)
	if err != nil {
		if errors.Is(err, domain.ErrReservationNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logger.Info("reservation released", zap.String("order_id", orderID.String()))

	writeReservation(w, http.StatusOK, reservation)
}

// GetAvailability handles availability requests
func (h *InventoryHandlers) GetAvailability(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(availabilityResponse{Available: h.stock.Available()})
}

func writeReservation(w http.ResponseWriter, status int, reservation domain.Reservation) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(reservationResponse{
		OrderID: reservation.OrderID.String(),
		Status:  string(reservation.Status),
	})
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/inventory", h.GetAvailability)
	r.Post("/inventory", h.CreateReservation)
	r.Delete("/inventory/{id}", h.ReleaseReservation)
}
