package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPPaymentClient_Charge(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		expectedOutcome domain.ChargeOutcome
		expectError     bool
	}{
		{name: "approved on 200", status: http.StatusOK, expectedOutcome: domain.ChargeApproved},
		{name: "approved on 201", status: http.StatusCreated, expectedOutcome: domain.ChargeApproved},
		{name: "declined on 400", status: http.StatusBadRequest, expectedOutcome: domain.ChargeDeclined},
		{name: "declined on 402", status: http.StatusPaymentRequired, expectedOutcome: domain.ChargeDeclined},
		{name: "declined on 422", status: http.StatusUnprocessableEntity, expectedOutcome: domain.ChargeDeclined},
		{name: "unreachable on 500", status: http.StatusInternalServerError, expectedOutcome: domain.ChargeUnreachable, expectError: true},
		{name: "unreachable on 503", status: http.StatusServiceUnavailable, expectedOutcome: domain.ChargeUnreachable, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderID := models.GenerateUUID()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/payments", r.URL.Path)
				assert.Equal(t, orderID.String(), r.Header.Get(IdempotencyKeyHeader))

				var body chargeRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, orderID.String(), body.OrderID)
				require.NotNil(t, body.Amount)
				assert.Equal(t, int64(500), *body.Amount)

				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewHTTPPaymentClient(server.Client(), server.URL, time.Second)
			outcome, err := client.Charge(context.Background(), orderID, models.NewMoney(500, "USD"))

			assert.Equal(t, tt.expectedOutcome, outcome)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPPaymentClient_Charge_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPPaymentClient(server.Client(), server.URL, 20*time.Millisecond)
	outcome, err := client.Charge(context.Background(), models.GenerateUUID(), models.NewMoney(500, "USD"))

	// The deadline firing is indistinguishable from the remote side
	// committing; only the unreachable outcome is safe to report.
	assert.Equal(t, domain.ChargeUnreachable, outcome)
	assert.Error(t, err)
}

func TestHTTPPaymentClient_Refund(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectError bool
	}{
		{name: "succeeds on 200", status: http.StatusOK},
		{name: "succeeds on 204", status: http.StatusNoContent},
		{name: "nothing to refund counts as done", status: http.StatusNotFound},
		{name: "fails on 500", status: http.StatusInternalServerError, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderID := models.GenerateUUID()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/payments/"+orderID.String(), r.URL.Path)
				assert.Equal(t, orderID.String(), r.Header.Get(IdempotencyKeyHeader))
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewHTTPPaymentClient(server.Client(), server.URL, time.Second)
			err := client.Refund(context.Background(), orderID)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPInventoryClient_Reserve(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		expectedOutcome domain.ReserveOutcome
		expectError     bool
	}{
		{name: "reserved on 200", status: http.StatusOK, expectedOutcome: domain.ReserveReserved},
		{name: "out of stock on 400", status: http.StatusBadRequest, expectedOutcome: domain.ReserveOutOfStock},
		{name: "out of stock on 409", status: http.StatusConflict, expectedOutcome: domain.ReserveOutOfStock},
		{name: "unreachable on 502", status: http.StatusBadGateway, expectedOutcome: domain.ReserveUnreachable, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderID := models.GenerateUUID()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/inventory", r.URL.Path)
				assert.Equal(t, orderID.String(), r.Header.Get(IdempotencyKeyHeader))
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewHTTPInventoryClient(server.Client(), server.URL, time.Second)
			outcome, err := client.Reserve(context.Background(), orderID)

			assert.Equal(t, tt.expectedOutcome, outcome)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHTTPInventoryClient_Release(t *testing.T) {
	orderID := models.GenerateUUID()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/inventory/"+orderID.String(), r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewHTTPInventoryClient(server.Client(), server.URL, time.Second)

	require.NoError(t, client.Release(context.Background(), orderID))
	assert.Equal(t, 1, calls)
}

func TestHTTPInventoryClient_Reserve_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewHTTPInventoryClient(NewParticipantHTTPClient(), server.URL, time.Second)
	outcome, err := client.Reserve(context.Background(), models.GenerateUUID())

	assert.Equal(t, domain.ReserveUnreachable, outcome)
	assert.Error(t, err)
}
