package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// IdempotencyKeyHeader carries the order id on every participant call so
// a retried call has the same effect as a single execution
const IdempotencyKeyHeader = "Idempotency-Key"

// NewParticipantHTTPClient builds the long-lived, connection-pooled client
// shared by all participant clients. It is created once at startup and
// reused; per-call deadlines come from context, not from this client.
func NewParticipantHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

type chargeRequest struct {
	OrderID  string `json:"orderId"`
	Amount   *int64 `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

type reserveRequest struct {
	OrderID string `json:"orderId"`
}

// HTTPPaymentClient invokes the payment participant over HTTP
type HTTPPaymentClient struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewHTTPPaymentClient creates a new HTTPPaymentClient
func NewHTTPPaymentClient(httpClient *http.Client, baseURL string, timeout time.Duration) *HTTPPaymentClient {
	return &HTTPPaymentClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
	}
}

// Charge submits the charge and maps the response to the three-way
// outcome: 2xx approved, 4xx declined, anything else unreachable.
// No retries happen here; retry policy belongs to the orchestrator.
func (c *HTTPPaymentClient) Charge(ctx context.Context, orderID models.ID, amount models.Money) (domain.ChargeOutcome, error) {
	body := chargeRequest{
		OrderID:  orderID.String(),
		Amount:   &amount.Amount,
		Currency: amount.Currency,
	}

	status, err := c.post(ctx, c.baseURL+"/payments", orderID, body)
	if err != nil {
		return domain.ChargeUnreachable, err
	}

	switch {
	case status >= 200 && status < 300:
		return domain.ChargeApproved, nil
	case status >= 400 && status < 500:
		return domain.ChargeDeclined, nil
	default:
		return domain.ChargeUnreachable, errors.Errorf("payment participant returned status %d", status)
	}
}

// Refund undoes a charge. A 404 counts as success: with an ambiguous
// timeout the charge may never have been applied, and refunding nothing
// is the desired end state.
func (c *HTTPPaymentClient) Refund(ctx context.Context, orderID models.ID) error {
	status, err := c.delete(ctx, fmt.Sprintf("%s/payments/%s", c.baseURL, orderID), orderID)
	if err != nil {
		return errors.Wrap(err, "refund request failed")
	}

	if (status >= 200 && status < 300) || status == http.StatusNotFound {
		return nil
	}

	return errors.Errorf("payment participant returned status %d on refund", status)
}

func (c *HTTPPaymentClient) post(ctx context.Context, url string, orderID models.ID, body interface{}) (int, error) {
	return doJSON(ctx, c.httpClient, c.timeout, http.MethodPost, url, orderID, body)
}

func (c *HTTPPaymentClient) delete(ctx context.Context, url string, orderID models.ID) (int, error) {
	return doJSON(ctx, c.httpClient, c.timeout, http.MethodDelete, url, orderID, nil)
}

// HTTPInventoryClient invokes the inventory participant over HTTP
type HTTPInventoryClient struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewHTTPInventoryClient creates a new HTTPInventoryClient
func NewHTTPInventoryClient(httpClient *http.Client, baseURL string, timeout time.Duration) *HTTPInventoryClient {
	return &HTTPInventoryClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
	}
}

// Reserve submits the reservation: 2xx reserved, 4xx out of stock,
// anything else unreachable
func (c *HTTPInventoryClient) Reserve(ctx context.Context, orderID models.ID) (domain.ReserveOutcome, error) {
	status, err := doJSON(ctx, c.httpClient, c.timeout, http.MethodPost, c.baseURL+"/inventory", orderID, reserveRequest{
		OrderID: orderID.String(),
	})
	if err != nil {
		return domain.ReserveUnreachable, err
	}

	switch {
	case status >= 200 && status < 300:
		return domain.ReserveReserved, nil
	case status >= 400 && status < 500:
		return domain.ReserveOutOfStock, nil
	default:
		return domain.ReserveUnreachable, errors.Errorf("inventory participant returned status %d", status)
	}
}

// Release undoes a reservation; 404 counts as success
func (c *HTTPInventoryClient) Release(ctx context.Context, orderID models.ID) error {
	status, err := doJSON(ctx, c.httpClient, c.timeout, http.MethodDelete,
		fmt.Sprintf("%s/inventory/%s", c.baseURL, orderID), orderID, nil)
	if err != nil {
		return errors.Wrap(err, "release request failed")
	}

	if (status >= 200 && status < 300) || status == http.StatusNotFound {
		return nil
	}

	return errors.Errorf("inventory participant returned status %d on release", status)
}

// doJSON performs one bounded participant call and returns the response
// status. Transport-level failures (including the deadline firing) come
// back as errors; the caller maps them to the unreachable outcome.
func doJSON(ctx context.Context, client *http.Client, timeout time.Duration, method, url string, orderID models.ID, body interface{}) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "failed to marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, errors.Wrap(err, "failed to build request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(IdempotencyKeyHeader, orderID.String())

	resp, err := client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "participant call failed")
	}
	defer resp.Body.Close()

	// Drain so the pooled connection can be reused
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
