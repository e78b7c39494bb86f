package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// RazorpayService talks to the Razorpay orders API and verifies callback
// signatures. It satisfies PaymentGateway.
type RazorpayService struct {
	baseURL   string
	keyID     string
	keySecret string
	enabled   bool
	client    *http.Client
}

// NewRazorpayService constructs a RazorpayService.
func NewRazorpayService(keyID, keySecret string, enabled bool) *RazorpayService {
	return &RazorpayService{
		baseURL:   "https://api.razorpay.com/v1",
		keyID:     keyID,
		keySecret: keySecret,
		enabled:   enabled,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type razorpayOrderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateOrder registers an order with Razorpay. Amount is in paise.
func (s *RazorpayService) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*GatewayOrder, error) {
	if !s.enabled {
		return nil, errors.New("razorpay integration is disabled")
	}
	if amountPaise <= 0 {
		return nil, fmt.Errorf("invalid order amount %d", amountPaise)
	}

	payload, err := json.Marshal(razorpayOrderRequest{
		Amount:         amountPaise,
		Currency:       "INR",
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay order marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(s.baseURL, "/")+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("razorpay order request build: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.keyID, s.keySecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay order request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("razorpay order failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var order razorpayOrderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("razorpay order unmarshal: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("razorpay order: empty order id")
	}

	return &GatewayOrder{ID: order.ID, Amount: order.Amount, Currency: order.Currency}, nil
}

// VerifySignature checks the HMAC-SHA256 callback signature over
// "order_id|payment_id". With no key secret configured, verification is
// skipped so local and test setups still work.
func (s *RazorpayService) VerifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return true
	}

	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
