package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	svc := NewRazorpayService("key", "secret", true)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("order_1|pay_1"))
	valid := hex.EncodeToString(mac.Sum(nil))

	require.True(t, svc.VerifySignature("order_1", "pay_1", valid))
	require.False(t, svc.VerifySignature("order_1", "pay_1", "forged"))
	require.False(t, svc.VerifySignature("order_2", "pay_1", valid))

	// No secret configured means verification is skipped.
	local := NewRazorpayService("key", "", true)
	require.True(t, local.VerifySignature("order_1", "pay_1", "anything"))
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key", user)

		var req razorpayOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(10000), req.Amount)
		require.Equal(t, "INR", req.Currency)

		json.NewEncoder(w).Encode(razorpayOrderResponse{
			ID: "order_test", Amount: req.Amount, Currency: req.Currency, Status: "created",
		})
	}))
	defer server.Close()

	svc := NewRazorpayService("key", "secret", true)
	svc.baseURL = server.URL

	order, err := svc.CreateOrder(context.Background(), 10000, "rcpt-1")
	require.NoError(t, err)
	require.Equal(t, "order_test", order.ID)
	require.Equal(t, int64(10000), order.Amount)
}

func TestCreateOrderDisabled(t *testing.T) {
	svc := NewRazorpayService("key", "secret", false)
	_, err := svc.CreateOrder(context.Background(), 10000, "rcpt-1")
	require.Error(t, err)
}

func TestCreateOrderRejectsBadAmount(t *testing.T) {
	svc := NewRazorpayService("key", "secret", true)
	_, err := svc.CreateOrder(context.Background(), 0, "rcpt-1")
	require.Error(t, err)
}
