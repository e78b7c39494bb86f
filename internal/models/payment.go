package models

import (
	"github.com/google/uuid"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// CashCollectedSentinel marks a payment collected manually by a worker
// instead of through the gateway. Stored in RazorpayPaymentID.
const CashCollectedSentinel = "CASH_COLLECTED"

// Payment tracks the one payment associated with a pickup request.
// Created lazily on first payment-flow touch.
type Payment struct {
	BaseModel
	UserID            uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	PickupRequestID   uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"pickup_request_id"`
	PickupRequest     *PickupRequest `json:"pickup_request,omitempty"`
	Amount            float64        `json:"amount"`
	RazorpayOrderID   string         `json:"razorpay_order_id"`
	RazorpayPaymentID string         `json:"razorpay_payment_id"`
	Status            string         `gorm:"default:pending" json:"status"`
}
