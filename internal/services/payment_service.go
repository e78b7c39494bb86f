package services

import (
	"context"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/models"
)

// GatewayOrder is an order registered with the payment gateway.
type GatewayOrder struct {
	ID       string
	Amount   int64
	Currency string
}

// PaymentGateway creates gateway orders and verifies confirmation callbacks.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*GatewayOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// PaymentService tracks the one payment per pickup request:
// pending -> completed | failed, plus the worker cash-collection path.
type PaymentService struct {
	db      *gorm.DB
	gateway PaymentGateway
	fee     float64
}

// NewPaymentService constructs a PaymentService. fee is the default charge
// applied when a payment record is first created.
func NewPaymentService(db *gorm.DB, gateway PaymentGateway, fee float64) *PaymentService {
	return &PaymentService{db: db, gateway: gateway, fee: fee}
}

// PaymentContext is what a resident needs to start a gateway checkout.
type PaymentContext struct {
	Payment          models.Payment
	GatewayOrderID   string
	AlreadyCompleted bool
}

// Prepare lazily creates the payment record for a completed pickup and
// registers a gateway order for it. The gateway call happens before any
// order id is persisted, so a gateway outage leaves local state untouched.
func (s *PaymentService) Prepare(ctx context.Context, actor Actor, pickupID uuid.UUID) (*PaymentContext, error) {
	var pickup models.PickupRequest
	err := s.db.WithContext(ctx).
		First(&pickup, "id = ? AND user_id = ?", pickupID, actor.UserID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if pickup.Status != models.PickupStatusCompleted {
		return nil, &InvalidTransitionError{Action: "pay for", Status: pickup.Status}
	}

	payment, err := s.ensurePayment(ctx, &pickup)
	if err != nil {
		return nil, err
	}

	if payment.Status == models.PaymentStatusCompleted {
		return &PaymentContext{Payment: *payment, AlreadyCompleted: true}, nil
	}

	order, err := s.gateway.CreateOrder(ctx, paise(payment.Amount), pickup.RequestID.String())
	if err != nil {
		return nil, &GatewayError{Op: "create order", Err: err}
	}

	if err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Update("razorpay_order_id", order.ID).Error; err != nil {
		return nil, err
	}

	payment.RazorpayOrderID = order.ID
	return &PaymentContext{Payment: *payment, GatewayOrderID: order.ID}, nil
}

// ConfirmInput carries the gateway confirmation callback fields.
type ConfirmInput struct {
	GatewayPaymentID string
	GatewayOrderID   string
	Signature        string
}

// ConfirmResult reports the outcome of a confirmation callback.
type ConfirmResult struct {
	Payment     models.Payment
	AlreadyDone bool
}

// Confirm applies a gateway confirmation callback. A callback without a
// gateway payment id marks the payment failed. Confirming an already
// completed payment changes nothing and is reported as already done.
func (s *PaymentService) Confirm(ctx context.Context, actor Actor, pickupID uuid.UUID, in ConfirmInput) (*ConfirmResult, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Select("payments.*").
		Joins("JOIN pickup_requests ON pickup_requests.id = payments.pickup_request_id").
		Where("pickup_requests.id = ? AND pickup_requests.user_id = ?", pickupID, actor.UserID).
		First(&payment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if payment.Status == models.PaymentStatusCompleted {
		return &ConfirmResult{Payment: payment, AlreadyDone: true}, nil
	}

	if in.GatewayPaymentID == "" {
		if err := s.setStatus(ctx, payment.ID, models.PaymentStatusFailed, ""); err != nil {
			return nil, err
		}
		payment.Status = models.PaymentStatusFailed
		return &ConfirmResult{Payment: payment}, nil
	}

	// A callback that does not reference the registered order, or carries a
	// bad signature, is rejected outright with no state change.
	if in.GatewayOrderID != payment.RazorpayOrderID {
		return nil, newValidationError("payment order mismatch")
	}

	if !s.gateway.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.Signature) {
		return nil, newValidationError("payment signature verification failed")
	}

	if err := s.setStatus(ctx, payment.ID, models.PaymentStatusCompleted, in.GatewayPaymentID); err != nil {
		return nil, err
	}

	payment.Status = models.PaymentStatusCompleted
	payment.RazorpayPaymentID = in.GatewayPaymentID
	return &ConfirmResult{Payment: payment}, nil
}

// CollectCash records a manual cash collection by a ward-scoped worker or an
// admin. Repeating it against a completed payment is an informational no-op:
// the amount stays as it was and nothing is double-recorded.
func (s *PaymentService) CollectCash(ctx context.Context, actor Actor, pickupID uuid.UUID) (*ConfirmResult, error) {
	pickup, err := pickupForCollector(s.db.WithContext(ctx), actor, pickupID)
	if err != nil {
		return nil, err
	}

	if pickup.Status != models.PickupStatusCompleted {
		return nil, &InvalidTransitionError{Action: "collect payment for", Status: pickup.Status}
	}

	var result ConfirmResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("pickup_request_id = ?", pickup.ID).First(&payment).Error
		if err == gorm.ErrRecordNotFound {
			payment = models.Payment{
				UserID:            pickup.UserID,
				PickupRequestID:   pickup.ID,
				Amount:            s.fee,
				RazorpayPaymentID: models.CashCollectedSentinel,
				Status:            models.PaymentStatusCompleted,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
			result.Payment = payment
			return nil
		}
		if err != nil {
			return err
		}

		if payment.Status == models.PaymentStatusCompleted {
			result.Payment = payment
			result.AlreadyDone = true
			return nil
		}

		if err := tx.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]any{
				"status":              models.PaymentStatusCompleted,
				"razorpay_payment_id": models.CashCollectedSentinel,
			}).Error; err != nil {
			return err
		}

		payment.Status = models.PaymentStatusCompleted
		payment.RazorpayPaymentID = models.CashCollectedSentinel
		result.Payment = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// ForPickup returns the payment, if any, attached to a resident's pickup.
func (s *PaymentService) ForPickup(ctx context.Context, actor Actor, pickupID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Select("payments.*").
		Joins("JOIN pickup_requests ON pickup_requests.id = payments.pickup_request_id").
		Where("pickup_requests.id = ? AND pickup_requests.user_id = ?", pickupID, actor.UserID).
		First(&payment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) ensurePayment(ctx context.Context, pickup *models.PickupRequest) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).
		Where("pickup_request_id = ?", pickup.ID).
		First(&payment).Error
	if err == nil {
		return &payment, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	payment = models.Payment{
		UserID:          pickup.UserID,
		PickupRequestID: pickup.ID,
		Amount:          s.fee,
		Status:          models.PaymentStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) setStatus(ctx context.Context, id uuid.UUID, status, gatewayPaymentID string) error {
	updates := map[string]any{"status": status}
	if gatewayPaymentID != "" {
		updates["razorpay_payment_id"] = gatewayPaymentID
	}
	return s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func paise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
