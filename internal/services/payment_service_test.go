package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/swcms/internal/models"
)

type fakeGateway struct {
	orders     int
	failCreate bool
	rejectSig  bool
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (*GatewayOrder, error) {
	if g.failCreate {
		return nil, errors.New("gateway unreachable")
	}
	g.orders++
	return &GatewayOrder{
		ID:       fmt.Sprintf("order_test_%d", g.orders),
		Amount:   amountPaise,
		Currency: "INR",
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return !g.rejectSig
}

func TestPrepareRequiresCompletedPickup(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, 100)
	resident := seedAccount(t, db, models.RoleUser, nil)

	pending := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusPending, nil)

	var transitionErr *InvalidTransitionError
	_, err := svc.Prepare(context.Background(), resident, pending.ID)
	require.ErrorAs(t, err, &transitionErr)

	// No payment record is created for an unpayable pickup.
	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestPrepareCreatesPaymentLazily(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, 100)
	resident := seedAccount(t, db, models.RoleUser, nil)

	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))

	pc, err := svc.Prepare(context.Background(), resident, pickup.ID)
	require.NoError(t, err)
	require.False(t, pc.AlreadyCompleted)
	require.Equal(t, 100.0, pc.Payment.Amount)
	require.Equal(t, models.PaymentStatusPending, pc.Payment.Status)
	require.Equal(t, "order_test_1", pc.GatewayOrderID)

	// Preparing again reuses the same payment row.
	pc2, err := svc.Prepare(context.Background(), resident, pickup.ID)
	require.NoError(t, err)
	require.Equal(t, pc.Payment.ID, pc2.Payment.ID)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestPrepareGatewayFailure(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{failCreate: true}, 100)
	resident := seedAccount(t, db, models.RoleUser, nil)

	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))

	var gatewayErr *GatewayError
	_, err := svc.Prepare(context.Background(), resident, pickup.ID)
	require.ErrorAs(t, err, &gatewayErr)

	// The payment stays pending with no order id attached.
	var payment models.Payment
	require.NoError(t, db.First(&payment, "pickup_request_id = ?", pickup.ID).Error)
	require.Equal(t, models.PaymentStatusPending, payment.Status)
	require.Empty(t, payment.RazorpayOrderID)
}

func TestConfirmLifecycle(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, 100)
	resident := seedAccount(t, db, models.RoleUser, nil)

	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))
	pc, err := svc.Prepare(context.Background(), resident, pickup.ID)
	require.NoError(t, err)

	result, err := svc.Confirm(context.Background(), resident, pickup.ID, ConfirmInput{
		GatewayPaymentID: "pay_abc",
		GatewayOrderID:   pc.GatewayOrderID,
		Signature:        "sig",
	})
	require.NoError(t, err)
	require.False(t, result.AlreadyDone)
	require.Equal(t, models.PaymentStatusCompleted, result.Payment.Status)
	require.Equal(t, "pay_abc", result.Payment.RazorpayPaymentID)

	// Confirming a completed payment is a no-op.
	result, err = svc.Confirm(context.Background(), resident, pickup.ID, ConfirmInput{
		GatewayPaymentID: "pay_other",
		GatewayOrderID:   pc.GatewayOrderID,
		Signature:        "sig",
	})
	require.NoError(t, err)
	require.True(t, result.AlreadyDone)

	var stored models.Payment
	require.NoError(t, db.First(&stored, "pickup_request_id = ?", pickup.ID).Error)
	require.Equal(t, "pay_abc", stored.RazorpayPaymentID)
}

func TestConfirmWithoutPaymentIDMarksFailed(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, 100)
	resident := seedAccount(t, db, models.RoleUser, nil)

	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))
	_, err := svc.Prepare(context.Background(), resident, pickup.ID)
	require.NoError(t, err)

	result, err := svc.Confirm(context.Background(), resident, pickup.ID, ConfirmInput{})
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusFailed, result.Payment.Status)
}

func TestConfirmBadSignature(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{rejectSig: true}, 100)
	resident := seedAccount(t, db, models.RoleUser, nil)

	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))
	pc, err := svc.Prepare(context.Background(), resident, pickup.ID)
	require.NoError(t, err)

	var validationErr *ValidationError
	_, err = svc.Confirm(context.Background(), resident, pickup.ID, ConfirmInput{
		GatewayPaymentID: "pay_abc",
		GatewayOrderID:   pc.GatewayOrderID,
		Signature:        "forged",
	})
	require.ErrorAs(t, err, &validationErr)

	// A forged callback leaves the payment untouched.
	var stored models.Payment
	require.NoError(t, db.First(&stored, "pickup_request_id = ?", pickup.ID).Error)
	require.Equal(t, models.PaymentStatusPending, stored.Status)
	require.Empty(t, stored.RazorpayPaymentID)
}

func TestConfirmOrderMismatch(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, 100)
	resident := seedAccount(t, db, models.RoleUser, nil)

	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))
	_, err := svc.Prepare(context.Background(), resident, pickup.ID)
	require.NoError(t, err)

	// Even with signature verification passing, a callback must reference
	// the order registered for this payment.
	var validationErr *ValidationError
	_, err = svc.Confirm(context.Background(), resident, pickup.ID, ConfirmInput{
		GatewayPaymentID: "pay_abc",
		GatewayOrderID:   "order_someone_elses",
		Signature:        "sig",
	})
	require.ErrorAs(t, err, &validationErr)

	var stored models.Payment
	require.NoError(t, db.First(&stored, "pickup_request_id = ?", pickup.ID).Error)
	require.Equal(t, models.PaymentStatusPending, stored.Status)
}

func TestCollectCash(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, 100)

	wardID := seedWard(t, db, 1)
	resident := seedAccount(t, db, models.RoleUser, &wardID)
	worker := seedAccount(t, db, models.RoleWorker, &wardID)

	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))

	result, err := svc.CollectCash(context.Background(), worker, pickup.ID)
	require.NoError(t, err)
	require.False(t, result.AlreadyDone)
	require.Equal(t, models.PaymentStatusCompleted, result.Payment.Status)
	require.Equal(t, models.CashCollectedSentinel, result.Payment.RazorpayPaymentID)
	require.Equal(t, 100.0, result.Payment.Amount)

	// Collecting twice never double-records.
	result, err = svc.CollectCash(context.Background(), worker, pickup.ID)
	require.NoError(t, err)
	require.True(t, result.AlreadyDone)
	require.Equal(t, 100.0, result.Payment.Amount)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCollectCashCompletesPendingPayment(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, 100)

	wardID := seedWard(t, db, 1)
	resident := seedAccount(t, db, models.RoleUser, &wardID)
	worker := seedAccount(t, db, models.RoleWorker, &wardID)

	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))

	// Resident started an online checkout but never finished it.
	_, err := svc.Prepare(context.Background(), resident, pickup.ID)
	require.NoError(t, err)

	result, err := svc.CollectCash(context.Background(), worker, pickup.ID)
	require.NoError(t, err)
	require.False(t, result.AlreadyDone)
	require.Equal(t, models.CashCollectedSentinel, result.Payment.RazorpayPaymentID)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestCollectCashScoping(t *testing.T) {
	db := setupDB(t)
	svc := NewPaymentService(db, &fakeGateway{}, 100)

	wardA := seedWard(t, db, 1)
	wardB := seedWard(t, db, 2)
	resident := seedAccount(t, db, models.RoleUser, &wardA)
	outsideWorker := seedAccount(t, db, models.RoleWorker, &wardB)

	pickup := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusCompleted, weightOf(5))

	_, err := svc.CollectCash(context.Background(), outsideWorker, pickup.ID)
	require.True(t, errors.Is(err, ErrNotFound))

	picked := seedPickup(t, db, resident.UserID, models.WasteTypeWet, models.PickupStatusPicked, nil)
	worker := seedAccount(t, db, models.RoleWorker, &wardA)

	var transitionErr *InvalidTransitionError
	_, err = svc.CollectCash(context.Background(), worker, picked.ID)
	require.ErrorAs(t, err, &transitionErr)
}
