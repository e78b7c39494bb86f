package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/example/swcms/internal/models"
)

func TestRenderReceipt(t *testing.T) {
	svc := NewReceiptService()

	pickup := models.PickupRequest{
		RequestID:        uuid.New(),
		WasteType:        models.WasteTypePlastic,
		ScheduleDateTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Status:           models.PickupStatusCompleted,
		WasteWeight:      weightOf(4.5),
	}
	payment := models.Payment{
		Amount:            100,
		RazorpayOrderID:   "order_test",
		RazorpayPaymentID: "pay_test",
		Status:            models.PaymentStatusCompleted,
	}

	data, err := svc.Render(pickup, payment)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, "%PDF", string(data[:4]))

	// Cash collections render the same way.
	payment.RazorpayPaymentID = models.CashCollectedSentinel
	data, err = svc.Render(pickup, payment)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}
