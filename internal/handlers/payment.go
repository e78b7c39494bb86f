package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/swcms/internal/middleware"
	"github.com/example/swcms/internal/models"
	"github.com/example/swcms/internal/services"
)

// PaymentHandler manages payment endpoints for residents.
type PaymentHandler struct {
	db       *gorm.DB
	payments *services.PaymentService
	receipts *services.ReceiptService
	telegram *services.TelegramService
	keyID    string
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(db *gorm.DB, payments *services.PaymentService, receipts *services.ReceiptService, telegram *services.TelegramService, keyID string) *PaymentHandler {
	return &PaymentHandler{db: db, payments: payments, receipts: receipts, telegram: telegram, keyID: keyID}
}

// Prepare lazily creates the payment for a completed pickup and returns the
// gateway order details needed to start checkout.
func (h *PaymentHandler) Prepare(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	pc, err := h.payments.Prepare(c.Context(), actor, id)
	if err != nil {
		return serviceError(err)
	}

	if pc.AlreadyCompleted {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "payment already completed",
			"data":    pc.Payment,
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"payment":  pc.Payment,
			"order_id": pc.GatewayOrderID,
			"key_id":   h.keyID,
			"amount":   pc.Payment.Amount,
		},
	})
}

type confirmPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// Confirm applies the gateway confirmation callback for a pickup's payment.
func (h *PaymentHandler) Confirm(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req confirmPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.payments.Confirm(c.Context(), actor, id, services.ConfirmInput{
		GatewayPaymentID: req.RazorpayPaymentID,
		GatewayOrderID:   req.RazorpayOrderID,
		Signature:        req.RazorpaySignature,
	})
	if err != nil {
		return serviceError(err)
	}

	if result.AlreadyDone {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "payment already completed",
			"data":    result.Payment,
		})
	}

	if result.Payment.Status == models.PaymentStatusCompleted && h.telegram != nil {
		go h.notifyPayment(result.Payment, "Online")
	}

	return c.JSON(fiber.Map{"success": true, "data": result.Payment})
}

func (h *PaymentHandler) notifyPayment(payment models.Payment, method string) {
	var pickup models.PickupRequest
	if err := h.db.First(&pickup, "id = ?", payment.PickupRequestID).Error; err != nil {
		return
	}
	var user models.User
	if err := h.db.First(&user, "id = ?", payment.UserID).Error; err != nil {
		return
	}

	if err := h.telegram.NotifyPaymentReceived(services.PaymentNotification{
		RequestID: pickup.RequestID.String(),
		UserName:  user.Username,
		Amount:    payment.Amount,
		Method:    method,
	}); err != nil {
		log.Printf("[Payment] Telegram notification failed: %v", err)
	}
}

// Receipt renders the PDF receipt for a paid pickup. Renderer trouble
// degrades to a retryable error instead of touching any state.
func (h *PaymentHandler) Receipt(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	payment, err := h.payments.ForPickup(c.Context(), actor, id)
	if err != nil {
		return serviceError(err)
	}

	if payment.Status != models.PaymentStatusCompleted {
		return fiber.NewError(fiber.StatusConflict, "payment not completed")
	}

	var pickup models.PickupRequest
	if err := h.db.First(&pickup, "id = ?", payment.PickupRequestID).Error; err != nil {
		return err
	}

	doc, err := h.receipts.Render(pickup, *payment)
	if err != nil {
		log.Printf("[Receipt] render failed for pickup %s: %v", pickup.ID, err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "receipt temporarily unavailable")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="receipt-`+pickup.RequestID.String()+`.pdf"`)
	return c.Send(doc)
}
