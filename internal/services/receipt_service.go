package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/example/swcms/internal/models"
)

// ReceiptService renders PDF receipts for paid pickups. Rendering failures
// degrade to a warning at the call site; they never block a workflow
// transition.
type ReceiptService struct{}

// NewReceiptService constructs a ReceiptService.
func NewReceiptService() *ReceiptService {
	return &ReceiptService{}
}

// Render produces a receipt document for a completed pickup and its payment.
func (s *ReceiptService) Render(pickup models.PickupRequest, payment models.Payment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Waste Collection Receipt")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 11)
	writeRow := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 8, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
	}

	weight := "-"
	if pickup.WasteWeight != nil {
		weight = fmt.Sprintf("%.2f kg", *pickup.WasteWeight)
	}

	method := "Online"
	if payment.RazorpayPaymentID == models.CashCollectedSentinel {
		method = "Cash"
	}

	writeRow("Request ID", pickup.RequestID.String())
	writeRow("Waste type", pickup.WasteType)
	writeRow("Collected weight", weight)
	writeRow("Scheduled for", pickup.ScheduleDateTime.Format(time.RFC1123))
	writeRow("Amount", fmt.Sprintf("INR %.2f", payment.Amount))
	writeRow("Payment method", method)
	writeRow("Payment status", payment.Status)
	if payment.RazorpayOrderID != "" {
		writeRow("Gateway order", payment.RazorpayOrderID)
	}
	writeRow("Issued", time.Now().Format(time.RFC1123))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt render: %w", err)
	}
	return buf.Bytes(), nil
}
