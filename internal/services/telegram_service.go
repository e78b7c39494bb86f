package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, text)
}

// PickupNotification carries pickup data for admin notifications.
type PickupNotification struct {
	RequestID   string
	UserName    string
	WasteType   string
	ScheduledAt time.Time
	Ward        string
}

// NotifyNewPickup alerts the admin chat about a freshly submitted request.
func (s *TelegramService) NotifyNewPickup(pickup PickupNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	ward := pickup.Ward
	if ward == "" {
		ward = "unassigned"
	}

	message := fmt.Sprintf(`<b>New pickup request</b>
<b>Request:</b> %s
<b>Resident:</b> %s
<b>Waste type:</b> %s
<b>Ward:</b> %s
<b>Scheduled:</b> %s`,
		pickup.RequestID,
		pickup.UserName,
		pickup.WasteType,
		ward,
		pickup.ScheduledAt.Format(time.RFC1123),
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}

// PaymentNotification carries payment data for admin notifications.
type PaymentNotification struct {
	RequestID string
	UserName  string
	Amount    float64
	Method    string
}

// NotifyPaymentReceived alerts the admin chat about a completed payment.
func (s *TelegramService) NotifyPaymentReceived(payment PaymentNotification) error {
	if s.adminChatID == "" {
		return nil
	}

	message := fmt.Sprintf(`<b>Payment received</b>
<b>Request:</b> %s
<b>Resident:</b> %s
<b>Amount:</b> INR %.2f
<b>Method:</b> %s`,
		payment.RequestID,
		payment.UserName,
		payment.Amount,
		payment.Method,
	)

	return s.SendToAdmin(strings.TrimSpace(message))
}
