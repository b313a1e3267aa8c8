package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/banadiab-ai/nahkyaraby-eventhub-sub000/config"
)

var telegramClient = &http.Client{Timeout: 10 * time.Second}

// SendTelegram pushes a text message to a staff member's Telegram chat via the
// bot API.
func SendTelegram(chatID, text string) error {
	cfg := config.Get()
	if cfg.TelegramBotToken == "" {
		return fmt.Errorf("telegram bot not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", cfg.TelegramBotToken)
	resp, err := telegramClient.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram sendMessage status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("telegram sendMessage rejected")
	}
	return nil
}
