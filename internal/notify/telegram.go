package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts a summary of every committed order to an admin chat.
type Telegram struct {
	bot    Sender
	chatID int64
}

func NewTelegram(bot Sender, chatID int64) *Telegram {
	return &Telegram{bot: bot, chatID: chatID}
}

// clientTimeout bounds every call to the Telegram API.
const clientTimeout = 10 * time.Second

// Connect logs the bot in with token. It talks to the Telegram API.
func Connect(token string, chatID int64) (*Telegram, error) {
	client := &http.Client{Timeout: clientTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	return NewTelegram(bot, chatID), nil
}

func (t *Telegram) OrderCreated(ctx context.Context, order *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatOrder(order))

	// Send has no context, the http client timeout ends an abandoned call
	done := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func FormatOrder(order *models.Order) string { //вывод заказа
	var b strings.Builder
	fmt.Fprintf(&b, "Новый заказ #%d\nПокупатель: %d\nАдрес доставки: %d\n",
		order.ID, order.UserID, order.DeliveryAddrID)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %s × %d = %s\n", item.GoodsName, item.Count, item.ItemAmount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Итого: %s", order.TotalAmount.StringFixed(2))
	return b.String()
}

// Nop drops every notification.
type Nop struct{}

func (Nop) OrderCreated(context.Context, *models.Order) error { return nil }
