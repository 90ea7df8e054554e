package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"dare_webapp/internal/logger"
	"dare_webapp/internal/repository"
)

// AdminBot pushes moderation alerts to platform admins over Telegram
// and answers a couple of read-only commands. It never mutates game
// state.
type AdminBot struct {
	bot      *tgbotapi.BotAPI
	games    *repository.SwitchGameRepository
	adminIDs []int64
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

func NewAdminBot(token string, games *repository.SwitchGameRepository, adminIDs []int64) (*AdminBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "admin_bot")
	log.Info("admin bot authorized", "username", api.Self.UserName)

	return &AdminBot{
		bot:      api,
		games:    games,
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start runs the update loop until Stop is called.
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop shuts the bot down, waiting for in-flight handlers.
func (b *AdminBot) Stop() {
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout")
	}
}

// isAdmin checks if user is an admin
func (b *AdminBot) isAdmin(id int64) bool {
	for _, adminID := range b.adminIDs {
		if adminID == id {
			return true
		}
	}
	return false
}

// handleCommand processes admin commands
func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "stats":
		b.handleStats(msg.Chat.ID)
	case "help", "start":
		b.reply(msg.Chat.ID, "Commands:\n/stats - switch game counts by status")
	}
}

func (b *AdminBot) handleStats(chatID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts, err := b.games.CountByStatus(ctx)
	if err != nil {
		b.log.Error("stats query failed", "error", err)
		b.reply(chatID, "stats unavailable")
		return
	}

	text := "Switch games:\n"
	for status, n := range counts {
		text += fmt.Sprintf("  %s: %d\n", status, n)
	}
	b.reply(chatID, text)
}

// NotifyProofRejected alerts all admins that a proof was rejected, so
// disputes surface before anyone files a support ticket.
func (b *AdminBot) NotifyProofRejected(gameID int64, action, feedback string) {
	text := fmt.Sprintf("Proof rejected on switch game #%d", gameID)
	if feedback != "" {
		text += fmt.Sprintf("\nFeedback: %s", feedback)
	}
	for _, adminID := range b.adminIDs {
		b.reply(adminID, text)
	}
}

func (b *AdminBot) reply(chatID int64, text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("telegram send failed", "chat_id", chatID, "error", err)
	}
}
