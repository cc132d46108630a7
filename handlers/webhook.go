package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gembot/config"
	"gembot/logger"
	"gembot/models"
	"gembot/store"
	"gembot/telegram"
	"gembot/utils"
)

// Generator is the AI completion contract: a message plus recent history
// in, reply text out.
type Generator interface {
	Generate(ctx context.Context, message string, history []models.Conversation) (string, error)
}

// Bot handles Telegram webhook updates. Everything it needs is injected;
// no package-level state.
type Bot struct {
	store *store.Store
	ai    Generator
	tg    *telegram.Client
	cfg   *config.Config
}

func NewBot(st *store.Store, ai Generator, tg *telegram.Client, cfg *config.Config) *Bot {
	return &Bot{store: st, ai: ai, tg: tg, cfg: cfg}
}

// Webhook is the single entry point for Telegram updates: either a chat
// message or a button press.
func (b *Bot) Webhook(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
		c.JSON(http.StatusOK, gin.H{"status": "callback_processed"})
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	username := ""
	if msg.From != nil {
		username = msg.From.Username
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "/start":
		b.handleStart(chatID, username)
	case text == "/help":
		b.sendHelp(chatID)
	case strings.HasPrefix(text, "/promo"):
		b.handlePromo(chatID, strings.TrimSpace(strings.TrimPrefix(text, "/promo")))
	case text == "/upgrade":
		b.handleUpgrade(chatID)
	case text == "/stats":
		b.handleStats(chatID)
	case text == "/clear":
		b.handleClear(chatID)
	default:
		b.handleChat(c.Request.Context(), chatID, text)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (b *Bot) handleStart(chatID int64, username string) {
	if username == "" {
		username = "Unknown"
	}
	if err := b.store.CreateUser(chatID, username); err != nil {
		logger.Get().Error("create user", zap.Int64("user_id", chatID), zap.Error(err))
		b.reply(chatID, "Something went wrong. Please try again.")
		return
	}

	user, err := b.store.GetUser(chatID)
	if err != nil {
		logger.Get().Error("get user", zap.Int64("user_id", chatID), zap.Error(err))
		b.reply(chatID, "Something went wrong. Please try again.")
		return
	}

	keyboard := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "🎁 Promo code", CallbackData: "promo"}},
			{{Text: "⭐ Buy Premium", CallbackData: "upgrade"}},
			{{Text: "📊 Stats", CallbackData: "stats"}},
			{{Text: "ℹ️ Help", CallbackData: "help"}},
		},
	}

	welcome := fmt.Sprintf(`👋 Hi! I'm a Gemini AI chat bot.

%s

💬 Just send me a message and I'll answer!

🔧 Commands:
/promo - redeem a promo code
/upgrade - get premium
/stats - your statistics
/clear - wipe conversation history`, b.planInfo(user))

	b.send(chatID, welcome, keyboard)
}

func (b *Bot) planInfo(user *models.User) string {
	switch user.Plan {
	case models.PlanVIP:
		return "🎁 Your plan: 💎 VIP (forever)\n✨ Unlimited requests"
	case models.PlanPremium:
		if user.PremiumExpires != nil {
			if days := int(time.Until(*user.PremiumExpires).Hours() / 24); days > 0 {
				return fmt.Sprintf("⭐ Your plan: Premium\n📅 Days left: %d\n✨ Unlimited requests", days)
			}
		}
	}

	allowance, err := b.store.RemainingRequests(user.UserID)
	if err != nil {
		return "🎁 Your plan: Free"
	}
	return fmt.Sprintf("🎁 Your plan: Free\n📊 Requests left today: %d/%d\n💡 Want more? → /upgrade",
		allowance.Remaining, b.cfg.FreeDailyLimit)
}

// handleChat is the main flow: quota gate, Gemini call, history bookkeeping.
func (b *Bot) handleChat(ctx context.Context, chatID int64, text string) {
	if _, err := b.store.GetUser(chatID); err != nil {
		b.reply(chatID, "⚠️ Please press /start first")
		return
	}

	allowance, err := b.store.RemainingRequests(chatID)
	if err != nil {
		logger.Get().Error("quota check", zap.Int64("user_id", chatID), zap.Error(err))
		b.reply(chatID, "😔 Something went wrong. Try again or /clear the history.")
		return
	}

	if !allowance.Unlimited && allowance.Remaining <= 0 {
		keyboard := &telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{
				{{Text: "⭐ Buy Premium", CallbackData: "upgrade"}},
			},
		}
		b.send(chatID, "❌ Your daily limit is used up.\n\nWant unlimited access? → /upgrade", keyboard)
		return
	}

	b.tg.SendTyping(chatID)

	history, err := b.store.History(chatID, b.cfg.MaxHistory)
	if err != nil {
		logger.Get().Error("load history", zap.Int64("user_id", chatID), zap.Error(err))
		b.reply(chatID, "😔 Something went wrong. Try again or /clear the history.")
		return
	}

	answer, err := b.ai.Generate(ctx, text, history)
	if err != nil {
		logger.Get().Error("gemini generate", zap.Int64("user_id", chatID), zap.Error(err))
		b.reply(chatID, "😔 Something went wrong. Try again or /clear the history.")
		return
	}

	for _, chunk := range utils.SplitMessage(answer, utils.TelegramMessageLimit) {
		b.reply(chatID, chunk)
	}

	if err := b.store.RecordTurn(chatID, models.RoleUser, text); err != nil {
		logger.Get().Error("record turn", zap.Int64("user_id", chatID), zap.Error(err))
	}
	if err := b.store.RecordTurn(chatID, models.RoleAssistant, answer); err != nil {
		logger.Get().Error("record turn", zap.Int64("user_id", chatID), zap.Error(err))
	}

	if !allowance.Unlimited {
		if err := b.store.ConsumeRequest(chatID); err != nil {
			logger.Get().Error("consume request", zap.Int64("user_id", chatID), zap.Error(err))
		}

		after, err := b.store.RemainingRequests(chatID)
		if err == nil && !after.Unlimited && after.Remaining <= 3 {
			b.reply(chatID, fmt.Sprintf("⚠️ Requests left today: %d", after.Remaining))
		}
	}
}

func (b *Bot) handlePromo(chatID int64, code string) {
	if code == "" {
		b.reply(chatID, "🎁 Enter a promo code:\n\nExample: `/promo VIP-FOREVER`")
		return
	}

	promo, err := b.store.RedeemPromo(chatID, code)
	if err != nil {
		b.reply(chatID, "❌ "+redeemErrorMessage(err))
		return
	}

	msg := "🎉 Promo code activated!\n\n"
	switch promo.Type {
	case models.PromoVIP:
		msg += "✨ Your plan: 💎 VIP\n⏰ Duration: FOREVER"
	case models.PromoPremium:
		msg += fmt.Sprintf("⭐ Your plan: Premium\n⏰ Duration: %d days", promo.Days)
	case models.PromoRequests:
		msg += fmt.Sprintf("📊 Requests added: +%d", promo.Requests)
	}
	b.reply(chatID, msg)
}

func redeemErrorMessage(err error) string {
	switch {
	case err == store.ErrPromoNotFound:
		return "Promo code not found"
	case err == store.ErrPromoAlreadyUsed:
		return "You have already used this promo code"
	case err == store.ErrPromoExhausted:
		return "This promo code has run out of uses"
	case err == store.ErrUserNotFound:
		return "Please press /start first"
	default:
		logger.Get().Error("redeem promo", zap.Error(err))
		return "Something went wrong. Please try again."
	}
}

func (b *Bot) handleUpgrade(chatID int64) {
	keyboard := &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "⭐ Premium 7 days", CallbackData: "buy_premium_7"}},
			{{Text: "⭐ Premium 30 days", CallbackData: "buy_premium_30"}},
			{{Text: "⭐ Premium 90 days", CallbackData: "buy_premium_90"}},
			{{Text: "💎 VIP forever", CallbackData: "buy_vip"}},
		},
	}

	text := fmt.Sprintf(`⭐ PLANS

🟢 Free (current)
• %d requests per day

⭐ Premium
• ♾️ Unlimited requests
• ⚡ Fast answers
• 📝 Long memory

💎 VIP (best choice!)
• Everything in Premium
• ⏰ FOREVER, no subscription

Pick a plan:`, b.cfg.FreeDailyLimit)

	b.send(chatID, text, keyboard)
}

func (b *Bot) handleStats(chatID int64) {
	user, err := b.store.GetUser(chatID)
	if err != nil {
		b.reply(chatID, "⚠️ Please press /start first")
		return
	}

	total, _ := b.store.MessageCount(chatID)
	allowance, err := b.store.RemainingRequests(chatID)
	if err != nil {
		logger.Get().Error("quota check", zap.Int64("user_id", chatID), zap.Error(err))
		return
	}

	remaining := "∞"
	if !allowance.Unlimited {
		remaining = fmt.Sprintf("%d", allowance.Remaining)
	}

	b.reply(chatID, fmt.Sprintf(`📊 Your statistics

👤 ID: %d
📝 Plan: %s
💬 Total messages: %d
📊 Requests left: %s
📅 Registered: %s`,
		user.UserID, strings.ToUpper(user.Plan), total, remaining,
		user.CreatedAt.Format("2006-01-02")))
}

func (b *Bot) handleClear(chatID int64) {
	if err := b.store.ClearHistory(chatID); err != nil {
		logger.Get().Error("clear history", zap.Int64("user_id", chatID), zap.Error(err))
		b.reply(chatID, "Something went wrong. Please try again.")
		return
	}
	b.reply(chatID, "🗑️ Conversation history cleared!\n\nClean slate 😊")
}

func (b *Bot) handleCallback(cb *telegram.CallbackQuery) {
	chatID := cb.Message.Chat.ID

	switch {
	case cb.Data == "promo":
		b.reply(chatID, "🎁 Enter a promo code:\n\nExample: `/promo VIP-FOREVER`")
	case cb.Data == "upgrade":
		b.handleUpgrade(chatID)
	case cb.Data == "stats":
		b.handleStats(chatID)
	case cb.Data == "help":
		b.sendHelp(chatID)
	case strings.HasPrefix(cb.Data, "buy_"):
		// Payments are not wired up; swap the plan list for the contact note.
		text := "💳 To buy a plan, contact the admin.\n\nOr redeem a code: /promo CODE"
		if err := b.tg.EditMessage(chatID, cb.Message.MessageID, text); err != nil {
			logger.Get().Warn("edit message", zap.Int64("chat_id", chatID), zap.Error(err))
			b.reply(chatID, text)
		}
	}
}

func (b *Bot) sendHelp(chatID int64) {
	b.reply(chatID, `ℹ️ HELP

🔧 Commands:
/start - main menu
/promo - redeem a promo code
/upgrade - get premium
/stats - your statistics
/clear - wipe conversation history

💬 Just write me a question and I'll answer!`)
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(chatID, text, nil)
}

func (b *Bot) send(chatID int64, text string, markup *telegram.InlineKeyboardMarkup) {
	if err := b.tg.SendMessage(chatID, text, markup); err != nil {
		logger.Get().Warn("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
