package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"gembot/config"
	"gembot/database"
	"gembot/models"
	"gembot/store"
	"gembot/telegram"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) Generate(_ context.Context, _ string, _ []models.Conversation) (string, error) {
	return g.reply, g.err
}

// fakeTelegram records every Bot API call the handler makes, keeping
// message edits separate from fresh sends.
type fakeTelegram struct {
	mu    sync.Mutex
	texts []string
	edits []string
}

func (f *fakeTelegram) handler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	json.NewDecoder(r.Body).Decode(&body)
	if body.Text != "" {
		f.mu.Lock()
		if strings.HasSuffix(r.URL.Path, "/editMessageText") {
			f.edits = append(f.edits, body.Text)
		} else {
			f.texts = append(f.texts, body.Text)
		}
		f.mu.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeTelegram) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

func (f *fakeTelegram) edited() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.edits...)
}

func newTestBot(t *testing.T, ai Generator) (*gin.Engine, *store.Store, *fakeTelegram) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	cfg := &config.Config{FreeDailyLimit: 10, MaxHistory: 10}
	st := store.New(db, cfg.FreeDailyLimit)

	fake := &fakeTelegram{}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)

	bot := NewBot(st, ai, telegram.New("test-token", srv.URL), cfg)

	r := gin.New()
	r.POST("/telegram/webhook", bot.Webhook)
	return r, st, fake
}

func postUpdate(t *testing.T, r *gin.Engine, chatID int64, text string) *httptest.ResponseRecorder {
	t.Helper()

	update := map[string]interface{}{
		"message": map[string]interface{}{
			"text": text,
			"chat": map[string]interface{}{"id": chatID},
			"from": map[string]interface{}{"id": chatID, "username": "alice"},
		},
	}
	body, _ := json.Marshal(update)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookStartRegistersUser(t *testing.T) {
	r, st, fake := newTestBot(t, &stubGenerator{reply: "hi"})

	w := postUpdate(t, r, 42, "/start")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	user, err := st.GetUser(42)
	if err != nil {
		t.Fatalf("user should exist after /start: %v", err)
	}
	if user.Plan != models.PlanFree {
		t.Errorf("expected free plan, got %q", user.Plan)
	}

	sent := fake.sent()
	if len(sent) == 0 || !strings.Contains(sent[0], "Gemini AI chat bot") {
		t.Errorf("expected a welcome message, got %v", sent)
	}
}

func TestWebhookStartIsIdempotent(t *testing.T) {
	r, st, _ := newTestBot(t, &stubGenerator{reply: "hi"})

	postUpdate(t, r, 42, "/start")
	postUpdate(t, r, 42, "/start")

	user, err := st.GetUser(42)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("unexpected username %q", user.Username)
	}
}

func TestWebhookChatFlow(t *testing.T) {
	r, st, fake := newTestBot(t, &stubGenerator{reply: "the answer is 42"})
	st.CreateUser(42, "alice")

	postUpdate(t, r, 42, "what is the answer?")

	turns, _ := st.History(42, 10)
	if len(turns) != 2 {
		t.Fatalf("expected 2 recorded turns, got %d", len(turns))
	}
	if turns[0].Role != models.RoleUser || turns[0].Content != "what is the answer?" {
		t.Errorf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != models.RoleAssistant || turns[1].Content != "the answer is 42" {
		t.Errorf("unexpected assistant turn: %+v", turns[1])
	}

	user, _ := st.GetUser(42)
	if user.DailyRequests != 1 {
		t.Errorf("expected one consumed request, got %d", user.DailyRequests)
	}

	found := false
	for _, text := range fake.sent() {
		if strings.Contains(text, "the answer is 42") {
			found = true
		}
	}
	if !found {
		t.Errorf("reply never reached telegram, sent: %v", fake.sent())
	}
}

func TestWebhookChatRequiresStart(t *testing.T) {
	r, st, fake := newTestBot(t, &stubGenerator{reply: "hi"})

	postUpdate(t, r, 42, "hello there")

	if _, err := st.GetUser(42); err == nil {
		t.Error("plain messages must not auto-register users")
	}

	sent := fake.sent()
	if len(sent) != 1 || !strings.Contains(sent[0], "/start") {
		t.Errorf("expected a /start hint, got %v", sent)
	}
}

func TestWebhookLimitExhausted(t *testing.T) {
	r, st, fake := newTestBot(t, &stubGenerator{reply: "should not be called"})
	st.CreateUser(42, "alice")
	for i := 0; i < 10; i++ {
		st.ConsumeRequest(42)
	}

	postUpdate(t, r, 42, "one more question")

	turns, _ := st.History(42, 10)
	if len(turns) != 0 {
		t.Errorf("blocked message must not be recorded, got %d turns", len(turns))
	}

	sent := fake.sent()
	if len(sent) != 1 || !strings.Contains(sent[0], "daily limit") {
		t.Errorf("expected a limit message, got %v", sent)
	}
}

func TestWebhookVIPSkipsConsumption(t *testing.T) {
	r, st, _ := newTestBot(t, &stubGenerator{reply: "sure"})
	st.CreateUser(42, "alice")
	st.SetPlan(42, models.PlanVIP, 0)

	postUpdate(t, r, 42, "hello")

	user, _ := st.GetUser(42)
	if user.DailyRequests != 0 {
		t.Errorf("vip messages must not consume quota, got %d", user.DailyRequests)
	}
}

func TestWebhookPromoCommand(t *testing.T) {
	r, st, fake := newTestBot(t, &stubGenerator{reply: "hi"})
	st.CreateUser(42, "alice")
	st.CreatePromo("VIP-ABC123", models.PromoVIP, 0, 0, 1)

	postUpdate(t, r, 42, "/promo vip-abc123")

	user, _ := st.GetUser(42)
	if user.Plan != models.PlanVIP {
		t.Errorf("expected vip after redemption, got %q", user.Plan)
	}

	sent := fake.sent()
	if len(sent) != 1 || !strings.Contains(sent[0], "activated") {
		t.Errorf("expected a confirmation, got %v", sent)
	}
}

func TestWebhookPromoErrors(t *testing.T) {
	r, st, fake := newTestBot(t, &stubGenerator{reply: "hi"})
	st.CreateUser(42, "alice")

	postUpdate(t, r, 42, "/promo NOPE")

	sent := fake.sent()
	if len(sent) != 1 || !strings.Contains(sent[0], "not found") {
		t.Errorf("expected a not-found reply, got %v", sent)
	}
}

func TestWebhookClearCommand(t *testing.T) {
	r, st, _ := newTestBot(t, &stubGenerator{reply: "hi"})
	st.CreateUser(42, "alice")
	st.RecordTurn(42, models.RoleUser, "hello")

	postUpdate(t, r, 42, "/clear")

	count, _ := st.MessageCount(42)
	if count != 0 {
		t.Errorf("expected empty history after /clear, got %d", count)
	}
}

func postCallback(t *testing.T, r *gin.Engine, chatID int64, messageID int, data string) {
	t.Helper()

	update := map[string]interface{}{
		"callback_query": map[string]interface{}{
			"id":   "cb1",
			"data": data,
			"message": map[string]interface{}{
				"message_id": messageID,
				"chat":       map[string]interface{}{"id": chatID},
			},
			"from": map[string]interface{}{"id": chatID, "username": "alice"},
		},
	}
	body, _ := json.Marshal(update)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
}

func TestWebhookBuyCallbackEditsPlanMessage(t *testing.T) {
	r, st, fake := newTestBot(t, &stubGenerator{reply: "hi"})
	st.CreateUser(42, "alice")

	postCallback(t, r, 42, 7, "buy_premium_30")

	edits := fake.edited()
	if len(edits) != 1 || !strings.Contains(edits[0], "contact the admin") {
		t.Errorf("expected the plan list edited into the contact note, got %v", edits)
	}
	if sent := fake.sent(); len(sent) != 0 {
		t.Errorf("expected no fresh message alongside the edit, got %v", sent)
	}
}

func TestWebhookIgnoresGarbage(t *testing.T) {
	r, _, _ := newTestBot(t, &stubGenerator{reply: "hi"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("malformed updates should be acknowledged with 200, got %d", w.Code)
	}
}
