package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/datavault/internal/model"
)

// chatServer fakes an OpenAI-compatible chat-completion endpoint that always
// replies with content. It counts requests.
func chatServer(t *testing.T, status int, content string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req struct {
			Model       string  `json:"model"`
			Temperature float32 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, float32(0.5), req.Temperature)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": content, "type": "server_error"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestGateway(t *testing.T, status int, content string, l *Limiter) (*Gateway, *atomic.Int32) {
	t.Helper()
	srv, calls := chatServer(t, status, content)
	return NewGateway(NewOpenAICompleter("test-key", srv.URL, "test-model", 0.5), l), calls
}

const fieldsReply = `Ecco i dati:
{"category": "Gioielli", "year": "1965", "purchasePrice": 120, "purchaseDate": "01021990", "currentValue": 300, "image": "https://img.example/omega.jpg"}
Spero sia utile.`

func TestSuggestFieldsMergesIntoDraft(t *testing.T) {
	g, _ := newTestGateway(t, http.StatusOK, fieldsReply, nil)

	d := model.Draft{Name: "Orologio Omega", Image: "keep-me"}
	require.NoError(t, g.Complete(context.Background(), &d))

	assert.Equal(t, model.Draft{
		Name:          "Orologio Omega",
		Category:      "Gioielli",
		Year:          "1965",
		PurchasePrice: 120,
		PurchaseDate:  "01/02/1990",
		CurrentValue:  300,
		Image:         "https://img.example/omega.jpg",
	}, d)
}

func TestApplyToKeepsPriorStringsWhenEmpty(t *testing.T) {
	d := model.Draft{Name: "Radio", Category: "Elettronica", Year: "1970", PurchaseDate: "05/05/2005", Image: "a.jpg"}
	FieldSuggestion{PurchasePrice: 10, CurrentValue: 20}.ApplyTo(&d)

	assert.Equal(t, "Elettronica", d.Category)
	assert.Equal(t, "1970", d.Year)
	assert.Equal(t, "05/05/2005", d.PurchaseDate)
	assert.Equal(t, "a.jpg", d.Image)
	assert.Equal(t, 10.0, d.PurchasePrice)
	assert.Equal(t, 20.0, d.CurrentValue)
}

func TestNoJSONObjectIsMalformedAndDraftUnchanged(t *testing.T) {
	g, _ := newTestGateway(t, http.StatusOK, "Mi dispiace, non conosco questo prodotto.", nil)

	d := model.Draft{Name: "Oggetto misterioso", Category: "Arte", PurchasePrice: 5}
	before := d
	err := g.Complete(context.Background(), &d)

	require.Error(t, err)
	assert.True(t, IsMalformedResponse(err))
	assert.False(t, IsServiceUnavailable(err))
	assert.Equal(t, before, d)
}

func TestServiceFailureSurfacesDetail(t *testing.T) {
	g, _ := newTestGateway(t, http.StatusInternalServerError, "upstream exploded", nil)

	d := model.Draft{Name: "Lampada"}
	before := d
	err := g.Complete(context.Background(), &d)

	require.Error(t, err)
	assert.True(t, IsServiceUnavailable(err))
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.Equal(t, before, d)
}

func TestSuggestFieldsRequiresName(t *testing.T) {
	g, calls := newTestGateway(t, http.StatusOK, fieldsReply, nil)

	_, err := g.SuggestFields(context.Background(), "   ")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name"}, verr.Fields)
	assert.Equal(t, "invalid", Kind(err))
	assert.Zero(t, calls.Load())
}

func TestParseFieldSuggestionIsStrict(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing field", `{"category":"A","year":"1","purchasePrice":1,"purchaseDate":"x","currentValue":2}`},
		{"number as string", `{"category":"A","year":"1","purchasePrice":"1","purchaseDate":"x","currentValue":2,"image":"i"}`},
		{"year as number", `{"category":"A","year":1999,"purchasePrice":1,"purchaseDate":"x","currentValue":2,"image":"i"}`},
		{"null field", `{"category":null,"year":"1","purchasePrice":1,"purchaseDate":"x","currentValue":2,"image":"i"}`},
		{"broken json", `{"category": "A",`},
		{"closing before opening", `} nothing {`},
	}

	for _, tt := range tests {
		_, err := parseFieldSuggestion(tt.content)
		assert.True(t, IsMalformedResponse(err), "%s: expected malformed response, got %v", tt.name, err)
	}
}

func TestExtractJSONSpansFirstToLastBrace(t *testing.T) {
	got, err := extractJSON("prefisso {\"a\": {\"b\": 1}} suffisso")
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, got)
}

func TestEstimateNumeric(t *testing.T) {
	reply := "```json\n{\"rarity\": 8, \"marketDemand\": 6, \"longevity\": 9, \"marketTrends\": 5}\n```"
	g, _ := newTestGateway(t, http.StatusOK, reply, nil)

	e, err := g.Estimate(context.Background(), model.Item{Name: "Orologio"}, ScaleNumeric)
	require.NoError(t, err)
	assert.Equal(t, ScaleNumeric, e.Scale)
	assert.Equal(t, 8, e.Rarity.Score)
	assert.Equal(t, 6, e.MarketDemand.Score)
	assert.Equal(t, 9, e.Longevity.Score)
	assert.Equal(t, 5, e.MarketTrends.Score)
	assert.Equal(t, "●●●●●●●●○○", e.Rarity.String())
}

func TestEstimateText(t *testing.T) {
	reply := `{"rarity": "Alta", "marketDemand": "Media", "longevity": "Ottima", "marketTrends": "In crescita"}`
	g, _ := newTestGateway(t, http.StatusOK, reply, nil)

	e, err := g.Estimate(context.Background(), model.Item{Name: "Orologio"}, ScaleText)
	require.NoError(t, err)
	assert.Equal(t, "Alta", e.Rarity.Text)
	assert.Equal(t, "In crescita", e.MarketTrends.String())
}

func TestEstimateRejectsOutOfRangeScores(t *testing.T) {
	for _, reply := range []string{
		`{"rarity": 11, "marketDemand": 6, "longevity": 9, "marketTrends": 5}`,
		`{"rarity": 0, "marketDemand": 6, "longevity": 9, "marketTrends": 5}`,
		`{"rarity": 7.5, "marketDemand": 6, "longevity": 9, "marketTrends": 5}`,
		`{"rarity": "alta", "marketDemand": 6, "longevity": 9, "marketTrends": 5}`,
	} {
		_, err := parseEstimation(reply, ScaleNumeric)
		assert.True(t, IsMalformedResponse(err), "reply %s", reply)
	}
}

func TestDailyLimitBlocksBeforeNetworkAndResets(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	l := NewLimiter(DefaultDailyLimit, nil)
	l.SetClock(func() time.Time { return now })

	reply := `{"rarity": 5, "marketDemand": 5, "longevity": 5, "marketTrends": 5}`
	g, calls := newTestGateway(t, http.StatusOK, reply, l)
	ctx := context.Background()

	for i := range DefaultDailyLimit {
		_, err := g.Estimate(ctx, model.Item{Name: "x"}, ScaleNumeric)
		require.NoError(t, err, "call %d", i+1)
	}
	assert.Equal(t, int32(DefaultDailyLimit), calls.Load())

	_, err := g.Estimate(ctx, model.Item{Name: "x"}, ScaleNumeric)
	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), rl.ResetAt)
	assert.Equal(t, int32(DefaultDailyLimit), calls.Load(), "no request once the limit is reached")

	now = time.Date(2024, 3, 11, 0, 0, 1, 0, time.UTC)
	_, err = g.Estimate(ctx, model.Item{Name: "x"}, ScaleNumeric)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Usage().Used)
}

func TestFailedEstimationsDoNotCount(t *testing.T) {
	l := NewLimiter(2, nil)
	g, calls := newTestGateway(t, http.StatusOK, "niente json", l)

	for range 5 {
		_, err := g.Estimate(context.Background(), model.Item{Name: "x"}, ScaleNumeric)
		assert.True(t, IsMalformedResponse(err))
	}
	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, 2, l.Usage().Remaining)
}

func TestFieldSuggestionsAreNotLimited(t *testing.T) {
	l := NewLimiter(1, nil)
	g, _ := newTestGateway(t, http.StatusOK, fieldsReply, l)

	for range 3 {
		_, err := g.SuggestFields(context.Background(), "Orologio")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, l.Usage().Used)
}

type memUsage struct {
	count int
	reset time.Time
	err   error
}

func (m *memUsage) LoadUsage(context.Context) (int, time.Time, error) {
	return m.count, m.reset, m.err
}

func (m *memUsage) SaveUsage(_ context.Context, count int, reset time.Time) error {
	m.count, m.reset = count, reset
	return m.err
}

func TestLimiterPersistsAndRestores(t *testing.T) {
	now := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := &memUsage{}
	ctx := context.Background()

	l := NewLimiter(3, store)
	l.SetClock(clock)
	require.NoError(t, l.Load(ctx))
	require.NoError(t, l.Record(ctx))
	require.NoError(t, l.Record(ctx))
	assert.Equal(t, 2, store.count)

	restored := NewLimiter(3, store)
	restored.SetClock(clock)
	require.NoError(t, restored.Load(ctx))
	u := restored.Usage()
	assert.Equal(t, 2, u.Used)
	assert.Equal(t, 1, u.Remaining)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), u.ResetAt)

	store.err = errors.New("disk full")
	assert.Error(t, restored.Load(ctx))
}

func TestObserverSeesOutcomes(t *testing.T) {
	g, _ := newTestGateway(t, http.StatusOK, "nessun oggetto", nil)

	var outcomes []string
	g.Observe(func(kind, outcome string) { outcomes = append(outcomes, kind+":"+outcome) })

	_, _ = g.SuggestFields(context.Background(), "Orologio")
	_, _ = g.Estimate(context.Background(), model.Item{}, ScaleText)
	assert.Equal(t, []string{"fields:malformed_response", "estimation:malformed_response"}, outcomes)
}

func TestPromptsCarryItemDetails(t *testing.T) {
	p := estimationPrompt(model.Item{Name: "Lampada Arco", Category: "Mobili", Year: "1962", PurchasePrice: 250.5, PurchaseDate: "01/01/2020", CurrentValue: 400}, ScaleNumeric)
	assert.Contains(t, p, "Nome: Lampada Arco")
	assert.Contains(t, p, "Prezzo d'acquisto: 250.5")
	assert.Contains(t, p, "da 1 a 10")
	assert.True(t, strings.Contains(fieldsPrompt("Radio"), `"Radio"`))
}

func TestParseScale(t *testing.T) {
	s, ok := ParseScale("")
	assert.True(t, ok)
	assert.Equal(t, ScaleNumeric, s)

	s, ok = ParseScale("TEXT")
	assert.True(t, ok)
	assert.Equal(t, ScaleText, s)

	_, ok = ParseScale("stars")
	assert.False(t, ok)
}

type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _ string, _ int) (string, error) {
	<-ctx.Done()
	return "", NewServiceUnavailableError(ctx.Err())
}

func TestWithTimeoutBoundsSlowCompleter(t *testing.T) {
	g := NewGateway(WithTimeout(blockingCompleter{}, 20*time.Millisecond), nil)

	start := time.Now()
	_, err := g.SuggestFields(context.Background(), "Orologio")
	require.Error(t, err)
	assert.True(t, IsServiceUnavailable(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.Equal(t, Completer(blockingCompleter{}), WithTimeout(blockingCompleter{}, 0))
}

// slowCompleter answers every prompt with reply after delay.
type slowCompleter struct {
	delay time.Duration
	reply string
	err   error
	calls atomic.Int32
}

func (c *slowCompleter) Complete(_ context.Context, _ string, _ int) (string, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	return c.reply, c.err
}

func TestConcurrentEstimationsStayWithinLimit(t *testing.T) {
	l := NewLimiter(20, nil)
	c := &slowCompleter{delay: 50 * time.Millisecond, reply: `{"rarity": 5, "marketDemand": 5, "longevity": 5, "marketTrends": 5}`}
	g := NewGateway(c, l)

	var wg sync.WaitGroup
	var succeeded, limited atomic.Int32
	for range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Estimate(context.Background(), model.Item{Name: "x"}, ScaleNumeric)
			switch {
			case err == nil:
				succeeded.Add(1)
			case IsRateLimited(err):
				limited.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), succeeded.Load())
	assert.Equal(t, int32(10), limited.Load())
	assert.Equal(t, int32(20), c.calls.Load())
	u := l.Usage()
	assert.Equal(t, 20, u.Used)
	assert.Equal(t, 0, u.Remaining)
}

func TestFailedReservationIsReleased(t *testing.T) {
	l := NewLimiter(1, nil)
	c := &slowCompleter{err: errors.New("connection reset")}
	g := NewGateway(c, l)

	_, err := g.Estimate(context.Background(), model.Item{Name: "x"}, ScaleNumeric)
	require.True(t, IsServiceUnavailable(err))
	assert.Equal(t, 1, l.Usage().Remaining)

	require.NoError(t, l.Reserve())
	assert.Equal(t, 0, l.Usage().Remaining, "in-flight calls hold their slot")
	assert.True(t, IsRateLimited(l.Reserve()))
	l.Release()
	assert.Equal(t, 1, l.Usage().Remaining)
}
