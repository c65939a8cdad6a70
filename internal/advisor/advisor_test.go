package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/featureflags"
	"github.com/krishisakhi/backend/pkg/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRulesFirstMatchWins(t *testing.T) {
	cases := []struct {
		text string
		rule string
	}{
		{"When should I start sowing rice?", "rice_planting"},
		{"Fertilizer for paddy", "rice_fertilizer"},
		{"rice blast in my field", "rice_disease"},
		{"rice fertilizer and disease", "rice_fertilizer"},
		{"coconut growing tips", "coconut_planting"},
		{"COCONUT nutrition", "coconut_fertilizer"},
		{"pepper vines", "pepper"},
		{"pepper disease in rain", "pepper"},
		{"rice in the monsoon", "weather"},
		{"coconut pest", "disease"},
		{"how is my soil", "soil"},
		{"tell me about PM-KISAN", "schemes"},
		{"നെല്ല് നടീൽ സമയം?", "rice_planting"},
		{"my rice plants have blast disease", "rice_disease"},
		{"paddy plant fertilizer dose", "rice_fertilizer"},
		{"coconut plant pest attack", "disease"},
		{"നെല്ല് നടുന്ന ചെടിയിൽ രോഗം", "rice_disease"},
		{"മണ്ണ് പരിശോധന", "soil"},
		{"hi there", "greeting"},
		{"നമസ്കാരം", "greeting"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			r, ok := Match(tc.text)
			require.True(t, ok)
			assert.Equal(t, tc.rule, r.Name)
		})
	}
}

func TestNoMatch(t *testing.T) {
	for _, text := range []string{"", "chilli prices", "rice", "what about bananas"} {
		_, ok := Match(text)
		assert.False(t, ok, "%q should not match", text)
	}
}

func TestEveryRuleHasBothLanguages(t *testing.T) {
	for _, r := range append(Rules, fallback) {
		assert.NotEmpty(t, r.Text[domain.LanguageEnglish], r.Name)
		assert.NotEmpty(t, r.Text[domain.LanguageMalayalam], r.Name)
	}
}

func TestRespondWithoutGenerator(t *testing.T) {
	e := NewEngine(nil, quietLogger())
	ctx := context.Background()

	r := e.Respond(ctx, "soil health", domain.LanguageMalayalam)
	assert.Equal(t, "soil", r.Rule)
	assert.Equal(t, domain.LanguageMalayalam, r.Language)
	assert.True(t, strings.HasPrefix(r.Text, "മണ്ണ്"))

	r = e.Respond(ctx, "soil health", "fr")
	assert.Equal(t, domain.LanguageEnglish, r.Language)
	assert.True(t, strings.HasPrefix(r.Text, "Soil management tips"))

	r = e.Respond(ctx, "bananas", domain.LanguageEnglish)
	assert.Equal(t, FallbackRule, r.Rule)
	assert.Equal(t, fallback.Text[domain.LanguageEnglish], r.Text)
}

type stubGenerator struct {
	answer string
	err    error
	calls  int
}

func (g *stubGenerator) Generate(_ context.Context, _ string, _ domain.Language) (string, error) {
	g.calls++
	return g.answer, g.err
}

func TestRespondUsesGeneratorOnlyWithoutRule(t *testing.T) {
	g := &stubGenerator{answer: "Plant bananas in June."}
	e := NewEngine(g, quietLogger())
	ctx := context.Background()

	r := e.Respond(ctx, "pepper", domain.LanguageEnglish)
	assert.Equal(t, "pepper", r.Rule)
	assert.Zero(t, g.calls)

	r = e.Respond(ctx, "bananas?", domain.LanguageEnglish)
	assert.Equal(t, GenerativeRule, r.Rule)
	assert.Equal(t, "Plant bananas in June.", r.Text)

	r = e.Respond(ctx, strings.Repeat("x", maxQuestionLength+1), domain.LanguageEnglish)
	assert.Equal(t, FallbackRule, r.Rule)
	assert.Equal(t, 1, g.calls)
}

func TestGeneratorFailureDegradesAndOpensCircuit(t *testing.T) {
	g := &stubGenerator{err: errors.New("boom")}
	e := NewEngine(g, quietLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r := e.Respond(ctx, "bananas?", domain.LanguageMalayalam)
		assert.Equal(t, FallbackRule, r.Rule)
		assert.Equal(t, fallback.Text[domain.LanguageMalayalam], r.Text)
	}
	assert.Equal(t, 3, g.calls, "circuit should stop calls after three failures")
}

func TestLLMClient(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Mulch well.  "}}]}`))
	}))
	defer srv.Close()

	c := NewLLMClient(config.LLMConfig{Endpoint: srv.URL + "/v1/", APIKey: "key", Model: "m"}, quietLogger())
	answer, err := c.Generate(context.Background(), "bananas?", domain.LanguageMalayalam)
	require.NoError(t, err)
	assert.Equal(t, "Mulch well.", answer)
	assert.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "Malayalam")
	assert.Equal(t, "bananas?", got.Messages[1].Content)
}

func TestLLMClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	c := NewLLMClient(config.LLMConfig{Endpoint: srv.URL, APIKey: "key"}, quietLogger())
	_, err := c.Generate(context.Background(), "q", domain.LanguageEnglish)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGeneratorFor(t *testing.T) {
	cfg := config.LLMConfig{Endpoint: "http://llm", APIKey: "k"}
	on := featureflags.Static(map[string]bool{featureflags.GenerativeChat: true})
	off := featureflags.Static(nil)

	assert.NotNil(t, GeneratorFor(cfg, on, nil))
	assert.Nil(t, GeneratorFor(cfg, off, nil))
	assert.Nil(t, GeneratorFor(config.LLMConfig{}, on, nil))
}
