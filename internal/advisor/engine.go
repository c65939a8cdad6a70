package advisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/krishisakhi/backend/internal/domain"
	"github.com/krishisakhi/backend/internal/observability/metrics"
	"github.com/krishisakhi/backend/internal/reliability/circuitbreaker"
)

// GenerativeRule names answers produced by the Generator.
const GenerativeRule = "generative"

// Reply is the engine's answer and the rule that produced it.
type Reply struct {
	Text     string          `json:"response"`
	Language domain.Language `json:"language"`
	Rule     string          `json:"rule"`
}

// Engine answers farming questions from the rule table. Unmatched questions
// go to the generator when one is set, and to the fallback paragraph when it
// is not or when it fails. Respond never returns an error.
type Engine struct {
	generator Generator
	breaker   *circuitbreaker.CircuitBreaker
	logger    *slog.Logger
}

// NewEngine creates an engine. generator may be nil.
func NewEngine(generator Generator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{generator: generator, logger: logger}
	if generator != nil {
		e.breaker = circuitbreaker.NewCircuitBreaker(3, 1, 30*time.Second)
		e.breaker.SetStateChangeCallback(func(from, to circuitbreaker.State) {
			logger.Warn("chat model circuit changed state",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		})
	}
	return e
}

// Respond answers text in lang. Languages other than en and ml get English.
func (e *Engine) Respond(ctx context.Context, text string, lang domain.Language) Reply {
	if lang != domain.LanguageMalayalam {
		lang = domain.LanguageEnglish
	}

	reply := Reply{Language: lang}
	if rule, ok := Match(text); ok {
		reply.Text, reply.Rule = rule.Reply(lang), rule.Name
	} else if answer, ok := e.generate(ctx, text, lang); ok {
		reply.Text, reply.Rule = answer, GenerativeRule
	} else {
		reply.Text, reply.Rule = fallback.Reply(lang), FallbackRule
	}

	metrics.ObserveChatResponse(reply.Rule, string(lang))
	return reply
}

func (e *Engine) generate(ctx context.Context, text string, lang domain.Language) (string, bool) {
	if e.generator == nil || len(text) > maxQuestionLength {
		return "", false
	}

	var answer string
	err := e.breaker.Execute(func() error {
		var err error
		answer, err = e.generator.Generate(ctx, text, lang)
		return err
	})
	if err != nil {
		e.logger.Warn("generative answer unavailable", slog.String("error", err.Error()))
		return "", false
	}
	return answer, true
}
