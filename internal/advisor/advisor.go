// Package advisor orchestrates end-to-end query handling: retrieval, prompt
// composition, model invocation and failure translation into user-facing
// text. Retrieval failures are absorbed here; only model-invocation failures
// reach the fallback classifier, and raw error text never reaches the user.
package advisor

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/glemmtal/alpbot/internal/index"
	"github.com/glemmtal/alpbot/internal/knowledge"
	"github.com/glemmtal/alpbot/internal/llm"
	"github.com/glemmtal/alpbot/internal/model"
	"github.com/glemmtal/alpbot/internal/prompt"
)

// historyWindow bounds how many past turns accompany each request.
const historyWindow = 5

// Options configures an Advisor.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int
	Retrieval model.RetrievalConfig
	Loader    *knowledge.Loader
	Index     index.Index
	Client    llm.Client
	Logger    *zap.Logger
}

// Advisor answers tourism queries against the knowledge corpus.
type Advisor struct {
	opts Options
	log  *zap.Logger

	loadOnce sync.Once
}

// New creates an Advisor.
func New(opts Options) *Advisor {
	if opts.Retrieval.ResultCount <= 0 {
		opts.Retrieval = model.DefaultRetrievalConfig()
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Advisor{opts: opts, log: log}
}

// Answer handles one query. It always returns user-facing prose: either the
// model's answer verbatim or one of the fixed fallback messages.
func (a *Advisor) Answer(ctx context.Context, query string, history []model.Turn) string {
	if a.opts.APIKey == "" {
		return MsgNeedCredential
	}

	results := a.retrieve(ctx, query)
	system := prompt.Compose(query, results, a.opts.Retrieval)

	messages := make([]model.Turn, 0, historyWindow+2)
	messages = append(messages, model.Turn{Role: model.RoleSystem, Content: system})
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	messages = append(messages, history...)
	messages = append(messages, model.Turn{Role: model.RoleUser, Content: query})

	// Without grounding context the model has to compensate with more
	// expansive general knowledge.
	temperature := 0.7
	if len(results) == 0 {
		temperature = 0.8
	}

	resp, err := a.opts.Client.Complete(ctx, llm.Request{
		Model:       a.opts.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		kind := Classify(err)
		a.log.Error("model invocation failed",
			zap.Int("kind", int(kind)), zap.Error(err))
		return Fallback(kind)
	}

	a.log.Info("answer generated",
		zap.String("model", resp.Model),
		zap.Int("retrieved", len(results)),
		zap.Int("answer_len", len(resp.Text)))
	return resp.Text
}

// retrieve fetches the top passages for the query. Any failure is logged
// and treated as zero results.
func (a *Advisor) retrieve(ctx context.Context, query string) []model.SearchResult {
	if a.opts.Index == nil {
		return nil
	}

	// Self-heal an empty index from the knowledge directory on first use.
	if a.opts.Loader != nil {
		a.loadOnce.Do(func() {
			if _, err := a.opts.Loader.Statistics(ctx); err != nil {
				a.log.Warn("corpus load failed", zap.Error(err))
			}
		})
	}

	results, err := a.opts.Index.Search(ctx, query, a.opts.Retrieval.ResultCount, nil)
	if err != nil {
		a.log.Warn("retrieval failed, continuing without context", zap.Error(err))
		return nil
	}
	return results
}

// VerifyCredential sends a minimal test completion and reports whether the
// configured credential works, with a short status message.
func (a *Advisor) VerifyCredential(ctx context.Context) (bool, string) {
	if a.opts.APIKey == "" {
		return false, "Kein API-Schlüssel angegeben."
	}

	resp, err := a.opts.Client.Complete(ctx, llm.Request{
		Model:     a.opts.Model,
		Messages:  []model.Turn{{Role: model.RoleUser, Content: "Test"}},
		MaxTokens: 5,
	})
	if err != nil {
		switch Classify(err) {
		case ErrKindCredential:
			return false, "Ungültiger API-Schlüssel. Bitte überprüfe deine Eingabe."
		case ErrKindQuota:
			return false, "Kontingent erschöpft oder Zahlungsproblem mit dem Konto."
		default:
			return false, "Fehler bei der API-Verbindung."
		}
	}
	return true, "API-Verbindung erfolgreich (Modell: " + resp.Model + ")"
}
