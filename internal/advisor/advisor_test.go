package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glemmtal/alpbot/internal/index"
	"github.com/glemmtal/alpbot/internal/llm"
	"github.com/glemmtal/alpbot/internal/model"
)

// fakeClient records requests and returns a scripted response or error.
type fakeClient struct {
	calls    int
	lastReq  llm.Request
	response string
	err      error
}

func (f *fakeClient) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.response, Model: "test-model"}, nil
}

// countingIndex wraps an index and counts searches.
type countingIndex struct {
	index.Index
	searches int
}

func (c *countingIndex) Search(ctx context.Context, query string, limit int, filter *index.Filter) ([]model.SearchResult, error) {
	c.searches++
	return c.Index.Search(ctx, query, limit, filter)
}

// failingIndex errors on every read.
type failingIndex struct {
	index.Index
}

func (f *failingIndex) Search(context.Context, string, int, *index.Filter) ([]model.SearchResult, error) {
	return nil, errors.New("backend gone")
}

func skiCorpus(t *testing.T) index.Index {
	t.Helper()
	idx := index.NewKeywordIndex()
	_, err := idx.AddBatch(context.Background(),
		[]string{"Skicircus 270 km Pisten, modernste Bahnen und Skischulen."},
		[]model.Metadata{{Theme: "skigebiet", SourceFile: "skigebiet.md", Heading: "Pisten"}})
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestAnswer_GroundedInRetrievedPassage(t *testing.T) {
	client := &fakeClient{response: "Servus! Ab auf die Pisten! 😊"}
	a := New(Options{APIKey: "sk-test", Index: skiCorpus(t), Client: client})

	answer := a.Answer(context.Background(), "Wo kann ich Ski fahren?", nil)

	if answer != "Servus! Ab auf die Pisten! 😊" {
		t.Errorf("model text should be returned verbatim, got %q", answer)
	}
	if client.calls != 1 {
		t.Fatalf("expected one model call, got %d", client.calls)
	}
	system := client.lastReq.Messages[0]
	if system.Role != model.RoleSystem {
		t.Fatalf("first message should be system, got %q", system.Role)
	}
	if !strings.Contains(system.Content, "Skicircus 270 km Pisten") {
		t.Error("composed prompt should contain the retrieved passage")
	}
	if client.lastReq.Temperature != 0.7 {
		t.Errorf("grounded answers should use lower temperature, got %f", client.lastReq.Temperature)
	}
	last := client.lastReq.Messages[len(client.lastReq.Messages)-1]
	if last.Role != model.RoleUser || last.Content != "Wo kann ich Ski fahren?" {
		t.Errorf("query should be the final message, got %+v", last)
	}
}

func TestAnswer_NoCredentialShortCircuits(t *testing.T) {
	client := &fakeClient{response: "nie"}
	counting := &countingIndex{Index: skiCorpus(t)}
	a := New(Options{Index: counting, Client: client})

	answer := a.Answer(context.Background(), "Wo kann ich Ski fahren?", nil)

	if answer != MsgNeedCredential {
		t.Errorf("expected fixed credential message, got %q", answer)
	}
	if counting.searches != 0 {
		t.Errorf("no retrieval should be attempted, got %d searches", counting.searches)
	}
	if client.calls != 0 {
		t.Errorf("no model call should be attempted, got %d", client.calls)
	}
}

func TestAnswer_QuotaErrorMapsToOverloaded(t *testing.T) {
	client := &fakeClient{err: errors.New("api error: You exceeded your current quota")}
	a := New(Options{APIKey: "sk-test", Index: skiCorpus(t), Client: client})
	sess := NewSession(a)

	answer := sess.Ask(context.Background(), "Wo kann ich Ski fahren?")

	if answer != MsgOverloaded {
		t.Errorf("expected overload fallback, got %q", answer)
	}
	history := sess.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(history))
	}
	if history[1].Role != model.RoleAssistant || history[1].Content != MsgOverloaded {
		t.Errorf("fallback should be recorded as assistant turn, got %+v", history[1])
	}
}

func TestAnswer_TransientErrorMapsToRephrase(t *testing.T) {
	client := &fakeClient{err: errors.New("connection reset by peer")}
	a := New(Options{APIKey: "sk-test", Index: skiCorpus(t), Client: client})

	if answer := a.Answer(context.Background(), "Frage", nil); answer != MsgTryRephrasing {
		t.Errorf("expected generic fallback, got %q", answer)
	}
}

func TestAnswer_RetrievalFailureAbsorbed(t *testing.T) {
	client := &fakeClient{response: "Antwort ohne Kontext"}
	a := New(Options{APIKey: "sk-test", Index: &failingIndex{Index: index.NewKeywordIndex()}, Client: client})

	answer := a.Answer(context.Background(), "Frage", nil)

	if answer != "Antwort ohne Kontext" {
		t.Errorf("retrieval failure must not surface, got %q", answer)
	}
	if client.lastReq.Temperature != 0.8 {
		t.Errorf("ungrounded answers should use raised temperature, got %f", client.lastReq.Temperature)
	}
	if !strings.Contains(client.lastReq.Messages[0].Content, "Keine spezifischen Informationen") {
		t.Error("prompt should carry the explicit no-context placeholder")
	}
}

func TestAnswer_HistoryWindowBounded(t *testing.T) {
	client := &fakeClient{response: "ok"}
	a := New(Options{APIKey: "sk-test", Index: index.NewKeywordIndex(), Client: client})

	var history []model.Turn
	for i := 0; i < 8; i++ {
		history = append(history, model.Turn{Role: model.RoleUser, Content: fmt.Sprintf("Frage %d", i)})
	}

	a.Answer(context.Background(), "aktuelle Frage", history)

	// system + 5 history turns + query
	if got := len(client.lastReq.Messages); got != 7 {
		t.Fatalf("expected 7 messages, got %d", got)
	}
	if client.lastReq.Messages[1].Content != "Frage 3" {
		t.Errorf("expected oldest kept turn to be Frage 3, got %q", client.lastReq.Messages[1].Content)
	}
}

func TestVerifyCredential(t *testing.T) {
	ok, _ := New(Options{Client: &fakeClient{}}).VerifyCredential(context.Background())
	if ok {
		t.Error("missing key should fail verification")
	}

	okClient := &fakeClient{response: "pong"}
	ok, msg := New(Options{APIKey: "sk", Client: okClient}).VerifyCredential(context.Background())
	if !ok || !strings.Contains(msg, "test-model") {
		t.Errorf("expected success with model echo, got %v %q", ok, msg)
	}
	if okClient.lastReq.MaxTokens != 5 {
		t.Errorf("verification should be a minimal request, got %d tokens", okClient.lastReq.MaxTokens)
	}

	badClient := &fakeClient{err: errors.New("401 unauthorized")}
	ok, msg = New(Options{APIKey: "sk", Client: badClient}).VerifyCredential(context.Background())
	if ok || !strings.Contains(msg, "Ungültiger API-Schlüssel") {
		t.Errorf("expected credential failure message, got %v %q", ok, msg)
	}
}
