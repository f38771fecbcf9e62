package prompt

import (
	"strings"
	"testing"

	"github.com/glemmtal/alpbot/internal/model"
)

func result(text, theme, heading, subheading string) model.SearchResult {
	return model.SearchResult{Passage: model.Passage{
		Text:     text,
		Metadata: model.Metadata{Theme: theme, Heading: heading, Subheading: subheading},
	}}
}

func TestCompose_IncludesRetrievedPassages(t *testing.T) {
	results := []model.SearchResult{
		result("Skicircus 270 km Pisten", "skigebiet", "Pisten", ""),
		result("Flowtrails am Reiterkogel", "biken", "Trails", "Sommer"),
	}

	out := Compose("Wo kann ich Ski fahren?", results, model.DefaultRetrievalConfig())

	if !strings.Contains(out, "Skicircus 270 km Pisten") {
		t.Error("composed prompt missing first passage text")
	}
	if !strings.Contains(out, "INFORMATION 1 (Thema: skigebiet)") {
		t.Error("composed prompt missing theme label")
	}
	if !strings.Contains(out, "Unterüberschrift: Sommer") {
		t.Error("composed prompt missing subheading label")
	}
}

func TestCompose_PlaceholderWithoutResults(t *testing.T) {
	out := Compose("Was geht am Wochenende?", nil, model.DefaultRetrievalConfig())
	if !strings.Contains(out, placeholderNoContext) {
		t.Error("expected explicit no-context placeholder")
	}
}

func TestCompose_KnowledgeDirectiveSwitches(t *testing.T) {
	cfg := model.RetrievalConfig{ResultCount: 3, PreferModelKnowledge: true}
	own := Compose("Frage", nil, cfg)
	if !strings.Contains(own, "primär auf dein eigenes Wissen") {
		t.Error("expected model-knowledge-first directive")
	}

	cfg.PreferModelKnowledge = false
	grounded := Compose("Frage", nil, cfg)
	if !strings.Contains(grounded, "zuerst auf die zusätzlichen Informationen") {
		t.Error("expected retrieved-first directive")
	}
}

func TestCompose_TruncatesContext(t *testing.T) {
	long := strings.Repeat("Sehr viel Text über die Region. ", 80) // ~2600 chars
	results := []model.SearchResult{
		result(long, "a", "H", ""),
		result(long, "b", "H", ""),
		result(long, "c", "H", ""),
	}

	out := Compose("Frage", results, model.DefaultRetrievalConfig())
	if strings.Contains(out, "INFORMATION 3") {
		t.Error("third passage should be cut by the context bound")
	}
	if !strings.Contains(out, "INFORMATION 2") {
		t.Error("second passage should still fit")
	}
}

func TestCompose_OversizedPassageTruncatedNotDropped(t *testing.T) {
	long := strings.Repeat("Die Region hat unzählige Almen und Gipfel. ", 200) // ~8600 chars
	results := []model.SearchResult{result(long, "wandern", "Touren", "")}

	out := Compose("Frage", results, model.DefaultRetrievalConfig())

	if strings.Contains(out, placeholderNoContext) {
		t.Error("a retrieved passage must not degrade to the no-context placeholder")
	}
	if !strings.Contains(out, "INFORMATION 1 (Thema: wandern)") {
		t.Error("expected the oversized passage to appear truncated")
	}
	if !strings.Contains(out, "Die Region hat unzählige Almen") {
		t.Error("expected a prefix of the passage text to survive")
	}
	if strings.Contains(out, long) {
		t.Error("expected the passage to be cut to the context bound")
	}
}

func TestDetectTopics(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"Wo kann ich Ski fahren?", []string{"Skifahren"}},
		{"Gute Restaurants nach der Wanderung?", []string{"Wandern", "Essen"}},
		{"Wie wird das Wetter?", nil},
		{"Hotel mit Bike-Verleih", []string{"Biken", "Übernachtung"}},
	}

	for _, tt := range tests {
		got := DetectTopics(tt.query)
		if len(got) != len(tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.query, tt.want, got)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%q: expected %v, got %v", tt.query, tt.want, got)
				break
			}
		}
	}
}

func TestCompose_SteeringNoteNamesTopic(t *testing.T) {
	out := Compose("Wo kann ich biken?", nil, model.DefaultRetrievalConfig())
	if !strings.Contains(out, "interessiert sich gerade für: Biken") {
		t.Error("expected steering note naming the detected topic")
	}
}
