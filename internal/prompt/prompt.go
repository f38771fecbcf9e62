// Package prompt assembles the system instructions for the language model:
// persona contract, style examples, knowledge-priority directive, retrieved
// context and topical steering.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/glemmtal/alpbot/internal/model"
)

// MaxContextChars bounds the concatenated retrieved passages so the
// instruction block stays within model context limits.
const MaxContextChars = 6000

// personaContract fixes tone, framing and structural rules for every answer.
const personaContract = `Du bist ein freundlicher, persönlicher Tourismus-Assistent für die Region Saalbach-Hinterglemm.
Du sprichst wie ein echter Einheimischer, der die Region liebt und alle Insider-Tipps kennt.
Du nutzt dein umfangreiches eigenes Wissen über Saalbach-Hinterglemm und den Skicircus, einschließlich Unterkünfte, Restaurants, Wanderwege, Skigebiete, Biketouren und Sehenswürdigkeiten.

Halte dich an diese Kommunikationsregeln:
- Beginne deine Antworten immer mit einer herzlichen Begrüßung wie "Servus!", "Grüß dich!" oder "Hallo!"
- Duze die Gäste immer - das ist in Saalbach üblich und persönlicher
- Verwende einen begeisterten, lebendigen Gesprächsstil mit österreichischer Färbung
- Verwende Emojis, um deinen Antworten Persönlichkeit zu verleihen 😊 🏔️ 🚵‍♂️
- Sei proaktiv und gib konkrete, detaillierte Empfehlungen statt allgemeiner Aussagen
- Strukturiere lange Antworten klar mit Überschriften, Nummerierungen oder Aufzählungen
- Beende längere Antworten mit einer Frage, um das Gespräch fortzuführen
- Wenn du über Aktivitäten sprichst, erwähne auch immer:
  * Konkrete Orte/Namen (z.B. bestimmte Wanderwege, Hütten, Hotels)
  * Schwierigkeitsgrad oder Eignung (für wen ist es geeignet?)
  * Kleine persönliche Tipps ("Mein Geheimtipp: Bestell dort unbedingt den Kaiserschmarrn!")
  * Praktische Infos (Öffnungszeiten, Preise, besondere Hinweise)

Sprachliche Besonderheiten:
- Verwende gelegentlich österreichische/alpine Ausdrücke (z.B. "a bisserl", "gemütlich", "zünftig")
- Benutze Ausdrücke wie "Der Wahnsinn!", "Echt cool!", "Ein echtes Erlebnis!"
- Beende Nachrichten gerne mit "Servus!", "Bis bald!" oder ähnlichen Grußformeln`

// styleExamples demonstrate the target answer style.
const styleExamples = `BEISPIELE FÜR DEINEN STIL:

Frage: Wo kann ich gut essen gehen?
Antwort: Servus! 😊 Da hab ich ein paar richtig gute Tipps für dich! Die Wieseralm auf 1.350 m ist ein echtes Erlebnis - urig, gemütlich und der Kaiserschmarrn dort ist der Wahnsinn! Im Ort selbst ist das Restaurant Hirschenstube super für regionale Küche. Magst du lieber gehoben essen oder zünftig auf der Hütte?

Frage: Welche Wanderung passt für Familien?
Antwort: Grüß dich! 🏔️ Für Familien ist der Talschluss in Hinterglemm perfekt - flach, kinderwagentauglich und mit den Baumzipfelweg-Hängebrücken ein echtes Abenteuer für die Kleinen! Mein Geheimtipp: Nehmt den Kodok-Erlebnisweg am Reiterkogel, da gibt's Rätselstationen für Kinder. Wie alt sind denn deine Kinder?`

// placeholderNoContext replaces an empty context block so the model never
// receives an ambiguous empty section.
const placeholderNoContext = "Keine spezifischen Informationen verfügbar. Nutze dein eigenes Wissen über die Region Saalbach-Hinterglemm."

// topicGroups drive the light topical-intent detection over the query.
var topicGroups = map[string][]string{
	"Wandern":      {"wandern", "wanderung", "wanderweg", "spazieren", "hike", "hiking"},
	"Biken":        {"bike", "biken", "mountainbike", "mtb", "radfahren", "trail"},
	"Skifahren":    {"ski", "skifahren", "piste", "pisten", "snowboard", "langlauf", "rodeln"},
	"Essen":        {"essen", "restaurant", "hütte", "kulinarik", "kaiserschmarrn", "abendessen"},
	"Übernachtung": {"hotel", "unterkunft", "pension", "übernachten", "appartement", "zimmer"},
}

// Compose builds the full instruction text for a query.
func Compose(query string, results []model.SearchResult, cfg model.RetrievalConfig) string {
	var b strings.Builder
	b.WriteString(personaContract)
	b.WriteString("\n\n")
	b.WriteString(styleExamples)
	b.WriteString("\n\n")
	b.WriteString(knowledgeDirective(cfg))
	b.WriteString("\n\nZUSÄTZLICHE INFORMATIONEN:\n")
	b.WriteString(contextBlock(results))

	if topics := DetectTopics(query); len(topics) > 0 {
		b.WriteString("\n\nHINWEIS: Der Gast interessiert sich gerade für: ")
		b.WriteString(strings.Join(topics, ", "))
		b.WriteString(". Gehe darauf besonders konkret ein.")
	}

	return b.String()
}

func knowledgeDirective(cfg model.RetrievalConfig) string {
	if cfg.PreferModelKnowledge {
		return `WISSENSNUTZUNG: Stütze dich primär auf dein eigenes Wissen über die Region und ergänze es mit den zusätzlichen Informationen unten. Erwähne niemals ausdrücklich "die bereitgestellten Informationen" - antworte wie aus eigener Erfahrung.`
	}
	return `WISSENSNUTZUNG: Stütze dich zuerst auf die zusätzlichen Informationen unten und greife nur ergänzend auf dein allgemeines Wissen zurück.`
}

func contextBlock(results []model.SearchResult) string {
	if len(results) == 0 {
		return placeholderNoContext
	}

	var parts []string
	total := 0
	for i, r := range results {
		var h strings.Builder
		fmt.Fprintf(&h, "INFORMATION %d (Thema: %s):\n", i+1, r.Passage.Metadata.Theme)
		if r.Passage.Metadata.Heading != "" {
			fmt.Fprintf(&h, "Überschrift: %s\n", r.Passage.Metadata.Heading)
		}
		if r.Passage.Metadata.Subheading != "" {
			fmt.Fprintf(&h, "Unterüberschrift: %s\n", r.Passage.Metadata.Subheading)
		}

		text := r.Passage.Text
		if total+h.Len()+len(text) > MaxContextChars {
			if len(parts) > 0 {
				break
			}
			// the best passage alone overflows the budget; truncate it
			// rather than falling back to the no-context placeholder
			text = truncate(text, MaxContextChars-h.Len())
			if text == "" {
				break
			}
		}
		block := h.String() + text
		total += len(block)
		parts = append(parts, block)
	}
	if len(parts) == 0 {
		return placeholderNoContext
	}
	return strings.Join(parts, "\n\n")
}

// truncate cuts s to at most max bytes on a rune boundary.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// DetectTopics returns the activity groups whose keywords appear in the
// query, in stable order.
func DetectTopics(query string) []string {
	lower := strings.ToLower(query)
	order := []string{"Wandern", "Biken", "Skifahren", "Essen", "Übernachtung"}

	var topics []string
	for _, topic := range order {
		for _, kw := range topicGroups[topic] {
			if strings.Contains(lower, kw) {
				topics = append(topics, topic)
				break
			}
		}
	}
	return topics
}
