package advisor

import "strings"

// ErrKind classifies a model-invocation failure for user-facing messaging.
type ErrKind int

const (
	// ErrKindTransient covers network and provider failures safe to retry
	// on the next user input.
	ErrKindTransient ErrKind = iota
	// ErrKindCredential covers invalid or expired credentials.
	ErrKindCredential
	// ErrKindQuota covers quota or billing exhaustion and overload,
	// including request timeouts.
	ErrKindQuota
)

// Fixed persona-consistent fallback messages. Raw error text never reaches
// the user; it is only logged.
const (
	MsgNeedCredential = "Servus! Ich brauche einen API-Schlüssel, um dir helfen zu können. Bitte gib einen OpenAI API-Schlüssel in den Einstellungen ein. Danke! 😊"
	MsgCredential     = "Servus! Aktuell hab ich leider ein kleines technisches Problem mit meiner Verbindung. Könntest du es in ein paar Minuten nochmal probieren? Danke für dein Verständnis! 😊"
	MsgOverloaded     = "Grüß dich! Leider bin ich gerade ein bisserl überfordert - zu viele Gäste auf einmal! 😅 Kannst du in 5 Minuten nochmal vorbeischauen? Dann kann ich dir sicher weiterhelfen!"
	MsgTryRephrasing  = "Servus! Entschuldige bitte, aktuell kann ich deine Anfrage nicht richtig beantworten. Magst du deine Frage vielleicht anders formulieren? Oder frag mich einfach nach konkreten Tipps zu Wandern, Biken, Skifahren oder guten Restaurants in Saalbach-Hinterglemm!"
)

var credentialMarkers = []string{"api key", "api_key", "unauthorized", "invalid_request_error", "401"}

var quotaMarkers = []string{"quota", "billing", "rate limit", "429", "overloaded", "timeout", "deadline exceeded"}

// Classify maps a provider error to an ErrKind by inspecting its text.
func Classify(err error) ErrKind {
	if err == nil {
		return ErrKindTransient
	}
	msg := strings.ToLower(err.Error())

	for _, m := range quotaMarkers {
		if strings.Contains(msg, m) {
			return ErrKindQuota
		}
	}
	for _, m := range credentialMarkers {
		if strings.Contains(msg, m) {
			return ErrKindCredential
		}
	}
	return ErrKindTransient
}

// Fallback returns the fixed user-facing message for a classified error.
func Fallback(kind ErrKind) string {
	switch kind {
	case ErrKindCredential:
		return MsgCredential
	case ErrKindQuota:
		return MsgOverloaded
	default:
		return MsgTryRephrasing
	}
}
