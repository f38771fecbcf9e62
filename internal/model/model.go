// Package model defines the core knowledge and conversation data types.
package model

// DefaultHeading is used for passages that no heading precedes.
const DefaultHeading = "Allgemein"

// Document represents a loaded knowledge source file.
type Document struct {
	Theme      string `json:"theme"`
	SourceFile string `json:"source_file"`
	Content    string `json:"content"`
}

// Metadata carries the denormalized document context of a passage.
// All fields are plain strings; absent values are empty strings, never nil.
type Metadata struct {
	Theme      string `json:"theme"`
	SourceFile string `json:"source_file"`
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
}

// Normalize fills defaults so that no field carries an absent marker.
func (m Metadata) Normalize() Metadata {
	if m.Heading == "" {
		m.Heading = DefaultHeading
	}
	return m
}

// Passage is a heading-scoped, size-bounded unit of indexed text.
type Passage struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// SearchResult pairs a passage with its relevance score. Produced per
// query, never persisted. For vector search the score is a distance
// (lower is better); for keyword search it is a match count (higher is
// better). Results arrive already ranked.
type SearchResult struct {
	Passage Passage `json:"passage"`
	Score   float64 `json:"score"`
}

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversation turn owned by the calling session.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RetrievalConfig controls retrieval depth and knowledge priority.
type RetrievalConfig struct {
	ResultCount          int  `json:"result_count"`
	PreferModelKnowledge bool `json:"prefer_model_knowledge"`
}

// DefaultRetrievalConfig mirrors the shipped defaults.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{ResultCount: 5, PreferModelKnowledge: true}
}
