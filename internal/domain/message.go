package domain

// Message is the canonical record every source is normalized into before merging.
// Timestamp is always unix-epoch seconds; adapters convert source-native units
// (millisecond, Apple-epoch, feed dates) at their own boundary.
type Message struct {
	Platform  string  `json:"platform"`
	Channel   string  `json:"channel"`
	Sender    string  `json:"sender"`
	Text      string  `json:"text"`
	Timestamp float64 `json:"ts"`
}

// Document is a scoreable item pulled from a preprint or grant feed.
type Document struct {
	Title     string
	Link      string
	Author    string
	Abstract  string
	Source    string
	Published float64
}

// Scored is a document that passed external evaluation. Documents whose
// evaluation fails never become Scored; they are excluded, not scored zero.
type Scored struct {
	Document      Document
	Score         int
	Justification string
	Assessment    map[string]string
	HighSignal    bool
}

// CatalogEntry is a single candidate returned by the entity-catalog search.
// A nil Rank means the provider has no rank for it; it sorts last, it is not
// an error.
type CatalogEntry struct {
	ID   string
	Name string
	Rank *int
}

// RubricCriterion is one weighted topic in the scoring rubric. The weights of
// a scorer's criteria sum to 1.0 by convention; this is the documented scoring
// contract, not a runtime check.
type RubricCriterion struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}
