package store

import "strconv"

// Confidence labels attached to every answer.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// citationMaxChars is how much of a chunk is quoted back in a citation.
const citationMaxChars = 200

// Chunk is one text segment of the source document. Chunks are created at
// ingestion time and never mutated afterwards. ID is the sequence position
// of the chunk within the document.
type Chunk struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Source    string    `json:"source"`
	Page      int       `json:"page"` // 0 when the page is unknown
	Embedding []float32 `json:"-"`    // internal, not exposed over the API
}

// PageLabel renders the page number for display, "Unknown" when missing.
func (c Chunk) PageLabel() string {
	if c.Page <= 0 {
		return "Unknown"
	}
	return strconv.Itoa(c.Page)
}

// Citation builds the SourceCitation for this chunk.
func (c Chunk) Citation() SourceCitation {
	return NewSourceCitation(c.PageLabel(), c.Source, c.Content)
}

// NewSourceCitation builds a citation, truncating long content to 200
// characters with a trailing ellipsis. The limit counts characters, not
// bytes, so multi-byte content is never cut mid-rune.
func NewSourceCitation(page, source, content string) SourceCitation {
	if runes := []rune(content); len(runes) > citationMaxChars {
		content = string(runes[:citationMaxChars]) + "..."
	}
	return SourceCitation{
		Page:    page,
		Source:  source,
		Content: content,
	}
}

// RetrievalResult pairs a chunk with its similarity score for one query.
// Results are ephemeral and ordered descending by score.
type RetrievalResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}

// SourceCitation is the caller-facing reference to a supporting chunk.
type SourceCitation struct {
	Page    string `json:"page"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

// QueryResult is the contract returned for every question, regardless of
// which retrieval path produced it.
type QueryResult struct {
	Question   string           `json:"question"`
	Answer     string           `json:"answer"`
	Sources    []SourceCitation `json:"sources"`
	Confidence Confidence       `json:"confidence"`
}

// ConversationTurn is one question/answer pair in a session history.
type ConversationTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
