// Package assess accumulates per-question answers grouped by category. A
// category advances all-or-nothing: its in-progress answers are merged into
// the session-wide set only when every question in it carries a valid
// answer.
package assess

import (
	"fmt"
	"strings"

	"github.com/speakclear-dev/speakclear/internal/content"
	"github.com/speakclear-dev/speakclear/internal/locale"
)

// IncompleteCategoryError reports a category submission with unanswered or
// invalid answers. The category's buffer is left untouched.
type IncompleteCategoryError struct {
	Category string
	Missing  []string // question ids lacking a valid answer
}

func (e *IncompleteCategoryError) Error() string {
	return fmt.Sprintf("category %q incomplete: %d question(s) unanswered", e.Category, len(e.Missing))
}

// Collector owns the in-progress answer buffer and the committed answer set.
// It is not safe for concurrent use; the flow runs it from a single
// goroutine.
type Collector struct {
	lang      locale.Lang
	questions map[string]content.Question
	byCat     map[string][]content.Question

	buffer    map[string]string // in-progress, keyed by question id
	committed map[string]string
	order     []string // committed question ids in commit order
}

// NewCollector creates a Collector over the given question set. Answers are
// validated against the choice lists of the given language.
func NewCollector(questions []content.Question, lang locale.Lang) *Collector {
	byID := make(map[string]content.Question, len(questions))
	byCat := make(map[string][]content.Question)
	for _, q := range questions {
		byID[q.ID] = q
		byCat[q.Category] = append(byCat[q.Category], q)
	}
	return &Collector{
		lang:      lang,
		questions: byID,
		byCat:     byCat,
		buffer:    make(map[string]string),
		committed: make(map[string]string),
	}
}

// SetAnswer records or overwrites the in-progress answer for a question.
// Idempotent upsert; validation happens at submission time.
func (c *Collector) SetAnswer(questionID, value string) {
	c.buffer[questionID] = value
}

// Answer returns the in-progress answer for a question, or the committed one
// if the question's category was already submitted.
func (c *Collector) Answer(questionID string) (string, bool) {
	if v, ok := c.buffer[questionID]; ok {
		return v, true
	}
	v, ok := c.committed[questionID]
	return v, ok
}

// answered reports whether the buffered value counts as a valid answer for
// the question: non-blank after trimming for free text, and one of the
// offered options (matched by value) for choice questions.
func (c *Collector) answered(q content.Question) bool {
	v, ok := c.buffer[q.ID]
	if !ok {
		return false
	}
	if q.Format == content.FormatFreeText {
		return strings.TrimSpace(v) != ""
	}
	for _, choice := range q.Choices(c.lang) {
		if v == choice {
			return true
		}
	}
	return false
}

// IsCategoryComplete reports whether every question in the category has a
// valid in-progress answer.
func (c *Collector) IsCategoryComplete(category string) bool {
	qs := c.byCat[category]
	if len(qs) == 0 {
		return false
	}
	for _, q := range qs {
		if !c.answered(q) {
			return false
		}
	}
	return true
}

// SubmitCategory merges the category's buffered answers into the committed
// set and clears them from the buffer. Fails with IncompleteCategoryError,
// leaving the buffer untouched, if any question lacks a valid answer.
func (c *Collector) SubmitCategory(category string) error {
	qs := c.byCat[category]

	var missing []string
	for _, q := range qs {
		if !c.answered(q) {
			missing = append(missing, q.ID)
		}
	}
	if len(qs) == 0 || len(missing) > 0 {
		return &IncompleteCategoryError{Category: category, Missing: missing}
	}

	for _, q := range qs {
		if _, dup := c.committed[q.ID]; !dup {
			c.order = append(c.order, q.ID)
		}
		c.committed[q.ID] = c.buffer[q.ID]
		delete(c.buffer, q.ID)
	}
	return nil
}

// Answers returns a copy of the committed answer set, keyed by question id.
func (c *Collector) Answers() map[string]string {
	out := make(map[string]string, len(c.committed))
	for k, v := range c.committed {
		out[k] = v
	}
	return out
}

// Count returns the number of committed answers.
func (c *Collector) Count() int {
	return len(c.committed)
}

// Reset discards all buffered and committed answers.
func (c *Collector) Reset() {
	c.buffer = make(map[string]string)
	c.committed = make(map[string]string)
	c.order = nil
}
