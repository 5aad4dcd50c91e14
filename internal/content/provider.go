// Package content provides the localized question and reading-prompt
// content for one assessment session. Questions are fetched once per
// language and cached in memory only; switching language discards the cache
// along with everything collected under the prior language.
package content

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/locale"
)

// Format is the answer format of a question.
type Format string

const (
	FormatChoice   Format = "choices"
	FormatFreeText Format = "text"
)

// Question is one assessment question with its localized prompt and choice
// list. Immutable once fetched.
type Question struct {
	ID       string
	Category string
	Format   Format

	prompt    locale.Text
	choicesEN []string
	choicesAR []string
}

// Prompt returns the question text in the given language.
func (q Question) Prompt(lang locale.Lang) string {
	return q.prompt.In(lang)
}

// Choices returns the offered options in the given language. Nil for
// free-text questions.
func (q Question) Choices(lang locale.Lang) []string {
	if lang == locale.Arabic {
		return q.choicesAR
	}
	return q.choicesEN
}

// Fetcher is the network boundary the provider depends on. *api.Client
// satisfies it.
type Fetcher interface {
	FetchQuestions(ctx context.Context) (map[string]api.QuestionDef, error)
	FetchPrompt(ctx context.Context, lang locale.Lang) (api.ReadingPrompt, error)
}

// Provider exposes a read-only, language-keyed view over the fetched
// content.
type Provider struct {
	fetcher Fetcher

	mu         sync.Mutex
	lang       locale.Lang
	loaded     bool
	questions  []Question
	categories []string
}

// NewProvider creates an empty Provider backed by the given fetcher.
func NewProvider(f Fetcher) *Provider {
	return &Provider{fetcher: f}
}

// Load fetches the question set for the given language. A repeated Load for
// the same language is served from the cache; a different language discards
// the cached view first. Failures leave the provider unchanged so the caller
// can retry.
func (p *Provider) Load(ctx context.Context, lang locale.Lang) error {
	p.mu.Lock()
	if p.loaded && p.lang == lang {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	defs, err := p.fetcher.FetchQuestions(ctx)
	if err != nil {
		return err
	}

	questions, categories := orderQuestions(defs)

	p.mu.Lock()
	p.lang = lang
	p.loaded = true
	p.questions = questions
	p.categories = categories
	p.mu.Unlock()

	return nil
}

// Loaded reports whether a question set is cached.
func (p *Provider) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Language returns the language the cached content was loaded for.
func (p *Provider) Language() locale.Lang {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lang
}

// Categories returns the category names in first-seen order.
func (p *Provider) Categories() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.categories))
	copy(out, p.categories)
	return out
}

// Questions returns all questions, ordered by id and grouped so that each
// category's questions are contiguous.
func (p *Provider) Questions() []Question {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Question, len(p.questions))
	copy(out, p.questions)
	return out
}

// QuestionsIn returns the questions belonging to one category, in order.
func (p *Provider) QuestionsIn(category string) []Question {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Question
	for _, q := range p.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	return out
}

// FetchPrompt retrieves one reading prompt in the loaded language. Prompts
// are sampled server-side per request and are not cached.
func (p *Provider) FetchPrompt(ctx context.Context) (api.ReadingPrompt, error) {
	p.mu.Lock()
	lang := p.lang
	p.mu.Unlock()
	return p.fetcher.FetchPrompt(ctx, lang)
}

// Reset discards the cached view, e.g. on session restart.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = false
	p.questions = nil
	p.categories = nil
	p.lang = ""
}

// orderQuestions turns the wire map into an ordered slice grouped by
// category. Ids sort numerically when they all parse as integers (the
// service numbers them "0", "1", ...), lexically otherwise; category order
// is first-seen within that id order.
func orderQuestions(defs map[string]api.QuestionDef) ([]Question, []string) {
	ids := make([]string, 0, len(defs))
	for id := range defs {
		ids = append(ids, id)
	}

	numeric := true
	for _, id := range ids {
		if _, err := strconv.Atoi(id); err != nil {
			numeric = false
			break
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if numeric {
			a, _ := strconv.Atoi(ids[i])
			b, _ := strconv.Atoi(ids[j])
			return a < b
		}
		return ids[i] < ids[j]
	})

	var categories []string
	seen := make(map[string]bool)
	for _, id := range ids {
		cat := defs[id].Category
		if !seen[cat] {
			seen[cat] = true
			categories = append(categories, cat)
		}
	}

	var questions []Question
	for _, cat := range categories {
		for _, id := range ids {
			def := defs[id]
			if def.Category != cat {
				continue
			}
			questions = append(questions, Question{
				ID:        id,
				Category:  def.Category,
				Format:    Format(def.Format),
				prompt:    locale.Text{EN: def.QuestionEN, AR: def.QuestionAR},
				choicesEN: def.ChoicesEN,
				choicesAR: def.ChoicesAR,
			})
		}
	}

	return questions, categories
}
