// Package flow implements the session state machine that sequences the
// assessment: language selection, questionnaire categories, read-aloud
// recording trials, submission, and results. All transition rules live here;
// the TUI only renders states and forwards user intent.
package flow

import (
	"context"
	"fmt"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/assess"
	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/report"
)

// Step is the current position in the assessment flow.
type Step int

const (
	StepWelcome Step = iota
	StepSelectingLanguage
	StepAnsweringAssessment
	StepRecording
	StepReviewComplete
	StepSubmitting
	StepShowingResults
)

// String returns the step name for logs and error messages.
func (s Step) String() string {
	switch s {
	case StepWelcome:
		return "welcome"
	case StepSelectingLanguage:
		return "selecting_language"
	case StepAnsweringAssessment:
		return "answering_assessment"
	case StepRecording:
		return "recording"
	case StepReviewComplete:
		return "review_complete"
	case StepSubmitting:
		return "submitting"
	case StepShowingResults:
		return "showing_results"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// PreconditionFailedError reports an out-of-order operation. It is a defect
// signal: a correctly wired front end never triggers it.
type PreconditionFailedError struct {
	Op   string
	Step Step
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("precondition failed: %s not allowed in step %s", e.Op, e.Step)
}

// Recording is one finalized read-aloud trial: the WAV artifact plus the
// source text and phonemes of the prompt that was read. Immutable once
// attached to the session.
type Recording struct {
	PromptIndex int
	WAV         []byte
	Text        string
	Phonemes    string
}

// ContentSource is the localized content dependency. *content.Provider
// satisfies it.
type ContentSource interface {
	Load(ctx context.Context, lang locale.Lang) error
	Categories() []string
	FetchPrompt(ctx context.Context) (api.ReadingPrompt, error)
	Reset()
}

// Uploader is the submission dependency. *api.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, lang locale.Lang, audio []byte, payload api.UploadPayload) (*report.Result, error)
}

// CollectorFactory builds an answer collector once content for a language
// has loaded.
type CollectorFactory func(lang locale.Lang) *assess.Collector

// Controller sequences one end-to-end session. Not safe for concurrent use;
// the TUI drives it from the Bubble Tea update loop.
type Controller struct {
	content  ContentSource
	uploader Uploader
	makeColl CollectorFactory
	trials   int

	step        Step
	lang        locale.Lang
	collector   *assess.Collector
	catIndex    int
	recordings  map[int]Recording
	prompts     map[int]api.ReadingPrompt
	promptIndex int
	result      *report.Result
}

// NewController creates a Controller in the Welcome step. trials is the
// fixed number of read-aloud prompts per session.
func NewController(content ContentSource, uploader Uploader, makeColl CollectorFactory, trials int) *Controller {
	return &Controller{
		content:    content,
		uploader:   uploader,
		makeColl:   makeColl,
		trials:     trials,
		step:       StepWelcome,
		recordings: make(map[int]Recording),
		prompts:    make(map[int]api.ReadingPrompt),
	}
}

// Step returns the current step.
func (c *Controller) Step() Step { return c.step }

// Language returns the selected language ("" before selection).
func (c *Controller) Language() locale.Lang { return c.lang }

// Trials returns the fixed prompt count for this session.
func (c *Controller) Trials() int { return c.trials }

// Start leaves the welcome screen. Welcome -> SelectingLanguage.
func (c *Controller) Start() error {
	if c.step != StepWelcome {
		return &PreconditionFailedError{Op: "start", Step: c.step}
	}
	c.step = StepSelectingLanguage
	return nil
}

// ChooseLanguage loads content for the chosen language and advances to the
// assessment. On a fetch failure the step does not change, so the selection
// screen can offer a retry. Choosing a different language mid-flow resets
// all dependent state first.
func (c *Controller) ChooseLanguage(ctx context.Context, lang locale.Lang) error {
	if c.step != StepSelectingLanguage && c.step != StepAnsweringAssessment {
		return &PreconditionFailedError{Op: "choose language", Step: c.step}
	}
	if !lang.Valid() {
		return fmt.Errorf("unsupported language %q", lang)
	}

	// Re-choosing the active language is a no-op: the collector and any
	// buffered answers survive.
	if c.step == StepAnsweringAssessment && c.lang == lang {
		return nil
	}

	if c.lang != "" && c.lang != lang {
		// Language switch discards everything collected under the prior
		// language.
		c.content.Reset()
		c.resetCollected()
	}

	if err := c.content.Load(ctx, lang); err != nil {
		return err
	}

	c.lang = lang
	c.collector = c.makeColl(lang)
	c.catIndex = 0
	c.step = StepAnsweringAssessment
	return nil
}

// Collector exposes the answer collector for the current language. Nil
// before a language is chosen.
func (c *Controller) Collector() *assess.Collector { return c.collector }

// CurrentCategory returns the category being answered and its position.
func (c *Controller) CurrentCategory() (name string, index, total int) {
	cats := c.content.Categories()
	if c.catIndex < len(cats) {
		name = cats[c.catIndex]
	}
	return name, c.catIndex, len(cats)
}

// SubmitCategory validates and commits the current category's answers. When
// categories remain the flow stays in the assessment; after the last
// category it advances to Recording.
func (c *Controller) SubmitCategory() error {
	if c.step != StepAnsweringAssessment {
		return &PreconditionFailedError{Op: "submit category", Step: c.step}
	}
	cats := c.content.Categories()
	if c.catIndex >= len(cats) {
		return &PreconditionFailedError{Op: "submit category", Step: c.step}
	}

	if err := c.collector.SubmitCategory(cats[c.catIndex]); err != nil {
		return err
	}

	c.catIndex++
	if c.catIndex >= len(cats) {
		c.step = StepRecording
		c.promptIndex = 0
	}
	return nil
}

// LoadPrompt fetches the reading prompt for the current trial. Prompts are
// kept for the session so a re-record reuses the same passage.
func (c *Controller) LoadPrompt(ctx context.Context) (api.ReadingPrompt, error) {
	if c.step != StepRecording {
		return api.ReadingPrompt{}, &PreconditionFailedError{Op: "load prompt", Step: c.step}
	}
	if p, ok := c.prompts[c.promptIndex]; ok {
		return p, nil
	}
	p, err := c.content.FetchPrompt(ctx)
	if err != nil {
		return api.ReadingPrompt{}, err
	}
	c.prompts[c.promptIndex] = p
	return p, nil
}

// PromptIndex returns the index of the trial currently being recorded.
func (c *Controller) PromptIndex() int { return c.promptIndex }

// SaveRecording attaches a finalized artifact to its prompt index. A new
// recording for an already-recorded index replaces the prior one. Once every
// trial carries exactly one recording the flow advances to ReviewComplete.
func (c *Controller) SaveRecording(rec Recording) error {
	if c.step != StepRecording {
		return &PreconditionFailedError{Op: "save recording", Step: c.step}
	}
	if rec.PromptIndex < 0 || rec.PromptIndex >= c.trials {
		return fmt.Errorf("prompt index %d out of range (trials=%d)", rec.PromptIndex, c.trials)
	}

	c.recordings[rec.PromptIndex] = rec

	if len(c.recordings) >= c.trials {
		c.step = StepReviewComplete
		return nil
	}
	if rec.PromptIndex == c.promptIndex && c.promptIndex < c.trials-1 {
		c.promptIndex++
	}
	return nil
}

// Rerecord returns from the review to the recording step for one trial. The
// prior recording stays attached until a replacement is saved.
func (c *Controller) Rerecord(promptIndex int) error {
	if c.step != StepReviewComplete {
		return &PreconditionFailedError{Op: "rerecord", Step: c.step}
	}
	if promptIndex < 0 || promptIndex >= c.trials {
		return fmt.Errorf("prompt index %d out of range (trials=%d)", promptIndex, c.trials)
	}
	c.step = StepRecording
	c.promptIndex = promptIndex
	return nil
}

// Recordings returns the attached recordings ordered by prompt index.
func (c *Controller) Recordings() []Recording {
	out := make([]Recording, 0, len(c.recordings))
	for i := 0; i < c.trials; i++ {
		if rec, ok := c.recordings[i]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Submit uploads the collected session as one multipart request. On failure
// the flow returns to ReviewComplete with every answer and recording intact;
// on success it advances to ShowingResults and the server-issued result
// identifier becomes available.
func (c *Controller) Submit(ctx context.Context) (*report.Result, error) {
	if c.step != StepReviewComplete {
		return nil, &PreconditionFailedError{Op: "submit", Step: c.step}
	}

	first, ok := c.recordings[0]
	if !ok {
		return nil, &PreconditionFailedError{Op: "submit", Step: c.step}
	}

	c.step = StepSubmitting

	payload := api.UploadPayload{
		Data:     c.collector.Answers(),
		Text:     first.Text,
		Phonemes: first.Phonemes,
	}

	result, err := c.uploader.Upload(ctx, c.lang, first.WAV, payload)
	if err != nil {
		c.step = StepReviewComplete
		return nil, err
	}

	c.result = result
	c.step = StepShowingResults
	return result, nil
}

// Result returns the analysis result, nil before a successful submission.
func (c *Controller) Result() *report.Result { return c.result }

// ResultID returns the server-issued result identifier, "" before success.
func (c *Controller) ResultID() string {
	if c.result == nil {
		return ""
	}
	return c.result.ID
}

// Restart discards all collected answers, recordings, and the result
// identifier, and returns to Welcome. Allowed from any step.
func (c *Controller) Restart() {
	c.content.Reset()
	c.resetCollected()
	c.lang = ""
	c.collector = nil
	c.step = StepWelcome
}

func (c *Controller) resetCollected() {
	if c.collector != nil {
		c.collector.Reset()
	}
	c.recordings = make(map[int]Recording)
	c.prompts = make(map[int]api.ReadingPrompt)
	c.promptIndex = 0
	c.catIndex = 0
	c.result = nil
}
