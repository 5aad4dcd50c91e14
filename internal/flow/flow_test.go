package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/assess"
	"github.com/speakclear-dev/speakclear/internal/content"
	"github.com/speakclear-dev/speakclear/internal/locale"
	"github.com/speakclear-dev/speakclear/internal/report"
)

// fakeContent satisfies ContentSource with a fixed bilingual question set:
// two categories holding three and two questions.
type fakeContent struct {
	provider *content.Provider
	loadErr  error
	prompts  int
}

func newFakeContent(t *testing.T) *fakeContent {
	t.Helper()
	fc := &fakeContent{}
	fc.provider = content.NewProvider(fc)
	return fc
}

func (f *fakeContent) FetchQuestions(context.Context) (map[string]api.QuestionDef, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	defs := make(map[string]api.QuestionDef)
	for i := 0; i < 3; i++ {
		defs[fmt.Sprint(i)] = api.QuestionDef{
			Category: "General", QuestionEN: "q", QuestionAR: "س", Format: "text",
		}
	}
	for i := 3; i < 5; i++ {
		defs[fmt.Sprint(i)] = api.QuestionDef{
			Category: "Speech", QuestionEN: "q", QuestionAR: "س", Format: "choices",
			ChoicesEN: []string{"Yes", "No"}, ChoicesAR: []string{"نعم", "لا"},
		}
	}
	return defs, nil
}

func (f *fakeContent) FetchPrompt(ctx context.Context, lang locale.Lang) (api.ReadingPrompt, error) {
	f.prompts++
	return api.ReadingPrompt{
		Text:     fmt.Sprintf("passage %d", f.prompts),
		Phonemes: fmt.Sprintf("phonemes %d", f.prompts),
	}, nil
}

func (f *fakeContent) Load(ctx context.Context, lang locale.Lang) error {
	return f.provider.Load(ctx, lang)
}
func (f *fakeContent) Categories() []string { return f.provider.Categories() }
func (f *fakeContent) Reset()               { f.provider.Reset() }

type fakeUploader struct {
	err     error
	uploads int
	lastWAV []byte
	last    api.UploadPayload
}

func (u *fakeUploader) Upload(_ context.Context, _ locale.Lang, audio []byte, payload api.UploadPayload) (*report.Result, error) {
	u.uploads++
	u.lastWAV = audio
	u.last = payload
	if u.err != nil {
		return nil, u.err
	}
	return &report.Result{ID: "11111111-2222-3333-4444-555555555555"}, nil
}

type flowContent struct{ *fakeContent }

func (f flowContent) FetchPrompt(ctx context.Context) (api.ReadingPrompt, error) {
	return f.provider.FetchPrompt(ctx)
}

func newTestController(t *testing.T) (*Controller, *fakeContent, *fakeUploader) {
	t.Helper()
	fc := newFakeContent(t)
	up := &fakeUploader{}
	ctrl := NewController(
		flowContent{fc},
		up,
		func(lang locale.Lang) *assess.Collector {
			return assess.NewCollector(fc.provider.Questions(), lang)
		},
		3,
	)
	return ctrl, fc, up
}

// answerCategory fills and commits every question in the current category.
func answerCategory(t *testing.T, c *Controller, answers map[string]string) {
	t.Helper()
	for id, v := range answers {
		c.Collector().SetAnswer(id, v)
	}
	if err := c.SubmitCategory(); err != nil {
		t.Fatalf("SubmitCategory failed: %v", err)
	}
}

// driveToReview advances a fresh controller through the whole Arabic session
// up to the review step.
func driveToReview(t *testing.T, c *Controller) {
	t.Helper()
	ctx := t.Context()

	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := c.ChooseLanguage(ctx, locale.Arabic); err != nil {
		t.Fatalf("ChooseLanguage failed: %v", err)
	}

	answerCategory(t, c, map[string]string{"0": "a", "1": "b", "2": "c"})
	answerCategory(t, c, map[string]string{"3": "نعم", "4": "لا"})

	if c.Step() != StepRecording {
		t.Fatalf("after last category: step %s, want recording", c.Step())
	}

	for i := 0; i < 3; i++ {
		p, err := c.LoadPrompt(ctx)
		if err != nil {
			t.Fatalf("LoadPrompt failed: %v", err)
		}
		err = c.SaveRecording(Recording{
			PromptIndex: c.PromptIndex(),
			WAV:         []byte{byte(i)},
			Text:        p.Text,
			Phonemes:    p.Phonemes,
		})
		if err != nil {
			t.Fatalf("SaveRecording failed: %v", err)
		}
	}

	if c.Step() != StepReviewComplete {
		t.Fatalf("after 3 recordings: step %s, want review_complete", c.Step())
	}
}

func TestFullSessionSucceeds(t *testing.T) {
	c, _, up := newTestController(t)
	driveToReview(t, c)

	result, err := c.Submit(t.Context())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if c.Step() != StepShowingResults {
		t.Errorf("step after success: got %s, want showing_results", c.Step())
	}
	if result.ID == "" || c.ResultID() != result.ID {
		t.Errorf("result id not exposed: %q vs %q", result.ID, c.ResultID())
	}

	// The upload carries the first recording and its passage.
	if len(up.lastWAV) != 1 || up.lastWAV[0] != 0 {
		t.Errorf("uploaded artifact should be the first recording, got %v", up.lastWAV)
	}
	if up.last.Text != "passage 1" || up.last.Phonemes != "phonemes 1" {
		t.Errorf("payload text/phonemes: got %q/%q", up.last.Text, up.last.Phonemes)
	}
	if len(up.last.Data) != 5 {
		t.Errorf("payload answers: got %d, want 5", len(up.last.Data))
	}
}

func TestSubmitFailureKeepsEverything(t *testing.T) {
	c, _, up := newTestController(t)
	driveToReview(t, c)

	up.err = errors.New("server returned 500")
	if _, err := c.Submit(t.Context()); err == nil {
		t.Fatal("expected Submit error")
	}

	if c.Step() != StepReviewComplete {
		t.Errorf("step after failure: got %s, want review_complete", c.Step())
	}
	if got := len(c.Recordings()); got != 3 {
		t.Errorf("recordings after failure: got %d, want 3", got)
	}
	if got := c.Collector().Count(); got != 5 {
		t.Errorf("answers after failure: got %d, want 5", got)
	}

	// Retry succeeds with the same data.
	up.err = nil
	if _, err := c.Submit(t.Context()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if up.uploads != 2 {
		t.Errorf("uploads: got %d, want 2", up.uploads)
	}
}

func TestRerecordReplacesArtifact(t *testing.T) {
	c, _, _ := newTestController(t)
	driveToReview(t, c)

	if err := c.Rerecord(1); err != nil {
		t.Fatalf("Rerecord failed: %v", err)
	}
	if c.Step() != StepRecording || c.PromptIndex() != 1 {
		t.Fatalf("after Rerecord: step %s index %d", c.Step(), c.PromptIndex())
	}

	// The same passage is reused for the re-recorded trial.
	p, err := c.LoadPrompt(t.Context())
	if err != nil {
		t.Fatalf("LoadPrompt failed: %v", err)
	}
	if p.Text != "passage 2" {
		t.Errorf("re-record passage: got %q, want the original passage 2", p.Text)
	}

	err = c.SaveRecording(Recording{PromptIndex: 1, WAV: []byte{9, 9}, Text: p.Text, Phonemes: p.Phonemes})
	if err != nil {
		t.Fatalf("SaveRecording failed: %v", err)
	}
	if c.Step() != StepReviewComplete {
		t.Errorf("step after replacement: got %s, want review_complete", c.Step())
	}

	recs := c.Recordings()
	if len(recs) != 3 {
		t.Fatalf("recordings: got %d, want 3 (replace, not append)", len(recs))
	}
	if len(recs[1].WAV) != 2 {
		t.Errorf("trial 1 artifact was not replaced")
	}
}

func TestOutOfOrderOperations(t *testing.T) {
	c, _, _ := newTestController(t)

	var pre *PreconditionFailedError
	if _, err := c.Submit(t.Context()); !errors.As(err, &pre) {
		t.Errorf("Submit before review: got %v, want PreconditionFailedError", err)
	}
	if err := c.SubmitCategory(); !errors.As(err, &pre) {
		t.Errorf("SubmitCategory before assessment: got %v", err)
	}
	if err := c.SaveRecording(Recording{}); !errors.As(err, &pre) {
		t.Errorf("SaveRecording before recording: got %v", err)
	}
	if err := c.ChooseLanguage(t.Context(), locale.English); !errors.As(err, &pre) {
		t.Errorf("ChooseLanguage before start: got %v", err)
	}
}

func TestContentFailureKeepsSelectionActive(t *testing.T) {
	c, fc, _ := newTestController(t)
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	fc.loadErr = errors.New("connection refused")
	if err := c.ChooseLanguage(t.Context(), locale.English); err == nil {
		t.Fatal("expected ChooseLanguage error")
	}
	if c.Step() != StepSelectingLanguage {
		t.Errorf("step after fetch failure: got %s, want selecting_language", c.Step())
	}

	fc.loadErr = nil
	if err := c.ChooseLanguage(t.Context(), locale.English); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if c.Step() != StepAnsweringAssessment {
		t.Errorf("step after retry: got %s", c.Step())
	}
}

func TestSameLanguageRechooseKeepsAnswers(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := c.ChooseLanguage(t.Context(), locale.English); err != nil {
		t.Fatalf("ChooseLanguage failed: %v", err)
	}

	collector := c.Collector()
	collector.SetAnswer("0", "a")

	if err := c.ChooseLanguage(t.Context(), locale.English); err != nil {
		t.Fatalf("same-language re-choose failed: %v", err)
	}
	if c.Step() != StepAnsweringAssessment {
		t.Errorf("step: got %s, want answering_assessment", c.Step())
	}
	if c.Collector() != collector {
		t.Error("same-language re-choose must not rebuild the collector")
	}
	if v, ok := c.Collector().Answer("0"); !ok || v != "a" {
		t.Errorf("buffered answer lost: %q %v", v, ok)
	}

	// A genuine switch still resets everything for the new language.
	if err := c.ChooseLanguage(t.Context(), locale.Arabic); err != nil {
		t.Fatalf("language switch failed: %v", err)
	}
	if _, ok := c.Collector().Answer("0"); ok {
		t.Error("language switch must discard prior answers")
	}
}

func TestRestartClearsEverything(t *testing.T) {
	c, _, _ := newTestController(t)
	driveToReview(t, c)

	c.Restart()

	if c.Step() != StepWelcome {
		t.Errorf("step after restart: got %s, want welcome", c.Step())
	}
	if c.Language() != "" {
		t.Errorf("language should be cleared, got %q", c.Language())
	}
	if len(c.Recordings()) != 0 {
		t.Error("recordings should be cleared")
	}
	if c.ResultID() != "" {
		t.Error("result id should be cleared")
	}

	// A full second run works from scratch.
	driveToReview(t, c)
	if _, err := c.Submit(t.Context()); err != nil {
		t.Fatalf("second session failed: %v", err)
	}
}

func TestIncompleteCategoryBlocksAdvance(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := c.ChooseLanguage(t.Context(), locale.English); err != nil {
		t.Fatalf("ChooseLanguage failed: %v", err)
	}

	c.Collector().SetAnswer("0", "a")
	var incomplete *assess.IncompleteCategoryError
	if err := c.SubmitCategory(); !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteCategoryError, got %v", err)
	}

	// Still on the first category.
	name, idx, total := c.CurrentCategory()
	if name != "General" || idx != 0 || total != 2 {
		t.Errorf("CurrentCategory: got %s %d/%d", name, idx, total)
	}
}
