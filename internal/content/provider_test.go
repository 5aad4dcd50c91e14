package content

import (
	"context"
	"errors"
	"testing"

	"github.com/speakclear-dev/speakclear/internal/api"
	"github.com/speakclear-dev/speakclear/internal/locale"
)

type fakeFetcher struct {
	defs    map[string]api.QuestionDef
	prompt  api.ReadingPrompt
	err     error
	fetches int
}

func (f *fakeFetcher) FetchQuestions(context.Context) (map[string]api.QuestionDef, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return f.defs, nil
}

func (f *fakeFetcher) FetchPrompt(context.Context, locale.Lang) (api.ReadingPrompt, error) {
	if f.err != nil {
		return api.ReadingPrompt{}, f.err
	}
	return f.prompt, nil
}

func sampleDefs() map[string]api.QuestionDef {
	return map[string]api.QuestionDef{
		"2":  {Category: "Speech", QuestionEN: "q2", Format: "choices", ChoicesEN: []string{"Yes", "No"}},
		"0":  {Category: "General", QuestionEN: "q0", Format: "text"},
		"10": {Category: "Speech", QuestionEN: "q10", Format: "text"},
		"1":  {Category: "General", QuestionEN: "q1", Format: "choices", ChoicesEN: []string{"A", "B"}},
	}
}

func TestLoadOrdersNumericIDs(t *testing.T) {
	p := NewProvider(&fakeFetcher{defs: sampleDefs()})
	if err := p.Load(t.Context(), locale.English); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Numeric ids: 0,1 (General) then 2,10 (Speech); "10" must not sort
	// before "2".
	var ids []string
	for _, q := range p.Questions() {
		ids = append(ids, q.ID)
	}
	want := []string{"0", "1", "2", "10"}
	if len(ids) != len(want) {
		t.Fatalf("question count: got %d, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("id[%d]: got %s, want %s", i, ids[i], want[i])
		}
	}

	cats := p.Categories()
	if len(cats) != 2 || cats[0] != "General" || cats[1] != "Speech" {
		t.Errorf("Categories: got %v, want [General Speech]", cats)
	}
}

func TestLoadCachesPerLanguage(t *testing.T) {
	f := &fakeFetcher{defs: sampleDefs()}
	p := NewProvider(f)

	if err := p.Load(t.Context(), locale.English); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := p.Load(t.Context(), locale.English); err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if f.fetches != 1 {
		t.Errorf("same-language reload must hit the cache, fetched %d times", f.fetches)
	}

	if err := p.Load(t.Context(), locale.Arabic); err != nil {
		t.Fatalf("Load(ar) failed: %v", err)
	}
	if f.fetches != 2 {
		t.Errorf("language switch must refetch, fetched %d times", f.fetches)
	}
	if p.Language() != locale.Arabic {
		t.Errorf("Language: got %s, want ar", p.Language())
	}
}

func TestLoadFailureLeavesStateUnchanged(t *testing.T) {
	f := &fakeFetcher{defs: sampleDefs()}
	p := NewProvider(f)

	if err := p.Load(t.Context(), locale.English); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	f.err = errors.New("connection refused")
	if err := p.Load(t.Context(), locale.Arabic); err == nil {
		t.Fatal("expected Load error")
	}

	if !p.Loaded() || p.Language() != locale.English {
		t.Error("failed load must leave the previous content intact")
	}
	if len(p.Questions()) != 4 {
		t.Errorf("question count after failed load: got %d, want 4", len(p.Questions()))
	}
}

func TestReset(t *testing.T) {
	p := NewProvider(&fakeFetcher{defs: sampleDefs()})
	if err := p.Load(t.Context(), locale.English); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	p.Reset()
	if p.Loaded() {
		t.Error("Reset should discard the cached content")
	}
	if len(p.Questions()) != 0 {
		t.Error("Reset should discard questions")
	}
}

func TestNonNumericIDsSortLexically(t *testing.T) {
	p := NewProvider(&fakeFetcher{defs: map[string]api.QuestionDef{
		"b_second": {Category: "General", QuestionEN: "q", Format: "text"},
		"a_first":  {Category: "General", QuestionEN: "q", Format: "text"},
	}})
	if err := p.Load(t.Context(), locale.English); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	qs := p.Questions()
	if qs[0].ID != "a_first" || qs[1].ID != "b_second" {
		t.Errorf("lexical order: got [%s %s]", qs[0].ID, qs[1].ID)
	}
}
