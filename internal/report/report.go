// Package report models the analysis report returned by the SpeakClear
// service after a sample is submitted, and renders it for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/speakclear-dev/speakclear/internal/locale"
)

// Disorder describes one candidate disorder flagged by the analysis agent.
type Disorder struct {
	Name     string   `json:"disorder_name"`
	Symptoms []string `json:"disorder_symptoms"`
	Pointers []string `json:"disorder_pointers"`
	Causes   []string `json:"disorder_lying_causes"`
}

// RootCause is a suspected underlying cause with its explanation.
type RootCause struct {
	Cause       string `json:"cause"`
	Explanation string `json:"explanation"`
}

// Recommendation is one prioritized suggestion from the agent.
type Recommendation struct {
	Recommendation string   `json:"recommendation"`
	Priority       string   `json:"priority"`
	Tips           []string `json:"tips"`
	Resources      []string `json:"resources_or_links"`
}

// AgentResponse is the structured narrative produced by the analysis agent.
// Every section comes in both supported languages; the _en/_ar pairs mirror
// the wire format exactly.
type AgentResponse struct {
	OverviewEN string `json:"overview_en"`
	OverviewAR string `json:"overview_ar"`

	AvgClassWPM float64 `json:"avg_class_wpm"`

	SpeechRateComparisonEN string `json:"speech_rate_comparison_en"`
	SpeechRateComparisonAR string `json:"speech_rate_comparison_ar"`

	SpeechRateSeverityEN string `json:"speech_rate_severity"`
	SpeechRateSeverityAR string `json:"speech_rate_severity_ar"`

	DisordersEN []Disorder `json:"disorders_en"`
	DisordersAR []Disorder `json:"disorders_ar"`

	RootCausesEN []RootCause `json:"root_causes_en"`
	RootCausesAR []RootCause `json:"root_causes_ar"`

	RecommendationsEN []Recommendation `json:"recommendations_en"`
	RecommendationsAR []Recommendation `json:"recommendations_ar"`

	References []string `json:"references_and_resources_links"`
}

// Overview returns the overview section for the given language.
func (a AgentResponse) Overview(lang locale.Lang) string {
	if lang == locale.Arabic {
		return a.OverviewAR
	}
	return a.OverviewEN
}

// SpeechRateComparison returns the comparison narrative for the given language.
func (a AgentResponse) SpeechRateComparison(lang locale.Lang) string {
	if lang == locale.Arabic {
		return a.SpeechRateComparisonAR
	}
	return a.SpeechRateComparisonEN
}

// SpeechRateSeverity returns the severity label for the given language.
func (a AgentResponse) SpeechRateSeverity(lang locale.Lang) string {
	if lang == locale.Arabic {
		return a.SpeechRateSeverityAR
	}
	return a.SpeechRateSeverityEN
}

// Disorders returns the disorder list for the given language.
func (a AgentResponse) Disorders(lang locale.Lang) []Disorder {
	if lang == locale.Arabic {
		return a.DisordersAR
	}
	return a.DisordersEN
}

// RootCauses returns the root-cause list for the given language.
func (a AgentResponse) RootCauses(lang locale.Lang) []RootCause {
	if lang == locale.Arabic {
		return a.RootCausesAR
	}
	return a.RootCausesEN
}

// Recommendations returns the recommendation list for the given language.
func (a AgentResponse) Recommendations(lang locale.Lang) []Recommendation {
	if lang == locale.Arabic {
		return a.RecommendationsAR
	}
	return a.RecommendationsEN
}

// Result is the full server response to a submitted sample. The ID correlates
// the sample with its report and authorizes follow-up chat exchanges.
type Result struct {
	ID             string        `json:"id"`
	AgentResponse  AgentResponse `json:"agent_response"`
	SpeechRate     float64       `json:"speech_rate"`
	PhonemeRate    float64       `json:"phoneme_rate"`
	DysarthriaProb float64       `json:"dysarthria_prob"`
	References     []string      `json:"references_and_resources_links"`
}

// Format produces a terminal-friendly rendering of the result in the given
// language. Numeric metrics are always shown; narrative sections follow the
// selected language.
func Format(r *Result, lang locale.Lang) string {
	var b strings.Builder

	b.WriteString("========================================\n")
	b.WriteString("  Speech Analysis Report\n")
	b.WriteString("========================================\n\n")

	if ov := r.AgentResponse.Overview(lang); ov != "" {
		b.WriteString(ov)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Speech rate:       %.1f wpm\n", r.SpeechRate)
	fmt.Fprintf(&b, "Phoneme rate:      %.2f /s\n", r.PhonemeRate)
	fmt.Fprintf(&b, "Dysarthria prob.:  %.1f%%\n", r.DysarthriaProb*100)
	if r.AgentResponse.AvgClassWPM > 0 {
		fmt.Fprintf(&b, "Class average:     %.1f wpm\n", r.AgentResponse.AvgClassWPM)
	}
	b.WriteString("\n")

	if sev := r.AgentResponse.SpeechRateSeverity(lang); sev != "" {
		fmt.Fprintf(&b, "Rate assessment:   %s\n", sev)
	}
	if cmp := r.AgentResponse.SpeechRateComparison(lang); cmp != "" {
		b.WriteString(cmp)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if disorders := r.AgentResponse.Disorders(lang); len(disorders) > 0 {
		b.WriteString("Possible disorders:\n")
		for _, d := range disorders {
			fmt.Fprintf(&b, "  - %s\n", d.Name)
			for _, s := range d.Symptoms {
				fmt.Fprintf(&b, "      %s\n", s)
			}
		}
		b.WriteString("\n")
	}

	if causes := r.AgentResponse.RootCauses(lang); len(causes) > 0 {
		b.WriteString("Root causes:\n")
		for _, c := range causes {
			fmt.Fprintf(&b, "  - %s: %s\n", c.Cause, c.Explanation)
		}
		b.WriteString("\n")
	}

	if recs := r.AgentResponse.Recommendations(lang); len(recs) > 0 {
		b.WriteString("Recommendations:\n")
		for i, rec := range recs {
			fmt.Fprintf(&b, "  %d. [%s] %s\n", i+1, rec.Priority, rec.Recommendation)
			for _, tip := range rec.Tips {
				fmt.Fprintf(&b, "       %s\n", tip)
			}
		}
		b.WriteString("\n")
	}

	refs := r.References
	if len(refs) == 0 {
		refs = r.AgentResponse.References
	}
	if len(refs) > 0 {
		b.WriteString("References:\n")
		for _, ref := range refs {
			fmt.Fprintf(&b, "  - %s\n", ref)
		}
		b.WriteString("\n")
	}

	b.WriteString("========================================\n")

	return b.String()
}
