package menu

import (
	"strings"
	"unicode/utf8"
)

// RejectReason explains why a candidate menu was classified as noise.
type RejectReason string

const (
	ReasonNone        RejectReason = ""
	ReasonEmailMarker RejectReason = "EMAIL_MARKER"
	ReasonNoisePhrase RejectReason = "NOISE_PHRASE"
	ReasonTooFewItems RejectReason = "TOO_FEW_ITEMS"
)

const (
	minItemLength = 3
	maxItemLength = 100
	minValidItems = 3
)

// Verdict is the result of classifying a single candidate menu.
type Verdict struct {
	Genuine    bool
	Reason     RejectReason
	ItemIndex  int // index of the item slot that triggered rejection, -1 if none
	ValidItems int // count of items with trimmed length in [3,100]
}

// Validator decides whether a fetched candidate is a real menu or provider
// noise. The noise phrase list is configuration rather than code: the
// provider occasionally replaces dishes with promotional boilerplate and its
// wording drifts over time.
type Validator struct {
	noisePhrases []string
}

// NewValidator builds a validator from a noise phrase list. Phrases are
// matched case-insensitively as substrings; empty entries are dropped.
func NewValidator(noisePhrases []string) *Validator {
	phrases := make([]string, 0, len(noisePhrases))
	for _, p := range noisePhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			phrases = append(phrases, p)
		}
	}
	return &Validator{noisePhrases: phrases}
}

// Check classifies the candidate. All four item slots are inspected even
// after a rejection is found, so one pass yields both the triggering slot and
// the full length-valid count for logging.
func (v *Validator) Check(m *Menu) Verdict {
	verdict := Verdict{ItemIndex: -1}

	for i, item := range m.Items {
		trimmed := strings.TrimSpace(item.Name)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)

		if verdict.Reason == ReasonNone {
			switch {
			case strings.Contains(lower, "@") || strings.Contains(lower, "mail"):
				verdict.Reason = ReasonEmailMarker
				verdict.ItemIndex = i
			case v.containsNoisePhrase(lower):
				verdict.Reason = ReasonNoisePhrase
				verdict.ItemIndex = i
			}
		}

		if n := utf8.RuneCountInString(trimmed); n >= minItemLength && n <= maxItemLength {
			verdict.ValidItems++
		}
	}

	if verdict.Reason == ReasonNone && verdict.ValidItems < minValidItems {
		verdict.Reason = ReasonTooFewItems
	}
	verdict.Genuine = verdict.Reason == ReasonNone
	return verdict
}

// IsGenuine is the boolean shorthand over Check.
func (v *Validator) IsGenuine(m *Menu) bool {
	return v.Check(m).Genuine
}

func (v *Validator) containsNoisePhrase(lowerItem string) bool {
	for _, phrase := range v.noisePhrases {
		if strings.Contains(lowerItem, phrase) {
			return true
		}
	}
	return false
}
