package menu

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNoisePhrases = []string{
	"gönderip", "katkı sağla", "uygulamaya", "listesini", "daha hızlı", "girilmesine",
}

func candidate(items ...string) *Menu {
	m := &Menu{
		Date:   Day(time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)),
		Slot:   SlotBreakfast,
		CityID: 1,
	}
	for i, name := range items {
		m.Items[i] = Item{Name: name}
	}
	return m
}

func TestValidatorCheck(t *testing.T) {
	v := NewValidator(testNoisePhrases)

	tests := []struct {
		name       string
		items      []string
		wantReason RejectReason
		wantIndex  int
	}{
		{
			name:       "four valid dishes",
			items:      []string{"Menemen", "Beyaz Peynir", "Zeytin", "Çay"},
			wantReason: ReasonNone,
			wantIndex:  -1,
		},
		{
			name:       "exactly three valid dishes",
			items:      []string{"Mercimek Çorbası", "Pilav", "Ayran", ""},
			wantReason: ReasonNone,
			wantIndex:  -1,
		},
		{
			name:       "only two valid dishes",
			items:      []string{"Pilav", "Ayran", "", ""},
			wantReason: ReasonTooFewItems,
			wantIndex:  -1,
		},
		{
			name:       "at-sign marks provider noise",
			items:      []string{"Soup", "Bread", "mail: contact@x.com", "Rice"},
			wantReason: ReasonEmailMarker,
			wantIndex:  2,
		},
		{
			name:       "email marker is case-insensitive",
			items:      []string{"Soup", "Bread", "MAIL US", "Rice"},
			wantReason: ReasonEmailMarker,
			wantIndex:  2,
		},
		{
			name:       "noise phrase rejects the record",
			items:      []string{"Yemek listesini gönderip", "Pilav", "Ayran", "Çorba"},
			wantReason: ReasonNoisePhrase,
			wantIndex:  0,
		},
		{
			name:       "noise phrase matches case-insensitively",
			items:      []string{"Çorba", "UYGULAMAYA destek olun", "Pilav", "Ayran"},
			wantReason: ReasonNoisePhrase,
			wantIndex:  1,
		},
		{
			name:       "two-rune names do not count as valid",
			items:      []string{"Ab", "Cd", "Ef", "Pilav"},
			wantReason: ReasonTooFewItems,
			wantIndex:  -1,
		},
		{
			name:       "all slots empty",
			items:      []string{"", "", "", ""},
			wantReason: ReasonTooFewItems,
			wantIndex:  -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := v.Check(candidate(tt.items...))
			assert.Equal(t, tt.wantReason, verdict.Reason)
			assert.Equal(t, tt.wantIndex, verdict.ItemIndex)
			assert.Equal(t, tt.wantReason == ReasonNone, verdict.Genuine)
			assert.Equal(t, verdict.Genuine, v.IsGenuine(candidate(tt.items...)))
		})
	}
}

func TestValidatorLengthBoundaries(t *testing.T) {
	v := NewValidator(testNoisePhrases)

	threeRunes := "Çay" // three runes, more than three bytes
	hundredRunes := strings.Repeat("a", 100)
	tooLong := strings.Repeat("a", 101)

	verdict := v.Check(candidate(threeRunes, hundredRunes, "Pilav", tooLong))
	require.True(t, verdict.Genuine)
	assert.Equal(t, 3, verdict.ValidItems)

	verdict = v.Check(candidate(threeRunes, hundredRunes, tooLong, ""))
	assert.False(t, verdict.Genuine)
	assert.Equal(t, ReasonTooFewItems, verdict.Reason)
}

func TestValidatorCountsAllSlotsAfterRejection(t *testing.T) {
	// The per-item log trail requires a full pass even when the first slot
	// already rejected the record.
	v := NewValidator(testNoisePhrases)

	verdict := v.Check(candidate("write to info@provider.com", "Pilav", "Ayran", "Çorba"))
	assert.False(t, verdict.Genuine)
	assert.Equal(t, ReasonEmailMarker, verdict.Reason)
	assert.Equal(t, 0, verdict.ItemIndex)
	assert.Equal(t, 4, verdict.ValidItems)
}

func TestValidatorConfigurablePhrases(t *testing.T) {
	v := NewValidator([]string{"sponsored", " ", ""})

	assert.False(t, v.IsGenuine(candidate("Sponsored content", "Pilav", "Ayran", "Çorba")))
	// The old provider wording is no longer configured, so it passes.
	assert.True(t, v.IsGenuine(candidate("katkı sağla", "Pilav", "Ayran", "Çorba")))
}
