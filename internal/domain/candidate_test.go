package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCandidateFullObject(t *testing.T) {
	t.Parallel()

	raw := "Here you go:\n```json\n" + `{
		"title": "S-400 Triumf",
		"country": "Russia",
		"value": "5.4",
		"status": "In Progress",
		"type": "Defense Acquisition",
		"impact": "High Impact",
		"description": "Air defence.",
		"strategicIntent": "Deterrence.",
		"whyIndiaNeedsThis": "Gaps.",
		"keyItems": ["5 squadrons", ""],
		"date": "October 2018"
	}` + "\n```"

	c, err := ParseCandidate(raw)
	require.NoError(t, err)
	assert.Equal(t, "S-400 Triumf", c.Title)
	assert.Equal(t, "Russia", c.Country)
	assert.Equal(t, "5.4", c.Value)
	assert.Equal(t, StatusInProgress, c.Status)
	assert.Equal(t, CategoryDefense, c.Type)
	assert.Equal(t, ImpactHigh, c.Impact)
	assert.Equal(t, []string{"5 squadrons"}, c.KeyItems)
	assert.Equal(t, "October 2018", c.Date)
}

func TestParseCandidateNumericValueAndDefaults(t *testing.T) {
	t.Parallel()

	c, err := ParseCandidate(`{"title":"T","country":"C","value":2.75}`)
	require.NoError(t, err)
	assert.Equal(t, "2.75", c.Value)
	assert.Equal(t, StatusProposed, c.Status)
	assert.Equal(t, CategoryTrade, c.Type)
	assert.Equal(t, ImpactMedium, c.Impact)

	c, err = ParseCandidate(`{"title":"T","country":"C"}`)
	require.NoError(t, err)
	assert.Equal(t, "0", c.Value)
}

func TestParseCandidateNotADeal(t *testing.T) {
	t.Parallel()

	_, err := ParseCandidate(`{"error": "not_a_deal"}`)
	assert.ErrorIs(t, err, ErrNotADeal)
}

func TestParseCandidateMalformed(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"I cannot help with that.",
		`{"title": "T", "country":`,
		`{"title": "", "country": "C"}`,
		`{"title": "T", "country": ""}`,
		`{"title": "T", "country": "C", "status": "Rumoured"}`,
		`{"title": "T", "country": "C", "type": "Sports"}`,
		`{"error": "rate limited"}`,
	}
	for _, in := range inputs {
		_, err := ParseCandidate(in)
		var pe *ParseError
		require.Truef(t, errors.As(err, &pe), "input %q: got %v", in, err)
		assert.Equal(t, in, pe.Raw)
		assert.False(t, errors.Is(err, ErrNotADeal))
	}
}

func TestCandidatePending(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	c := Candidate{Title: "T", Country: "C", KeyItems: []string{"x"}}
	d := c.Pending("https://example.com/a", "Headline", now)

	assert.Equal(t, ReviewPending, d.ReviewStatus)
	assert.Equal(t, "https://example.com/a", d.SourceURL)
	assert.Equal(t, "Headline", d.SourceTitle)
	require.NotNil(t, d.FetchedAt)
	assert.Equal(t, now, *d.FetchedAt)
	assert.Equal(t, now, d.CreatedAt)
	assert.Empty(t, d.ID)

	c.KeyItems[0] = "mutated"
	assert.Equal(t, []string{"x"}, d.KeyItems)
}
