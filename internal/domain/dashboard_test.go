package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortForDisplay(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	deals := []Deal{
		{ID: "old", Date: "March 2016", CreatedAt: base.Add(3 * time.Hour)},
		{ID: "undated", Date: "", CreatedAt: base.Add(4 * time.Hour)},
		{ID: "new-early", Date: "January 2024", CreatedAt: base},
		{ID: "new-late", Date: "May 2024", CreatedAt: base.Add(time.Hour)},
	}
	SortForDisplay(deals)

	ids := make([]string, 0, len(deals))
	for _, d := range deals {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"new-late", "new-early", "old", "undated"}, ids)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	deals := []Deal{
		{Country: "France", Value: "8.7", Type: CategoryDefense, Status: StatusCompleted},
		{Country: "France", Value: "1.3", Type: CategoryDefense, Status: StatusSigned},
		{Country: "USA", Value: "0", Type: CategoryTechnology, Status: StatusSigned},
		{Country: "Japan", Value: "bad", Type: CategoryTrade, Status: StatusProposed},
	}

	d := Summarize(deals, 2)
	assert.Equal(t, 4, d.Total)
	assert.Equal(t, 3, d.UniqueCountries)
	assert.InDelta(t, 10.0, d.TotalValue, 1e-9)
	assert.Equal(t, []CountEntry{{Label: "France", Count: 2}, {Label: "Japan", Count: 1}}, d.TopPartners)
	assert.Equal(t, CountEntry{Label: string(CategoryDefense), Count: 2}, d.ByType[0])
	assert.Equal(t, CountEntry{Label: string(StatusSigned), Count: 2}, d.ByStatus[0])
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	d := Summarize(nil, 5)
	assert.Zero(t, d.Total)
	assert.Empty(t, d.TopPartners)
	assert.NotNil(t, d.ByType)
}
