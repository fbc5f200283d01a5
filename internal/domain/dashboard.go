package domain

import (
	"sort"
	"time"
)

// CountEntry is a label with its occurrence count.
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Dashboard holds the aggregates shown above the public listing.
type Dashboard struct {
	Total           int          `json:"total"`
	UniqueCountries int          `json:"uniqueCountries"`
	TotalValue      float64      `json:"totalValue"`
	TopPartners     []CountEntry `json:"topPartners"`
	ByType          []CountEntry `json:"byType"`
	ByStatus        []CountEntry `json:"byStatus"`
}

// AdminStats holds the counters shown on the review page.
type AdminStats struct {
	Total    int            `json:"total"`
	Pending  int            `json:"pending"`
	ByStatus map[string]int `json:"byStatus"`
}

// Health reports store reachability.
type Health struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	ApprovedDeals int       `json:"approvedDeals"`
}

// SortForDisplay orders deals by the year in their date, newest first, then
// by creation time, newest first.
func SortForDisplay(deals []Deal) {
	sort.SliceStable(deals, func(i, j int) bool {
		yi, yj := deals[i].Year(), deals[j].Year()
		if yi != yj {
			return yi > yj
		}
		return deals[i].CreatedAt.After(deals[j].CreatedAt)
	})
}

// Summarize computes dashboard aggregates over approved deals.
func Summarize(deals []Deal, topN int) Dashboard {
	partners := map[string]int{}
	types := map[string]int{}
	statuses := map[string]int{}
	var total float64

	for _, d := range deals {
		total += d.NumericValue()
		if d.Country != "" {
			partners[d.Country]++
		}
		if d.Type != "" {
			types[string(d.Type)]++
		}
		if d.Status != "" {
			statuses[string(d.Status)]++
		}
	}

	top := rank(partners)
	if topN > 0 && len(top) > topN {
		top = top[:topN]
	}

	return Dashboard{
		Total:           len(deals),
		UniqueCountries: len(partners),
		TotalValue:      total,
		TopPartners:     top,
		ByType:          rank(types),
		ByStatus:        rank(statuses),
	}
}

func rank(counts map[string]int) []CountEntry {
	out := make([]CountEntry, 0, len(counts))
	for label, count := range counts {
		out = append(out, CountEntry{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
