package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

const notADealSentinel = "not_a_deal"

// Candidate is a deal as proposed by the extraction model, before persistence.
type Candidate struct {
	Title             string
	Country           string
	Value             string
	Status            DealStatus
	Type              Category
	Impact            Impact
	Description       string
	StrategicIntent   string
	WhyIndiaNeedsThis string
	KeyItems          []string
	Date              string
}

// Pending turns the candidate into a record waiting for review.
func (c Candidate) Pending(sourceURL, sourceTitle string, now time.Time) Deal {
	fetched := now
	return Deal{
		Title:             c.Title,
		Country:           c.Country,
		Value:             c.Value,
		Status:            c.Status,
		Type:              c.Type,
		Impact:            c.Impact,
		Description:       c.Description,
		StrategicIntent:   c.StrategicIntent,
		WhyIndiaNeedsThis: c.WhyIndiaNeedsThis,
		KeyItems:          append([]string(nil), c.KeyItems...),
		Date:              c.Date,
		ReviewStatus:      ReviewPending,
		SourceURL:         sourceURL,
		SourceTitle:       sourceTitle,
		FetchedAt:         &fetched,
		CreatedAt:         now,
	}
}

type rawCandidate struct {
	Error             string          `json:"error"`
	Title             string          `json:"title"`
	Country           string          `json:"country"`
	Value             json.RawMessage `json:"value"`
	Status            string          `json:"status"`
	Type              string          `json:"type"`
	Impact            string          `json:"impact"`
	Description       string          `json:"description"`
	StrategicIntent   string          `json:"strategicIntent"`
	WhyIndiaNeedsThis string          `json:"whyIndiaNeedsThis"`
	KeyItems          []string        `json:"keyItems"`
	Date              string          `json:"date"`
}

// ParseCandidate decodes the model's reply. It tolerates code fences and
// surrounding prose, returns ErrNotADeal for the sentinel object and a
// *ParseError for anything that does not describe a valid deal.
func ParseCandidate(raw string) (Candidate, error) {
	body, err := jsonObject(raw)
	if err != nil {
		return Candidate{}, &ParseError{Raw: raw, Err: err}
	}

	var rc rawCandidate
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&rc); err != nil {
		return Candidate{}, &ParseError{Raw: raw, Err: err}
	}
	if strings.EqualFold(strings.TrimSpace(rc.Error), notADealSentinel) {
		return Candidate{}, ErrNotADeal
	}
	if rc.Error != "" {
		return Candidate{}, &ParseError{Raw: raw, Err: errors.New("model reported: " + rc.Error)}
	}

	c := Candidate{
		Title:             strings.TrimSpace(rc.Title),
		Country:           strings.TrimSpace(rc.Country),
		Value:             rawValue(rc.Value),
		Description:       strings.TrimSpace(rc.Description),
		StrategicIntent:   strings.TrimSpace(rc.StrategicIntent),
		WhyIndiaNeedsThis: strings.TrimSpace(rc.WhyIndiaNeedsThis),
		KeyItems:          cleanItems(rc.KeyItems),
		Date:              strings.TrimSpace(rc.Date),
	}

	if c.Title == "" {
		return Candidate{}, &ParseError{Raw: raw, Err: errors.New("missing title")}
	}
	if c.Country == "" {
		return Candidate{}, &ParseError{Raw: raw, Err: errors.New("missing country")}
	}

	c.Status = StatusProposed
	if rc.Status != "" {
		if c.Status, err = ParseDealStatus(rc.Status); err != nil {
			return Candidate{}, &ParseError{Raw: raw, Err: err}
		}
	}
	c.Type = CategoryTrade
	if rc.Type != "" {
		if c.Type, err = ParseCategory(rc.Type); err != nil {
			return Candidate{}, &ParseError{Raw: raw, Err: err}
		}
	}
	c.Impact = ImpactMedium
	if rc.Impact != "" {
		if c.Impact, err = ParseImpact(rc.Impact); err != nil {
			return Candidate{}, &ParseError{Raw: raw, Err: err}
		}
	}

	return c, nil
}

// jsonObject strips markdown fences and returns the outermost {...} span.
func jsonObject(raw string) ([]byte, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in reply")
	}
	return []byte(cleaned[start : end+1]), nil
}

func rawValue(msg json.RawMessage) string {
	if len(msg) == 0 || string(msg) == "null" {
		return "0"
	}
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return NormalizeValue(s)
	}
	var f float64
	if err := json.Unmarshal(msg, &f); err == nil {
		return NormalizeValue(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return "0"
}
