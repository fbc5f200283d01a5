package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearExpr     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	nonValueExpr = regexp.MustCompile(`[^0-9.]`)
)

// Deal is the persisted agreement record.
type Deal struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	Country           string       `json:"country"`
	Value             string       `json:"value"`
	Status            DealStatus   `json:"status"`
	Type              Category     `json:"type"`
	Impact            Impact       `json:"impact"`
	Description       string       `json:"description"`
	StrategicIntent   string       `json:"strategicIntent"`
	WhyIndiaNeedsThis string       `json:"whyIndiaNeedsThis"`
	KeyItems          []string     `json:"keyItems"`
	Date              string       `json:"date"`
	ReviewStatus      ReviewStatus `json:"reviewStatus"`
	SourceURL         string       `json:"sourceUrl,omitempty"`
	SourceTitle       string       `json:"sourceTitle,omitempty"`
	FetchedAt         *time.Time   `json:"fetchedAt,omitempty"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// Validate normalises free-form fields and checks every enum. It is called on
// each write path so that no out-of-set value reaches the store.
func (d *Deal) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Country = strings.TrimSpace(d.Country)
	if d.Title == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if d.Country == "" {
		return &ValidationError{Field: "country", Reason: "required"}
	}

	d.Value = NormalizeValue(d.Value)

	var err error
	if d.Status == "" {
		d.Status = StatusProposed
	} else if d.Status, err = ParseDealStatus(string(d.Status)); err != nil {
		return err
	}
	if d.Type == "" {
		d.Type = CategoryTrade
	} else if d.Type, err = ParseCategory(string(d.Type)); err != nil {
		return err
	}
	if d.Impact == "" {
		d.Impact = ImpactMedium
	} else if d.Impact, err = ParseImpact(string(d.Impact)); err != nil {
		return err
	}
	if d.ReviewStatus != "" {
		if d.ReviewStatus, err = ParseReviewStatus(string(d.ReviewStatus)); err != nil {
			return err
		}
	}

	d.KeyItems = cleanItems(d.KeyItems)
	return nil
}

// NumericValue returns the deal value in billions USD, 0 when unknown.
func (d Deal) NumericValue() float64 {
	f, err := strconv.ParseFloat(NormalizeValue(d.Value), 64)
	if err != nil {
		return 0
	}
	return f
}

// Year returns the first four-digit year found in the display date.
func (d Deal) Year() int {
	return ExtractYear(d.Date)
}

// NormalizeValue turns strings like "$5.4 bn" into "5.4"; anything without a
// parsable number becomes "0".
func NormalizeValue(value string) string {
	cleaned := nonValueExpr.ReplaceAllString(value, "")
	if cleaned == "" {
		return "0"
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || f < 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ExtractYear finds a 19xx or 20xx year in free text such as "February 2026".
func ExtractYear(date string) int {
	match := yearExpr.FindString(date)
	if match == "" {
		return 0
	}
	year, _ := strconv.Atoi(match)
	return year
}

func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// DealPatch carries the descriptive fields an operator may edit; nil fields
// are left untouched. Review status is not editable here.
type DealPatch struct {
	Title             *string   `json:"title"`
	Country           *string   `json:"country"`
	Value             *string   `json:"value"`
	Status            *string   `json:"status"`
	Type              *string   `json:"type"`
	Impact            *string   `json:"impact"`
	Description       *string   `json:"description"`
	StrategicIntent   *string   `json:"strategicIntent"`
	WhyIndiaNeedsThis *string   `json:"whyIndiaNeedsThis"`
	KeyItems          *[]string `json:"keyItems"`
	Date              *string   `json:"date"`
}

// Apply copies the set fields of the patch onto a copy of d and validates it.
func (p DealPatch) Apply(d Deal) (Deal, error) {
	setString(&d.Title, p.Title)
	setString(&d.Country, p.Country)
	setString(&d.Value, p.Value)
	setString(&d.Description, p.Description)
	setString(&d.StrategicIntent, p.StrategicIntent)
	setString(&d.WhyIndiaNeedsThis, p.WhyIndiaNeedsThis)
	setString(&d.Date, p.Date)
	if p.Status != nil {
		d.Status = DealStatus(*p.Status)
	}
	if p.Type != nil {
		d.Type = Category(*p.Type)
	}
	if p.Impact != nil {
		d.Impact = Impact(*p.Impact)
	}
	if p.KeyItems != nil {
		d.KeyItems = append([]string(nil), (*p.KeyItems)...)
	}
	if err := d.Validate(); err != nil {
		return Deal{}, err
	}
	return d, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// ListFilter narrows repository listings.
type ListFilter struct {
	ReviewStatus ReviewStatus
}
