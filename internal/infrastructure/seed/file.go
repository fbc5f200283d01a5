package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"DealsTracker/internal/domain"
)

type entry struct {
	Title             string   `yaml:"title"`
	Country           string   `yaml:"country"`
	Value             string   `yaml:"value"`
	Status            string   `yaml:"status"`
	Type              string   `yaml:"type"`
	Impact            string   `yaml:"impact"`
	Description       string   `yaml:"description"`
	StrategicIntent   string   `yaml:"strategicIntent"`
	WhyIndiaNeedsThis string   `yaml:"whyIndiaNeedsThis"`
	KeyItems          []string `yaml:"keyItems"`
	Date              string   `yaml:"date"`
}

type document struct {
	Deals []entry `yaml:"deals"`
}

// LoadFile reads curated deals from a YAML document with a top-level
// "deals" list.
func LoadFile(path string) ([]domain.Deal, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a seed document.
func Parse(raw []byte) ([]domain.Deal, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	deals := make([]domain.Deal, 0, len(doc.Deals))
	for _, e := range doc.Deals {
		deals = append(deals, domain.Deal{
			Title:             e.Title,
			Country:           e.Country,
			Value:             e.Value,
			Status:            domain.DealStatus(e.Status),
			Type:              domain.Category(e.Type),
			Impact:            domain.Impact(e.Impact),
			Description:       e.Description,
			StrategicIntent:   e.StrategicIntent,
			WhyIndiaNeedsThis: e.WhyIndiaNeedsThis,
			KeyItems:          e.KeyItems,
			Date:              e.Date,
		})
	}
	return deals, nil
}
