package domain

import (
	"fmt"
	"strings"
)

// DealStatus is the lifecycle stage of an agreement.
type DealStatus string

const (
	StatusProposed   DealStatus = "Proposed"
	StatusSigned     DealStatus = "Signed"
	StatusInProgress DealStatus = "In Progress"
	StatusOngoing    DealStatus = "Ongoing"
	StatusCompleted  DealStatus = "Completed"
)

// DealStatuses lists every accepted status in display order.
var DealStatuses = []DealStatus{StatusProposed, StatusSigned, StatusInProgress, StatusOngoing, StatusCompleted}

// Category classifies the subject matter of a deal.
type Category string

const (
	CategoryDefense    Category = "Defense Acquisition"
	CategoryTrade      Category = "Trade"
	CategoryTechnology Category = "Technology"
	CategoryEnergy     Category = "Energy"
	CategoryDiplomatic Category = "Diplomatic"
)

// Categories lists every accepted category in display order.
var Categories = []Category{CategoryDefense, CategoryTrade, CategoryTechnology, CategoryEnergy, CategoryDiplomatic}

// Impact is the strategic weight tier of a deal.
type Impact string

const (
	ImpactHigh   Impact = "High Impact"
	ImpactMedium Impact = "Medium Impact"
	ImpactLow    Impact = "Low Impact"
)

// Impacts lists every accepted impact tier.
var Impacts = []Impact{ImpactHigh, ImpactMedium, ImpactLow}

// ReviewStatus is the moderation state of a record.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ReviewStatuses lists every review state.
var ReviewStatuses = []ReviewStatus{ReviewPending, ReviewApproved, ReviewRejected}

// Terminal reports whether the status is a final review decision.
func (r ReviewStatus) Terminal() bool {
	return r == ReviewApproved || r == ReviewRejected
}

// ParseDealStatus matches value against the closed status set, ignoring case
// and surrounding whitespace.
func ParseDealStatus(value string) (DealStatus, error) {
	v, ok := matchFold(value, DealStatuses)
	if !ok {
		return "", invalidEnum("status", value)
	}
	return v, nil
}

// ParseCategory matches value against the closed category set.
func ParseCategory(value string) (Category, error) {
	v, ok := matchFold(value, Categories)
	if !ok {
		return "", invalidEnum("type", value)
	}
	return v, nil
}

// ParseImpact matches value against the closed impact set.
func ParseImpact(value string) (Impact, error) {
	v, ok := matchFold(value, Impacts)
	if !ok {
		return "", invalidEnum("impact", value)
	}
	return v, nil
}

// ParseReviewStatus matches value against the review states.
func ParseReviewStatus(value string) (ReviewStatus, error) {
	v, ok := matchFold(value, ReviewStatuses)
	if !ok {
		return "", invalidEnum("reviewStatus", value)
	}
	return v, nil
}

func matchFold[T ~string](value string, allowed []T) (T, bool) {
	value = strings.TrimSpace(value)
	for _, candidate := range allowed {
		if strings.EqualFold(value, string(candidate)) {
			return candidate, true
		}
	}
	var zero T
	return zero, false
}

func invalidEnum(field, value string) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("unsupported value %q", value)}
}
