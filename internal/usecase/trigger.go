package usecase

import (
	"crypto/subtle"
	"strings"

	"DealsTracker/internal/domain"
)

// TriggerAuthorizer decides whether an HTTP caller may start a scan or run a
// maintenance job.
type TriggerAuthorizer struct {
	secret          string
	schedulerSecret string
	development     bool
}

// NewTriggerAuthorizer accepts bearer tokens equal to secret and scheduler
// signatures equal to schedulerSecret. An empty secret disables that path.
func NewTriggerAuthorizer(secret, schedulerSecret string, development bool) *TriggerAuthorizer {
	return &TriggerAuthorizer{secret: secret, schedulerSecret: schedulerSecret, development: development}
}

// Authorize accepts a matching bearer token, a matching scheduler signature,
// or anything in development.
func (a *TriggerAuthorizer) Authorize(authorization, schedulerSignature string) error {
	if a.development {
		return nil
	}
	if matches(schedulerSignature, a.schedulerSecret) {
		return nil
	}
	if token, ok := strings.CutPrefix(strings.TrimSpace(authorization), "Bearer "); ok && matches(token, a.secret) {
		return nil
	}
	return domain.ErrUnauthorized
}

func matches(given, want string) bool {
	given = strings.TrimSpace(given)
	if want == "" || given == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}
