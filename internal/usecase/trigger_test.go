package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"DealsTracker/internal/domain"
)

func TestTriggerAuthorizer(t *testing.T) {
	t.Parallel()

	prod := NewTriggerAuthorizer("s3cret", "sched-sig", false)
	assert.NoError(t, prod.Authorize("Bearer s3cret", ""))
	assert.NoError(t, prod.Authorize("", "sched-sig"))
	assert.ErrorIs(t, prod.Authorize("", "1"), domain.ErrUnauthorized)
	assert.ErrorIs(t, prod.Authorize("", "forged-by-anyone"), domain.ErrUnauthorized)
	assert.ErrorIs(t, prod.Authorize("Bearer sched-sig", ""), domain.ErrUnauthorized)
	assert.ErrorIs(t, prod.Authorize("Bearer wrong", ""), domain.ErrUnauthorized)
	assert.ErrorIs(t, prod.Authorize("s3cret", ""), domain.ErrUnauthorized)
	assert.ErrorIs(t, prod.Authorize("", ""), domain.ErrUnauthorized)
}

func TestTriggerAuthorizerIgnoresUnsetSecrets(t *testing.T) {
	t.Parallel()

	noScheduler := NewTriggerAuthorizer("s3cret", "", false)
	assert.ErrorIs(t, noScheduler.Authorize("", "anything"), domain.ErrUnauthorized)
	assert.ErrorIs(t, noScheduler.Authorize("", " "), domain.ErrUnauthorized)

	noSecret := NewTriggerAuthorizer("", "", false)
	assert.ErrorIs(t, noSecret.Authorize("Bearer ", ""), domain.ErrUnauthorized)

	dev := NewTriggerAuthorizer("", "", true)
	assert.NoError(t, dev.Authorize("", ""))
}
