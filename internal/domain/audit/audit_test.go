package audit

import (
	"testing"

	vo "bizcard/internal/domain/payment/valueobjects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	e, err := NewEntry("operator:3", ActionForceStatus, 10, vo.PaymentStatusPending, vo.PaymentStatusCompleted, ResultTransitioned, "bank slip 123")
	require.NoError(t, err)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "operator:3", e.Actor)
	assert.Equal(t, ResultTransitioned, e.Result)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestNewEntry_RequiresActor(t *testing.T) {
	_, err := NewEntry("", ActionForceStatus, 10, vo.PaymentStatusPending, vo.PaymentStatusCompleted, ResultTransitioned, "")
	assert.Error(t, err)

	_, err = NewEntry("operator:3", ActionForceStatus, 0, vo.PaymentStatusPending, vo.PaymentStatusCompleted, ResultTransitioned, "")
	assert.Error(t, err)
}
