package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

type failingRelay struct {
	*memoryRelay
	failSlot model.FlashSlot
}

func (r *failingRelay) TakeAndClear(ctx context.Context, slot model.FlashSlot) (*model.FlashMessage, error) {
	if slot == r.failSlot {
		return nil, errors.New("disk gone")
	}
	return r.memoryRelay.TakeAndClear(ctx, slot)
}

func TestFlashService_DeliversBothSlotsUnsuccessfulFirst(t *testing.T) {
	ctx := context.Background()
	relay := newMemoryRelay()
	svc := NewFlashService(relay, nil)

	require.NoError(t, svc.Persist(ctx, model.FlashSuccessful, "Saved", model.AlertSuccess))
	require.NoError(t, svc.Persist(ctx, model.FlashUnsuccessful, "Closed", model.AlertError))

	notices := svc.Deliver(ctx)

	require.Len(t, notices, 2)
	assert.Equal(t, "Closed", notices[0].Text)
	assert.Equal(t, "Saved", notices[1].Text)
	assert.Empty(t, svc.Deliver(ctx))
}

func TestFlashService_DefaultCategories(t *testing.T) {
	ctx := context.Background()
	relay := newMemoryRelay()
	svc := NewFlashService(relay, nil)

	require.NoError(t, svc.Persist(ctx, model.FlashSuccessful, "Saved", ""))
	require.NoError(t, svc.Persist(ctx, model.FlashUnsuccessful, "Closed", ""))

	notices := svc.Deliver(ctx)

	require.Len(t, notices, 2)
	assert.Equal(t, model.AlertError, notices[0].Category)
	assert.Equal(t, model.AlertInfo, notices[1].Category)
}

func TestFlashService_FailedSlotDoesNotBlockOther(t *testing.T) {
	ctx := context.Background()
	relay := &failingRelay{memoryRelay: newMemoryRelay(), failSlot: model.FlashUnsuccessful}
	svc := NewFlashService(relay, nil)

	require.NoError(t, svc.Persist(ctx, model.FlashSuccessful, "Saved", model.AlertSuccess))

	page := newFakePage("/")
	assert.Equal(t, 1, svc.DeliverTo(ctx, page))
	require.Len(t, page.notices, 1)
	assert.Equal(t, "Saved", page.notices[0].Text)
	assert.Empty(t, page.notices[0].Scope.CommentID)
}
