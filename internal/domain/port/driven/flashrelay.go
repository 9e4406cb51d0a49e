package driven

import (
	"context"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// FlashRelay defines the driven port for the durable one-shot message store
// that survives a full navigation. TakeAndClear returns (nil, nil) when the
// slot is empty; a returned message is gone from the store.
type FlashRelay interface {
	Set(ctx context.Context, slot model.FlashSlot, msg model.FlashMessage) error
	TakeAndClear(ctx context.Context, slot model.FlashSlot) (*model.FlashMessage, error)
}
