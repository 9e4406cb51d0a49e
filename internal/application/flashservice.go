package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
	"github.com/ericfisherdev/threadpanel/internal/domain/port/driven"
)

// FlashService hands one-shot notices across a full navigation using the
// durable relay.
type FlashService struct {
	relay  driven.FlashRelay
	logger *slog.Logger
}

// NewFlashService creates a FlashService backed by relay.
func NewFlashService(relay driven.FlashRelay, logger *slog.Logger) *FlashService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlashService{relay: relay, logger: logger}
}

// Persist writes a message into slot. It must complete before the navigation
// that is meant to show it.
func (s *FlashService) Persist(ctx context.Context, slot model.FlashSlot, text string, category model.AlertCategory) error {
	if err := s.relay.Set(ctx, slot, model.FlashMessage{Text: text, Category: category}); err != nil {
		return fmt.Errorf("persist %s flash: %w", slot, err)
	}
	return nil
}

// Deliver reads and clears both slots, unsuccessful first, and returns the
// notices to render in the page's flash region. A slot that fails to read is
// logged and skipped so the other slot is still delivered.
func (s *FlashService) Deliver(ctx context.Context) []model.Notice {
	var notices []model.Notice
	for _, slot := range model.FlashSlots {
		msg, err := s.relay.TakeAndClear(ctx, slot)
		if err != nil {
			s.logger.Error("read flash slot", "slot", slot, "error", err)
			continue
		}
		if msg == nil || msg.Text == "" {
			continue
		}
		category := msg.Category
		if category == "" {
			category = slot.DefaultCategory()
		}
		notices = append(notices, model.Notice{Text: msg.Text, Category: category})
	}
	return notices
}

// DeliverTo renders every pending notice on page. It is the page-load hook.
func (s *FlashService) DeliverTo(ctx context.Context, page driven.Page) int {
	notices := s.Deliver(ctx)
	for _, n := range notices {
		page.ShowNotice(n)
	}
	return len(notices)
}
