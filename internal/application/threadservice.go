package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
	"github.com/ericfisherdev/threadpanel/internal/domain/port/driven"
)

// ThreadService loads a thread for display: comments arranged as a reply
// tree with their bodies rendered, plus the subject's blocked state.
type ThreadService struct {
	reader driven.ThreadReader
	query  driven.ThreadQuery
	logger *slog.Logger
}

// NewThreadService creates a ThreadService. The query always includes
// comments; the remaining flags come from configuration.
func NewThreadService(reader driven.ThreadReader, query driven.ThreadQuery, logger *slog.Logger) *ThreadService {
	if logger == nil {
		logger = slog.Default()
	}
	query.IncludeComments = true
	return &ThreadService{reader: reader, query: query, logger: logger}
}

// Load fetches the thread of subject. A failure to read the blocked state is
// logged and treated as not blocked.
func (s *ThreadService) Load(ctx context.Context, subject model.Subject) (*model.ThreadDetail, error) {
	detail, err := s.reader.ShowThread(ctx, subject, s.query)
	if err != nil {
		return nil, fmt.Errorf("show thread %s/%s: %w", subject.Type, subject.ID, err)
	}

	blocked, err := s.reader.IsBlocked(ctx, subject)
	if err != nil {
		s.logger.Warn("read blocked state", "subject_id", subject.ID, "error", err)
		blocked = false
	}
	detail.Blocked = blocked

	detail.Comments = prepareComments(detail.Comments)
	return detail, nil
}

// prepareComments makes sure comments form a tree, then renders every body
// and records its depth.
func prepareComments(comments []model.Comment) []model.Comment {
	if isFlat(comments) {
		comments = model.CombineComments(comments)
	}

	var walk func([]model.Comment, int) []model.Comment
	walk = func(cs []model.Comment, depth int) []model.Comment {
		out := make([]model.Comment, len(cs))
		for i, c := range cs {
			c.Depth = depth
			if c.BodyHTML == "" {
				c.BodyHTML = RenderContent(c.Content)
			}
			c.Replies = walk(c.Replies, depth+1)
			out[i] = c
		}
		return out
	}
	return walk(comments, 0)
}

// isFlat reports whether a top-level list still contains replies, which
// happens when the portal was asked not to combine comments.
func isFlat(comments []model.Comment) bool {
	for _, c := range comments {
		if c.ReplyToID != nil && len(c.Replies) == 0 {
			return true
		}
	}
	return false
}
