package ckan

import (
	"time"

	"github.com/ericfisherdev/threadpanel/internal/domain/model"
)

// threadJSON is the result of comments_thread_show.
type threadJSON struct {
	ID          string        `json:"id"`
	SubjectID   string        `json:"subject_id"`
	SubjectType string        `json:"subject_type"`
	CreatedAt   string        `json:"created_at"`
	Comments    []commentJSON `json:"comments"`
}

type commentJSON struct {
	ID         string        `json:"id"`
	ThreadID   string        `json:"thread_id"`
	Content    string        `json:"content"`
	AuthorID   string        `json:"author_id"`
	State      string        `json:"state"`
	Approved   *bool         `json:"approved"`
	ReplyToID  *string       `json:"reply_to_id"`
	CreatedAt  string        `json:"created_at"`
	ModifiedAt *string       `json:"modified_at"`
	Username   *string       `json:"username"`
	Author     *authorJSON   `json:"author"`
	Replies    []commentJSON `json:"replies"`
}

type authorJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Fullname    string `json:"fullname"`
}

// CKAN serialises naive UTC datetimes without a zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func mapThread(raw threadJSON, requested model.Subject) *model.ThreadDetail {
	subject := requested
	if raw.SubjectID != "" {
		subject = model.Subject{ID: raw.SubjectID, Type: model.SubjectType(raw.SubjectType)}
	}

	comments := make([]model.Comment, 0, len(raw.Comments))
	for _, c := range raw.Comments {
		comments = append(comments, mapComment(c))
	}

	return &model.ThreadDetail{
		ID:        raw.ID,
		Subject:   subject,
		CreatedAt: parseTime(raw.CreatedAt),
		Comments:  comments,
	}
}

func mapComment(raw commentJSON) model.Comment {
	c := model.Comment{
		ID:        raw.ID,
		ThreadID:  raw.ThreadID,
		Content:   raw.Content,
		AuthorID:  raw.AuthorID,
		State:     model.CommentState(raw.State),
		ReplyToID: raw.ReplyToID,
		CreatedAt: parseTime(raw.CreatedAt),
	}

	if c.State == "" && raw.Approved != nil {
		c.State = model.CommentStateDraft
		if *raw.Approved {
			c.State = model.CommentStateApproved
		}
	}

	if raw.ModifiedAt != nil {
		if t := parseTime(*raw.ModifiedAt); !t.IsZero() {
			c.ModifiedAt = &t
		}
	}

	c.AuthorName = authorName(raw)

	for _, r := range raw.Replies {
		c.Replies = append(c.Replies, mapComment(r))
	}
	return c
}

// authorName prefers the portal user's display name, then the name an
// anonymous commenter typed, then the raw author id.
func authorName(raw commentJSON) string {
	if raw.Author != nil {
		for _, n := range []string{raw.Author.DisplayName, raw.Author.Fullname, raw.Author.Name} {
			if n != "" {
				return n
			}
		}
	}
	if raw.Username != nil && *raw.Username != "" {
		return *raw.Username
	}
	return raw.AuthorID
}
