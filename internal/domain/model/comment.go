package model

import "time"

// Comment represents a single comment in a thread as the page renders it.
// BodyHTML is the rendered (sanitized) form of Content.
type Comment struct {
	ID         string
	ThreadID   string
	Content    string
	BodyHTML   string
	AuthorID   string
	AuthorName string
	State      CommentState
	ReplyToID  *string
	Depth      int
	CreatedAt  time.Time
	ModifiedAt *time.Time
	Replies    []Comment
}

// IsApproved reports whether the comment is visible to non-moderators.
func (c Comment) IsApproved() bool {
	return c.State == CommentStateApproved
}

// CombineComments arranges a flat, creation-ordered list into a reply tree.
// Comments whose parent is not in the list are treated as top-level.
func CombineComments(flat []Comment) []Comment {
	byID := make(map[string]int, len(flat))
	for i, c := range flat {
		byID[c.ID] = i
	}

	children := make(map[string][]int)
	var roots []int
	for i, c := range flat {
		if c.ReplyToID != nil {
			if _, ok := byID[*c.ReplyToID]; ok {
				children[*c.ReplyToID] = append(children[*c.ReplyToID], i)
				continue
			}
		}
		roots = append(roots, i)
	}

	var build func(idx, depth int) Comment
	build = func(idx, depth int) Comment {
		c := flat[idx]
		c.Depth = depth
		c.Replies = nil
		for _, child := range children[c.ID] {
			c.Replies = append(c.Replies, build(child, depth+1))
		}
		return c
	}

	out := make([]Comment, 0, len(roots))
	for _, idx := range roots {
		out = append(out, build(idx, 0))
	}
	return out
}
