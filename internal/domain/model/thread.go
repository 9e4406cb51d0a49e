package model

import "time"

// Subject identifies the entity a thread is anchored to.
type Subject struct {
	ID   string
	Type SubjectType
}

// Thread is the per-page configuration of one discussion. AjaxReload is fixed
// for the lifetime of the controller bound to it.
type Thread struct {
	Subject    Subject
	AjaxReload bool
}

// ThreadDetail is a thread as returned by the portal, with its comments
// already arranged into a reply tree.
type ThreadDetail struct {
	ID        string
	Subject   Subject
	CreatedAt time.Time
	Blocked   bool
	Comments  []Comment
}

// Flatten returns every comment of the tree in display order (parent before
// its replies).
func (d ThreadDetail) Flatten() []Comment {
	var out []Comment
	var walk func([]Comment)
	walk = func(cs []Comment) {
		for _, c := range cs {
			out = append(out, c)
			walk(c.Replies)
		}
	}
	walk(d.Comments)
	return out
}
