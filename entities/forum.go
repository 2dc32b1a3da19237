package entities

import (
	"sort"
	"time"
)

// Topic is a forum thread. Replies are embedded in the topic document, keyed by
// reply id; RepliesCount and LastActivity are denormalized from them and only
// change together with the replies map (see Version).
type Topic struct {
	ID           string           `gorm:"primaryKey;size:36" json:"id"`
	Title        string           `gorm:"not null" json:"title"`
	Author       string           `gorm:"not null" json:"author"`
	Category     string           `gorm:"index;not null;default:general" json:"category"`
	Content      string           `json:"content,omitempty"`
	RepliesCount int              `gorm:"not null;default:0" json:"repliesCount"`
	Views        int              `gorm:"not null;default:0" json:"views"`
	LastActivity time.Time        `gorm:"index" json:"lastActivity"`
	IsPinned     bool             `gorm:"not null;default:false" json:"isPinned,omitempty"`
	Replies      map[string]Reply `gorm:"serializer:json" json:"replies,omitempty"`

	// Version is bumped on every write; writers compare-and-swap on it.
	Version   int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Topic) TableName() string { return "topics" }

// Reply is stored nested under its topic, so it carries no id of its own;
// the map key is the id.
type Reply struct {
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ForumReply is a reply with its id, as handed to API clients.
type ForumReply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ReplyList returns the replies oldest first; ties break on id.
func (t *Topic) ReplyList() []ForumReply {
	out := make([]ForumReply, 0, len(t.Replies))
	for id, r := range t.Replies {
		out = append(out, ForumReply{ID: id, Author: r.Author, Content: r.Content, Timestamp: r.Timestamp})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}
