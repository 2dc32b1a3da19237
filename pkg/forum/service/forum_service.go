package service

import (
	"context"
	"errors"

	"github.com/ego5g/turizm/entities"
)

var (
	ErrTopicNotFound = errors.New("topic not found")
	// ErrRetryable is returned when a reply could not be stored; the topic is
	// unchanged and the client may simply try again.
	ErrRetryable = errors.New("could not save the reply, please try again")
)

// ValidationError carries a message safe to show to the poster.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// Categories a topic may be filed under. The first is the default.
var Categories = []string{"general", "destinations", "tips", "planning"}

// Filter narrows GetTopics. Empty fields match everything; Search matches
// titles case-insensitively.
type Filter struct {
	Category string
	Search   string
}

type NewTopic struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`
	Content  string `json:"content"`
}

type NewReply struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// TopicDetail is a topic with its replies listed oldest first.
type TopicDetail struct {
	entities.Topic
	ReplyList []entities.ForumReply `json:"replyList"`
}

type ForumService interface {
	Categories() []string
	GetTopics(ctx context.Context, f Filter) ([]entities.Topic, error)
	GetTopic(ctx context.Context, id string) (*TopicDetail, error)
	// ViewTopic counts a view and returns the topic.
	ViewTopic(ctx context.Context, id string) (*TopicDetail, error)
	CreateTopic(ctx context.Context, in NewTopic) (*entities.Topic, error)
	CreateReply(ctx context.Context, topicID string, in NewReply) (*entities.ForumReply, error)
}
