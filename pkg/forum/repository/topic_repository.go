package repository

import (
	"context"
	"errors"

	"github.com/ego5g/turizm/entities"
)

var (
	ErrNotFound = errors.New("topic not found")
	// ErrConflict means the topic kept changing underneath a versioned update
	// until the retry budget ran out.
	ErrConflict = errors.New("topic update conflict")
)

type TopicRepository interface {
	// List returns every topic without its replies.
	List(ctx context.Context) ([]entities.Topic, error)
	FindByID(ctx context.Context, id string) (*entities.Topic, error)
	Create(ctx context.Context, t *entities.Topic) error
	// AppendReply stores r under replyID and updates RepliesCount and
	// LastActivity in the same write, or changes nothing.
	AppendReply(ctx context.Context, topicID, replyID string, r entities.Reply) (*entities.Topic, error)
	IncrementViews(ctx context.Context, id string) error
}
