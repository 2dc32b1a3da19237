package repositoryImp

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gorm.io/gorm"

	"github.com/ego5g/turizm/entities"
	"github.com/ego5g/turizm/pkg/forum/repository"
	"github.com/ego5g/turizm/pkg/metrics"
)

// MaxAttempts bounds the read/compare-and-swap loop in AppendReply.
const MaxAttempts = 32

type topicRepo struct {
	db      *gorm.DB
	metrics *metrics.Metrics
}

func New(db *gorm.DB, m *metrics.Metrics) repository.TopicRepository {
	return &topicRepo{db: db, metrics: m}
}

func (r *topicRepo) List(ctx context.Context) ([]entities.Topic, error) {
	var out []entities.Topic
	err := r.db.WithContext(ctx).
		Omit("Replies").
		Order("is_pinned DESC").
		Order("last_activity DESC").
		Find(&out).Error
	return out, err
}

func (r *topicRepo) FindByID(ctx context.Context, id string) (*entities.Topic, error) {
	var t entities.Topic
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *topicRepo) Create(ctx context.Context, t *entities.Topic) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// AppendReply reads the topic, adds the reply to its replies map and writes
// replies, replies_count, last_activity and version back with
// "WHERE version = <read version>". A lost race re-reads and tries again.
func (r *topicRepo) AppendReply(ctx context.Context, topicID, replyID string, reply entities.Reply) (*entities.Topic, error) {
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		t, err := r.FindByID(ctx, topicID)
		if err != nil {
			return nil, err
		}
		if _, dup := t.Replies[replyID]; dup {
			return nil, fmt.Errorf("reply %s already exists", replyID)
		}

		read := t.Version
		if t.Replies == nil {
			t.Replies = map[string]entities.Reply{}
		}
		t.Replies[replyID] = reply
		t.RepliesCount = len(t.Replies)
		if reply.Timestamp.After(t.LastActivity) {
			t.LastActivity = reply.Timestamp
		}
		t.Version = read + 1

		res := r.db.WithContext(ctx).
			Model(&entities.Topic{ID: topicID}).
			Where("version = ?", read).
			Select("Replies", "RepliesCount", "LastActivity", "Version").
			Updates(t)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return t, nil
		}

		if r.metrics != nil {
			r.metrics.ForumConflicts.Inc()
		}
		if err := backoff(ctx, attempt); err != nil {
			return nil, err
		}
	}
	return nil, repository.ErrConflict
}

func (r *topicRepo) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&entities.Topic{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func backoff(ctx context.Context, attempt int) error {
	d := time.Duration(rand.IntN(1+min(attempt, 8))) * time.Millisecond
	if d == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
