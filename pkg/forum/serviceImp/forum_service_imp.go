package serviceImp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/ego5g/turizm/entities"
	"github.com/ego5g/turizm/pkg/forum/repository"
	"github.com/ego5g/turizm/pkg/forum/service"
	"github.com/ego5g/turizm/pkg/metrics"
)

const (
	maxTitle   = 200
	maxAuthor  = 50
	maxContent = 10000
	anonymous  = "Anonymous"
)

type forumSvc struct {
	repo    repository.TopicRepository
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewForumService(r repository.TopicRepository, log zerolog.Logger, m *metrics.Metrics) service.ForumService {
	return &forumSvc{repo: r, log: log, metrics: m, now: time.Now}
}

// newForumServiceAt is NewForumService with a fixed clock, for tests.
func newForumServiceAt(r repository.TopicRepository, now func() time.Time) *forumSvc {
	return &forumSvc{repo: r, log: zerolog.Nop(), now: now}
}

func (s *forumSvc) Categories() []string { return append([]string(nil), service.Categories...) }

func (s *forumSvc) GetTopics(ctx context.Context, f service.Filter) ([]entities.Topic, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	category := strings.TrimSpace(f.Category)

	out := lo.Filter(all, func(t entities.Topic, _ int) bool {
		if category != "" && !strings.EqualFold(category, "all") && t.Category != category {
			return false
		}
		return search == "" || strings.Contains(strings.ToLower(t.Title), search)
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	for i := range out {
		if out[i].RepliesCount < 0 {
			out[i].RepliesCount = 0
		}
		out[i].Replies = nil
	}
	return out, nil
}

func (s *forumSvc) GetTopic(ctx context.Context, id string) (*service.TopicDetail, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &service.TopicDetail{Topic: *t, ReplyList: t.ReplyList()}, nil
}

func (s *forumSvc) ViewTopic(ctx context.Context, id string) (*service.TopicDetail, error) {
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, mapNotFound(err)
	}
	return s.GetTopic(ctx, id)
}

func (s *forumSvc) CreateTopic(ctx context.Context, in service.NewTopic) (*entities.Topic, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	author := strings.TrimSpace(in.Author)
	category := strings.ToLower(strings.TrimSpace(in.Category))

	switch {
	case title == "" || content == "":
		return nil, &service.ValidationError{Message: "title and content are required"}
	case utf8.RuneCountInString(title) > maxTitle:
		return nil, &service.ValidationError{Message: fmt.Sprintf("title must be at most %d characters", maxTitle)}
	case utf8.RuneCountInString(content) > maxContent:
		return nil, &service.ValidationError{Message: fmt.Sprintf("content must be at most %d characters", maxContent)}
	case utf8.RuneCountInString(author) > maxAuthor:
		return nil, &service.ValidationError{Message: fmt.Sprintf("author must be at most %d characters", maxAuthor)}
	}
	if author == "" {
		author = anonymous
	}
	if category == "" {
		category = service.Categories[0]
	}
	if !lo.Contains(service.Categories, category) {
		return nil, &service.ValidationError{Message: fmt.Sprintf("unknown category %q", in.Category)}
	}

	now := s.now().UTC()
	t := &entities.Topic{
		ID:           uuid.NewString(),
		Title:        title,
		Author:       author,
		Category:     category,
		Content:      content,
		RepliesCount: 0,
		Views:        0,
		LastActivity: now,
		CreatedAt:    now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create topic: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ForumTopicsCreated.Inc()
	}
	s.log.Info().Str("topic", t.ID).Str("category", t.Category).Msg("topic created")
	return t, nil
}

func (s *forumSvc) CreateReply(ctx context.Context, topicID string, in service.NewReply) (*entities.ForumReply, error) {
	author := strings.TrimSpace(in.Author)
	content := strings.TrimSpace(in.Content)
	switch {
	case author == "" || content == "":
		return nil, &service.ValidationError{Message: "Please provide your name and a comment."}
	case utf8.RuneCountInString(author) > maxAuthor:
		return nil, &service.ValidationError{Message: fmt.Sprintf("author must be at most %d characters", maxAuthor)}
	case utf8.RuneCountInString(content) > maxContent:
		return nil, &service.ValidationError{Message: fmt.Sprintf("content must be at most %d characters", maxContent)}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("reply id: %w", err)
	}
	reply := entities.Reply{Author: author, Content: content, Timestamp: s.now().UTC()}

	if _, err := s.repo.AppendReply(ctx, topicID, id.String(), reply); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrTopicNotFound
		}
		s.log.Error().Err(err).Str("topic", topicID).Msg("append reply failed")
		return nil, fmt.Errorf("%w: %v", service.ErrRetryable, err)
	}
	if s.metrics != nil {
		s.metrics.ForumRepliesTotal.Inc()
	}
	return &entities.ForumReply{ID: id.String(), Author: reply.Author, Content: reply.Content, Timestamp: reply.Timestamp}, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return service.ErrTopicNotFound
	}
	return err
}
