package publisherimpl

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/post"
)

// memRepo is an in-memory post.Repository with the same conditional
// publish semantics as the Postgres implementation.
type memRepo struct {
	mu    sync.Mutex
	posts map[int64]*domain.Post
}

func newMemRepo(posts ...domain.Post) *memRepo {
	r := &memRepo{posts: make(map[int64]*domain.Post)}
	for i := range posts {
		p := posts[i]
		r.posts[p.ID] = &p
	}
	return r
}

var _ post.Repository = (*memRepo)(nil)

func (r *memRepo) GetByID(_ context.Context, id int64) (*domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, post.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) ListPublishCandidates(_ context.Context) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Post
	for _, p := range r.posts {
		if p.IsCandidate() {
			out = append(out, *p)
		}
	}
	// Map order is random; SortCandidates in the tick gives the real order.
	return out, nil
}

func (r *memRepo) LastPublishedAt(_ context.Context, senderID int64) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var last *time.Time
	for _, p := range r.posts {
		if p.SenderID != senderID || !p.IsPublished || p.PublishedAt == nil {
			continue
		}
		if last == nil || p.PublishedAt.After(*last) {
			t := *p.PublishedAt
			last = &t
		}
	}
	return last, nil
}

func (r *memRepo) ScheduledPostsInRange(_ context.Context, senderID int64, start, end time.Time) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Post
	for _, p := range r.posts {
		if p.SenderID != senderID || p.IsPublished || p.PublishMode != domain.PublishModeScheduled || p.PublishAt == nil {
			continue
		}
		if p.PublishAt.Before(start) || p.PublishAt.After(end) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memRepo) MarkPublished(_ context.Context, postID int64, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return post.ErrNotFound
	}
	if p.IsPublished {
		return post.ErrAlreadyPublished
	}
	p.IsPublished = true
	p.PublishedAt = &publishedAt
	return nil
}

func (r *memRepo) ListUnpaidWithPaymentRef(_ context.Context) ([]domain.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Post
	for _, p := range r.posts {
		if !p.IsPaid && p.PaymentID != "" {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memRepo) MarkPaid(_ context.Context, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return post.ErrNotFound
	}
	p.IsPaid = true
	return nil
}

func (r *memRepo) SetSchedule(_ context.Context, postID int64, publishAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.posts[postID]
	if !ok {
		return post.ErrNotFound
	}
	p.PublishMode = domain.PublishModeScheduled
	p.PublishAt = &publishAt
	return nil
}

func (r *memRepo) WithSenderLock(ctx context.Context, _ int64, fn func(ctx context.Context, repo post.Repository) error) error {
	return fn(ctx, r)
}

// publishedTimes returns publication times per sender in ascending order.
func (r *memRepo) publishedTimes() map[int64][]time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[int64][]time.Time)
	for _, p := range r.posts {
		if p.IsPublished && p.PublishedAt != nil {
			out[p.SenderID] = append(out[p.SenderID], *p.PublishedAt)
		}
	}
	for sender := range out {
		times := out[sender]
		sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	}
	return out
}
