package publisherimpl

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/orgball2608/post-publisher-bot/internal/publisher"
	"github.com/orgball2608/post-publisher-bot/internal/repositories/post"
	mock_post "github.com/orgball2608/post-publisher-bot/internal/repositories/post/mocks"
	"github.com/orgball2608/post-publisher-bot/internal/telegram"
	mock_telegram "github.com/orgball2608/post-publisher-bot/internal/telegram/mocks"
	"github.com/orgball2608/post-publisher-bot/pkg/config"
	pkgerrors "github.com/orgball2608/post-publisher-bot/pkg/errors"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"
	"github.com/orgball2608/post-publisher-bot/pkg/retry"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func testLogger() logger.Logger {
	return logger.New(logger.Opts{Env: "test", Output: io.Discard})
}

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func immediatePost(id, sender int64, createdAgo time.Duration) domain.Post {
	return domain.Post{
		ID:          id,
		SenderID:    sender,
		Text:        "post",
		PublishMode: domain.PublishModeImmediate,
		IsApproved:  true,
		IsPaid:      true,
		CreatedAt:   now.Add(-createdAgo),
	}
}

func scheduledPost(id, sender int64, publishAt time.Time) domain.Post {
	p := immediatePost(id, sender, time.Hour)
	p.PublishMode = domain.PublishModeScheduled
	p.PublishAt = &publishAt
	return p
}

func newTestPublisher(repo post.Repository, tg telegram.Client, clock clockwork.Clock) *PublisherImpl {
	cfg := &config.Config{}
	cfg.Scheduler.PublishPollInterval = time.Minute
	cfg.Scheduler.MinPublishInterval = 24 * time.Hour
	cfg.Scheduler.DeliveryTimeout = time.Second
	cfg.Scheduler.Location = "UTC"

	p := New(Opts{
		PostRepo: repo,
		Telegram: tg,
		Logger:   testLogger(),
		Config:   cfg,
		Clock:    clock,
	})
	p.MarkRetry = retry.Config{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		Multiplier:      1,
	}
	return p
}

// recordPublish collects delivered post ids and fails the ones listed.
func recordPublish(tg *mock_telegram.MockClient, delivered *[]int64, failing ...int64) {
	tg.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p domain.Post) error {
			for _, id := range failing {
				if p.ID == id {
					return errors.New("telegram: bad gateway")
				}
			}
			*delivered = append(*delivered, p.ID)
			return nil
		}).AnyTimes()
}

func equalIDs(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestRunTickPublishesOnePostPerSender(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{
		immediatePost(2, 10, time.Hour),
		immediatePost(1, 10, 2*time.Hour),
		immediatePost(3, 20, time.Hour),
	}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	repo.EXPECT().MarkPublished(gomock.Any(), int64(1), now).Return(nil)
	repo.EXPECT().MarkPublished(gomock.Any(), int64(3), now).Return(nil)

	var delivered []int64
	recordPublish(tg, &delivered)

	report, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if !equalIDs(delivered, []int64{1, 3}) {
		t.Errorf("delivered = %v, want [1 3]", delivered)
	}
	if report.Candidates != 3 || report.Published != 2 || report.Deferred != 1 {
		t.Errorf("report = %+v", report)
	}
	if !equalIDs(report.PublishedIDs, []int64{1, 3}) {
		t.Errorf("report.PublishedIDs = %v", report.PublishedIDs)
	}
}

func TestRunTickIsolatesDeliveryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{
		immediatePost(1, 10, 3*time.Hour),
		immediatePost(2, 20, 2*time.Hour),
		immediatePost(3, 30, time.Hour),
	}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), gomock.Any()).Return(nil, nil).Times(3)
	repo.EXPECT().MarkPublished(gomock.Any(), int64(1), now).Return(nil)
	repo.EXPECT().MarkPublished(gomock.Any(), int64(3), now).Return(nil)

	var delivered []int64
	recordPublish(tg, &delivered, 2)

	report, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if !equalIDs(delivered, []int64{1, 3}) {
		t.Errorf("delivered = %v, want [1 3]", delivered)
	}
	if report.Failed != 1 || report.Published != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestRunTickFailedDeliveryLeavesSenderOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{
		immediatePost(1, 10, 2*time.Hour),
		immediatePost(2, 10, time.Hour),
	}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), int64(10)).Return(nil, nil).Times(2)
	repo.EXPECT().MarkPublished(gomock.Any(), int64(2), now).Return(nil)

	var delivered []int64
	recordPublish(tg, &delivered, 1)

	if _, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background()); err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if !equalIDs(delivered, []int64{2}) {
		t.Errorf("delivered = %v, want [2]", delivered)
	}
}

func TestRunTickFetchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background())
	if !pkgerrors.IsRepository(err) {
		t.Fatalf("RunTick() error = %v, want repository failure", err)
	}
}

func TestRunTickLastPublishedFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{immediatePost(1, 10, time.Hour)}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), int64(10)).Return(nil, errors.New("timeout"))

	_, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background())
	if !pkgerrors.IsRepository(err) {
		t.Fatalf("RunTick() error = %v, want repository failure", err)
	}
}

func TestRunTickRespectsMinimumInterval(t *testing.T) {
	tests := []struct {
		name        string
		lastAgo     time.Duration
		wantPublish bool
	}{
		{name: "23 hours ago", lastAgo: 23 * time.Hour, wantPublish: false},
		{name: "exactly 24 hours ago", lastAgo: 24 * time.Hour, wantPublish: true},
		{name: "25 hours ago", lastAgo: 25 * time.Hour, wantPublish: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := mock_post.NewMockRepository(ctrl)
			tg := mock_telegram.NewMockClient(ctrl)

			repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{immediatePost(1, 10, time.Hour)}, nil)
			repo.EXPECT().LastPublishedAt(gomock.Any(), int64(10)).Return(at(-tt.lastAgo), nil)
			if tt.wantPublish {
				tg.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
				repo.EXPECT().MarkPublished(gomock.Any(), int64(1), now).Return(nil)
			}

			report, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background())
			if err != nil {
				t.Fatalf("RunTick() error = %v", err)
			}
			if got := report.Published == 1; got != tt.wantPublish {
				t.Errorf("published = %v, want %v (report %+v)", got, tt.wantPublish, report)
			}
		})
	}
}

func TestRunTickWaitsForScheduledTime(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{
		scheduledPost(1, 10, now.Add(time.Minute)),
		scheduledPost(2, 20, now),
	}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	repo.EXPECT().MarkPublished(gomock.Any(), int64(2), now).Return(nil)

	var delivered []int64
	recordPublish(tg, &delivered)

	report, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if !equalIDs(delivered, []int64{2}) || report.Deferred != 1 {
		t.Errorf("delivered = %v, report = %+v", delivered, report)
	}
}

func TestRunTickSkipsMalformedCandidate(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	broken := immediatePost(1, 10, time.Hour)
	broken.PublishAt = at(time.Hour)

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{broken}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), int64(10)).Return(nil, nil)

	report, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background())
	if err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if report.Skipped != 1 {
		t.Errorf("report = %+v, want one skipped", report)
	}
}

func TestRunTickAlreadyPublishedIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{
		immediatePost(1, 10, 2*time.Hour),
		immediatePost(2, 20, time.Hour),
	}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	repo.EXPECT().MarkPublished(gomock.Any(), int64(1), now).Return(post.ErrAlreadyPublished)
	repo.EXPECT().MarkPublished(gomock.Any(), int64(2), now).Return(nil)

	var delivered []int64
	recordPublish(tg, &delivered)

	if _, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background()); err != nil {
		t.Fatalf("RunTick() error = %v", err)
	}
	if !equalIDs(delivered, []int64{1, 2}) {
		t.Errorf("delivered = %v, want [1 2]", delivered)
	}
}

func TestRunTickRecordFailureAbortsTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{
		immediatePost(1, 10, 2*time.Hour),
		immediatePost(2, 20, time.Hour),
	}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), int64(10)).Return(nil, nil)
	// One attempt plus two retries.
	repo.EXPECT().MarkPublished(gomock.Any(), int64(1), now).Return(errors.New("deadlock detected")).Times(3)

	var delivered []int64
	recordPublish(tg, &delivered)

	report, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(context.Background())
	if !pkgerrors.IsRepository(err) {
		t.Fatalf("RunTick() error = %v, want repository failure", err)
	}
	if !equalIDs(delivered, []int64{1}) || report.Published != 0 {
		t.Errorf("delivered = %v, report = %+v", delivered, report)
	}
}

func TestRunTickStopsBeforeNextPostOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{
		immediatePost(1, 10, 2*time.Hour),
		immediatePost(2, 20, time.Hour),
	}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), int64(10)).Return(nil, nil)
	tg.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(deliveryCtx context.Context, _ domain.Post) error {
			cancel()
			if deliveryCtx.Err() != nil {
				t.Error("delivery context cancelled together with the loop")
			}
			return nil
		})
	repo.EXPECT().MarkPublished(gomock.Any(), int64(1), now).Return(nil)

	report, err := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now)).RunTick(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunTick() error = %v, want context.Canceled", err)
	}
	if report.Published != 1 {
		t.Errorf("report = %+v, want the in-flight post recorded", report)
	}
}

func TestRunTickDropsOverlappingTick(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	entered := make(chan struct{})
	release := make(chan struct{})

	repo.EXPECT().ListPublishCandidates(gomock.Any()).Return([]domain.Post{immediatePost(1, 10, time.Hour)}, nil)
	repo.EXPECT().LastPublishedAt(gomock.Any(), int64(10)).Return(nil, nil)
	tg.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.Post) error {
			close(entered)
			<-release
			return nil
		})
	repo.EXPECT().MarkPublished(gomock.Any(), int64(1), now).Return(nil)

	p := newTestPublisher(repo, tg, clockwork.NewFakeClockAt(now))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := p.RunTick(context.Background()); err != nil {
			t.Errorf("first RunTick() error = %v", err)
		}
	}()

	<-entered
	if _, err := p.RunTick(context.Background()); !errors.Is(err, publisher.ErrTickInFlight) {
		t.Errorf("second RunTick() error = %v, want ErrTickInFlight", err)
	}
	close(release)
	wg.Wait()
}

func TestStartRunsFirstTickAndStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_post.NewMockRepository(ctrl)
	tg := mock_telegram.NewMockClient(ctrl)

	ticked := make(chan struct{}, 1)
	repo.EXPECT().ListPublishCandidates(gomock.Any()).
		DoAndReturn(func(context.Context) ([]domain.Post, error) {
			select {
			case ticked <- struct{}{}:
			default:
			}
			return nil, nil
		}).MinTimes(1)

	p := newTestPublisher(repo, tg, clockwork.NewRealClock())
	p.Interval = time.Hour

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := p.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}

	select {
	case <-ticked:
	case <-time.After(5 * time.Second):
		t.Fatal("first tick did not run")
	}

	if err := p.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
