package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/orgball2608/post-publisher-bot/internal/repositories"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

var ErrNestedLock = errors.New("sender lock already held by this repository")

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Pgx struct {
	pool   *pgxpool.Pool
	db     querier
	logger logger.Logger
}

func NewPgx(pool *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pool:   pool,
		db:     pool,
		logger: logger.WithComponent("PostRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

var postColumns = []string{
	"id", "sender_id", "name", "text", "media_link", "media_type",
	"publish_mode", "publish_at", "is_approved", "is_paid", "payment_id",
	"is_published", "published_at", "created_at",
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var (
		post      domain.Post
		mediaLink *string
		mediaType *string
		paymentID *string
		mode      string
	)
	err := row.Scan(
		&post.ID,
		&post.SenderID,
		&post.Name,
		&post.Text,
		&mediaLink,
		&mediaType,
		&mode,
		&post.PublishAt,
		&post.IsApproved,
		&post.IsPaid,
		&paymentID,
		&post.IsPublished,
		&post.PublishedAt,
		&post.CreatedAt,
	)
	if err != nil {
		return domain.Post{}, err
	}

	post.PublishMode = domain.PublishMode(mode)
	if mediaLink != nil {
		post.MediaLink = *mediaLink
	}
	if mediaType != nil {
		post.MediaType = domain.MediaKind(*mediaType)
	}
	if paymentID != nil {
		post.PaymentID = *paymentID
	}
	return post, nil
}

func (p *Pgx) queryPosts(ctx context.Context, builder sq.SelectBuilder) ([]domain.Post, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

func (p *Pgx) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	query, args, err := repositories.SqBuilder.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	post, err := scanPost(p.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}

	return &post, nil
}

func (p *Pgx) ListPublishCandidates(ctx context.Context) ([]domain.Post, error) {
	return p.queryPosts(ctx, repositories.SqBuilder.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{
			"is_approved":  true,
			"is_paid":      true,
			"is_published": false,
		}).
		OrderBy(
			"CASE WHEN publish_mode = 'immediate' THEN 0 ELSE 1 END",
			"CASE WHEN publish_mode = 'immediate' THEN created_at ELSE publish_at END",
			"id",
		))
}

func (p *Pgx) LastPublishedAt(ctx context.Context, senderID int64) (*time.Time, error) {
	query, args, err := repositories.SqBuilder.
		Select("MAX(published_at)").
		From("posts").
		Where(sq.Eq{"sender_id": senderID, "is_published": true}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var last *time.Time
	if err := p.db.QueryRow(ctx, query, args...).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to get last publication of sender %d: %w", senderID, err)
	}

	return last, nil
}

func (p *Pgx) ScheduledPostsInRange(ctx context.Context, senderID int64, start, end time.Time) ([]domain.Post, error) {
	return p.queryPosts(ctx, repositories.SqBuilder.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{
			"sender_id":    senderID,
			"publish_mode": string(domain.PublishModeScheduled),
			"is_published": false,
		}).
		Where(sq.GtOrEq{"publish_at": start}).
		Where(sq.LtOrEq{"publish_at": end}).
		OrderBy("publish_at ASC", "id"))
}

func (p *Pgx) MarkPublished(ctx context.Context, postID int64, publishedAt time.Time) error {
	query, args, err := repositories.SqBuilder.
		Update("posts").
		Set("is_published", true).
		Set("published_at", publishedAt).
		Where(sq.Eq{"id": postID, "is_published": false}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark post %d published: %w", postID, err)
	}

	if result.RowsAffected() == 0 {
		if _, err := p.GetByID(ctx, postID); err != nil {
			return err
		}
		return ErrAlreadyPublished
	}

	return nil
}

func (p *Pgx) ListUnpaidWithPaymentRef(ctx context.Context) ([]domain.Post, error) {
	return p.queryPosts(ctx, repositories.SqBuilder.
		Select(postColumns...).
		From("posts").
		Where(sq.Eq{"is_paid": false}).
		Where(sq.NotEq{"payment_id": nil}).
		Where(sq.NotEq{"payment_id": ""}).
		OrderBy("created_at ASC", "id"))
}

func (p *Pgx) MarkPaid(ctx context.Context, postID int64) error {
	query, args, err := repositories.SqBuilder.
		Update("posts").
		Set("is_paid", true).
		Where(sq.Eq{"id": postID}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark post %d paid: %w", postID, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (p *Pgx) SetSchedule(ctx context.Context, postID int64, publishAt time.Time) error {
	query, args, err := repositories.SqBuilder.
		Update("posts").
		Set("publish_mode", string(domain.PublishModeScheduled)).
		Set("publish_at", publishAt).
		Where(sq.Eq{"id": postID, "is_published": false}).
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	result, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to schedule post %d: %w", postID, err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// WithSenderLock serializes schedule writes of one sender with a
// transaction-scoped advisory lock keyed on the sender id.
func (p *Pgx) WithSenderLock(ctx context.Context, senderID int64, fn func(ctx context.Context, repo Repository) error) error {
	if p.pool == nil {
		return ErrNestedLock
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			p.logger.Error("Failed to roll back sender lock transaction", "senderID", senderID, "error", err)
		}
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", senderID); err != nil {
		return fmt.Errorf("failed to lock sender %d: %w", senderID, err)
	}

	if err := fn(ctx, &Pgx{db: tx, logger: p.logger}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit sender lock transaction: %w", err)
	}
	return nil
}
