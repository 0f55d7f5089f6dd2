package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/post-publisher-bot/internal/domain"
	"github.com/orgball2608/post-publisher-bot/internal/repositories"
	"github.com/orgball2608/post-publisher-bot/pkg/logger"

	sq "github.com/Masterminds/squirrel"
)

type Pgx struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pool *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pool:   pool,
		logger: logger.WithComponent("UserRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (u *Pgx) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "tg_id", "tg_username", "surname", "name", "patronymic", "number", "is_approved", "is_admin").
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var (
		user                                       domain.User
		username, surname, name, patronymic, phone *string
	)
	err = u.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.TelegramID,
		&username,
		&surname,
		&name,
		&patronymic,
		&phone,
		&user.IsApproved,
		&user.IsAdmin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	user.Username = deref(username)
	user.Surname = deref(surname)
	user.Name = deref(name)
	user.Patronymic = deref(patronymic)
	user.Phone = deref(phone)
	return &user, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
