package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreatePosts, downCreatePosts)
}

func upCreatePosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE posts (
			id BIGSERIAL PRIMARY KEY,
			sender_id BIGINT NOT NULL REFERENCES users (id),
			name VARCHAR NOT NULL DEFAULT '',
			text TEXT NOT NULL DEFAULT '',
			media_link VARCHAR,
			media_type VARCHAR CHECK (media_type IN ('photo', 'video')),
			publish_mode VARCHAR NOT NULL DEFAULT 'immediate' CHECK (publish_mode IN ('immediate', 'scheduled')),
			publish_at TIMESTAMP WITH TIME ZONE,
			is_approved BOOLEAN NOT NULL DEFAULT FALSE,
			is_paid BOOLEAN NOT NULL DEFAULT FALSE,
			payment_id VARCHAR,
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			published_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CHECK ((publish_mode = 'scheduled') = (publish_at IS NOT NULL)),
			CHECK (NOT is_published OR published_at IS NOT NULL)
		);

		CREATE INDEX posts_candidates_idx ON posts (is_approved, is_paid, is_published);
		CREATE INDEX posts_sender_published_idx ON posts (sender_id, published_at) WHERE is_published;
		CREATE INDEX posts_sender_schedule_idx ON posts (sender_id, publish_at) WHERE NOT is_published;
		CREATE INDEX posts_unpaid_idx ON posts (created_at) WHERE NOT is_paid AND payment_id IS NOT NULL;
	`)
	if err != nil {
		return err
	}
	return nil
}

func downCreatePosts(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		DROP TABLE posts;
	`)
	if err != nil {
		return err
	}
	return nil
}
