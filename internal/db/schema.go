package db

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'user',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS switch_games (
	id                      BIGSERIAL PRIMARY KEY,
	claim_token             TEXT NOT NULL UNIQUE,
	status                  TEXT NOT NULL,
	creator_id              BIGINT NOT NULL REFERENCES users(id),
	participant_id          BIGINT REFERENCES users(id),
	creator_dare            JSONB NOT NULL,
	participant_dare        JSONB NOT NULL DEFAULT '{}',
	winner_id               BIGINT,
	loser_id                BIGINT,
	both_win                BOOLEAN NOT NULL DEFAULT false,
	both_lose               BOOLEAN NOT NULL DEFAULT false,
	draw_type               TEXT,
	proof                   JSONB,
	expire_proof_after_view BOOLEAN NOT NULL DEFAULT false,
	proof_viewed_at         TIMESTAMPTZ,
	proof_expires_at        TIMESTAMPTZ,
	grades                  JSONB NOT NULL DEFAULT '[]',
	likes                   JSONB NOT NULL DEFAULT '[]',
	public                  BOOLEAN NOT NULL DEFAULT false,
	content_deletion        TEXT NOT NULL DEFAULT 'delete_after_30_days',
	content_expires_at      TIMESTAMPTZ,
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_switch_games_public ON switch_games (created_at DESC) WHERE public;
CREATE INDEX IF NOT EXISTS idx_switch_games_creator ON switch_games (creator_id);
CREATE INDEX IF NOT EXISTS idx_switch_games_participant ON switch_games (participant_id);
CREATE INDEX IF NOT EXISTS idx_switch_games_proof_expiry ON switch_games (proof_expires_at) WHERE proof IS NOT NULL;

CREATE TABLE IF NOT EXISTS notifications (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id),
	type       TEXT NOT NULL,
	message    TEXT NOT NULL,
	game_id    BIGINT,
	read       BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, created_at DESC);
`
