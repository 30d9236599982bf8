package sqlite

import "database/sql"

// MigrateUp creates every table, index, and FTS5 trigger the store needs.
// Statements are idempotent so MigrateUp can run on every process start,
// mirroring the teacher's Postgres MigrateUp.
func MigrateUp(db *sql.DB) error {
	statements := []string{
		`PRAGMA foreign_keys = ON`,

		`CREATE TABLE IF NOT EXISTS feeds (
		    id              INTEGER PRIMARY KEY AUTOINCREMENT,
		    name            TEXT NOT NULL,
		    feed_url        TEXT NOT NULL UNIQUE,
		    category        TEXT,
		    last_crawled_at DATETIME,
		    last_error      TEXT,
		    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feeds_category ON feeds(category)`,

		`CREATE TABLE IF NOT EXISTS articles (
		    id                INTEGER PRIMARY KEY AUTOINCREMENT,
		    feed_id           INTEGER NOT NULL REFERENCES feeds(id) ON DELETE CASCADE,
		    url               TEXT NOT NULL,
		    source_url        TEXT,
		    title             TEXT NOT NULL,
		    author            TEXT,
		    content           TEXT NOT NULL DEFAULT '',
		    content_hash      TEXT NOT NULL DEFAULT '',
		    published_at      DATETIME,
		    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    summary_short     TEXT,
		    summary_full      TEXT,
		    key_points        TEXT,
		    model_tier        TEXT,
		    summarized_at     DATETIME,
		    word_count        INTEGER,
		    reading_time_mins INTEGER,
		    featured_image    TEXT,
		    has_code_blocks   BOOLEAN NOT NULL DEFAULT 0,
		    code_languages    TEXT,
		    site_name         TEXT,
		    categories        TEXT,
		    paywalled         BOOLEAN NOT NULL DEFAULT 0,
		    extractor_used    TEXT,
		    content_type      TEXT NOT NULL DEFAULT '',
		    file_name         TEXT,
		    file_path         TEXT,
		    is_read           BOOLEAN NOT NULL DEFAULT 0,
		    is_bookmarked     BOOLEAN NOT NULL DEFAULT 0,
		    UNIQUE(feed_id, url)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_feed_id ON articles(feed_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_content_hash ON articles(content_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_is_read ON articles(is_read)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_is_bookmarked ON articles(is_bookmarked)`,

		// External-content FTS5 index over title/content, kept in sync by
		// the triggers below rather than duplicating the column bytes.
		`CREATE VIRTUAL TABLE IF NOT EXISTS articles_fts USING fts5(
		    title, content,
		    content='articles', content_rowid='id'
		)`,
		`CREATE TRIGGER IF NOT EXISTS articles_fts_ai AFTER INSERT ON articles BEGIN
		    INSERT INTO articles_fts(rowid, title, content) VALUES (new.id, new.title, new.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS articles_fts_ad AFTER DELETE ON articles BEGIN
		    INSERT INTO articles_fts(articles_fts, rowid, title, content) VALUES ('delete', old.id, old.title, old.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS articles_fts_au AFTER UPDATE ON articles BEGIN
		    INSERT INTO articles_fts(articles_fts, rowid, title, content) VALUES ('delete', old.id, old.title, old.content);
		    INSERT INTO articles_fts(rowid, title, content) VALUES (new.id, new.title, new.content);
		END`,

		`CREATE TABLE IF NOT EXISTS user_article_state (
		    user_id       INTEGER NOT NULL,
		    article_id    INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		    is_read       BOOLEAN NOT NULL DEFAULT 0,
		    read_at       DATETIME,
		    is_bookmarked BOOLEAN NOT NULL DEFAULT 0,
		    bookmarked_at DATETIME,
		    PRIMARY KEY (user_id, article_id)
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
		    key        TEXT PRIMARY KEY,
		    value      TEXT NOT NULL,
		    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS notification_rules (
		    id       INTEGER PRIMARY KEY AUTOINCREMENT,
		    name     TEXT NOT NULL,
		    feed_id  INTEGER REFERENCES feeds(id) ON DELETE CASCADE,
		    keyword  TEXT,
		    author   TEXT,
		    priority TEXT NOT NULL DEFAULT 'normal',
		    enabled  BOOLEAN NOT NULL DEFAULT 1
		)`,

		`CREATE TABLE IF NOT EXISTS notification_history (
		    id          INTEGER PRIMARY KEY AUTOINCREMENT,
		    article_id  INTEGER NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
		    rule_id     INTEGER REFERENCES notification_rules(id) ON DELETE SET NULL,
		    notified_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		    dismissed   BOOLEAN NOT NULL DEFAULT 0,
		    UNIQUE(article_id, rule_id)
		)`,

		`CREATE TABLE IF NOT EXISTS gmail_config (
		    id                 INTEGER PRIMARY KEY CHECK (id = 1),
		    email              TEXT NOT NULL,
		    access_token       TEXT NOT NULL DEFAULT '',
		    refresh_token      TEXT NOT NULL DEFAULT '',
		    token_expires_at   DATETIME,
		    monitored_label    TEXT NOT NULL DEFAULT 'Newsletters',
		    last_fetched_uid   INTEGER NOT NULL DEFAULT 0,
		    poll_interval_mins INTEGER NOT NULL DEFAULT 30,
		    enabled            BOOLEAN NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS topic_history (
		    id            INTEGER PRIMARY KEY AUTOINCREMENT,
		    label         TEXT NOT NULL,
		    label_hash    TEXT NOT NULL,
		    article_count INTEGER NOT NULL,
		    article_ids   TEXT NOT NULL,
		    clustered_at  DATETIME NOT NULL,
		    period_start  DATETIME NOT NULL,
		    period_end    DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_topic_history_label_hash ON topic_history(label_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_topic_history_clustered_at ON topic_history(clustered_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
