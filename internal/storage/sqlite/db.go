package sqlite

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS places (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		category   TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		place_id    TEXT NOT NULL,
		content     TEXT NOT NULL,
		rating      INTEGER NOT NULL,
		author      TEXT DEFAULT '',
		source      TEXT NOT NULL DEFAULT 'app',
		is_approved INTEGER NOT NULL DEFAULT 1,
		created_at  DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reviews_place ON reviews(place_id);
	CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at);

	CREATE TABLE IF NOT EXISTS business_analytics (
		id                       TEXT PRIMARY KEY,
		place_id                 TEXT NOT NULL UNIQUE,
		business_name            TEXT NOT NULL,
		total_reviews            INTEGER NOT NULL DEFAULT 0,
		average_rating           REAL NOT NULL DEFAULT 0,
		positive_sentiment_count INTEGER NOT NULL DEFAULT 0,
		negative_sentiment_count INTEGER NOT NULL DEFAULT 0,
		sentiment_score          REAL NOT NULL DEFAULT 0.5,
		predicted_status         TEXT NOT NULL DEFAULT 'uncertain',
		confidence_score         REAL NOT NULL DEFAULT 0,
		trend                    TEXT NOT NULL DEFAULT 'insufficient_data',
		last_analysis            DATETIME NOT NULL,
		created_at               DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_ba_status ON business_analytics(predicted_status);
	CREATE INDEX IF NOT EXISTS idx_ba_last_analysis ON business_analytics(last_analysis);

	CREATE TABLE IF NOT EXISTS ai_recommendations (
		id                   TEXT PRIMARY KEY,
		analytics_id         TEXT NOT NULL,
		title                TEXT NOT NULL,
		description          TEXT NOT NULL DEFAULT '',
		priority             TEXT NOT NULL DEFAULT 'medium',
		category             TEXT NOT NULL DEFAULT 'operations',
		is_implemented       INTEGER NOT NULL DEFAULT 0,
		implementation_notes TEXT NOT NULL DEFAULT '',
		generated_at         DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at           DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(analytics_id, title)
	);
	CREATE INDEX IF NOT EXISTS idx_rec_analytics ON ai_recommendations(analytics_id);

	CREATE TABLE IF NOT EXISTS analytics_trends (
		id               TEXT PRIMARY KEY,
		analytics_id     TEXT NOT NULL,
		period_start     DATETIME NOT NULL,
		period_end       DATETIME NOT NULL,
		reviews_count    INTEGER NOT NULL DEFAULT 0,
		avg_rating       REAL NOT NULL DEFAULT 0,
		sentiment_ratio  REAL NOT NULL DEFAULT 0,
		rating_change    REAL NOT NULL DEFAULT 0,
		sentiment_change REAL NOT NULL DEFAULT 0,
		created_at       DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(analytics_id, period_start, period_end)
	);
	CREATE INDEX IF NOT EXISTS idx_trend_analytics ON analytics_trends(analytics_id);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	return db, nil
}
