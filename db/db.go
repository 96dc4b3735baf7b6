package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"artwork-tracker/filter"
	"artwork-tracker/models"

	"github.com/lib/pq"
)

// DB wraps the Postgres connection and owns the tracker's schema.
type DB struct {
	conn *sql.DB
}

// New opens the database. The connection string comes from DATABASE_URL,
// or from the individual DB_* variables when that is unset.
func New() (*DB, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "artwork_tracker")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "artwork_tracker")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the tables if they don't exist.
func (db *DB) initSchema() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS artworks (
			id SERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			platform VARCHAR(32) NOT NULL,
			source_url TEXT NOT NULL UNIQUE,
			source_id VARCHAR(255),
			price DOUBLE PRECISION,
			currency VARCHAR(10),
			seller_name TEXT,
			location TEXT,
			image_urls TEXT[],
			confidence_score DOUBLE PRECISION NOT NULL,
			positive_signals JSONB,
			negative_signals JSONB,
			raw_data JSONB,
			date_listing TIMESTAMP,
			date_ending TIMESTAMP,
			first_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create artworks table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS scrape_runs (
			id SERIAL PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP,
			total_collected INTEGER NOT NULL DEFAULT 0,
			passed INTEGER NOT NULL DEFAULT 0,
			new_artworks INTEGER NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'running',
			last_error TEXT,
			CONSTRAINT valid_run_status CHECK (status IN ('running', 'done', 'failed'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create scrape_runs table: %w", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_artworks_platform ON artworks(platform)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on artworks.platform: %v\n", err)
	}
	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_artworks_score ON artworks(confidence_score)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on artworks.confidence_score: %v\n", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// SaveResult inserts one scored listing. A listing whose source_url is
// already stored is skipped, keeping the first-seen row. Returns the new
// row's id, or 0 when the row already existed.
func (db *DB) SaveResult(result filter.ScoringResult) (int64, error) {
	l := result.Listing

	positive, err := json.Marshal(result.PositiveSignals)
	if err != nil {
		return 0, fmt.Errorf("failed to encode positive signals: %w", err)
	}
	negative, err := json.Marshal(result.NegativeSignals)
	if err != nil {
		return 0, fmt.Errorf("failed to encode negative signals: %w", err)
	}

	var rawData []byte
	if l.RawData != nil {
		rawData, err = json.Marshal(l.RawData)
		if err != nil {
			log.Printf("Warning: failed to encode raw data, storing without it: url=%s err=%v\n", l.SourceURL, err)
			rawData = nil
		}
	}

	var id int64
	err = db.conn.QueryRow(`
		INSERT INTO artworks (
			title, description, platform, source_url, source_id,
			price, currency, seller_name, location, image_urls,
			confidence_score, positive_signals, negative_signals, raw_data,
			date_listing, date_ending
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (source_url) DO NOTHING
		RETURNING id
	`,
		l.Title, l.Description, string(l.Platform), l.SourceURL, l.SourceID,
		l.Price, l.Currency, l.SellerName, l.Location, pq.Array(l.ImageURLs),
		result.ConfidenceScore, positive, negative, rawData,
		l.DateListing, l.DateEnding,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to save artwork: %w", err)
	}

	return id, nil
}

// SaveBatch stores a batch of scored listings and returns how many were
// new. A single bad row is logged and skipped.
func (db *DB) SaveBatch(results []filter.ScoringResult) (int, error) {
	newCount := 0
	for _, result := range results {
		id, err := db.SaveResult(result)
		if err != nil {
			log.Printf("Error: failed to save artwork: url=%s err=%v\n", result.Listing.SourceURL, err)
			continue
		}
		if id != 0 {
			newCount++
		}
	}
	return newCount, nil
}

// StoredArtwork is one persisted row, as returned by queries.
type StoredArtwork struct {
	ID              int64
	Title           string
	Platform        models.Platform
	SourceURL       string
	Price           float64
	Currency        string
	ConfidenceScore float64
	FirstSeenAt     time.Time
}

// GetRecent returns the most recently discovered artworks, newest first.
func (db *DB) GetRecent(limit int) ([]StoredArtwork, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(`
		SELECT id, title, platform, source_url, price, currency, confidence_score, first_seen_at
		FROM artworks
		ORDER BY first_seen_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query artworks: %w", err)
	}
	defer rows.Close()

	var artworks []StoredArtwork
	for rows.Next() {
		var a StoredArtwork
		var platform string
		if err := rows.Scan(&a.ID, &a.Title, &platform, &a.SourceURL, &a.Price, &a.Currency, &a.ConfidenceScore, &a.FirstSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan artwork row: %w", err)
		}
		a.Platform = models.Platform(platform)
		artworks = append(artworks, a)
	}
	return artworks, rows.Err()
}

// StartRun records the beginning of a scrape pass.
func (db *DB) StartRun(startedAt time.Time) (int64, error) {
	var id int64
	err := db.conn.QueryRow(`
		INSERT INTO scrape_runs (started_at) VALUES ($1) RETURNING id
	`, startedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to record scrape run: %w", err)
	}
	return id, nil
}

// FinishRun closes out a scrape pass with its counters.
func (db *DB) FinishRun(runID int64, totalCollected, passed, newArtworks int, runErr error) error {
	status := "done"
	var lastError sql.NullString
	if runErr != nil {
		status = "failed"
		lastError = sql.NullString{String: runErr.Error(), Valid: true}
	}

	_, err := db.conn.Exec(`
		UPDATE scrape_runs
		SET finished_at = $2, total_collected = $3, passed = $4, new_artworks = $5, status = $6, last_error = $7
		WHERE id = $1
	`, runID, time.Now(), totalCollected, passed, newArtworks, status, lastError)
	if err != nil {
		return fmt.Errorf("failed to finish scrape run: %w", err)
	}
	return nil
}

// LastRun returns the most recent scrape pass, or nil when none exist.
func (db *DB) LastRun() (*RunRecord, error) {
	var r RunRecord
	var finished sql.NullTime
	var lastError sql.NullString

	err := db.conn.QueryRow(`
		SELECT id, started_at, finished_at, total_collected, passed, new_artworks, status, last_error
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&r.ID, &r.StartedAt, &finished, &r.TotalCollected, &r.Passed, &r.NewArtworks, &r.Status, &lastError)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last run: %w", err)
	}

	if finished.Valid {
		r.FinishedAt = &finished.Time
	}
	r.LastError = lastError.String
	return &r, nil
}

// RunRecord is one scrape_runs row.
type RunRecord struct {
	ID             int64
	StartedAt      time.Time
	FinishedAt     *time.Time
	TotalCollected int
	Passed         int
	NewArtworks    int
	Status         string
	LastError      string
}
