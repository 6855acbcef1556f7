package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/journeybox/internal/domain/journey"
)

// PostgresStore persists journeys in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store backed by PostgreSQL.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the journeys table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS journeys (
			id           BIGSERIAL PRIMARY KEY,
			user_id      TEXT NOT NULL,
			origin       TEXT NOT NULL,
			destination  TEXT NOT NULL,
			journey_time BIGINT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL,
			playlist_url TEXT,
			genres       TEXT
		)`)
	if err != nil {
		return errors.Wrap(err, "ensure journeys schema")
	}
	return nil
}

// Create persists a journey and returns it with the assigned ID.
func (s *PostgresStore) Create(ctx context.Context, j *journey.Journey) (*journey.Journey, error) {
	if j == nil {
		return nil, errors.New("journey is required")
	}

	created := *j
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO journeys (user_id, origin, destination, journey_time, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		created.UserID, created.Origin, created.Destination, created.JourneySeconds(), created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert journey")
	}

	return &created, nil
}

// Get returns a single journey.
func (s *PostgresStore) Get(ctx context.Context, id int64) (*journey.Journey, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, origin, destination, journey_time, created_at, playlist_url, genres
		FROM journeys
		WHERE id = $1`, id)

	j, err := scanJourney(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJourneyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get journey")
	}
	return j, nil
}

// List returns all journeys in insertion order.
func (s *PostgresStore) List(ctx context.Context) ([]*journey.Journey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, origin, destination, journey_time, created_at, playlist_url, genres
		FROM journeys
		ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list journeys")
	}
	defer rows.Close()

	var journeys []*journey.Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan journey")
		}
		journeys = append(journeys, j)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate journeys")
	}
	return journeys, nil
}

// UpdateJourneyTime overwrites the stored duration estimate.
func (s *PostgresStore) UpdateJourneyTime(ctx context.Context, id int64, journeyTime time.Duration) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE journeys SET journey_time = $1 WHERE id = $2`,
		int64(journeyTime/time.Second), id)
	if err != nil {
		return errors.Wrap(err, "update journey time")
	}
	return checkAffected(res)
}

// SetPlaylist records the playlist URL and genre list for a journey.
func (s *PostgresStore) SetPlaylist(ctx context.Context, id int64, playlistURL string, genres []string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE journeys SET playlist_url = $1, genres = $2 WHERE id = $3`,
		playlistURL, journey.JoinGenres(genres), id)
	if err != nil {
		return errors.Wrap(err, "set playlist")
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return ErrJourneyNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJourney(row rowScanner) (*journey.Journey, error) {
	var (
		j           journey.Journey
		seconds     int64
		playlistURL sql.NullString
		genres      sql.NullString
	)
	if err := row.Scan(&j.ID, &j.UserID, &j.Origin, &j.Destination, &seconds, &j.CreatedAt, &playlistURL, &genres); err != nil {
		return nil, err
	}
	j.JourneyTime = time.Duration(seconds) * time.Second
	j.PlaylistURL = playlistURL.String
	j.Genres = journey.SplitGenres(genres.String)
	return &j, nil
}
