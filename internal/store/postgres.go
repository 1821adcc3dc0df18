package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/yourorg/openhouse-api/internal/listing"
)

var ErrNilDB = errors.New("nil_db")

type Store struct{ DB *sql.DB }

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return ErrNilDB
	}
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return ErrNilDB
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS open_houses (
            id                  BIGSERIAL PRIMARY KEY,
            street              TEXT NOT NULL,
            unit                TEXT,
            area_name           TEXT,
            zip_code            TEXT,
            state               TEXT,
            url                 TEXT,
            open_house_start_et TEXT NOT NULL,
            open_house_end_et   TEXT NOT NULL,
            open_house_date     DATE NOT NULL,
            bathroom_count      NUMERIC,
            total_bedrooms      NUMERIC,
            price               NUMERIC,
            available_at        TEXT,
            lead_media_photo    TEXT,
            property_type       TEXT,
            latitude            DOUBLE PRECISION,
            longitude           DOUBLE PRECISION,
            geocode_attempted_at TIMESTAMPTZ,
            created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
		`ALTER TABLE open_houses ADD COLUMN IF NOT EXISTS geocode_attempted_at TIMESTAMPTZ;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_open_houses_event ON open_houses(street, COALESCE(unit, ''), open_house_start_et);`,
		`CREATE INDEX IF NOT EXISTS idx_open_houses_date ON open_houses(open_house_date);`,
		`CREATE INDEX IF NOT EXISTS idx_open_houses_missing_coords ON open_houses(open_house_date) WHERE latitude IS NULL OR longitude IS NULL;`,
		`CREATE OR REPLACE FUNCTION upcoming_open_houses()
        RETURNS SETOF open_houses
        LANGUAGE sql STABLE AS $$
            SELECT * FROM open_houses
            WHERE open_house_date >= current_date
            ORDER BY open_house_date, open_house_start_et
        $$;`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

const recordColumns = `street, COALESCE(unit, ''), COALESCE(area_name, ''), COALESCE(zip_code, ''),
    COALESCE(state, ''), COALESCE(url, ''), open_house_start_et, open_house_end_et,
    COALESCE(bathroom_count, 0)::float8, COALESCE(total_bedrooms, 0)::float8, COALESCE(price::text, ''),
    COALESCE(available_at, ''), COALESCE(lead_media_photo, ''), COALESCE(property_type, ''),
    latitude, longitude`

// FetchUpcoming returns every open house dated today or later.
func (s *Store) FetchUpcoming(ctx context.Context) ([]listing.RawRecord, error) {
	if s == nil || s.DB == nil {
		return nil, ErrNilDB
	}
	return s.query(ctx, `SELECT `+recordColumns+` FROM upcoming_open_houses()`)
}

// MissingCoordinates returns up to limit upcoming rows that still need a
// geocode, one per street and unit. Rows whose last failed attempt is newer
// than retryAfter are left out.
func (s *Store) MissingCoordinates(ctx context.Context, limit int, retryAfter time.Duration) ([]listing.RawRecord, error) {
	if s == nil || s.DB == nil {
		return nil, ErrNilDB
	}
	if limit <= 0 {
		limit = 100
	}
	return s.query(ctx, `
        SELECT DISTINCT ON (street, COALESCE(unit, '')) `+recordColumns+`
        FROM upcoming_open_houses()
        WHERE (latitude IS NULL OR longitude IS NULL)
          AND (geocode_attempted_at IS NULL OR geocode_attempted_at < now() - make_interval(secs => $2))
        ORDER BY street, COALESCE(unit, '')
        LIMIT $1`, limit, retryAfter.Seconds())
}

// MarkGeocodeAttempted records a failed geocode on every row of the same
// street and unit that still has no coordinates.
func (s *Store) MarkGeocodeAttempted(ctx context.Context, street, unit string) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, ErrNilDB
	}
	res, err := s.DB.ExecContext(ctx, `
        UPDATE open_houses
        SET geocode_attempted_at=now()
        WHERE street=$1 AND COALESCE(unit, '')=$2 AND (latitude IS NULL OR longitude IS NULL)`,
		street, unit)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SaveCoordinates stores a geocode result on every row of the same street and
// unit that has none yet. It returns the number of rows updated.
func (s *Store) SaveCoordinates(ctx context.Context, street, unit string, coords [2]float64) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, ErrNilDB
	}
	res, err := s.DB.ExecContext(ctx, `
        UPDATE open_houses
        SET longitude=$3, latitude=$4, updated_at=now()
        WHERE street=$1 AND COALESCE(unit, '')=$2 AND (latitude IS NULL OR longitude IS NULL)`,
		street, unit, coords[0], coords[1])
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]listing.RawRecord, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []listing.RawRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (listing.RawRecord, error) {
	var (
		rec      listing.RawRecord
		price    string
		lat, lng sql.NullFloat64
	)
	err := sc.Scan(
		&rec.Street, &rec.Unit, &rec.AreaName, &rec.ZipCode,
		&rec.State, &rec.URL, &rec.StartET, &rec.EndET,
		&rec.Bathrooms, &rec.Bedrooms, &price,
		&rec.AvailableAt, &rec.PhotoRef, &rec.PropertyType,
		&lat, &lng,
	)
	if err != nil {
		return rec, fmt.Errorf("scan open house: %w", err)
	}
	rec.Price = listing.Number(price)
	if lat.Valid && lng.Valid {
		la, ln := lat.Float64, lng.Float64
		rec.Latitude, rec.Longitude = &la, &ln
	}
	return rec, nil
}
