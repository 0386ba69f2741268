// Package cache provides an on-disk advisory.Source that remembers upstream
// answers for a fixed time.
package cache

import (
	"context"
	"database/sql"
	_ "embed" // embed the schema
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"runtime"
	"time"

	"github.com/doug-martin/goqu/v8"
	_ "github.com/doug-martin/goqu/v8/dialect/sqlite3" // register the sqlite3 dialect
	_ "modernc.org/sqlite"                             // register the sqlite driver

	"github.com/quay/sbomkit"
	"github.com/quay/sbomkit/advisory"
)

//go:embed schema.sql
var schema string

const table = "advisories"

var dialect = goqu.Dialect("sqlite3")

// Source wraps an upstream advisory.Source with a SQLite-backed cache.
//
// Answers younger than the configured TTL are served from the database.
// Failed upstream queries are never stored.
type Source struct {
	db       *sql.DB
	upstream advisory.Source
	ttl      time.Duration
	now      func() time.Time
}

var _ advisory.Source = (*Source)(nil)

// Open opens or creates the cache database at the named path.
//
// The returned Source must have its Close method called, or the process may
// panic.
func Open(path string, upstream advisory.Source, ttl time.Duration) (*Source, error) {
	const op = "cache.Open"
	if upstream == nil {
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInvalid, Message: "nil upstream source"}
	}
	u := url.URL{
		Scheme: `file`,
		Opaque: path,
		RawQuery: url.Values{
			"_pragma": {
				"busy_timeout(5000)",
				"journal_mode(WAL)",
			},
		}.Encode(),
	}
	db, err := sql.Open(`sqlite`, u.String())
	if err != nil {
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInternal, Inner: err}
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInvalid, Message: "unable to open database", Inner: err}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &sbomkit.Error{Op: op, Kind: sbomkit.ErrInternal, Message: "unable to create schema", Inner: err}
	}
	s := Source{
		db:       db,
		upstream: upstream,
		ttl:      ttl,
		now:      time.Now,
	}
	_, file, line, _ := runtime.Caller(1)
	runtime.SetFinalizer(&s, func(s *Source) {
		panic(fmt.Sprintf("%s:%d: advisory cache not closed", file, line))
	})
	return &s, nil
}

// Close releases held resources.
func (s *Source) Close() error {
	runtime.SetFinalizer(s, nil)
	return s.db.Close()
}

// Vulnerabilities implements advisory.Source.
func (s *Source) Vulnerabilities(ctx context.Context, ecosystem, name string) ([]sbomkit.SecurityVulnerability, error) {
	vs, ok, err := s.lookup(ctx, ecosystem, name)
	switch {
	case err != nil:
		slog.WarnContext(ctx, "cache read failed", "ecosystem", ecosystem, "package", name, "reason", err)
	case ok:
		slog.DebugContext(ctx, "cache hit", "ecosystem", ecosystem, "package", name)
		return vs, nil
	}

	vs, err = s.upstream.Vulnerabilities(ctx, ecosystem, name)
	if err != nil {
		return nil, err
	}
	if err := s.store(ctx, ecosystem, name, vs); err != nil {
		slog.WarnContext(ctx, "cache write failed", "ecosystem", ecosystem, "package", name, "reason", err)
	}
	return vs, nil
}

func (s *Source) lookup(ctx context.Context, ecosystem, name string) ([]sbomkit.SecurityVulnerability, bool, error) {
	q, args, err := dialect.From(table).
		Select("fetched", "payload").
		Where(goqu.Ex{
			"ecosystem": ecosystem,
			"name":      name,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, false, err
	}
	var fetched int64
	var payload []byte
	err = s.db.QueryRowContext(ctx, q, args...).Scan(&fetched, &payload)
	switch {
	case err == sql.ErrNoRows:
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	if s.now().Sub(time.Unix(fetched, 0)) >= s.ttl {
		return nil, false, nil
	}
	var vs []sbomkit.SecurityVulnerability
	if err := json.Unmarshal(payload, &vs); err != nil {
		return nil, false, fmt.Errorf("cache: corrupt entry: %w", err)
	}
	return vs, true, nil
}

func (s *Source) store(ctx context.Context, ecosystem, name string, vs []sbomkit.SecurityVulnerability) error {
	if vs == nil {
		vs = []sbomkit.SecurityVulnerability{}
	}
	payload, err := json.Marshal(vs)
	if err != nil {
		return err
	}
	where := goqu.Ex{
		"ecosystem": ecosystem,
		"name":      name,
	}
	del, delArgs, err := dialect.Delete(table).Where(where).Prepared(true).ToSQL()
	if err != nil {
		return err
	}
	ins, insArgs, err := dialect.Insert(table).
		Rows(goqu.Record{
			"ecosystem": ecosystem,
			"name":      name,
			"fetched":   s.now().Unix(),
			"payload":   payload,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, del, delArgs...); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, ins, insArgs...); err != nil {
		return err
	}
	return tx.Commit()
}

// Prune removes entries older than the TTL and reports how many were
// removed.
func (s *Source) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl).Unix()
	q, args, err := dialect.Delete(table).
		Where(goqu.C("fetched").Lte(cutoff)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, &sbomkit.Error{Op: "cache.Prune", Kind: sbomkit.ErrInternal, Inner: err}
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, &sbomkit.Error{Op: "cache.Prune", Kind: sbomkit.ErrInternal, Inner: err}
	}
	return res.RowsAffected()
}
