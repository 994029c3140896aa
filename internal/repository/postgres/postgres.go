// Package postgres implements internal/repository.Repository against a
// Postgres relics table, grounded in the retrieved la2go game server's
// internal/db repository pattern: a thin struct wrapping a *pgxpool.Pool,
// context-scoped queries, row-by-row scanning, and fmt.Errorf("%w", ...)
// wrapping instead of an ORM or query builder.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"relicforge/internal/relic"
	"relicforge/internal/repository"
)

// Repository is a repository.Repository backed by a Postgres relics table.
type Repository struct {
	pool *pgxpool.Pool
}

// Open connects a pgxpool to dsn and returns a ready Repository. Callers own
// the pool's lifetime via Close.
func Open(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// New wraps an already-constructed pool, for callers that manage pool
// lifecycle themselves.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Close releases the underlying connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

const selectColumns = `id, name, description, category, rarity, quality, icon_url,
	obtainment_difficulty, conflicts, active, effects`

func scanRelic(row pgx.Row) (relic.Relic, error) {
	var out relic.Relic
	var effectsJSON []byte
	if err := row.Scan(
		&out.ID, &out.Name, &out.Description, &out.Category, &out.Rarity, &out.Quality,
		&out.IconURL, &out.ObtainmentDifficulty, &out.Conflicts, &out.Active, &effectsJSON,
	); err != nil {
		return relic.Relic{}, err
	}
	if len(effectsJSON) > 0 {
		if err := json.Unmarshal(effectsJSON, &out.Effects); err != nil {
			return relic.Relic{}, fmt.Errorf("postgres: decode effects for relic %q: %w", out.ID, err)
		}
	}
	for i := range out.Effects {
		out.Effects[i].DisplayOrder = i
	}
	return out, nil
}

// GetRelic returns a single relic by id.
func (r *Repository) GetRelic(ctx context.Context, id string) (relic.Relic, error) {
	query := fmt.Sprintf(`SELECT %s FROM relics WHERE id = $1`, selectColumns)
	row := r.pool.QueryRow(ctx, query, id)
	out, err := scanRelic(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return relic.Relic{}, fmt.Errorf("postgres: relic %q not found", id)
		}
		return relic.Relic{}, fmt.Errorf("postgres: get relic %q: %w", id, err)
	}
	return out, nil
}

// GetRelicsByIDs returns the subset of ids present in relics, in the order
// the database returns them. Missing ids are silently omitted rather than
// failing the whole call — callers (validation.Validate) diff the result
// against the requested ids to report exactly which ones are missing.
func (r *Repository) GetRelicsByIDs(ctx context.Context, ids []string) ([]relic.Relic, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM relics WHERE id = ANY($1)`, selectColumns)
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("postgres: get relics by ids: %w", err)
	}
	defer rows.Close()

	out := make([]relic.Relic, 0, len(ids))
	for rows.Next() {
		rel, err := scanRelic(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan relic row: %w", err)
		}
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate relic rows: %w", err)
	}
	return out, nil
}

// ListRelics returns every relic matching filter, ordered by id.
//
// The WHERE clause is hand-assembled from a fixed set of optional
// predicates rather than built with a query-builder library — the same
// approach the retrieved la2go repositories take, since the predicate set
// is small and static.
func (r *Repository) ListRelics(ctx context.Context, filter repository.Filter) ([]relic.Relic, error) {
	var clauses []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Active != nil {
		clauses = append(clauses, fmt.Sprintf("active = %s", arg(*filter.Active)))
	}
	if len(filter.Categories) > 0 {
		clauses = append(clauses, fmt.Sprintf("category = ANY(%s)", arg(categoriesToStrings(filter.Categories))))
	}
	if len(filter.Rarities) > 0 {
		clauses = append(clauses, fmt.Sprintf("rarity = ANY(%s)", arg(raritiesToStrings(filter.Rarities))))
	}
	if len(filter.Qualities) > 0 {
		clauses = append(clauses, fmt.Sprintf("quality = ANY(%s)", arg(qualitiesToStrings(filter.Qualities))))
	}
	if filter.DifficultyMin > 0 {
		clauses = append(clauses, fmt.Sprintf("obtainment_difficulty >= %s", arg(filter.DifficultyMin)))
	}
	if filter.DifficultyMax > 0 {
		clauses = append(clauses, fmt.Sprintf("obtainment_difficulty <= %s", arg(filter.DifficultyMax)))
	}
	if len(filter.ExcludeIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("NOT (id = ANY(%s))", arg(filter.ExcludeIDs)))
	}
	if filter.NameSubstring != "" {
		clauses = append(clauses, fmt.Sprintf("name ILIKE %s", arg("%"+filter.NameSubstring+"%")))
	}
	if len(filter.EffectTypes) > 0 {
		clauses = append(clauses, fmt.Sprintf("effects @> ANY(%s)", arg(effectTypeJSONPatterns(filter.EffectTypes))))
	}

	query := fmt.Sprintf(`SELECT %s FROM relics`, selectColumns)
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list relics: %w", err)
	}
	defer rows.Close()

	var out []relic.Relic
	for rows.Next() {
		rel, err := scanRelic(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan relic row: %w", err)
		}
		out = append(out, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate relic rows: %w", err)
	}
	return out, nil
}

// DifficultyEstimate returns a relic's obtainment_difficulty, read live from
// the relics table rather than from any hard-coded table. The optimizer does
// not call it; it reads difficulty from the relics ListRelics returns.
func (r *Repository) DifficultyEstimate(ctx context.Context, relicID string) (int, error) {
	var difficulty int
	err := r.pool.QueryRow(ctx, `SELECT obtainment_difficulty FROM relics WHERE id = $1`, relicID).Scan(&difficulty)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, fmt.Errorf("postgres: relic %q not found", relicID)
		}
		return 0, fmt.Errorf("postgres: difficulty estimate for %q: %w", relicID, err)
	}
	return difficulty, nil
}

// MetaBuilds returns the curated candidate relic id sets for style, read
// live from the meta_builds table rather than a hard-coded table, matching
// DifficultyEstimate's lookup contract.
func (r *Repository) MetaBuilds(ctx context.Context, style relic.CombatStyle) ([][]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT relic_ids FROM meta_builds WHERE combat_style = $1 ORDER BY id`, string(style))
	if err != nil {
		return nil, fmt.Errorf("postgres: meta builds for %q: %w", style, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var relicIDs []string
		if err := rows.Scan(&relicIDs); err != nil {
			return nil, fmt.Errorf("postgres: scan meta build row: %w", err)
		}
		out = append(out, relicIDs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate meta build rows: %w", err)
	}
	return out, nil
}

func categoriesToStrings(in []relic.Category) []string {
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = string(c)
	}
	return out
}

func raritiesToStrings(in []relic.Rarity) []string {
	out := make([]string, len(in))
	for i, r := range in {
		out[i] = string(r)
	}
	return out
}

func qualitiesToStrings(in []relic.Quality) []string {
	out := make([]string, len(in))
	for i, q := range in {
		out[i] = string(q)
	}
	return out
}

// effectTypeJSONPatterns builds one JSONB containment pattern per requested
// effect type, e.g. `[{"effect_type": "attack_flat"}]`, so `effects @> ANY(...)`
// matches a relic whose effects array contains at least one element with
// that effect_type.
func effectTypeJSONPatterns(types []relic.EffectType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = fmt.Sprintf(`[{"effect_type": %q}]`, string(t))
	}
	return out
}
