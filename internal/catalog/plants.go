package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"plant-matcher/internal/matching/model"
	"plant-matcher/internal/matching/service"
)

// NewPlant is the input for a canonical catalog entry.
type NewPlant struct {
	Name            string `json:"name"`
	CommonName      string `json:"commonName"`
	PlantType       string `json:"plantType"`
	IsUserSubmitted bool   `json:"isUserSubmitted"`
	SubmitterID     string `json:"submitterId"`
}

// AddPlant inserts a canonical entry and returns its id.
func (s *Store) AddPlant(ctx context.Context, p NewPlant) (int64, error) {
	return s.addPlant(ctx, s.db, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) addPlant(ctx context.Context, db execer, p NewPlant) (int64, error) {
	name := strings.TrimSpace(p.Name)
	nameNorm := service.Normalize(name)
	if nameNorm == "" {
		return 0, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	common := strings.TrimSpace(p.CommonName)

	res, err := db.ExecContext(ctx,
		`INSERT INTO plants (name, common_name, plant_type, is_user_submitted, submitter_id, name_norm, common_name_norm)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, nullString(common), strings.TrimSpace(p.PlantType), boolInt(p.IsUserSubmitted),
		nullString(strings.TrimSpace(p.SubmitterID)), nameNorm, service.Normalize(common))
	if err != nil {
		return 0, fmt.Errorf("insert plant: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert plant: %w", err)
	}
	s.notify(id)
	return id, nil
}

// AddSynonym records name as an alternate name of the canonical entry
// canonicalID. Synonyms cannot point at other synonyms.
func (s *Store) AddSynonym(ctx context.Context, canonicalID int64, name string) (int64, error) {
	return s.addSynonym(ctx, s.db, canonicalID, name)
}

func (s *Store) addSynonym(ctx context.Context, db execer, canonicalID int64, name string) (int64, error) {
	name = strings.TrimSpace(name)
	nameNorm := service.Normalize(name)
	if nameNorm == "" {
		return 0, fmt.Errorf("%w: synonym name is required", ErrInvalid)
	}

	var (
		plantType string
		synOf     sql.NullInt64
	)
	err := db.QueryRowContext(ctx, `SELECT plant_type, is_synonym_of FROM plants WHERE id = ?`, canonicalID).
		Scan(&plantType, &synOf)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load plant %d: %w", canonicalID, err)
	}
	if synOf.Valid {
		return 0, fmt.Errorf("%w: plant %d is itself a synonym of %d", ErrInvalid, canonicalID, synOf.Int64)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO plants (name, plant_type, is_synonym_of, name_norm) VALUES (?, ?, ?, ?)`,
		name, plantType, canonicalID, nameNorm)
	if err != nil {
		return 0, fmt.Errorf("insert synonym: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert synonym: %w", err)
	}
	s.notify(canonicalID)
	return id, nil
}

// UpdatePlant renames an entry. For a synonym record the owning canonical
// entry is reported to the change hooks.
func (s *Store) UpdatePlant(ctx context.Context, id int64, name, commonName string) error {
	name = strings.TrimSpace(name)
	nameNorm := service.Normalize(name)
	if nameNorm == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	common := strings.TrimSpace(commonName)

	var synOf sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT is_synonym_of FROM plants WHERE id = ?`, id).Scan(&synOf)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load plant %d: %w", id, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE plants SET name = ?, common_name = ?, name_norm = ?, common_name_norm = ? WHERE id = ?`,
		name, nullString(common), nameNorm, service.Normalize(common), id); err != nil {
		return fmt.Errorf("update plant %d: %w", id, err)
	}

	owner := id
	if synOf.Valid {
		owner = synOf.Int64
	}
	s.notify(owner)
	return nil
}

// GetPlant loads one entry with its synonyms.
func (s *Store) GetPlant(ctx context.Context, id int64) (model.CatalogEntry, error) {
	var (
		e         model.CatalogEntry
		common    sql.NullString
		submitter sql.NullString
		submitted int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, common_name, plant_type, is_user_submitted, submitter_id FROM plants WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &common, &e.PlantType, &submitted, &submitter)
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	if err != nil {
		return e, fmt.Errorf("load plant %d: %w", id, err)
	}
	e.CommonName = common.String
	e.SubmitterID = submitter.String
	e.IsUserSubmitted = submitted != 0
	e.SynonymNames = []string{}
	e.SynonymIDs = []int64{}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM plants WHERE is_synonym_of = ? ORDER BY id`, id)
	if err != nil {
		return e, fmt.Errorf("load synonyms of %d: %w", id, err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows
	for rows.Next() {
		var (
			sid  int64
			name string
		)
		if err := rows.Scan(&sid, &name); err != nil {
			return e, fmt.Errorf("scan synonym: %w", err)
		}
		e.SynonymIDs = append(e.SynonymIDs, sid)
		e.SynonymNames = append(e.SynonymNames, name)
	}
	return e, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
