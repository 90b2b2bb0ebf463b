package catalog

import (
	"context"
	"fmt"
	"strings"

	"plant-matcher/internal/fileio"
	"plant-matcher/internal/matching/service"
)

// Header alternatives accepted in seed spreadsheets.
const (
	ColName       = "name|scientific name|vetenskapligt namn|latinskt namn"
	ColCommonName = "common_name|common name|svenskt namn|trivialnamn"
	ColPlantType  = "plant_type|plant type|type|växttyp|typ"
	ColSynonymOf  = "synonym_of|synonym of|synonym till"
)

type ImportStats struct {
	Plants   int `json:"plants"`
	Synonyms int `json:"synonyms"`
	Skipped  int `json:"skipped"`
}

// ImportSheet loads canonical rows first, then rows naming a canonical plant in
// the synonym column. Rows whose normalized name is already present are
// skipped, so importing the same file twice adds nothing.
func (s *Store) ImportSheet(ctx context.Context, sheet *fileio.Sheet) (ImportStats, error) {
	var st ImportStats
	nameKey := sheet.Key(ColName)
	if nameKey == "" {
		return st, fmt.Errorf("%w: seed has no name column", ErrInvalid)
	}
	commonKey := sheet.Key(ColCommonName)
	typeKey := sheet.Key(ColPlantType)
	synKey := sheet.Key(ColSynonymOf)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return st, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	canonical := make(map[string]int64)
	rows, err := tx.QueryContext(ctx, `SELECT id, name_norm FROM plants WHERE is_synonym_of IS NULL ORDER BY id`)
	if err != nil {
		return st, fmt.Errorf("load catalog: %w", err)
	}
	for rows.Next() {
		var (
			id   int64
			norm string
		)
		if err := rows.Scan(&id, &norm); err != nil {
			rows.Close()
			return st, fmt.Errorf("load catalog: %w", err)
		}
		if _, ok := canonical[norm]; !ok {
			canonical[norm] = id
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return st, fmt.Errorf("load catalog: %w", err)
	}
	rows.Close()

	value := func(row map[string]string, key string) string {
		if key == "" {
			return ""
		}
		return strings.TrimSpace(row[key])
	}

	var synonyms []map[string]string
	for _, row := range sheet.Rows {
		if value(row, synKey) != "" {
			synonyms = append(synonyms, row)
			continue
		}
		norm := service.Normalize(value(row, nameKey))
		if norm == "" {
			st.Skipped++
			continue
		}
		if _, ok := canonical[norm]; ok {
			st.Skipped++
			continue
		}
		id, err := s.addPlant(ctx, tx, NewPlant{
			Name:       value(row, nameKey),
			CommonName: value(row, commonKey),
			PlantType:  value(row, typeKey),
		})
		if err != nil {
			return st, err
		}
		canonical[norm] = id
		st.Plants++
	}

	for _, row := range synonyms {
		owner, ok := canonical[service.Normalize(value(row, synKey))]
		norm := service.Normalize(value(row, nameKey))
		if !ok || norm == "" {
			st.Skipped++
			continue
		}
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM plants WHERE is_synonym_of = ? AND name_norm = ?`, owner, norm).
			Scan(&exists); err != nil {
			return st, fmt.Errorf("check synonym: %w", err)
		}
		if exists > 0 {
			st.Skipped++
			continue
		}
		if _, err := s.addSynonym(ctx, tx, owner, value(row, nameKey)); err != nil {
			return st, err
		}
		st.Synonyms++
	}

	if err := tx.Commit(); err != nil {
		return st, fmt.Errorf("commit import: %w", err)
	}
	return st, nil
}
