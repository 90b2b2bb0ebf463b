package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"plant-matcher/internal/matching/model"
)

// dbScore ordinals, highest first.
const (
	scoreExactName     = 7
	scoreNamePrefix    = 6
	scoreNameContains  = 5
	scoreCommonPrefix  = 4
	scoreCommonContain = 3
	scoreSynonym       = 2
	scoreFallback      = 1
)

// prefixCeiling sorts after any string sharing the prefix it is appended to,
// so "col >= t AND col < t||prefixCeiling" is a prefix test the column index
// can serve.
const prefixCeiling = "\U0010FFFF"

// prefixRange returns a predicate matching col values that start with term.
func prefixRange(col string, bind func(any) string, term string) string {
	return "(" + col + " >= " + bind(term) + " AND " + col + " < " + bind(term+prefixCeiling) + ")"
}

type rowScanner interface {
	Scan(dest ...any) error
}

// FetchCandidates runs the cheap retrieval predicate over canonical plants and
// loads their synonyms. Both reads share one transaction so the result is
// either complete or an error.
func (s *Store) FetchCandidates(ctx context.Context, q model.CandidateQuery) ([]model.CandidateRow, error) {
	out := []model.CandidateRow{}
	if q.Term == "" || q.Limit <= 0 {
		return out, nil
	}

	query, args := candidateSQL(q)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin candidate read: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // read-only transaction

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	pos := make(map[int64]int)
	for rows.Next() {
		var r model.CandidateRow
		if err := scanCandidate(rows, &r); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		pos[r.Entry.ID] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	rows.Close()

	if len(out) > 0 {
		if err := loadSynonyms(ctx, tx, out, pos); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("finish candidate read: %w", err)
	}
	return out, nil
}

func candidateSQL(q model.CandidateQuery) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	p := func(v any) string {
		args = append(args, v)
		return "?"
	}
	synonymContains := func() string {
		return "EXISTS (SELECT 1 FROM plants s WHERE s.is_synonym_of = p.id AND instr(s.name_norm, " + p(q.Term) + ") > 0)"
	}

	b.WriteString(`SELECT p.id, p.name, COALESCE(p.common_name, ''), p.plant_type,
	p.is_user_submitted, COALESCE(p.submitter_id, ''),
	CASE`)
	fmt.Fprintf(&b, "\n\t\tWHEN p.name_norm = %s THEN %d", p(q.Term), scoreExactName)
	fmt.Fprintf(&b, "\n\t\tWHEN %s THEN %d", prefixRange("p.name_norm", p, q.Term), scoreNamePrefix)
	fmt.Fprintf(&b, "\n\t\tWHEN instr(p.name_norm, %s) > 0 THEN %d", p(q.Term), scoreNameContains)
	fmt.Fprintf(&b, "\n\t\tWHEN %s THEN %d", prefixRange("p.common_name_norm", p, q.Term), scoreCommonPrefix)
	fmt.Fprintf(&b, "\n\t\tWHEN instr(p.common_name_norm, %s) > 0 THEN %d", p(q.Term), scoreCommonContain)
	fmt.Fprintf(&b, "\n\t\tWHEN %s THEN %d", synonymContains(), scoreSynonym)
	fmt.Fprintf(&b, "\n\t\tELSE %d\n\tEND AS db_score", scoreFallback)

	b.WriteString("\nFROM plants p\nWHERE p.is_synonym_of IS NULL AND (")
	fmt.Fprintf(&b, "\n\tinstr(p.name_norm, %s) > 0", p(q.Term))
	fmt.Fprintf(&b, "\n\tOR instr(p.common_name_norm, %s) > 0", p(q.Term))
	fmt.Fprintf(&b, "\n\tOR %s", synonymContains())
	for _, tok := range q.FallbackTokens {
		fmt.Fprintf(&b, "\n\tOR instr(p.name_norm, %s) > 0", p(tok))
	}
	if q.ShortTerm {
		fmt.Fprintf(&b, "\n\tOR %s", prefixRange("p.name_norm", p, q.Term))
	}
	b.WriteString("\n)\nORDER BY db_score DESC, length(p.name) ASC, p.name ASC, p.id ASC")
	fmt.Fprintf(&b, "\nLIMIT %s", p(q.Limit))

	return b.String(), args
}

func scanCandidate(sc rowScanner, r *model.CandidateRow) error {
	var submitted int
	if err := sc.Scan(
		&r.Entry.ID, &r.Entry.Name, &r.Entry.CommonName, &r.Entry.PlantType,
		&submitted, &r.Entry.SubmitterID, &r.DBScore,
	); err != nil {
		return err
	}
	r.Entry.IsUserSubmitted = submitted != 0
	r.Entry.SynonymNames = []string{}
	r.Entry.SynonymIDs = []int64{}
	return nil
}

func loadSynonyms(ctx context.Context, tx *sql.Tx, out []model.CandidateRow, pos map[int64]int) error {
	ids := make([]any, 0, len(out))
	marks := make([]string, 0, len(out))
	for _, r := range out {
		ids = append(ids, r.Entry.ID)
		marks = append(marks, "?")
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT is_synonym_of, id, name FROM plants
		WHERE is_synonym_of IN (`+strings.Join(marks, ", ")+`)
		ORDER BY is_synonym_of, id`, ids...)
	if err != nil {
		return fmt.Errorf("query synonyms: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	for rows.Next() {
		var (
			owner, id int64
			name      string
		)
		if err := rows.Scan(&owner, &id, &name); err != nil {
			return fmt.Errorf("scan synonym: %w", err)
		}
		i, ok := pos[owner]
		if !ok {
			continue
		}
		e := &out[i].Entry
		e.SynonymNames = append(e.SynonymNames, name)
		e.SynonymIDs = append(e.SynonymIDs, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read synonyms: %w", err)
	}
	return nil
}
