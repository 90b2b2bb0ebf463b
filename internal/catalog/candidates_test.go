package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plant-matcher/internal/matching/model"
	"plant-matcher/internal/matching/service"
)

type fixture struct {
	rosa, canina, queen, sedum, tulipa, mugo, cembra, montana int64
}

func seedFixture(t *testing.T, s *Store) fixture {
	t.Helper()
	var f fixture
	f.rosa = mustAdd(t, s, "Rosa", "Ros")
	f.canina = mustAdd(t, s, "Rosa canina", "Stenros")
	f.queen = mustAdd(t, s, "Rosa 'Queen Elizabeth'", "")
	f.sedum = mustAdd(t, s, "Sedum acre", "Gul fetknopp")
	f.tulipa = mustAdd(t, s, "Tulipa", "Tulpan")
	f.mugo = mustAdd(t, s, "Pinus mugo", "Bergtall")
	f.cembra = mustAdd(t, s, "Pinus cembra", "Cembratall")

	var err error
	f.montana, err = s.AddSynonym(context.Background(), f.mugo, "Pinus montana")
	require.NoError(t, err)
	return f
}

func fetch(t *testing.T, s *Store, term string, limit int) []model.CandidateRow {
	t.Helper()
	rows, err := s.FetchCandidates(context.Background(), service.BuildCandidateQuery(service.Normalize(term), limit))
	require.NoError(t, err)
	return rows
}

func rowIDs(rows []model.CandidateRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.Entry.ID
	}
	return out
}

func TestFetchCandidatesEmpty(t *testing.T) {
	s := openTestStore(t)
	seedFixture(t, s)

	rows, err := s.FetchCandidates(context.Background(), model.CandidateQuery{Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestFetchCandidatesDBScore(t *testing.T) {
	s := openTestStore(t)
	f := seedFixture(t, s)

	rows := fetch(t, s, "rosa", 10)
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{f.rosa, f.canina, f.queen}, rowIDs(rows))
	assert.Equal(t, scoreExactName, rows[0].DBScore)
	assert.Equal(t, scoreNamePrefix, rows[1].DBScore)
	assert.Equal(t, scoreNamePrefix, rows[2].DBScore)

	rows = fetch(t, s, "canina", 10)
	require.Len(t, rows, 1)
	assert.Equal(t, scoreNameContains, rows[0].DBScore)

	rows = fetch(t, s, "tulpan", 10)
	require.Len(t, rows, 1)
	assert.Equal(t, f.tulipa, rows[0].Entry.ID)
	assert.Equal(t, scoreCommonPrefix, rows[0].DBScore)

	rows = fetch(t, s, "fetknopp", 10)
	require.Len(t, rows, 1)
	assert.Equal(t, scoreCommonContain, rows[0].DBScore)
}

func TestFetchCandidatesSynonymSurfacesCanonical(t *testing.T) {
	s := openTestStore(t)
	f := seedFixture(t, s)

	rows := fetch(t, s, "Pinus montana", 10)
	ids := rowIDs(rows)
	require.NotEmpty(t, ids)
	assert.Equal(t, f.mugo, ids[0])
	assert.Equal(t, scoreSynonym, rows[0].DBScore)
	assert.NotContains(t, ids, f.montana)

	assert.Equal(t, []string{"Pinus montana"}, rows[0].Entry.SynonymNames)
	assert.Equal(t, []int64{f.montana}, rows[0].Entry.SynonymIDs)

	// pinus cembra comes in through the first-word fallback
	assert.Contains(t, ids, f.cembra)
}

func TestFetchCandidatesFallbackTokens(t *testing.T) {
	s := openTestStore(t)
	f := seedFixture(t, s)

	rows := fetch(t, s, "rose queen elisabet", 10)
	require.Len(t, rows, 1)
	assert.Equal(t, f.queen, rows[0].Entry.ID)
	assert.Equal(t, scoreFallback, rows[0].DBScore)
}

func TestFetchCandidatesShortTermPrefix(t *testing.T) {
	s := openTestStore(t)
	f := seedFixture(t, s)

	rows := fetch(t, s, "tul", 10)
	require.Len(t, rows, 1)
	assert.Equal(t, f.tulipa, rows[0].Entry.ID)
}

func TestPrefixRangeUsesNameIndex(t *testing.T) {
	s := openTestStore(t)
	seedFixture(t, s)

	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return "?"
	}
	pred := prefixRange("p.name_norm", bind, "pinus")

	rows, err := s.db.QueryContext(context.Background(), "EXPLAIN QUERY PLAN SELECT p.id FROM plants p WHERE "+pred, args...)
	require.NoError(t, err)
	defer rows.Close()
	var plan []string
	for rows.Next() {
		var id, parent, notused int
		var detail string
		require.NoError(t, rows.Scan(&id, &parent, &notused, &detail))
		plan = append(plan, detail)
	}
	require.NoError(t, rows.Err())
	assert.Contains(t, fmt.Sprint(plan), "idx_plants_name_norm")

	var ids []int64
	got, err := s.db.QueryContext(context.Background(), "SELECT p.id FROM plants p WHERE "+pred+" ORDER BY p.id", args...)
	require.NoError(t, err)
	defer got.Close()
	for got.Next() {
		var id int64
		require.NoError(t, got.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, got.Err())
	assert.Len(t, ids, 3, "pinus mugo, pinus cembra and the pinus montana synonym row")
}

func TestFetchCandidatesPrefixScores(t *testing.T) {
	s := openTestStore(t)
	f := seedFixture(t, s)

	rows := fetch(t, s, "Pinus", 10)
	require.Len(t, rows, 2)
	assert.ElementsMatch(t, []int64{f.mugo, f.cembra}, rowIDs(rows))
	for _, r := range rows {
		assert.Equal(t, scoreNamePrefix, r.DBScore)
	}

	rows = fetch(t, s, "Sten", 10)
	require.Len(t, rows, 1)
	assert.Equal(t, f.canina, rows[0].Entry.ID)
	assert.Equal(t, scoreCommonPrefix, rows[0].DBScore)
}

func TestFetchCandidatesRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 50; i++ {
		mustAdd(t, s, fmt.Sprintf("Hosta %02d", i), "")
	}

	q := service.BuildCandidateQuery("hosta", 10)
	rows, err := s.FetchCandidates(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, rows, q.Limit)
	assert.Equal(t, "Hosta 00", rows[0].Entry.Name)
}

func TestFetchCandidatesClosedStore(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())

	_, err := s.FetchCandidates(context.Background(), service.BuildCandidateQuery("rosa", 10))
	assert.Error(t, err)
}
