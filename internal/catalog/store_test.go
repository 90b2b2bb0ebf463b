package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plant-matcher/internal/matching/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustAdd(t *testing.T, s *Store, name, common string) int64 {
	t.Helper()
	id, err := s.AddPlant(context.Background(), NewPlant{Name: name, CommonName: common, PlantType: "perenn"})
	require.NoError(t, err)
	return id
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	assert.Error(t, err)
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()

	id := mustAdd(t, s, "Rosa", "")
	got, err := s.GetPlant(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Rosa", got.Name)
}

func TestMigrateIsRepeatable(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestAddAndGetPlant(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.AddPlant(ctx, NewPlant{
		Name:            "  Pinus cembra 'Stricta' ",
		CommonName:      "Cembratall",
		PlantType:       "barrträd",
		IsUserSubmitted: true,
		SubmitterID:     "user-7",
	})
	require.NoError(t, err)

	got, err := s.GetPlant(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.CatalogEntry{
		ID:              id,
		Name:            "Pinus cembra 'Stricta'",
		CommonName:      "Cembratall",
		PlantType:       "barrträd",
		SynonymNames:    []string{},
		SynonymIDs:      []int64{},
		IsUserSubmitted: true,
		SubmitterID:     "user-7",
	}, got)

	var norm string
	require.NoError(t, s.db.QueryRow(`SELECT name_norm FROM plants WHERE id = ?`, id).Scan(&norm))
	assert.Equal(t, "pinus cembra stricta", norm)
}

func TestAddPlantRejectsEmptyName(t *testing.T) {
	s := openTestStore(t)

	_, err := s.AddPlant(context.Background(), NewPlant{Name: " '' "})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestGetPlantNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetPlant(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSynonyms(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	mugo := mustAdd(t, s, "Pinus mugo", "Bergtall")

	synID, err := s.AddSynonym(ctx, mugo, "Pinus montana")
	require.NoError(t, err)
	_, err = s.AddSynonym(ctx, mugo, "Pinus uncinata")
	require.NoError(t, err)

	got, err := s.GetPlant(ctx, mugo)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pinus montana", "Pinus uncinata"}, got.SynonymNames)
	require.Len(t, got.SynonymIDs, 2)
	assert.Equal(t, synID, got.SynonymIDs[0])

	_, err = s.AddSynonym(ctx, synID, "Pinus montana var. x")
	assert.ErrorIs(t, err, ErrInvalid, "synonym of a synonym")

	_, err = s.AddSynonym(ctx, 12345, "Pinus x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.AddSynonym(ctx, mugo, "  ")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdatePlant(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id := mustAdd(t, s, "Rosa canina", "")

	require.NoError(t, s.UpdatePlant(ctx, id, "Rosa rugosa", "Vresros"))

	got, err := s.GetPlant(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Rosa rugosa", got.Name)
	assert.Equal(t, "Vresros", got.CommonName)

	assert.ErrorIs(t, s.UpdatePlant(ctx, 999, "Rosa", ""), ErrNotFound)
	assert.ErrorIs(t, s.UpdatePlant(ctx, id, "", ""), ErrInvalid)
}

func TestOnChangeReportsCanonicalID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var (
		mu      sync.Mutex
		changed []int64
	)
	s.OnChange(func(id int64) {
		mu.Lock()
		defer mu.Unlock()
		changed = append(changed, id)
	})

	mugo := mustAdd(t, s, "Pinus mugo", "")
	synID, err := s.AddSynonym(ctx, mugo, "Pinus montana")
	require.NoError(t, err)
	require.NoError(t, s.UpdatePlant(ctx, synID, "Pinus montana Mill.", ""))
	require.NoError(t, s.UpdatePlant(ctx, mugo, "Pinus mugo Turra", ""))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{mugo, mugo, mugo, mugo}, changed)
}
