package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdboard/internal/domain/models"
	"github.com/mamadbah2/herdboard/internal/repository/memory"
	"github.com/mamadbah2/herdboard/internal/service/persistence"
)

var fixedNow = time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, *persistence.Gateway) {
	t.Helper()
	gw := persistence.NewGateway(memory.NewStore(), nil, nil)
	s := NewStore(gw, nil)
	s.now = func() time.Time { return fixedNow }
	return s, gw
}

func ids(animals []models.Animal) []int64 {
	out := make([]int64, 0, len(animals))
	for _, a := range animals {
		out = append(out, a.ID)
	}
	return out
}

func TestLoadWithoutPersistedData(t *testing.T) {
	s, _ := newTestStore(t)
	assert.False(t, s.Load(context.Background()))
	assert.Empty(t, s.List())
}

func TestAddAppliesDefaults(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()

	added := s.Add(ctx, models.AnimalPatch{})

	assert.Equal(t, "Unknown", added.Name)
	assert.Equal(t, models.DefaultAnimalType, added.Type)
	assert.Equal(t, models.HealthHealthy, added.HealthStatus)
	assert.Equal(t, fixedNow, added.BirthDate)
	assert.Equal(t, fixedNow, added.LastCheckup)
	assert.Nil(t, added.MilkProduction)
	assert.GreaterOrEqual(t, added.ID, fixedNow.UnixMilli())
	assert.Less(t, added.ID, fixedNow.UnixMilli()+idJitter)

	var persisted []models.Animal
	require.True(t, gw.Load(ctx, persistence.KeyAnimals, &persisted))
	assert.Equal(t, []int64{added.ID}, ids(persisted))
}

func TestAddNeverReusesIDs(t *testing.T) {
	s, _ := newTestStore(t)
	s.jitter = func(int64) int64 { return 7 }
	ctx := context.Background()

	first := s.Add(ctx, models.AnimalPatch{Name: models.String("Bessie")})
	second := s.Add(ctx, models.AnimalPatch{Name: models.String("Daisy")})
	require.True(t, s.Delete(ctx, first.ID))
	third := s.Add(ctx, models.AnimalPatch{Name: models.String("Rosie")})

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, third.ID)
	assert.NotEqual(t, second.ID, third.ID)
}

func TestAddThenDeleteRestoresHerd(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	s.Add(ctx, models.AnimalPatch{Name: models.String("Bessie")})
	before := ids(s.List())

	added := s.Add(ctx, models.AnimalPatch{Name: models.String("Penny")})
	require.True(t, s.Delete(ctx, added.ID))

	assert.ElementsMatch(t, before, ids(s.List()))
	assert.False(t, s.Delete(ctx, added.ID))
}

func TestUpdateMergesPresentFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	added := s.Add(ctx, models.AnimalPatch{
		Name:           models.String("Bessie"),
		Weight:         models.Float(650),
		MilkProduction: models.Float(28.5),
	})

	sick := models.HealthSick
	updated, ok := s.Update(ctx, added.ID, models.AnimalPatch{HealthStatus: &sick, Weight: models.Float(640)})
	require.True(t, ok)

	assert.Equal(t, "Bessie", updated.Name)
	assert.Equal(t, models.HealthSick, updated.HealthStatus)
	assert.Equal(t, 640.0, updated.Weight)
	assert.Equal(t, 28.5, updated.Milk())
	assert.Equal(t, added.ID, updated.ID)
}

func TestUpdateWithEmptyPatchIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	added := s.Add(ctx, models.AnimalPatch{Name: models.String("Bessie"), Notes: models.String("Top producer")})

	updated, ok := s.Update(ctx, added.ID, models.AnimalPatch{})
	require.True(t, ok)
	assert.Equal(t, added, updated)
}

func TestUpdateUnknownIDLeavesStoreUntouched(t *testing.T) {
	s, gw := newTestStore(t)
	ctx := context.Background()
	s.Add(ctx, models.AnimalPatch{Name: models.String("Bessie")})
	before := s.List()

	_, ok := s.Update(ctx, 42, models.AnimalPatch{Name: models.String("Ghost")})
	assert.False(t, ok)
	assert.Equal(t, before, s.List())

	var persisted []models.Animal
	require.True(t, gw.Load(ctx, persistence.KeyAnimals, &persisted))
	assert.Len(t, persisted, 1)
}

func TestListReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	added := s.Add(ctx, models.AnimalPatch{MilkProduction: models.Float(10)})

	list := s.List()
	*list[0].MilkProduction = 99
	list[0].Name = "Changed"

	got, ok := s.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, 10.0, got.Milk())
	assert.Equal(t, "Unknown", got.Name)
}

func TestLoadHydratesFromGateway(t *testing.T) {
	ctx := context.Background()
	gw := persistence.NewGateway(memory.NewStore(), nil, nil)
	gw.Save(ctx, persistence.KeyAnimals, []models.Animal{{ID: 5, Name: "Luna"}})

	s := NewStore(gw, nil)
	s.now = func() time.Time { return time.UnixMilli(5) }
	s.jitter = func(int64) int64 { return 0 }
	require.True(t, s.Load(ctx))
	assert.Equal(t, []int64{5}, ids(s.List()))

	// id 5 is taken, so the next draw moves past it.
	added := s.Add(ctx, models.AnimalPatch{})
	assert.NotEqual(t, int64(5), added.ID)
}

func TestLoadDiscardsPartiallyDecodedHerd(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	blob := `[{"id":1,"name":"Bessie","weight":650},{"id":2,"name":"Daisy","weight":"heavy"}]`
	require.NoError(t, kv.Put(ctx, persistence.KeyAnimals, []byte(blob)))

	s := NewStore(persistence.NewGateway(kv, nil, nil), nil)
	assert.False(t, s.Load(ctx))
	assert.NotNil(t, s.List())
	assert.Empty(t, s.List())

	_, ok := s.Get(1)
	assert.False(t, ok)
}
