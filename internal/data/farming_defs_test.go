package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDefsJSON = `{
  "plants": {
    "carrot": {
      "prefab": "carrot",
      "nutrient_consumption": [4, 0, 0],
      "nutrient_restoration": [false, true, true],
      "moisture": {"drink_rate": -0.0035},
      "good_seasons": {"autumn": true, "spring": true, "winter": false},
      "family_min_count": 2,
      "product": "carrot",
      "seed": "carrot_seeds",
      "product_oversized": "carrot_oversized",
      "grow_time": {
        "seed": [240, 480],
        "sprout": [480, 960],
        "full": 480,
        "oversized": 960,
        "regrow": [10, 20]
      }
    },
    "randomseed": {"is_randomseed": true, "nutrient_consumption": [0, 0]},
    "broken": "not a table"
  },
  "mechanics": {
    "stress": {
      "categories": ["nutrients", "moisture", "season"],
      "thresholds": {"NONE": 1, "LOW": 6, "MODERATE": 11}
    },
    "growth": {"good_season_multiplier": 0.5}
  },
  "tuning": {
    "FARM_PLANT_SAME_FAMILY_MIN": 4,
    "FARM_PLANT_DRINK_LOW": -0.0035,
    "NOT_A_NUMBER": "x",
    "A_BOOL": true
  },
  "meta": {"source": "scripts"}
}`

func TestParseFarmingDefs_JSON(t *testing.T) {
	t.Parallel()

	defs, err := ParseFarmingDefs([]byte(sampleDefsJSON))
	require.NoError(t, err)

	assert.Equal(t, []string{"carrot", "randomseed"}, defs.PlantIDs())

	carrot := defs.Plant("carrot")
	require.NotNil(t, carrot)
	assert.Equal(t, "carrot", carrot.Prefab)
	assert.Equal(t, [3]float64{4, 0, 0}, carrot.NutrientConsumption)
	require.NotNil(t, carrot.NutrientRestoration)
	assert.Equal(t, [3]bool{false, true, true}, *carrot.NutrientRestoration)
	require.NotNil(t, carrot.DrinkRate)
	assert.InDelta(t, -0.0035, *carrot.DrinkRate, 1e-12)
	assert.True(t, carrot.IsGoodSeason("autumn"))
	assert.False(t, carrot.IsGoodSeason("winter"))
	assert.False(t, carrot.IsGoodSeason(""))
	require.NotNil(t, carrot.FamilyMinCount)
	assert.Equal(t, 2, *carrot.FamilyMinCount)
	assert.Equal(t, &Range{Min: 240, Max: 480}, carrot.GrowTime.Seed)
	assert.Nil(t, carrot.GrowTime.Small)
	require.NotNil(t, carrot.GrowTime.Full)
	assert.Equal(t, 480.0, *carrot.GrowTime.Full)

	rs := defs.Plant("randomseed")
	require.NotNil(t, rs)
	assert.True(t, rs.IsRandomSeed)
	assert.Equal(t, [3]float64{}, rs.NutrientConsumption, "wrong arity zeroes the vector")
	assert.Nil(t, rs.NutrientRestoration)
	assert.Nil(t, rs.DrinkRate)

	assert.Equal(t, 3, defs.Mechanics.Stress.Stressors())
	assert.Equal(t, 11.0, defs.Mechanics.Stress.Thresholds["MODERATE"])
	require.NotNil(t, defs.Mechanics.Growth.GoodSeasonMultiplier)
	assert.Equal(t, 0.5, *defs.Mechanics.Growth.GoodSeasonMultiplier)

	v, ok := defs.Tuning.Number(TuningFamilyMin)
	assert.True(t, ok)
	assert.Equal(t, 4.0, v)
	_, ok = defs.Tuning.Number("NOT_A_NUMBER")
	assert.False(t, ok)
	_, ok = defs.Tuning.Number("A_BOOL")
	assert.False(t, ok, "booleans are not numeric tuning values")

	assert.Equal(t, "scripts", defs.Meta["source"])
}

func TestParseFarmingDefs_YAML(t *testing.T) {
	t.Parallel()

	raw := `
plants:
  potato:
    nutrient_consumption: [0, 2, 0]
    good_seasons: {winter: true}
mechanics:
  stress:
    num_stressors: 5
tuning:
  FARM_PLANT_SAME_FAMILY_RADIUS: 4
`
	defs, err := ParseFarmingDefs([]byte(raw))
	require.NoError(t, err)

	potato := defs.Plant("potato")
	require.NotNil(t, potato)
	assert.Equal(t, [3]float64{0, 2, 0}, potato.NutrientConsumption)
	assert.True(t, potato.IsGoodSeason("winter"))
	assert.Nil(t, potato.FamilyMinCount)
	assert.Equal(t, 5, defs.Mechanics.Stress.Stressors())
	assert.Equal(t, 4.0, defs.Tuning[TuningFamilyRadius])
	assert.Nil(t, defs.Meta)
}

func TestParseFarmingDefs_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseFarmingDefs([]byte("plants: [unclosed"))
	assert.Error(t, err)
}

func TestNormalizeFarmingDefs_Empty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"nil", nil},
		{"empty", map[string]any{}},
		{"wrong types", map[string]any{"plants": []any{1, 2}, "tuning": "x", "mechanics": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := NormalizeFarmingDefs(tt.doc)
			require.NotNil(t, defs)
			assert.Empty(t, defs.Plants)
			assert.Empty(t, defs.Tuning)
			assert.Equal(t, 0, defs.Mechanics.Stress.Stressors())
			assert.Nil(t, defs.Mechanics.Growth.GoodSeasonMultiplier)
		})
	}
}

func TestFarmingDefs_NilSafe(t *testing.T) {
	t.Parallel()

	var defs *FarmingDefs
	assert.Nil(t, defs.PlantIDs())
	assert.Nil(t, defs.Plant("carrot"))
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"yes", true},
		{0.0, false},
		{1, true},
		{map[string]any{}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truthy(tt.in), "truthy(%#v)", tt.in)
	}
}

func TestLoadFarmingDefs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "farming_defs.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefsJSON), 0o644))

	defs, err := LoadFarmingDefs(path)
	require.NoError(t, err)
	assert.Len(t, defs.Plants, 2)

	_, err = LoadFarmingDefs(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
