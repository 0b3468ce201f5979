package farming

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/farmplan/internal/data"
)

func threeCropDefs() *data.FarmingDefs {
	defs := complementaryDefs()
	defs.Plants["c"] = &data.PlantDef{
		ID:                  "c",
		NutrientConsumption: [3]float64{0, 0, 2},
		NutrientRestoration: &[3]bool{true, true, false},
		FamilyMinCount:      ptr(1),
		DrinkRate:           ptr(-1.0),
	}
	defs.Plants["rs"] = &data.PlantDef{ID: "rs", IsRandomSeed: true}
	return defs
}

func TestSuggestPlans_Balanced(t *testing.T) {
	t.Parallel()

	plans, err := SuggestPlans(context.Background(), complementaryDefs(), PlanOptions{
		Slots:    4,
		MaxKinds: 2,
	})
	require.NoError(t, err)
	// {a:4}, {b:4} and five splits of {a, b}.
	require.Len(t, plans, 7)

	best := plans[0]
	assert.Equal(t, []string{"a", "b"}, best.Plants)
	assert.Equal(t, map[string]int{"a": 2, "b": 2}, best.Counts)
	assert.Equal(t, "1:1", best.Ratio)
	assert.Equal(t, 4, best.Slots)
	assert.Equal(t, 0, best.Nutrients.Overall.Deficit.Count)
	assert.Equal(t, NutrientVector{}, best.Nutrients.Overall.Net)
	assert.Nil(t, best.Nutrients.Tile)
	assert.Nil(t, best.Layout)
	assert.True(t, best.Family.CountsOK)
	assert.Nil(t, best.Family.LayoutOK)

	for _, p := range plans[1:] {
		assert.Positive(t, p.Nutrients.Overall.Deficit.Count)
	}
}

func TestSuggestPlans_Invariants(t *testing.T) {
	t.Parallel()

	defs := threeCropDefs()
	defs.Tuning[data.TuningFamilyMin] = 2
	defs.Plants["a"].FamilyMinCount = nil

	plans, err := SuggestPlans(context.Background(), defs, PlanOptions{Slots: 6, MaxKinds: 3})
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	profiles := BuildProfiles(defs, ProfileFilter{})
	for i, p := range plans {
		sum := 0
		for _, id := range p.Plants {
			assert.GreaterOrEqual(t, p.Counts[id], profiles[id].FamilyMin, "%v", p.Counts)
			sum += p.Counts[id]
		}
		assert.Equal(t, 6, sum)
		assert.NotContains(t, p.Plants, "rs")
		if i > 0 {
			assert.False(t, p.rankKey().less(plans[i-1].rankKey()), "plans out of order at %d", i)
		}
	}
}

func TestSuggestPlans_TopN(t *testing.T) {
	t.Parallel()

	opts := PlanOptions{Slots: 6, MaxKinds: 3}
	all, err := SuggestPlans(context.Background(), threeCropDefs(), opts)
	require.NoError(t, err)

	opts.TopN = 3
	top, err := SuggestPlans(context.Background(), threeCropDefs(), opts)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, all[:3], top)
}

func TestSuggestPlans_Deterministic(t *testing.T) {
	t.Parallel()

	opts := PlanOptions{
		MaxKinds:  3,
		TileShape: &TileShape{1, 2},
		PitMode:   "8",
	}
	var runs [][]PlantMixPlan
	for _, workers := range []int{1, 2, 8} {
		opts.Workers = workers
		plans, err := SuggestPlans(context.Background(), threeCropDefs(), opts)
		require.NoError(t, err)
		runs = append(runs, plans)
	}
	assert.Equal(t, runs[0], runs[1])
	assert.Equal(t, runs[0], runs[2])
}

func TestSuggestPlans_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		name string
		defs *data.FarmingDefs
		opts PlanOptions
	}{
		{"zero slots", complementaryDefs(), PlanOptions{Slots: 0}},
		{"negative slots", complementaryDefs(), PlanOptions{Slots: -3}},
		{"no crops in season", complementaryDefs(), PlanOptions{Slots: 4, Season: "summer"}},
		{"unknown include", complementaryDefs(), PlanOptions{Slots: 4, IncludeIDs: []string{"zzz"}}},
		{"nil defs", nil, PlanOptions{Slots: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans, err := SuggestPlans(ctx, tt.defs, tt.opts)
			require.NoError(t, err)
			assert.Empty(t, plans)
		})
	}
}

func TestSuggestPlans_MaxKindsAboveCrops(t *testing.T) {
	t.Parallel()

	plans, err := SuggestPlans(context.Background(), complementaryDefs(), PlanOptions{Slots: 2, MaxKinds: 5})
	require.NoError(t, err)
	// {a:2}, {b:2}, and three splits of {a, b}.
	assert.Len(t, plans, 5)
}

func TestSuggestPlans_PitLayout(t *testing.T) {
	t.Parallel()

	plans, err := SuggestPlans(context.Background(), complementaryDefs(), PlanOptions{
		MaxKinds:  2,
		TileShape: &TileShape{1, 1},
		PitMode:   "8",
	})
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	best := plans[0]
	assert.Equal(t, map[string]int{"a": 4, "b": 4}, best.Counts)
	assert.Equal(t, 8, best.Slots)
	require.NotNil(t, best.Nutrients.Tile)
	assert.Equal(t, 0, best.Nutrients.Tile.Deficit.Count)
	assert.Len(t, best.Nutrients.Tiles, 1)
	require.NotNil(t, best.Family.LayoutOK)
	assert.True(t, *best.Family.LayoutOK)

	layout := best.Layout
	require.NotNil(t, layout)
	assert.Equal(t, LayoutModePits, layout.Mode)
	assert.Equal(t, "8", layout.Pattern)
	assert.Equal(t, 8, layout.HolesPerTile)
	assert.Equal(t, &TileShape{1, 1}, layout.Tile)
	require.Len(t, layout.Pits, 8)
	placed := make(map[string]int)
	for _, p := range layout.Pits {
		placed[p.Plant]++
	}
	assert.Equal(t, best.Counts, placed)
	assert.Contains(t, []string{"row", "col", "cluster"}, layout.Strategy)
}

func TestSuggestPlans_FixedLayout(t *testing.T) {
	t.Parallel()

	defs := &data.FarmingDefs{
		Plants: map[string]*data.PlantDef{
			"big":   {ID: "big", NutrientConsumption: [3]float64{1, 0, 0}, NutrientRestoration: &[3]bool{false, true, false}},
			"small": {ID: "small", NutrientConsumption: [3]float64{0, 2, 0}, NutrientRestoration: &[3]bool{true, false, false}},
		},
	}
	plans, err := SuggestPlans(context.Background(), defs, PlanOptions{
		MaxKinds:          2,
		TileShape:         &TileShape{1, 2},
		PitMode:           "9",
		PreferFixedLayout: true,
	})
	require.NoError(t, err)

	var found bool
	for _, p := range plans {
		if p.Counts["big"] == 12 && p.Counts["small"] == 6 {
			found = true
			assert.Equal(t, 0, p.Nutrients.Overall.Deficit.Count)
			require.NotNil(t, p.Layout)
			assert.Equal(t, "fixed_363", p.Layout.Strategy)
			assert.Len(t, p.Nutrients.Tiles, 2)
		}
	}
	assert.True(t, found, "12/6 split not enumerated")
}

func TestSuggestPlans_ExplicitPits(t *testing.T) {
	t.Parallel()

	pits := []Slot{
		{X: 0, Y: 0, Index: 0},
		{X: 0.25, Y: 0, Index: 1},
		{X: 0.5, Y: 0, Index: 2},
		{X: 0.75, Y: 0, Index: 3},
	}
	plans, err := SuggestPlans(context.Background(), complementaryDefs(), PlanOptions{
		Slots:    100,
		MaxKinds: 2,
		Pits:     pits,
	})
	require.NoError(t, err)
	require.NotEmpty(t, plans)
	assert.Equal(t, 4, plans[0].Slots, "pit count overrides slots")
	require.NotNil(t, plans[0].Layout)
	assert.Equal(t, &TileShape{1, 1}, plans[0].Layout.Tile)
}

func TestSuggestPlans_GridLayout(t *testing.T) {
	t.Parallel()

	defs := complementaryDefs()
	defs.Tuning[data.TuningOvercrowdingMax] = 4
	plans, err := SuggestPlans(context.Background(), defs, PlanOptions{
		Slots:     6,
		MaxKinds:  2,
		Grid:      &GridSize{3, 2},
		TileGroup: &GridSize{2, 2},
	})
	require.NoError(t, err)
	require.NotEmpty(t, plans)

	best := plans[0]
	assert.Equal(t, map[string]int{"a": 3, "b": 3}, best.Counts)
	require.NotNil(t, best.Layout)
	assert.Equal(t, LayoutModeGrid, best.Layout.Mode)
	assert.Equal(t, [][]string{{"a", "a", "a"}, {"b", "b", "b"}}, best.Layout.Rows)
	assert.Equal(t, map[string]int{"a": 3, "b": 3}, best.Family.LargestCluster)
	require.NotNil(t, best.OvercrowdingOK)
	assert.True(t, *best.OvercrowdingOK)
}

func TestSuggestPlans_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := SuggestPlans(ctx, complementaryDefs(), PlanOptions{Slots: 4, MaxKinds: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSuggestPlans_Water(t *testing.T) {
	t.Parallel()

	defs := threeCropDefs()
	defs.Tuning[data.TuningDrinkLow] = 1
	defs.Tuning[data.TuningDrinkMed] = 2
	defs.Tuning[data.TuningDrinkHigh] = 3

	plans, err := SuggestPlans(context.Background(), defs, PlanOptions{
		Slots:      3,
		MaxKinds:   1,
		IncludeIDs: []string{"c"},
	})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	w := plans[0].Water
	require.NotNil(t, w.Total)
	assert.Equal(t, 3.0, *w.Total)
	require.NotNil(t, w.Label)
	assert.Equal(t, WaterLow, *w.Label)
}

func TestRatioLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		counts []int
		want   string
	}{
		{[]int{6, 12}, "1:2"},
		{[]int{4}, "1"},
		{[]int{0, 4}, "0:1"},
		{[]int{3, 5}, "3:5"},
		{[]int{4, 6, 8}, "2:3:4"},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RatioLabel(tt.counts), "%v", tt.counts)
	}
}
