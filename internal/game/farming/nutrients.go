package farming

import (
	"math"
	"sort"

	"github.com/udisondev/farmplan/internal/data"
)

const (
	// CycleMultiplier projects a per-tick nutrient delta onto one growth cycle.
	CycleMultiplier = 4.0
	// MidStageRiskThreshold is the per-cycle net below which a stage transition may fail.
	MidStageRiskThreshold = -100.0

	deficitEpsilon = 1e-9
)

// Deficit classifies the negative categories of a net vector.
type Deficit struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
	Max   float64 `json:"max"`
	// Channels are 1-based category indices.
	Channels []int `json:"channels"`
}

// key returns the ranking tuple prefix (count, total, max).
func (d Deficit) key() [3]float64 {
	return [3]float64{float64(d.Count), d.Total, d.Max}
}

// NutrientSummary is the aggregate balance of a crop mix.
type NutrientSummary struct {
	Consume      NutrientVector `json:"consume"`
	Net          NutrientVector `json:"net"`
	NetCycle     NutrientVector `json:"net_cycle"`
	Deficit      Deficit        `json:"deficit"`
	MidStageRisk bool           `json:"mid_stage_risk"`
}

// TileNutrients is the balance of one macro-tile.
type TileNutrients struct {
	TileX        int            `json:"tile_x"`
	TileY        int            `json:"tile_y"`
	Net          NutrientVector `json:"net"`
	NetCycle     NutrientVector `json:"net_cycle"`
	Deficit      Deficit        `json:"deficit"`
	MidStageRisk bool           `json:"mid_stage_risk"`
}

// WaterSummary describes the watering load of a crop mix.
// Total and Avg are nil when any crop has an unknown drink rate.
// Label is nil when tuning lacks any of the low/med/high thresholds.
type WaterSummary struct {
	Total *float64 `json:"total"`
	Avg   *float64 `json:"avg"`
	Label *string  `json:"label"`
}

// ConsumeTotals returns Σ count·consume per category.
func ConsumeTotals(profiles []PlantProfile, counts []int) NutrientVector {
	var total NutrientVector
	for i, p := range profiles {
		total = total.Add(p.Consume, float64(counts[i]))
	}
	return total
}

// PlantNetDelta returns the per-plant net effect on each category: consumption
// is drained and the consumed sum is returned evenly across restored categories.
// A crop that restores nothing is a pure drain.
func PlantNetDelta(p PlantProfile) NutrientVector {
	var restoreEach float64
	if n := p.RestoreCount(); n > 0 {
		restoreEach = p.Consume.Sum() / float64(n)
	}
	var delta NutrientVector
	for i := range delta {
		delta[i] = -p.Consume[i]
		if p.Restore[i] {
			delta[i] += restoreEach
		}
	}
	return delta
}

// NetDelta returns the count-weighted net effect of a crop mix.
func NetDelta(profiles []PlantProfile, counts []int) NutrientVector {
	var total NutrientVector
	for i, p := range profiles {
		total = total.Add(PlantNetDelta(p), float64(counts[i]))
	}
	return total
}

// CycleNet scales a net vector onto one growth cycle.
func CycleNet(net NutrientVector) NutrientVector {
	var out NutrientVector
	for i, v := range net {
		out[i] = round3(v * CycleMultiplier)
	}
	return out
}

// SummarizeDeficit classifies every category below zero.
func SummarizeDeficit(net NutrientVector) Deficit {
	d := Deficit{Channels: []int{}}
	for i, v := range net {
		if v < -deficitEpsilon {
			d.Count++
			d.Channels = append(d.Channels, i+1)
			d.Total += math.Abs(v)
			d.Max = math.Max(d.Max, math.Abs(v))
		}
	}
	return d
}

// MidStageRisk reports whether any cycle category drops below MidStageRiskThreshold.
func MidStageRisk(netCycle NutrientVector) bool {
	for _, v := range netCycle {
		if v < MidStageRiskThreshold {
			return true
		}
	}
	return false
}

// SummarizeNutrients computes the overall balance of a crop mix.
func SummarizeNutrients(profiles []PlantProfile, counts []int) NutrientSummary {
	raw := NetDelta(profiles, counts)
	cycle := CycleNet(raw)
	return NutrientSummary{
		Consume:      roundVec(ConsumeTotals(profiles, counts)),
		Net:          roundVec(raw),
		NetCycle:     cycle,
		Deficit:      SummarizeDeficit(cycle),
		MidStageRisk: MidStageRisk(cycle),
	}
}

// SummarizeTiles aggregates per-pit net deltas into macro-tiles.
// It returns the worst tile by (count, total, max) with MidStageRisk set when
// any tile is at risk, plus every tile sorted by (tile_x, tile_y).
func SummarizeTiles(pits []Slot, assign []string, netByPlant map[string]NutrientVector) (TileNutrients, []TileNutrients) {
	type tileKey struct{ x, y int }
	acc := make(map[tileKey]NutrientVector)
	for i, pit := range pits {
		if i >= len(assign) || assign[i] == "" {
			continue
		}
		delta, ok := netByPlant[assign[i]]
		if !ok {
			continue
		}
		k := tileKey{pit.TileX, pit.TileY}
		acc[k] = acc[k].Add(delta, 1)
	}

	keys := make([]tileKey, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].x != keys[j].x {
			return keys[i].x < keys[j].x
		}
		return keys[i].y < keys[j].y
	})

	tiles := make([]TileNutrients, 0, len(keys))
	worst := -1
	anyRisk := false
	for _, k := range keys {
		net := roundVec(acc[k])
		cycle := CycleNet(net)
		t := TileNutrients{
			TileX:        k.x,
			TileY:        k.y,
			Net:          net,
			NetCycle:     cycle,
			Deficit:      SummarizeDeficit(cycle),
			MidStageRisk: MidStageRisk(cycle),
		}
		anyRisk = anyRisk || t.MidStageRisk
		tiles = append(tiles, t)
		if worst < 0 || lessKey(tiles[worst].Deficit.key(), t.Deficit.key()) {
			worst = len(tiles) - 1
		}
	}

	if worst < 0 {
		return TileNutrients{Deficit: SummarizeDeficit(NutrientVector{})}, tiles
	}
	summary := tiles[worst]
	summary.MidStageRisk = anyRisk
	return summary, tiles
}

// Water labels, ordered by ascending drink rate.
const (
	WaterLow  = "low"
	WaterMed  = "med"
	WaterHigh = "high"
)

// SummarizeWater computes watering load and its qualitative label.
func SummarizeWater(profiles []PlantProfile, counts []int, tuning data.Tuning) WaterSummary {
	var ws WaterSummary
	total := 0.0
	plants := 0
	for i, p := range profiles {
		if p.DrinkRate == nil {
			return ws
		}
		total += float64(counts[i]) * math.Abs(*p.DrinkRate)
		plants += counts[i]
	}
	if len(profiles) == 0 {
		return ws
	}
	ws.Total = &total
	if plants == 0 {
		return ws
	}
	avg := total / float64(plants)
	ws.Avg = &avg

	low, okLow := tuning.Number(data.TuningDrinkLow)
	med, okMed := tuning.Number(data.TuningDrinkMed)
	high, okHigh := tuning.Number(data.TuningDrinkHigh)
	if !okLow || !okMed || !okHigh {
		return ws
	}
	low, med, high = math.Abs(low), math.Abs(med), math.Abs(high)
	label := WaterHigh
	switch {
	case avg <= (low+med)/2:
		label = WaterLow
	case avg <= (med+high)/2:
		label = WaterMed
	}
	ws.Label = &label
	return ws
}

func lessKey(a, b [3]float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func round3(v float64) float64 {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

func roundVec(v NutrientVector) NutrientVector {
	for i := range v {
		v[i] = round3(v[i])
	}
	return v
}
