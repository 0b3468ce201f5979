package farming

import (
	"fmt"
	"strings"

	"github.com/udisondev/farmplan/internal/data"
)

// StageCount is the number of stress-accumulating growth stages.
const StageCount = 4

// Stress tier fallbacks used when mechanics omit (or zero) a threshold.
const (
	defaultThresholdNone     = 1
	defaultThresholdLow      = 6
	defaultThresholdModerate = 11

	defaultGoodSeasonMultiplier = 0.5
)

// Fixed loot names.
const (
	LootSpoiledFood = "spoiled_food"
	LootFruitFly    = "fruitfly"
)

const (
	plantIDPrefix = "farm_plant_"
	plantIDSuffix = "_seeds"
)

// StressTier is the accumulated stress class of a crop.
type StressTier int

const (
	// TierNone allows an oversized harvest.
	TierNone StressTier = iota
	TierLow
	TierModerate
	TierHigh
)

// String returns the tier name.
func (t StressTier) String() string {
	switch t {
	case TierNone:
		return "NONE"
	case TierLow:
		return "LOW"
	case TierModerate:
		return "MODERATE"
	case TierHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// MarshalText encodes the tier as its name.
func (t StressTier) MarshalText() ([]byte, error) {
	if t < TierNone || t > TierHigh {
		return nil, fmt.Errorf("invalid stress tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// SimRequest describes one growth projection.
type SimRequest struct {
	PlantID string
	Season  string
	// StagePoints are stress points per stage (sprout, small, med, full).
	// A shorter list is padded with its last value; empty means no stress.
	StagePoints []int
	LongLife    bool
	NoOversized bool
}

// SimPlant identifies the simulated crop.
type SimPlant struct {
	ID      string `json:"id"`
	Prefab  string `json:"prefab,omitempty"`
	Product string `json:"product,omitempty"`
	Seed    string `json:"seed,omitempty"`
}

// StressSummary is the stress outcome of a simulation.
type StressSummary struct {
	NumStressors int             `json:"num_stressors"`
	StagePoints  [StageCount]int `json:"stage_points"`
	TotalPoints  int             `json:"total_points"`
	FinalState   StressTier      `json:"final_state"`
}

// GrowthTimes are projected stage durations. Nil fields are undefined for the crop.
type GrowthTimes struct {
	Seed           *data.Range `json:"seed"`
	Sprout         *data.Range `json:"sprout"`
	Small          *data.Range `json:"small"`
	Med            *data.Range `json:"med"`
	SpoilFull      *float64    `json:"spoil_full"`
	SpoilOversized *float64    `json:"spoil_oversized"`
	// Regrow is nil for oversized harvests.
	Regrow *data.Range `json:"regrow"`
}

// SimLoot lists harvest and rot drops.
type SimLoot struct {
	Harvest []string `json:"harvest"`
	Rotten  []string `json:"rotten"`
}

// FarmingSimResult is the projection for one crop.
type FarmingSimResult struct {
	Plant            SimPlant      `json:"plant"`
	Season           string        `json:"season"`
	GoodSeason       bool          `json:"good_season"`
	SeasonMultiplier float64       `json:"season_multiplier"`
	Stress           StressSummary `json:"stress"`
	Oversized        bool          `json:"oversized"`
	Times            GrowthTimes   `json:"times"`
	Loot             SimLoot       `json:"loot"`
}

// NormalizePlantID lower-cases id and strips the "farm_plant_" prefix and "_seeds" suffix.
func NormalizePlantID(id string) string {
	pid := strings.ToLower(strings.TrimSpace(id))
	pid = strings.TrimPrefix(pid, plantIDPrefix)
	pid = strings.TrimSuffix(pid, plantIDSuffix)
	return pid
}

// ListPlants returns every crop id of defs, sorted.
func ListPlants(defs *data.FarmingDefs) []string {
	return defs.PlantIDs()
}

// SimulateFarming projects growth of one crop under the given stress.
// Returns an *UnknownCropError when the crop is not defined.
func SimulateFarming(defs *data.FarmingDefs, req SimRequest) (*FarmingSimResult, error) {
	pid := NormalizePlantID(req.PlantID)
	plant := defs.Plant(pid)
	if plant == nil {
		return nil, newUnknownCropError(req.PlantID, pid, defs.PlantIDs())
	}

	stress := defs.Mechanics.Stress
	numStressors := stress.Stressors()
	points := stagePoints(req.StagePoints, numStressors)
	total := 0
	for _, p := range points {
		total += p
	}
	tier := StressTierFor(total, stress.Thresholds)

	season := normalizeSeason(req.Season)
	good := plant.IsGoodSeason(season)
	mult := 1.0
	if good {
		mult = defaultGoodSeasonMultiplier
		if m := defs.Mechanics.Growth.GoodSeasonMultiplier; m != nil {
			mult = *m
		}
	}

	gt := plant.GrowTime
	steps := 1
	if numStressors > 0 {
		steps = numStressors + 1
	}
	times := GrowthTimes{
		Seed:           scaleRange(gt.Seed, mult),
		Sprout:         scaleRange(stageRange(gt.Sprout, points[0], steps), mult),
		Small:          scaleRange(stageRange(gt.Small, points[1], steps), mult),
		Med:            scaleRange(stageRange(gt.Med, points[2], steps), mult),
		SpoilFull:      copyFloat(gt.Full),
		SpoilOversized: copyFloat(gt.Oversized),
	}
	if req.LongLife {
		if lm, ok := defs.Tuning.Number(data.TuningLongLifeMult); ok && lm != 0 {
			times.SpoilFull = scaleFloat(times.SpoilFull, lm)
			times.SpoilOversized = scaleFloat(times.SpoilOversized, lm)
		}
	}

	oversized := tier == TierNone && !req.NoOversized
	if !oversized && gt.Regrow != nil {
		r := *gt.Regrow
		times.Regrow = &r
	}

	return &FarmingSimResult{
		Plant: SimPlant{
			ID:      pid,
			Prefab:  plant.Prefab,
			Product: plant.Product,
			Seed:    plant.Seed,
		},
		Season:           season,
		GoodSeason:       good,
		SeasonMultiplier: mult,
		Stress: StressSummary{
			NumStressors: numStressors,
			StagePoints:  points,
			TotalPoints:  total,
			FinalState:   tier,
		},
		Oversized: oversized,
		Times:     times,
		Loot: SimLoot{
			Harvest: harvestLoot(plant, tier, oversized),
			Rotten:  rottenLoot(plant, oversized),
		},
	}, nil
}

// StressTierFor maps total stress points onto a tier via the NONE/LOW/MODERATE
// upper bounds (inclusive). Missing or zero thresholds use 1/6/11.
func StressTierFor(total int, thresholds map[string]float64) StressTier {
	switch {
	case total <= threshold(thresholds, "NONE", defaultThresholdNone):
		return TierNone
	case total <= threshold(thresholds, "LOW", defaultThresholdLow):
		return TierLow
	case total <= threshold(thresholds, "MODERATE", defaultThresholdModerate):
		return TierModerate
	default:
		return TierHigh
	}
}

func threshold(th map[string]float64, key string, fallback int) int {
	if v := int(th[key]); v != 0 {
		return v
	}
	return fallback
}

// stagePoints clamps points into [0, numStressors] and pads to StageCount.
func stagePoints(in []int, numStressors int) [StageCount]int {
	var out [StageCount]int
	if len(in) == 0 {
		return out
	}
	for i := range out {
		p := in[min(i, len(in)-1)]
		p = max(0, p)
		if numStressors > 0 {
			p = min(p, numStressors)
		}
		out[i] = p
	}
	return out
}

// stageRange picks the step-th of steps equal sub-intervals of bounds.
func stageRange(bounds *data.Range, step, steps int) *data.Range {
	if bounds == nil {
		return nil
	}
	per := (bounds.Max - bounds.Min) / float64(steps)
	return &data.Range{
		Min: bounds.Min + float64(step)*per,
		Max: bounds.Min + float64(step+1)*per,
	}
}

func scaleRange(r *data.Range, factor float64) *data.Range {
	if r == nil {
		return nil
	}
	s := r.Scale(factor)
	return &s
}

func scaleFloat(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	s := *v * factor
	return &s
}

func copyFloat(v *float64) *float64 {
	return scaleFloat(v, 1)
}

func harvestLoot(plant *data.PlantDef, tier StressTier, oversized bool) []string {
	if oversized {
		if plant.ProductOversized == "" {
			return []string{}
		}
		return []string{plant.ProductOversized}
	}
	if plant.Product == "" {
		return []string{}
	}
	loot := []string{plant.Product}
	if plant.Seed == "" {
		return loot
	}
	switch tier {
	case TierNone, TierLow:
		loot = append(loot, plant.Seed, plant.Seed)
	case TierModerate:
		loot = append(loot, plant.Seed)
	}
	return loot
}

func rottenLoot(plant *data.PlantDef, oversized bool) []string {
	if !oversized {
		return []string{LootSpoiledFood}
	}
	if len(plant.LootOversizedRot) > 0 {
		return append([]string(nil), plant.LootOversizedRot...)
	}
	loot := []string{LootSpoiledFood, LootSpoiledFood, LootSpoiledFood}
	if plant.Seed != "" {
		loot = append(loot, plant.Seed)
	}
	return append(loot, LootFruitFly, LootFruitFly)
}
