// Package farming implements the farm plot planner and the crop growth simulator.
//
// Planner flow:
//  1. Crop definitions are normalized into PlantProfile values
//  2. Optional pit geometry is generated (BuildPits) and linked into a SlotGraph
//  3. Every crop subset × count partition is summarized (nutrients, water, family)
//  4. When pits are present, each candidate gets a concrete per-pit layout
//  5. Candidates are ranked by nutrient deficit and the best are returned
//
// The simulator (SimulateFarming) projects growth times, oversized eligibility
// and loot for one crop under a given stress exposure.
package farming

import (
	"sort"
	"strings"

	"github.com/udisondev/farmplan/internal/data"
)

// NutrientVector holds one value per nutrient category.
type NutrientVector [data.NutrientCategoriesCount]float64

// Sum returns the sum over all categories.
func (v NutrientVector) Sum() float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s
}

// Add returns v + o·scale.
func (v NutrientVector) Add(o NutrientVector, scale float64) NutrientVector {
	for i := range v {
		v[i] += o[i] * scale
	}
	return v
}

// PlantProfile is the planner's view of one crop.
type PlantProfile struct {
	ID      string
	Consume NutrientVector
	// Restore marks the categories the crop replenishes on harvest.
	Restore [data.NutrientCategoriesCount]bool
	// DrinkRate is nil when the water draw is unknown.
	DrinkRate   *float64
	GoodSeasons []string
	FamilyMin   int
}

// RestoreCount returns how many categories the crop replenishes.
func (p PlantProfile) RestoreCount() int {
	n := 0
	for _, r := range p.Restore {
		if r {
			n++
		}
	}
	return n
}

// ProfileFilter narrows BuildProfiles output.
type ProfileFilter struct {
	// Season keeps only crops favorable in that season. Empty disables the filter.
	Season string
	// IncludeIDs restricts the result to these ids. Empty disables the filter.
	IncludeIDs []string
	// AllowRandomSeed keeps "random seed" pseudo crops.
	AllowRandomSeed bool
}

// BuildProfiles normalizes crop definitions into profiles keyed by id.
func BuildProfiles(defs *data.FarmingDefs, filter ProfileFilter) map[string]PlantProfile {
	profiles := make(map[string]PlantProfile)
	if defs == nil {
		return profiles
	}

	season := normalizeSeason(filter.Season)
	var include map[string]struct{}
	for _, id := range filter.IncludeIDs {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if include == nil {
			include = make(map[string]struct{}, len(filter.IncludeIDs))
		}
		include[id] = struct{}{}
	}

	for id, plant := range defs.Plants {
		if plant == nil {
			continue
		}
		if !filter.AllowRandomSeed && plant.IsRandomSeed {
			continue
		}
		if include != nil {
			if _, ok := include[id]; !ok {
				continue
			}
		}
		if season != "" && !plant.IsGoodSeason(season) {
			continue
		}
		profiles[id] = buildProfile(id, plant, defs.Tuning)
	}
	return profiles
}

func buildProfile(id string, plant *data.PlantDef, tuning data.Tuning) PlantProfile {
	p := PlantProfile{
		ID:        id,
		Consume:   NutrientVector(plant.NutrientConsumption),
		DrinkRate: plant.DrinkRate,
		FamilyMin: familyMin(plant, tuning),
	}

	if plant.NutrientRestoration != nil {
		p.Restore = *plant.NutrientRestoration
	} else {
		// Replenish what the crop does not consume.
		for i, c := range p.Consume {
			p.Restore[i] = c == 0
		}
	}

	for season, good := range plant.GoodSeasons {
		if good {
			p.GoodSeasons = append(p.GoodSeasons, season)
		}
	}
	sort.Strings(p.GoodSeasons)
	return p
}

func familyMin(plant *data.PlantDef, tuning data.Tuning) int {
	n := 0
	if plant.FamilyMinCount != nil {
		n = *plant.FamilyMinCount
	} else if v, ok := tuning.Number(data.TuningFamilyMin); ok {
		n = int(v)
	}
	return max(0, n)
}

func normalizeSeason(season string) string {
	return strings.ToLower(strings.TrimSpace(season))
}
