package farming

import "github.com/udisondev/farmplan/internal/data"

func ptr[T any](v T) *T { return &v }

// complementaryDefs returns two crops whose restoration exactly offsets the
// other's consumption at equal counts.
func complementaryDefs() *data.FarmingDefs {
	return &data.FarmingDefs{
		Plants: map[string]*data.PlantDef{
			"a": {
				ID:                  "a",
				NutrientConsumption: [3]float64{1, 0, 0},
				NutrientRestoration: &[3]bool{false, true, false},
				FamilyMinCount:      ptr(0),
			},
			"b": {
				ID:                  "b",
				NutrientConsumption: [3]float64{0, 1, 0},
				NutrientRestoration: &[3]bool{true, false, false},
				FamilyMinCount:      ptr(0),
			},
		},
		Tuning: data.Tuning{},
	}
}
