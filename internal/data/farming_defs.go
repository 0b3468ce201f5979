package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tuning keys consumed by the farming planner and simulator.
const (
	TuningFamilyMin         = "FARM_PLANT_SAME_FAMILY_MIN"
	TuningFamilyRadius      = "FARM_PLANT_SAME_FAMILY_RADIUS"
	TuningOvercrowdingMax   = "FARM_PANT_OVERCROWDING_MAX_PLANTS" // sic, matches the game constant
	TuningDrinkLow          = "FARM_PLANT_DRINK_LOW"
	TuningDrinkMed          = "FARM_PLANT_DRINK_MED"
	TuningDrinkHigh         = "FARM_PLANT_DRINK_HIGH"
	TuningLongLifeMult      = "FARM_PLANT_LONG_LIFE_MULT"
	NutrientCategoriesCount = 3
)

// FarmingDefs is the normalized farming input document.
// Produced by NormalizeFarmingDefs; read-only afterwards.
type FarmingDefs struct {
	Plants    map[string]*PlantDef
	Mechanics Mechanics
	Tuning    Tuning
	Meta      map[string]any
}

// Range is a closed [Min, Max] interval, usually seconds.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Scale returns the range multiplied by factor.
func (r Range) Scale(factor float64) Range {
	return Range{Min: r.Min * factor, Max: r.Max * factor}
}

// GrowTime holds per-stage growth durations. Nil means the stage is not defined.
type GrowTime struct {
	Seed      *Range
	Sprout    *Range
	Small     *Range
	Med       *Range
	Regrow    *Range
	Full      *float64
	Oversized *float64
}

// PlantDef is one crop definition.
type PlantDef struct {
	ID     string
	Prefab string

	// NutrientConsumption is zeroed when the source vector has the wrong arity.
	NutrientConsumption [NutrientCategoriesCount]float64
	// NutrientRestoration is nil when the source did not provide exactly three flags.
	NutrientRestoration *[NutrientCategoriesCount]bool
	// DrinkRate is nil when moisture.drink_rate is absent or not numeric.
	DrinkRate *float64

	GoodSeasons    map[string]bool
	FamilyMinCount *int
	IsRandomSeed   bool

	Product          string
	Seed             string
	ProductOversized string
	LootOversizedRot []string

	GrowTime GrowTime
}

// IsGoodSeason reports whether season is favorable for the plant.
func (p *PlantDef) IsGoodSeason(season string) bool {
	if season == "" {
		return false
	}
	return p.GoodSeasons[season]
}

// Mechanics groups stress and growth mechanics.
type Mechanics struct {
	Stress StressMechanics
	Growth GrowthMechanics
}

// StressMechanics describes the growth stressors.
type StressMechanics struct {
	Categories   []string
	NumStressors int
	// Thresholds keyed by tier name (NONE, LOW, MODERATE).
	Thresholds map[string]float64
}

// Stressors returns the configured stressor count, falling back to the number of categories.
func (s StressMechanics) Stressors() int {
	if s.NumStressors > 0 {
		return s.NumStressors
	}
	return len(s.Categories)
}

// GrowthMechanics holds growth multipliers.
type GrowthMechanics struct {
	GoodSeasonMultiplier *float64
}

// Tuning is the numeric subset of the game tuning table.
type Tuning map[string]float64

// Number returns the tuning value and whether it is present.
func (t Tuning) Number(key string) (float64, bool) {
	v, ok := t[key]
	return v, ok
}

// PlantIDs returns all plant ids sorted.
func (d *FarmingDefs) PlantIDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.Plants))
	for id := range d.Plants {
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Plant returns the plant definition by exact id, or nil.
func (d *FarmingDefs) Plant(id string) *PlantDef {
	if d == nil {
		return nil
	}
	return d.Plants[id]
}

// LoadFarmingDefs reads and normalizes a farming defs document (JSON or YAML).
func LoadFarmingDefs(path string) (*FarmingDefs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading farming defs %s: %w", path, err)
	}
	defs, err := ParseFarmingDefs(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing farming defs %s: %w", path, err)
	}
	slog.Debug("farming defs loaded",
		"path", path,
		"plants", len(defs.Plants),
		"tuning", len(defs.Tuning))
	return defs, nil
}

// ParseFarmingDefs decodes a JSON or YAML document and normalizes it.
// Only a syntactically broken document is an error; every missing or
// wrongly typed field degrades to its default.
func ParseFarmingDefs(raw []byte) (*FarmingDefs, error) {
	var doc map[string]any
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed) {
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	} else if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return NormalizeFarmingDefs(doc), nil
}

// NormalizeFarmingDefs converts a loosely typed document into FarmingDefs.
// It never fails.
func NormalizeFarmingDefs(doc map[string]any) *FarmingDefs {
	defs := &FarmingDefs{
		Plants: make(map[string]*PlantDef),
		Tuning: make(Tuning),
	}
	if doc == nil {
		return defs
	}

	for key, val := range asMap(doc["tuning"]) {
		if f, ok := asFloat(val); ok {
			defs.Tuning[key] = f
		}
	}

	for key, val := range asMap(doc["plants"]) {
		row := asMap(val)
		if row == nil {
			continue
		}
		id := strings.TrimSpace(key)
		defs.Plants[id] = normalizePlant(id, row)
	}

	mech := asMap(doc["mechanics"])
	stress := asMap(mech["stress"])
	for _, c := range asSlice(stress["categories"]) {
		defs.Mechanics.Stress.Categories = append(defs.Mechanics.Stress.Categories, fmt.Sprint(c))
	}
	if n, ok := asFloat(stress["num_stressors"]); ok {
		defs.Mechanics.Stress.NumStressors = int(n)
	}
	thresholds := asMap(stress["thresholds"])
	if len(thresholds) > 0 {
		defs.Mechanics.Stress.Thresholds = make(map[string]float64, len(thresholds))
		for k, v := range thresholds {
			if f, ok := asFloat(v); ok {
				defs.Mechanics.Stress.Thresholds[k] = f
			}
		}
	}
	if f, ok := asFloat(asMap(mech["growth"])["good_season_multiplier"]); ok {
		defs.Mechanics.Growth.GoodSeasonMultiplier = &f
	}

	if meta := asMap(doc["meta"]); len(meta) > 0 {
		defs.Meta = meta
	}
	return defs
}

func normalizePlant(id string, row map[string]any) *PlantDef {
	p := &PlantDef{
		ID:               id,
		Prefab:           asString(row["prefab"]),
		Product:          asString(row["product"]),
		Seed:             asString(row["seed"]),
		ProductOversized: asString(row["product_oversized"]),
		IsRandomSeed:     truthy(row["is_randomseed"]),
		GoodSeasons:      make(map[string]bool),
	}

	if vec := asSlice(row["nutrient_consumption"]); len(vec) == NutrientCategoriesCount {
		for i, v := range vec {
			if f, ok := asFloat(v); ok {
				p.NutrientConsumption[i] = f
			}
		}
	}

	if flags := asSlice(row["nutrient_restoration"]); len(flags) == NutrientCategoriesCount {
		var restore [NutrientCategoriesCount]bool
		for i, v := range flags {
			restore[i] = truthy(v)
		}
		p.NutrientRestoration = &restore
	}

	if f, ok := asFloat(asMap(row["moisture"])["drink_rate"]); ok {
		p.DrinkRate = &f
	}

	for season, v := range asMap(row["good_seasons"]) {
		if truthy(v) {
			p.GoodSeasons[season] = true
		}
	}

	if f, ok := asFloat(row["family_min_count"]); ok {
		n := int(f)
		p.FamilyMinCount = &n
	}

	for _, v := range asSlice(row["loot_oversized_rot"]) {
		if s := asString(v); s != "" {
			p.LootOversizedRot = append(p.LootOversizedRot, s)
		}
	}

	gt := asMap(row["grow_time"])
	p.GrowTime = GrowTime{
		Seed:      asRange(gt["seed"]),
		Sprout:    asRange(gt["sprout"]),
		Small:     asRange(gt["small"]),
		Med:       asRange(gt["med"]),
		Regrow:    asRange(gt["regrow"]),
		Full:      asFloatPtr(gt["full"]),
		Oversized: asFloatPtr(gt["oversized"]),
	}
	return p
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	default:
		return nil
	}
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat accepts every numeric kind encoding/json and yaml.v3 produce. Booleans are not numbers.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asFloatPtr(v any) *float64 {
	f, ok := asFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func asRange(v any) *Range {
	pair := asSlice(v)
	if len(pair) != 2 {
		return nil
	}
	lo, ok1 := asFloat(pair[0])
	hi, ok2 := asFloat(pair[1])
	if !ok1 || !ok2 {
		return nil
	}
	return &Range{Min: lo, Max: hi}
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b != ""
	case nil:
		return false
	default:
		if f, ok := asFloat(v); ok {
			return f != 0
		}
		return true
	}
}
