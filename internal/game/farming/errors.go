package farming

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownCrop is returned when a crop id has no definition.
var ErrUnknownCrop = errors.New("unknown crop")

// maxSuggestions caps the "did you mean" list of UnknownCropError.
const maxSuggestions = 3

// UnknownCropError reports a crop id that cannot be simulated.
type UnknownCropError struct {
	// ID is the id as given by the caller.
	ID string
	// Normalized is the id after prefix/suffix stripping.
	Normalized string
	// Suggestions are the closest known ids, nearest first.
	Suggestions []string
}

func (e *UnknownCropError) Error() string {
	msg := fmt.Sprintf("unknown crop %q", e.ID)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Unwrap makes errors.Is(err, ErrUnknownCrop) hold.
func (e *UnknownCropError) Unwrap() error { return ErrUnknownCrop }

func newUnknownCropError(id, normalized string, known []string) *UnknownCropError {
	return &UnknownCropError{
		ID:          id,
		Normalized:  normalized,
		Suggestions: suggestIDs(normalized, known),
	}
}

// suggestIDs ranks known ids by edit distance and keeps the close ones.
func suggestIDs(id string, known []string) []string {
	if id == "" {
		return nil
	}
	type scored struct {
		id   string
		dist int
	}
	limit := max(2, len(id)/3)
	var hits []scored
	for _, k := range known {
		d := levenshtein.ComputeDistance(id, k)
		if d <= limit || strings.HasPrefix(k, id) {
			hits = append(hits, scored{k, d})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].id < hits[j].id
	})
	out := make([]string, 0, min(maxSuggestions, len(hits)))
	for _, h := range hits[:min(maxSuggestions, len(hits))] {
		out = append(out, h.id)
	}
	return out
}
