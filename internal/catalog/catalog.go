package catalog

import (
	"fmt"
	"sort"
)

// Catalog is the immutable set of movements and microdose definitions.
// It is built once and passed explicitly to the engine and progression
// code; there is no package-level singleton.
type Catalog struct {
	Movements   map[string]Movement
	Definitions map[string]Definition
}

// Staged ladder variant names for the burpee family.
const (
	StageFourCount       = "four_count"
	StageSixCount        = "six_count"
	StageSixCountTwoPump = "six_count_two_pump"
	StageSeal            = "seal"
)

// Default builds the built-in catalog. Callers needing an alternate catalog
// (tests, mostly) construct a Catalog literal instead.
func Default() *Catalog {
	movements := map[string]Movement{
		"kb_swing_2h": {
			ID:           "kb_swing_2h",
			Name:         "Kettlebell Swing (2-hand)",
			Kind:         KindKettlebellSwing,
			DefaultStyle: NoStyle(),
			Tags:         []string{"vo2", "hinge", "posterior_chain"},
			ReferenceURL: "https://www.youtube.com/watch?v=YSxHifyI6s8",
		},
		"burpee": {
			ID:           "burpee",
			Name:         "Burpee",
			Kind:         KindBurpee,
			DefaultStyle: StagedStyle(StageFourCount),
			Tags:         []string{"vo2", "full_body", "bodyweight"},
			ReferenceURL: "https://www.youtube.com/watch?v=TU8QYVW0gDU",
		},
		"pullup": {
			ID:           "pullup",
			Name:         "Pull-up",
			Kind:         KindPullup,
			DefaultStyle: BandStyle(""),
			Tags:         []string{"gtg", "gtg_ok", "upper_body", "pull"},
			ReferenceURL: "https://www.youtube.com/watch?v=eGo4IYlbE5g",
		},
		"hip_cars": {
			ID:           "hip_cars",
			Name:         "Hip Controlled Articular Rotations (CARs)",
			Kind:         KindMobilityDrill,
			DefaultStyle: NoStyle(),
			Tags:         []string{"mobility", "hip", "gtg_ok"},
			ReferenceURL: "https://www.youtube.com/watch?v=mJRXBZGRzKg",
		},
		"shoulder_cars": {
			ID:           "shoulder_cars",
			Name:         "Shoulder Controlled Articular Rotations (CARs)",
			Kind:         KindMobilityDrill,
			DefaultStyle: NoStyle(),
			Tags:         []string{"mobility", "shoulder", "gtg_ok"},
			ReferenceURL: "https://www.youtube.com/watch?v=f9y1lOJ0v4A",
		},
	}

	definitions := map[string]Definition{
		"emom_kb_swing_5m": {
			ID:                "emom_kb_swing_5m",
			Name:              "5-Min EMOM: KB Swings (2-hand)",
			Category:          CategoryVo2,
			SuggestedDuration: 300,
			Blocks: []Block{{
				MovementID:       "kb_swing_2h",
				Style:            NoStyle(),
				DurationHintSecs: 60,
				Metrics:          []MetricSpec{RepsSpec("reps", 5, 3, 15, 1, true)},
			}},
		},
		"emom_burpee_5m": {
			ID:                "emom_burpee_5m",
			Name:              "5-Min EMOM: Burpees",
			Category:          CategoryVo2,
			SuggestedDuration: 300,
			Blocks: []Block{{
				MovementID:       "burpee",
				Style:            StagedStyle(StageFourCount),
				DurationHintSecs: 60,
				Metrics:          []MetricSpec{RepsSpec("reps", 3, 2, 10, 1, true)},
			}},
		},
		"gtg_pullup_band": {
			ID:                "gtg_pullup_band",
			Name:              "GTG: Banded Pull-ups",
			Category:          CategoryGtg,
			SuggestedDuration: 30,
			GtgFriendly:       true,
			Blocks: []Block{{
				MovementID:       "pullup",
				Style:            BandStyle("red"),
				DurationHintSecs: 30,
				Metrics: []MetricSpec{
					RepsSpec("reps", 3, 1, 8, 1, true),
					BandSpec("band", "red", false),
				},
			}},
		},
		"mobility_hip_cars": {
			ID:                "mobility_hip_cars",
			Name:              "Hip CARs (3 reps each side)",
			Category:          CategoryMobility,
			SuggestedDuration: 120,
			GtgFriendly:       true,
			Blocks: []Block{{
				MovementID:       "hip_cars",
				Style:            NoStyle(),
				DurationHintSecs: 120,
				Metrics:          []MetricSpec{RepsSpec("reps_per_side", 3, 2, 5, 1, false)},
			}},
		},
		"mobility_shoulder_cars": {
			ID:                "mobility_shoulder_cars",
			Name:              "Shoulder CARs (3 reps each side)",
			Category:          CategoryMobility,
			SuggestedDuration: 120,
			GtgFriendly:       true,
			Blocks: []Block{{
				MovementID:       "shoulder_cars",
				Style:            NoStyle(),
				DurationHintSecs: 120,
				Metrics:          []MetricSpec{RepsSpec("reps_per_side", 3, 2, 5, 1, false)},
			}},
		},
	}

	return &Catalog{Movements: movements, Definitions: definitions}
}

// ByCategory returns the definitions in a category, sorted by id ascending
// so selection is deterministic.
func (c *Catalog) ByCategory(cat Category) []Definition {
	var defs []Definition
	for _, d := range c.Definitions {
		if d.Category == cat {
			defs = append(defs, d)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Validate checks the catalog for consistency and returns a list of
// diagnostics, empty when the catalog is consistent. It is pure and
// repeatable; callers decide how to react to a non-empty result.
func (c *Catalog) Validate() []string {
	var diags []string

	for id, m := range c.Movements {
		if id == "" || m.ID == "" {
			diags = append(diags, "movement has empty id")
		}
		if id != m.ID {
			diags = append(diags, fmt.Sprintf("movement key %q does not match movement id %q", id, m.ID))
		}
		if m.Name == "" {
			diags = append(diags, fmt.Sprintf("movement %q has empty name", id))
		}
	}

	for id, d := range c.Definitions {
		if id == "" || d.ID == "" {
			diags = append(diags, "definition has empty id")
		}
		if id != d.ID {
			diags = append(diags, fmt.Sprintf("definition key %q does not match definition id %q", id, d.ID))
		}
		if d.Name == "" {
			diags = append(diags, fmt.Sprintf("definition %q has empty name", id))
		}
		if len(d.Blocks) == 0 {
			diags = append(diags, fmt.Sprintf("definition %q has no blocks", id))
		}

		for _, b := range d.Blocks {
			if _, ok := c.Movements[b.MovementID]; !ok {
				diags = append(diags, fmt.Sprintf("definition %q references unknown movement %q", id, b.MovementID))
			}
			for _, m := range b.Metrics {
				switch m.Type {
				case MetricReps:
					if m.Default < m.Min {
						diags = append(diags, fmt.Sprintf("definition %q: default reps %d < min %d", id, m.Default, m.Min))
					}
					if m.Default > m.Max {
						diags = append(diags, fmt.Sprintf("definition %q: default reps %d > max %d", id, m.Default, m.Max))
					}
					if m.Min > m.Max {
						diags = append(diags, fmt.Sprintf("definition %q: min reps %d > max %d", id, m.Min, m.Max))
					}
				case MetricBand:
					if m.DefaultBand == "" {
						diags = append(diags, fmt.Sprintf("definition %q: band metric %q has empty default", id, m.Key))
					}
				}
			}
		}
	}

	for _, cat := range Categories {
		found := false
		for _, d := range c.Definitions {
			if d.Category == cat {
				found = true
				break
			}
		}
		if !found {
			diags = append(diags, fmt.Sprintf("catalog has no %s definitions", cat))
		}
	}

	return diags
}
