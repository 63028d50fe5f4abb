// Package engine selects the next microdose from the catalog, progression
// state and recent history. It is read-only over progression state;
// escalation happens only through the progression package.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/krep/internal/catalog"
	"github.com/sadopc/krep/internal/history"
	"github.com/sadopc/krep/internal/progression"
	"github.com/sadopc/krep/internal/session"
)

var (
	// ErrNoCategoriesAvailable means no category in the catalog holds any
	// definition at all.
	ErrNoCategoriesAvailable = errors.New("no categories with definitions available")
	// ErrNoCandidatesInCategory means the resolved category has no
	// definitions, which indicates a catalog-level inconsistency.
	ErrNoCandidatesInCategory = errors.New("no candidates in category")
)

const (
	// A lower-body strength session within this window overrides category
	// selection toward GTG.
	strengthOverrideWindow = 24 * time.Hour
	// A VO2 session older than this makes VO2 due again.
	vo2Staleness = 4 * time.Hour

	fallbackReps = 3
)

// Context is the engine's per-call input. Recent must be ordered newest
// first and may mix real and shown-but-skipped entries.
type Context struct {
	Now       time.Time
	State     *progression.UserState
	Recent    []history.Entry
	Strength  *session.StrengthSignal
	Equipment []string
}

// Prescription is a selected definition with its computed intensity.
type Prescription struct {
	Definition catalog.Definition
	Reps       int
	Style      catalog.Style
}

// Prescribe picks the next microdose. A non-nil target bypasses category
// determination but still goes through fallback if the target is empty.
func Prescribe(c *catalog.Catalog, ctx Context, target *catalog.Category) (*Prescription, error) {
	var cat catalog.Category
	if target != nil {
		cat = *target
	} else {
		cat = determineCategory(c, ctx)
	}

	cat, err := resolveCategory(c, cat)
	if err != nil {
		return nil, err
	}

	def, err := selectDefinition(c, ctx, cat)
	if err != nil {
		return nil, err
	}

	reps, style := computeIntensity(def, ctx)
	return &Prescription{Definition: def, Reps: reps, Style: style}, nil
}

// determineCategory applies the prescription rules in precedence order:
// recent lower-body strength work, stale VO2, then cycling onward from the
// most recent entry's category.
func determineCategory(c *catalog.Catalog, ctx Context) catalog.Category {
	if sig := ctx.Strength; sig != nil {
		age := ctx.Now.Sub(sig.LastSessionAt)
		if age < strengthOverrideWindow && sig.SessionType == session.StrengthLower {
			return catalog.CategoryGtg
		}
	}

	if last, ok := history.LastByCategory(ctx.Recent, c, catalog.CategoryVo2); ok {
		if ctx.Now.Sub(last.OccurredAt()) > vo2Staleness {
			return catalog.CategoryVo2
		}
	}

	if len(ctx.Recent) > 0 {
		if cat, ok := history.Categorize(c, ctx.Recent[0].DefinitionID()); ok {
			return nextInCycle(cat)
		}
	}
	return catalog.CategoryVo2
}

func nextInCycle(cat catalog.Category) catalog.Category {
	switch cat {
	case catalog.CategoryVo2:
		return catalog.CategoryGtg
	case catalog.CategoryGtg:
		return catalog.CategoryMobility
	default:
		return catalog.CategoryVo2
	}
}

// resolveCategory falls back through the fixed category order when the chosen
// category holds no definitions.
func resolveCategory(c *catalog.Catalog, cat catalog.Category) (catalog.Category, error) {
	if len(c.ByCategory(cat)) > 0 {
		return cat, nil
	}
	for _, alt := range catalog.Categories {
		if len(c.ByCategory(alt)) > 0 {
			return alt, nil
		}
	}
	return "", ErrNoCategoriesAvailable
}

func selectDefinition(c *catalog.Catalog, ctx Context, cat catalog.Category) (catalog.Definition, error) {
	candidates := c.ByCategory(cat)
	if len(candidates) == 0 {
		return catalog.Definition{}, fmt.Errorf("%w: %s", ErrNoCandidatesInCategory, cat)
	}

	switch cat {
	case catalog.CategoryVo2:
		// Avoid repeating the most recently seen VO2 definition when an
		// alternative exists.
		if last, ok := history.LastByCategory(ctx.Recent, c, catalog.CategoryVo2); ok {
			for _, d := range candidates {
				if d.ID != last.DefinitionID() {
					return d, nil
				}
			}
		}
		return candidates[0], nil

	case catalog.CategoryMobility:
		// True rotation keyed by the last shown mobility definition.
		if ctx.State != nil && ctx.State.LastMobilityDefID != "" {
			for i, d := range candidates {
				if d.ID == ctx.State.LastMobilityDefID {
					return candidates[(i+1)%len(candidates)], nil
				}
			}
		}
		return candidates[0], nil

	default:
		return candidates[0], nil
	}
}

// computeIntensity uses the progression state when one exists; otherwise it
// derives defaults from the definition's first block.
func computeIntensity(def catalog.Definition, ctx Context) (int, catalog.Style) {
	if ctx.State != nil {
		if st, ok := ctx.State.Progressions[def.ID]; ok {
			return st.Reps, st.Style
		}
	}

	if len(def.Blocks) == 0 {
		return fallbackReps, catalog.NoStyle()
	}
	block := def.Blocks[0]
	reps := fallbackReps
	for _, m := range block.Metrics {
		if m.Type == catalog.MetricReps {
			reps = m.Default
			break
		}
	}
	return reps, block.Style
}
