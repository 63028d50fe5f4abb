// Package progression owns per-definition intensity state and the rules for
// escalating it. Upgrades mutate only the caller-owned state map and perform
// no I/O; persistence is the caller's concern.
package progression

import (
	"fmt"
	"time"

	"github.com/sadopc/krep/internal/catalog"
)

// Config holds the tunable progression parameters. An external loader
// supplies it; DefaultConfig covers the no-config case.
type Config struct {
	StagedCeiling int `json:"staged_ceiling"`
	LinearMax     int `json:"linear_max"`
}

func DefaultConfig() Config {
	return Config{StagedCeiling: 10, LinearMax: 15}
}

// State is the progression state for one definition id. Mutated only through
// the upgrade functions in this package.
type State struct {
	Reps           int           `json:"reps"`
	Style          catalog.Style `json:"style"`
	Level          int           `json:"level"`
	LastUpgradedAt *time.Time    `json:"last_upgraded_at,omitempty"`
}

// UserState is the per-user snapshot persisted across runs.
type UserState struct {
	Progressions      map[string]*State `json:"progressions"`
	LastMobilityDefID string            `json:"last_mobility_def_id,omitempty"`
}

// NewUserState returns an empty state with an allocated progression map.
func NewUserState() *UserState {
	return &UserState{Progressions: make(map[string]*State)}
}

// stageStep is one row of the staged-style transition table: the stage to
// move to once the rep ceiling is reached, and the rep base to reset to.
type stageStep struct {
	next      string
	resetBase int
}

var stageTable = map[string]stageStep{
	catalog.StageFourCount:       {catalog.StageSixCount, 6},
	catalog.StageSixCount:        {catalog.StageSixCountTwoPump, 5},
	catalog.StageSixCountTwoPump: {catalog.StageSeal, 4},
}

func touch(st *State) {
	now := time.Now().UTC()
	st.LastUpgradedAt = &now
}

// UpgradeStaged advances a staged-style family. Below the ceiling it adds one
// rep; at the ceiling it moves to the next stage and resets reps to that
// stage's base. The terminal stage is absorbing: reps clamp to the ceiling
// and level keeps incrementing.
func UpgradeStaged(st *State, ceiling int) {
	if st.Reps < ceiling {
		st.Reps++
		st.Level++
		touch(st)
		return
	}

	if st.Style.Kind == catalog.StyleStaged && st.Style.Tag == catalog.StageSeal {
		st.Reps = ceiling
		st.Level++
		touch(st)
		return
	}

	step, ok := stageTable[st.Style.Tag]
	if !ok || st.Style.Kind != catalog.StyleStaged {
		// State style is not on the ladder; restart it at the first stage.
		step = stageStep{catalog.StageFourCount, 3}
	}

	st.Style = catalog.StagedStyle(step.next)
	st.Reps = step.resetBase
	st.Level++
	touch(st)
}

// UpgradeLinear advances a linear-rep family: reps = min(base+level+1, max).
// At max the call is a full no-op; the level counter freezes with the reps.
func UpgradeLinear(st *State, base, max int) {
	if st.Reps >= max {
		return
	}
	st.Reps = base + st.Level + 1
	if st.Reps > max {
		st.Reps = max
	}
	st.Level++
	touch(st)
}

// UpgradeCapped advances a capped-rep family by one rep until max. At max the
// call is a full no-op, level included.
func UpgradeCapped(st *State, max int) {
	if st.Reps >= max {
		return
	}
	st.Reps++
	st.Level++
	touch(st)
}

// Per-family seed values used when a definition gains progression state for
// the first time.
var seeds = map[string]State{
	"emom_burpee_5m":   {Reps: 3, Style: catalog.StagedStyle(catalog.StageFourCount)},
	"emom_kb_swing_5m": {Reps: 5, Style: catalog.NoStyle()},
	"gtg_pullup_band":  {Reps: 3, Style: catalog.NoStyle()},
}

// IncreaseIntensity escalates the progression state for defID, creating it
// from the seed table first if needed. After the call the state map always
// holds an entry for defID. Unknown ids are seeded with generic linear
// defaults and left unchanged otherwise; the returned diagnostics describe
// anything that did not follow a known rule.
func IncreaseIntensity(defID string, us *UserState, cfg Config) []string {
	var diags []string

	if us.Progressions == nil {
		us.Progressions = make(map[string]*State)
	}

	st, ok := us.Progressions[defID]
	if !ok {
		seed, known := seeds[defID]
		if !known {
			seed = State{Reps: 3, Style: catalog.NoStyle()}
			diags = append(diags, fmt.Sprintf("unknown definition %q, seeding generic defaults", defID))
		}
		st = &seed
		us.Progressions[defID] = st
	}

	switch defID {
	case "emom_burpee_5m":
		UpgradeStaged(st, cfg.StagedCeiling)
	case "emom_kb_swing_5m":
		UpgradeLinear(st, 5, cfg.LinearMax)
	case "gtg_pullup_band":
		UpgradeCapped(st, 8)
	default:
		diags = append(diags, fmt.Sprintf("no progression rule for definition %q", defID))
	}

	return diags
}
