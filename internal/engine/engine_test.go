package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/krep/internal/catalog"
	"github.com/sadopc/krep/internal/history"
	"github.com/sadopc/krep/internal/progression"
	"github.com/sadopc/krep/internal/session"
)

func testContext() Context {
	return Context{
		Now:   time.Now().UTC(),
		State: progression.NewUserState(),
	}
}

func realEntry(defID string, age time.Duration, now time.Time) history.Entry {
	return history.Real{Record: session.Record{
		ID:           uuid.New(),
		DefinitionID: defID,
		PerformedAt:  now.Add(-age),
	}}
}

func TestPrescribeVo2WhenNoHistory(t *testing.T) {
	p, err := Prescribe(catalog.Default(), testContext(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.Category != catalog.CategoryVo2 {
		t.Fatalf("empty history should prescribe vo2, got %s", p.Definition.Category)
	}
}

func TestStrengthOverridePrescribesGtg(t *testing.T) {
	ctx := testContext()
	ctx.Strength = &session.StrengthSignal{
		LastSessionAt: ctx.Now.Add(-12 * time.Hour),
		SessionType:   session.StrengthLower,
	}
	// Even with a freshly stale VO2 session in history, the strength
	// override wins.
	ctx.Recent = []history.Entry{realEntry("emom_kb_swing_5m", 26*time.Hour, ctx.Now)}

	p, err := Prescribe(catalog.Default(), ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.Category != catalog.CategoryGtg {
		t.Fatalf("expected gtg, got %s", p.Definition.Category)
	}
}

func TestStaleStrengthSignalIgnored(t *testing.T) {
	ctx := testContext()
	ctx.Strength = &session.StrengthSignal{
		LastSessionAt: ctx.Now.Add(-30 * time.Hour),
		SessionType:   session.StrengthLower,
	}

	p, err := Prescribe(catalog.Default(), ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.Category != catalog.CategoryVo2 {
		t.Fatalf("signal older than 24h should not override, got %s", p.Definition.Category)
	}
}

func TestUpperStrengthSignalDoesNotOverride(t *testing.T) {
	ctx := testContext()
	ctx.Strength = &session.StrengthSignal{
		LastSessionAt: ctx.Now.Add(-2 * time.Hour),
		SessionType:   session.StrengthUpper,
	}

	p, err := Prescribe(catalog.Default(), ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.Category != catalog.CategoryVo2 {
		t.Fatalf("upper-body work should not force gtg, got %s", p.Definition.Category)
	}
}

func TestStaleVo2PrescribesVo2(t *testing.T) {
	ctx := testContext()
	ctx.Recent = []history.Entry{realEntry("emom_kb_swing_5m", 5*time.Hour, ctx.Now)}

	p, err := Prescribe(catalog.Default(), ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.Category != catalog.CategoryVo2 {
		t.Fatalf("vo2 older than 4h should prescribe vo2, got %s", p.Definition.Category)
	}
}

func TestFreshVo2CyclesToNextCategory(t *testing.T) {
	ctx := testContext()
	ctx.Recent = []history.Entry{realEntry("emom_kb_swing_5m", 2*time.Hour, ctx.Now)}

	p, err := Prescribe(catalog.Default(), ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.Category != catalog.CategoryGtg {
		t.Fatalf("fresh vo2 should cycle to gtg, got %s", p.Definition.Category)
	}
}

func TestCycleFromGtgToMobility(t *testing.T) {
	ctx := testContext()
	ctx.Recent = []history.Entry{realEntry("gtg_pullup_band", time.Hour, ctx.Now)}

	p, err := Prescribe(catalog.Default(), ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.Category != catalog.CategoryMobility {
		t.Fatalf("after gtg the cycle continues to mobility, got %s", p.Definition.Category)
	}
}

func TestRespectsTargetCategory(t *testing.T) {
	target := catalog.CategoryMobility
	p, err := Prescribe(catalog.Default(), testContext(), &target)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.Category != catalog.CategoryMobility {
		t.Fatalf("expected mobility, got %s", p.Definition.Category)
	}
}

func TestVo2AvoidsImmediateRepeat(t *testing.T) {
	ctx := testContext()
	ctx.Recent = []history.Entry{realEntry("emom_burpee_5m", 5*time.Hour, ctx.Now)}

	p, err := Prescribe(catalog.Default(), ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.ID == "emom_burpee_5m" {
		t.Fatal("should not repeat the most recent vo2 definition")
	}
	if p.Definition.Category != catalog.CategoryVo2 {
		t.Fatalf("expected vo2, got %s", p.Definition.Category)
	}
}

func TestMobilityRotation(t *testing.T) {
	c := catalog.Default()
	target := catalog.CategoryMobility

	ctx := testContext()
	ctx.State.LastMobilityDefID = "mobility_hip_cars"

	p, err := Prescribe(c, ctx, &target)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.ID != "mobility_shoulder_cars" {
		t.Fatalf("expected rotation to shoulder cars, got %s", p.Definition.ID)
	}

	// Feeding the result back completes the 2-cycle.
	ctx.State.LastMobilityDefID = p.Definition.ID
	p, err = Prescribe(c, ctx, &target)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.ID != "mobility_hip_cars" {
		t.Fatalf("expected rotation back to hip cars, got %s", p.Definition.ID)
	}
}

func TestMobilityRotationUnknownLast(t *testing.T) {
	target := catalog.CategoryMobility
	ctx := testContext()
	ctx.State.LastMobilityDefID = "mobility_retired"

	p, err := Prescribe(catalog.Default(), ctx, &target)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.ID != "mobility_hip_cars" {
		t.Fatalf("unknown last mobility id should pick the first candidate, got %s", p.Definition.ID)
	}
}

func TestSkippedEntryDrivesCycle(t *testing.T) {
	ctx := testContext()
	// The skipped prescription is the newest entry and participates in
	// cycling, even though it was never persisted.
	ctx.Recent = []history.Entry{
		history.Skipped{DefID: "gtg_pullup_band", ShownAt: ctx.Now.Add(-30 * time.Minute)},
		realEntry("emom_kb_swing_5m", 2*time.Hour, ctx.Now),
	}

	p, err := Prescribe(catalog.Default(), ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.Category != catalog.CategoryMobility {
		t.Fatalf("skipped gtg should cycle to mobility, got %s", p.Definition.Category)
	}
}

func TestEmptyTargetFallsBack(t *testing.T) {
	c := &catalog.Catalog{
		Movements: map[string]catalog.Movement{
			"m": {ID: "m", Name: "M", Kind: catalog.KindBurpee, DefaultStyle: catalog.NoStyle()},
		},
		Definitions: map[string]catalog.Definition{
			"emom_only": {
				ID: "emom_only", Name: "Only", Category: catalog.CategoryVo2,
				Blocks: []catalog.Block{{MovementID: "m", Style: catalog.NoStyle()}},
			},
		},
	}

	target := catalog.CategoryMobility
	p, err := Prescribe(c, testContext(), &target)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.ID != "emom_only" {
		t.Fatalf("empty category should fall back to the first populated one, got %s", p.Definition.ID)
	}
}

func TestNoCategoriesAvailable(t *testing.T) {
	c := &catalog.Catalog{
		Movements:   map[string]catalog.Movement{},
		Definitions: map[string]catalog.Definition{},
	}

	_, err := Prescribe(c, testContext(), nil)
	if !errors.Is(err, ErrNoCategoriesAvailable) {
		t.Fatalf("expected ErrNoCategoriesAvailable, got %v", err)
	}
}

func TestComputeIntensityWithProgression(t *testing.T) {
	ctx := testContext()
	ctx.State.Progressions["emom_burpee_5m"] = &progression.State{
		Reps:  7,
		Style: catalog.StagedStyle(catalog.StageSixCount),
		Level: 10,
	}
	ctx.Recent = []history.Entry{realEntry("emom_kb_swing_5m", 5*time.Hour, ctx.Now)}

	p, err := Prescribe(catalog.Default(), ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if p.Definition.ID != "emom_burpee_5m" {
		t.Fatalf("expected burpee after kb swing, got %s", p.Definition.ID)
	}
	if p.Reps != 7 || p.Style.Tag != catalog.StageSixCount {
		t.Fatalf("progression state should drive intensity, got reps=%d style=%s", p.Reps, p.Style.Tag)
	}
}

func TestComputeIntensityWithoutProgression(t *testing.T) {
	target := catalog.CategoryVo2
	ctx := testContext()
	ctx.Recent = []history.Entry{realEntry("emom_kb_swing_5m", 5*time.Hour, ctx.Now)}

	p, err := Prescribe(catalog.Default(), ctx, &target)
	if err != nil {
		t.Fatal(err)
	}
	// Falls back to the definition's first block defaults.
	if p.Definition.ID != "emom_burpee_5m" {
		t.Fatalf("expected burpee, got %s", p.Definition.ID)
	}
	if p.Reps != 3 {
		t.Fatalf("expected default reps 3, got %d", p.Reps)
	}
	if p.Style.Tag != catalog.StageFourCount {
		t.Fatalf("expected block style four_count, got %s", p.Style.Tag)
	}
}

func TestPrescribeDoesNotMutateState(t *testing.T) {
	ctx := testContext()
	ctx.State.Progressions["emom_kb_swing_5m"] = &progression.State{Reps: 9, Style: catalog.NoStyle(), Level: 4}

	if _, err := Prescribe(catalog.Default(), ctx, nil); err != nil {
		t.Fatal(err)
	}

	st := ctx.State.Progressions["emom_kb_swing_5m"]
	if st.Reps != 9 || st.Level != 4 {
		t.Fatal("engine must be read-only over progression state")
	}
	if len(ctx.State.Progressions) != 1 {
		t.Fatal("engine must not create progression entries")
	}
}
