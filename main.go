package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/sadopc/krep/internal/catalog"
	"github.com/sadopc/krep/internal/engine"
	"github.com/sadopc/krep/internal/history"
	"github.com/sadopc/krep/internal/progression"
	"github.com/sadopc/krep/internal/session"
	"github.com/sadopc/krep/internal/store"
	"github.com/sadopc/krep/internal/wal"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#6C63FF"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2EC4B6"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F39C12"))
)

var defaultEquipment = []string{"kettlebell", "pullup_bar", "bands"}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	dataDir := filepath.Join(cfgDir, "krep")

	s, err := store.New(filepath.Join(dataDir, "sessions.db"))
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer s.Close()

	log := wal.NewLog(filepath.Join(dataDir, "sessions.wal"))
	snap := wal.NewSnapshot(filepath.Join(dataDir, "state.json"))

	// Merge any pending log entries into the archive before prescribing.
	if n, diags, err := s.Rollup(log); err != nil {
		warn(fmt.Sprintf("rollup failed: %v", err))
	} else {
		warnAll(diags)
		if n > 0 {
			fmt.Println(labelStyle.Render(fmt.Sprintf("archived %d session(s)", n)))
		}
	}

	cat := catalog.Default()
	if diags := cat.Validate(); len(diags) > 0 {
		warnAll(diags)
	}

	us, diags := snap.Load()
	warnAll(diags)

	now := time.Now().UTC()
	recent, diags, err := history.Recent(log, s, now, history.DefaultWindow)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	warnAll(diags)

	ctx := engine.Context{
		Now:       now,
		State:     us,
		Recent:    recent,
		Strength:  loadStrengthSignal(filepath.Join(dataDir, "strength.json")),
		Equipment: defaultEquipment,
	}

	p, err := engine.Prescribe(cat, ctx, nil)
	if err != nil {
		if errors.Is(err, engine.ErrNoCategoriesAvailable) || errors.Is(err, engine.ErrNoCandidatesInCategory) {
			fmt.Println(warnStyle.Render("no workout available"))
			return nil
		}
		return fmt.Errorf("prescribe: %w", err)
	}

	// A shown mobility prescription advances the rotation even if the user
	// skips it.
	if p.Definition.Category == catalog.CategoryMobility {
		us.LastMobilityDefID = p.Definition.ID
		if err := snap.Save(us); err != nil {
			warn(fmt.Sprintf("save state: %v", err))
		}
	}

	display(p)

	switch promptAction() {
	case actionDone:
		return recordSession(log, p, now)
	case actionHarder:
		if err := recordSession(log, p, now); err != nil {
			return err
		}
		warnAll(progression.IncreaseIntensity(p.Definition.ID, us, progression.DefaultConfig()))
		if err := snap.Save(us); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		fmt.Println(valueStyle.Render("intensity increased for next time"))
		return nil
	default:
		fmt.Println(labelStyle.Render("skipped"))
		return nil
	}
}

// loadStrengthSignal reads the optional signal file the external strength
// tracker drops beside our data. Absent or malformed files are ignored; the
// signal is advisory.
func loadStrengthSignal(path string) *session.StrengthSignal {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		warn(fmt.Sprintf("read strength signal: %v", err))
		return nil
	}

	var raw struct {
		LastSessionAt time.Time `json:"last_session_at"`
		SessionType   string    `json:"session_type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		warn(fmt.Sprintf("strength signal unparsable, ignoring: %v", err))
		return nil
	}
	return &session.StrengthSignal{
		LastSessionAt: raw.LastSessionAt,
		SessionType:   session.ParseStrengthSessionType(raw.SessionType),
	}
}

func display(p *engine.Prescription) {
	fmt.Println()
	fmt.Println(titleStyle.Render(p.Definition.Name))
	fmt.Printf("%s %s\n", labelStyle.Render("category:"), valueStyle.Render(string(p.Definition.Category)))
	fmt.Printf("%s %s\n", labelStyle.Render("duration:"), valueStyle.Render(fmt.Sprintf("%ds", p.Definition.SuggestedDuration)))
	fmt.Printf("%s %s\n", labelStyle.Render("reps:    "), valueStyle.Render(fmt.Sprintf("%d", p.Reps)))
	if p.Style.Kind != catalog.StyleNone {
		fmt.Printf("%s %s\n", labelStyle.Render("style:   "), valueStyle.Render(p.Style.Tag))
	}
	fmt.Println()
}

type userAction int

const (
	actionSkip userAction = iota
	actionDone
	actionHarder
)

func promptAction() userAction {
	fmt.Print("[d]one, [h]arder, [s]kip? ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return actionSkip
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "d", "done":
		return actionDone
	case "h", "harder":
		return actionHarder
	default:
		return actionSkip
	}
}

func recordSession(log *wal.Log, p *engine.Prescription, started time.Time) error {
	completed := time.Now().UTC()
	dur := int(completed.Sub(started).Seconds())

	rec := session.Record{
		ID:              uuid.New(),
		DefinitionID:    p.Definition.ID,
		PerformedAt:     completed,
		StartedAt:       &started,
		CompletedAt:     &completed,
		DurationSeconds: &dur,
		Metrics:         realizedMetrics(p),
	}
	if err := log.Append(rec); err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	fmt.Println(valueStyle.Render("session recorded"))
	return nil
}

// realizedMetrics copies the definition's metric specs with the prescribed
// rep count substituted in.
func realizedMetrics(p *engine.Prescription) []catalog.MetricSpec {
	if len(p.Definition.Blocks) == 0 {
		return nil
	}
	metrics := make([]catalog.MetricSpec, len(p.Definition.Blocks[0].Metrics))
	copy(metrics, p.Definition.Blocks[0].Metrics)
	for i := range metrics {
		if metrics[i].Type == catalog.MetricReps {
			metrics[i].Default = p.Reps
			break
		}
	}
	return metrics
}

func warn(msg string) {
	fmt.Fprintln(os.Stderr, warnStyle.Render("warning: "+msg))
}

func warnAll(diags []string) {
	for _, d := range diags {
		warn(d)
	}
}
