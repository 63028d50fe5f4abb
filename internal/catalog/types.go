package catalog

// MovementKind classifies a movement.
type MovementKind string

const (
	KindKettlebellSwing MovementKind = "kettlebell_swing"
	KindBurpee          MovementKind = "burpee"
	KindPullup          MovementKind = "pullup"
	KindMobilityDrill   MovementKind = "mobility_drill"
)

// StyleKind discriminates the Style variant.
type StyleKind string

const (
	StyleNone   StyleKind = "none"
	StyleStaged StyleKind = "staged"
	StyleBand   StyleKind = "band"
)

// Style is how a movement is performed. For StyleStaged the Tag names the
// variant on the difficulty ladder (e.g. "four_count"); for StyleBand it
// names the assistance band (e.g. "red"). Tag is empty for StyleNone.
type Style struct {
	Kind StyleKind `json:"kind"`
	Tag  string    `json:"tag,omitempty"`
}

func NoStyle() Style { return Style{Kind: StyleNone} }

func StagedStyle(tag string) Style { return Style{Kind: StyleStaged, Tag: tag} }

func BandStyle(tag string) Style { return Style{Kind: StyleBand, Tag: tag} }

// Movement is a single exercise. Immutable once built into a Catalog.
type Movement struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Kind         MovementKind `json:"kind"`
	DefaultStyle Style        `json:"default_style"`
	Tags         []string     `json:"tags"`
	ReferenceURL string       `json:"reference_url,omitempty"`
}

// MetricType discriminates the MetricSpec variant.
type MetricType string

const (
	MetricReps MetricType = "reps"
	MetricBand MetricType = "band"
)

// MetricSpec describes one tracked metric of a block. Type selects which
// fields are meaningful: Default/Min/Max/Step for reps, DefaultBand for band.
type MetricSpec struct {
	Type         MetricType `json:"type"`
	Key          string     `json:"key"`
	Default      int        `json:"default,omitempty"`
	Min          int        `json:"min,omitempty"`
	Max          int        `json:"max,omitempty"`
	Step         int        `json:"step,omitempty"`
	DefaultBand  string     `json:"default_band,omitempty"`
	Progressable bool       `json:"progressable"`
}

// RepsSpec builds a repetition metric.
func RepsSpec(key string, def, min, max, step int, progressable bool) MetricSpec {
	return MetricSpec{
		Type:         MetricReps,
		Key:          key,
		Default:      def,
		Min:          min,
		Max:          max,
		Step:         step,
		Progressable: progressable,
	}
}

// BandSpec builds an assistance-band metric.
func BandSpec(key, def string, progressable bool) MetricSpec {
	return MetricSpec{
		Type:         MetricBand,
		Key:          key,
		DefaultBand:  def,
		Progressable: progressable,
	}
}

// Block is one work block within a microdose (e.g. one EMOM interval).
type Block struct {
	MovementID       string       `json:"movement_id"`
	Style            Style        `json:"style"`
	DurationHintSecs int          `json:"duration_hint_seconds"`
	Metrics          []MetricSpec `json:"metrics"`
}

// Category is the workout class of a definition.
type Category string

const (
	CategoryVo2      Category = "vo2"
	CategoryGtg      Category = "gtg"
	CategoryMobility Category = "mobility"
)

// Categories is the fixed category order used for round-robin cycling and
// for fallback when a category has no definitions.
var Categories = []Category{CategoryVo2, CategoryGtg, CategoryMobility}

// Definition is a complete microdose workout. Its ID is the durable key for
// progression state and rotation history.
type Definition struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Category          Category `json:"category"`
	SuggestedDuration int      `json:"suggested_duration_seconds"`
	GtgFriendly       bool     `json:"gtg_friendly"`
	Blocks            []Block  `json:"blocks"`
	ReferenceURL      string   `json:"reference_url,omitempty"`
}
