package carnival

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type PresetKind string

const (
	PresetDate     PresetKind = "date"
	PresetRelative PresetKind = "relative"
	PresetPeriod   PresetKind = "period"
	PresetSize     PresetKind = "size"
	PresetStatus   PresetKind = "status"
	PresetTag      PresetKind = "tag"
)

// group returns the filter category a preset belongs to. Presets in the same
// group are ORed; groups are ANDed.
func (k PresetKind) group() string {
	if k == PresetRelative {
		return string(PresetDate)
	}
	return string(k)
}

// Event flags selectable by tag presets.
const (
	TagKids      = "kids"
	TagLGBT      = "lgbt"
	TagPet       = "pet"
	TagRehearsal = "rehearsal"
)

// Preset is a named quick filter token.
type Preset struct {
	Token      string     `yaml:"token" json:"token"`
	Label      string     `yaml:"label" json:"label"`
	Kind       PresetKind `yaml:"kind" json:"kind"`
	Dates      []string   `yaml:"dates,omitempty" json:"dates,omitempty"`
	OffsetDays int        `yaml:"offset_days,omitempty" json:"offset_days,omitempty"`
	Period     string     `yaml:"period,omitempty" json:"period,omitempty"`
	Size       int        `yaml:"size,omitempty" json:"size,omitempty"`
	Statuses   []Status   `yaml:"statuses,omitempty" json:"statuses,omitempty"`
	Tag        string     `yaml:"tag,omitempty" json:"tag,omitempty"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// DefaultPresets are used when no presets file exists. Dates are the 2026
// carnival.
func DefaultPresets() []Preset {
	return []Preset{
		{Token: "hoje", Label: "Hoje", Kind: PresetRelative, OffsetDays: 0},
		{Token: "amanha", Label: "Amanhã", Kind: PresetRelative, OffsetDays: 1},
		{Token: "pre-carnaval", Label: "Pré-Carnaval", Kind: PresetDate, Dates: []string{"2026-02-07", "2026-02-08"}},
		{Token: "sexta", Label: "Sexta (13/02)", Kind: PresetDate, Dates: []string{"2026-02-13"}},
		{Token: "sabado", Label: "Sábado (14/02)", Kind: PresetDate, Dates: []string{"2026-02-14"}},
		{Token: "domingo", Label: "Domingo (15/02)", Kind: PresetDate, Dates: []string{"2026-02-15"}},
		{Token: "segunda", Label: "Segunda (16/02)", Kind: PresetDate, Dates: []string{"2026-02-16"}},
		{Token: "terca", Label: "Terça (17/02)", Kind: PresetDate, Dates: []string{"2026-02-17"}},
		{Token: "quarta-cinzas", Label: "Quarta de Cinzas (18/02)", Kind: PresetDate, Dates: []string{"2026-02-18"}},
		{Token: "manha", Label: "Manhã", Kind: PresetPeriod, Period: PeriodMorning},
		{Token: "tarde", Label: "Tarde", Kind: PresetPeriod, Period: PeriodAfternoon},
		{Token: "noite", Label: "Noite", Kind: PresetPeriod, Period: PeriodNight},
		{Token: "pequeno", Label: "Pequeno", Kind: PresetSize, Size: 1},
		{Token: "medio", Label: "Médio", Kind: PresetSize, Size: 2},
		{Token: "grande", Label: "Grande", Kind: PresetSize, Size: 3},
		{Token: "agora", Label: "Acontecendo agora", Kind: PresetStatus, Statuses: []Status{StatusOngoing}},
		{Token: "em-breve", Label: "Em breve", Kind: PresetStatus, Statuses: []Status{StatusSoon}},
		{Token: "encerrando", Label: "Encerrando", Kind: PresetStatus, Statuses: []Status{StatusEnding}},
		{Token: "infantil", Label: "Infantil", Kind: PresetTag, Tag: TagKids},
		{Token: "lgbt", Label: "LGBT+", Kind: PresetTag, Tag: TagLGBT},
		{Token: "pet", Label: "Pet friendly", Kind: PresetTag, Tag: TagPet},
		{Token: "ensaios", Label: "Ensaios", Kind: PresetTag, Tag: TagRehearsal},
	}
}

type PresetCache struct {
	path    string
	presets map[string]Preset
	order   []string
	mu      sync.RWMutex
}

func NewPresetCache(path string) *PresetCache {
	pc := &PresetCache{path: path}
	pc.replace(DefaultPresets())
	return pc
}

// Run loads the presets file, replacing the defaults. A missing file keeps
// the defaults.
func (pc *PresetCache) Run() error {
	if pc.path == "" {
		return nil
	}

	data, err := os.ReadFile(pc.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("Presets file not found, using defaults", "path", pc.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read presets file: %w", err)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, preset := range file.Presets {
		if err := validatePreset(preset); err != nil {
			return fmt.Errorf("invalid preset at index %d: %w", i, err)
		}
	}

	pc.replace(file.Presets)
	slog.Info("Presets loaded", "path", pc.path, "count", len(file.Presets))

	return nil
}

func (pc *PresetCache) Get(token string) (Preset, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	preset, ok := pc.presets[token]
	return preset, ok
}

// List returns the presets in declaration order.
func (pc *PresetCache) List() []Preset {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	list := make([]Preset, 0, len(pc.order))
	for _, token := range pc.order {
		list = append(list, pc.presets[token])
	}
	return list
}

func (pc *PresetCache) replace(presets []Preset) {
	byToken := make(map[string]Preset, len(presets))
	order := make([]string, 0, len(presets))
	for _, preset := range presets {
		if _, dup := byToken[preset.Token]; !dup {
			order = append(order, preset.Token)
		}
		byToken[preset.Token] = preset
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.presets = byToken
	pc.order = order
}

func validatePreset(preset Preset) error {
	if preset.Token == "" {
		return fmt.Errorf("token is required")
	}

	switch preset.Kind {
	case PresetDate:
		if len(preset.Dates) == 0 {
			return fmt.Errorf("preset %s: at least one date is required", preset.Token)
		}
		for _, date := range preset.Dates {
			if _, err := time.Parse(isoDateLayout, date); err != nil {
				return fmt.Errorf("preset %s: invalid date %q", preset.Token, date)
			}
		}
	case PresetRelative:
		if preset.OffsetDays < -366 || preset.OffsetDays > 366 {
			return fmt.Errorf("preset %s: offset_days out of range", preset.Token)
		}
	case PresetPeriod:
		if _, ok := periodRanges[preset.Period]; !ok {
			return fmt.Errorf("preset %s: unknown period %q", preset.Token, preset.Period)
		}
	case PresetSize:
		if preset.Size < 1 || preset.Size > 3 {
			return fmt.Errorf("preset %s: size must be between 1 and 3", preset.Token)
		}
	case PresetStatus:
		if len(preset.Statuses) == 0 {
			return fmt.Errorf("preset %s: at least one status is required", preset.Token)
		}
		for _, status := range preset.Statuses {
			if _, ok := statusWeights[status]; !ok {
				return fmt.Errorf("preset %s: unknown status %q", preset.Token, status)
			}
		}
	case PresetTag:
		switch preset.Tag {
		case TagKids, TagLGBT, TagPet, TagRehearsal:
		default:
			return fmt.Errorf("preset %s: unknown tag %q", preset.Token, preset.Tag)
		}
	default:
		return fmt.Errorf("preset %s: unknown kind %q", preset.Token, preset.Kind)
	}

	return nil
}
