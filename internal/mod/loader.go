// Package mod registers externally defined cards, afflictions and stickers into a catalog.
//
// A mods directory is scanned for three kinds of file:
//
//	*.card.json        an action card, optionally with its own treatment
//	*.affliction.json  an affliction and the card that draws it
//	*.stickers.yaml    a bundle of sticker prototypes
//
// Each file is registered on its own. A file that fails to parse or register is
// reported and skipped; the rest of the scan continues.
package mod

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/peterkuimelis/greenhouse/internal/game"
	"github.com/peterkuimelis/greenhouse/internal/log"
	"gopkg.in/yaml.v3"
)

const (
	cardSuffix       = ".card.json"
	afflictionSuffix = ".affliction.json"
	stickersSuffix   = ".stickers.yaml"
)

// Loaded is one registered definition.
type Loaded struct {
	File string
	Kind string // "card", "treatment", "affliction" or "sticker"
	ID   string
}

// Skipped is a file that could not be registered.
type Skipped struct {
	File string
	Err  error
}

// Report lists what a scan registered and what it skipped.
type Report struct {
	Loaded  []Loaded
	Skipped []Skipped
}

// Loader registers mod files into a catalog that has not been frozen yet.
type Loader struct {
	Catalog *game.Catalog
	Logger  log.EventLogger
}

func NewLoader(c *game.Catalog, logger log.EventLogger) *Loader {
	return &Loader{Catalog: c, Logger: logger}
}

// LoadDir scans dir. A missing directory loads nothing.
func (l *Loader) LoadDir(dir string) (Report, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return Report{}, nil
	}
	return l.LoadFS(os.DirFS(dir))
}

// LoadFS scans fsys recursively. Card files go first so afflictions can name the
// treatments they define; within a kind, files load in path order.
func (l *Loader) LoadFS(fsys fs.FS) (Report, error) {
	var report Report
	if l.Catalog.Frozen() {
		return report, fmt.Errorf("load mods: %w", game.ErrCatalogFrozen)
	}

	var cards, afflictions, stickers []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		switch {
		case strings.HasSuffix(name, cardSuffix):
			cards = append(cards, p)
		case strings.HasSuffix(name, afflictionSuffix):
			afflictions = append(afflictions, p)
		case strings.HasSuffix(name, stickersSuffix):
			stickers = append(stickers, p)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("scan mods: %w", err)
	}
	sort.Strings(cards)
	sort.Strings(afflictions)
	sort.Strings(stickers)

	for _, p := range cards {
		l.loadFile(fsys, p, &report, l.loadCard)
	}
	for _, p := range afflictions {
		l.loadFile(fsys, p, &report, l.loadAffliction)
	}
	for _, p := range stickers {
		l.loadFile(fsys, p, &report, l.loadStickers)
	}
	return report, nil
}

type loadFunc func(file string, data []byte) ([]Loaded, error)

func (l *Loader) loadFile(fsys fs.FS, p string, report *Report, load loadFunc) {
	data, err := fs.ReadFile(fsys, p)
	if err == nil {
		var loaded []Loaded
		loaded, err = load(p, data)
		report.Loaded = append(report.Loaded, loaded...)
		for _, ld := range loaded {
			l.log(log.NewModLoadedEvent(p, ld.Kind+" "+ld.ID))
		}
	}
	if err != nil {
		report.Skipped = append(report.Skipped, Skipped{File: p, Err: err})
		l.log(log.NewModSkippedEvent(p, err))
	}
}

func (l *Loader) log(e log.GameEvent) {
	if l.Logger != nil {
		l.Logger.Log(e)
	}
}

// idFromFile derives a type identifier from a file name: "mods/Copper Spray.card.json"
// becomes "copper_spray".
func idFromFile(p, suffix string) string {
	base := path.Base(p)
	base = base[:len(base)-len(suffix)]
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(base)), " ", "_")
}

// --- Cards ---

// CardDef is the contents of a *.card.json file.
type CardDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Value       *int   `json:"value"`
	Prefab      string `json:"prefab"`
	Material    string `json:"material"`
	Weight      int    `json:"weight"`

	// Treatment names an existing treatment. Leave it empty and fill Effectiveness to
	// define a new treatment keyed by the card ID.
	Treatment       string         `json:"treatment"`
	Effectiveness   map[string]int `json:"effectiveness"`
	Efficacy        *int           `json:"efficacy"`
	InfectCureValue int            `json:"infectCureValue"`
	EggCureValue    int            `json:"eggCureValue"`
	Synthetic       bool           `json:"synthetic"`
}

func (l *Loader) loadCard(file string, data []byte) ([]Loaded, error) {
	var def CardDef
	if err := decodeJSON(data, &def); err != nil {
		return nil, err
	}
	id := def.ID
	if id == "" {
		id = idFromFile(file, cardSuffix)
	}
	typeID := id
	if !strings.HasSuffix(typeID, "_card") {
		typeID += "_card"
	}
	treatmentID := strings.TrimSuffix(id, "_card")
	if def.Name == "" {
		return nil, fmt.Errorf("card %q: name is required", typeID)
	}
	if l.Catalog.HasCard(typeID) {
		return nil, fmt.Errorf("card %q: %w", typeID, game.ErrDuplicateType)
	}

	if def.Value != nil && *def.Value < 0 {
		return nil, fmt.Errorf("card %q: value must not be negative, got %d", typeID, *def.Value)
	}
	if def.Weight < 0 {
		return nil, fmt.Errorf("card %q: weight must not be negative, got %d", typeID, def.Weight)
	}

	card := &game.Card{
		TypeID:      typeID,
		Kind:        game.CardAction,
		Name:        def.Name,
		Description: def.Description,
		Value:       def.Value,
		Weight:      def.Weight,
		Prefab:      def.Prefab,
		Material:    def.Material,
	}
	switch {
	case def.Treatment != "" && len(def.Effectiveness) > 0:
		return nil, fmt.Errorf("card %q: set either treatment or effectiveness, not both", typeID)
	case def.Treatment != "":
		t, err := l.Catalog.Treatment(def.Treatment)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", typeID, err)
		}
		card.Treatment = t
		if err := l.Catalog.RegisterCard(card); err != nil {
			return nil, err
		}
		return []Loaded{{File: file, Kind: "card", ID: typeID}}, nil
	}

	card.Treatment = &game.Treatment{
		ID:              treatmentID,
		Name:            def.Name,
		InfectCureValue: def.InfectCureValue,
		EggCureValue:    def.EggCureValue,
		Efficacy:        def.Efficacy,
		Synthetic:       def.Synthetic,
		Overrides:       def.Effectiveness,
	}
	if err := l.Catalog.RegisterTreatmentCard(card); err != nil {
		return nil, err
	}
	return []Loaded{
		{File: file, Kind: "treatment", ID: treatmentID},
		{File: file, Kind: "card", ID: typeID},
	}, nil
}

// --- Afflictions ---

// AfflictionDef is the contents of a *.affliction.json file.
type AfflictionDef struct {
	ID                   string              `json:"id"`
	Name                 string              `json:"name"`
	Description          string              `json:"description"`
	Color                string              `json:"color"`
	Shader               string              `json:"shader"`
	VulnerableTreatments []string            `json:"vulnerableTreatments"`
	Fungal               bool                `json:"fungal"`
	Continuous           bool                `json:"continuous"`
	Intensity            *game.IntensityBand `json:"intensity"`
	Weight               int                 `json:"weight"`
}

func (l *Loader) loadAffliction(file string, data []byte) ([]Loaded, error) {
	var def AfflictionDef
	if err := decodeJSON(data, &def); err != nil {
		return nil, err
	}
	id := def.ID
	if id == "" {
		id = idFromFile(file, afflictionSuffix)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("affliction %q: name is required", id)
	}
	color, err := game.ParseColor(def.Color)
	if err != nil {
		return nil, fmt.Errorf("affliction %q: %w", id, err)
	}
	for _, t := range def.VulnerableTreatments {
		if !l.Catalog.HasTreatment(t) {
			return nil, fmt.Errorf("affliction %q: treatment %q: %w", id, t, game.ErrUnknownType)
		}
	}
	if b := def.Intensity; b != nil {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("affliction %q: %w", id, err)
		}
	}
	cardID := game.AfflictionCardTypeID(id)
	if l.Catalog.HasCard(cardID) {
		return nil, fmt.Errorf("affliction %q: card %q: %w", id, cardID, game.ErrDuplicateType)
	}

	kind := game.AfflictionCustom
	if def.Fungal {
		kind = game.AfflictionFungal
	}
	a := &game.Affliction{
		ID:          id,
		Name:        def.Name,
		Description: def.Description,
		Color:       color,
		Kind:        kind,
		Shader:      def.Shader,
		Vulnerable:  def.VulnerableTreatments,
		Continuous:  def.Continuous || def.Intensity != nil,
		Band:        def.Intensity,
	}
	if err := l.Catalog.RegisterAffliction(a); err != nil {
		return nil, err
	}
	card := &game.Card{
		TypeID:      cardID,
		Kind:        game.CardAffliction,
		Name:        def.Name,
		Description: def.Description,
		Weight:      def.Weight,
		Affliction:  a,
	}
	if err := l.Catalog.RegisterCard(card); err != nil {
		return []Loaded{{File: file, Kind: "affliction", ID: id}}, err
	}
	return []Loaded{
		{File: file, Kind: "affliction", ID: id},
		{File: file, Kind: "card", ID: cardID},
	}, nil
}

// --- Stickers ---

// StickerBundle is the contents of a *.stickers.yaml file.
type StickerBundle struct {
	Stickers []StickerDef `yaml:"stickers"`
}

type StickerDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Effect      string `yaml:"effect"`
	Value       *int   `yaml:"value"`
}

// loadStickers registers every sticker in a bundle. Bad entries are skipped individually
// and reported together.
func (l *Loader) loadStickers(file string, data []byte) ([]Loaded, error) {
	var bundle StickerBundle
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}
	var loaded []Loaded
	var errs []error
	for i, def := range bundle.Stickers {
		if err := l.registerSticker(def); err != nil {
			errs = append(errs, fmt.Errorf("stickers[%d]: %w", i, err))
			continue
		}
		loaded = append(loaded, Loaded{File: file, Kind: "sticker", ID: def.ID})
	}
	return loaded, errors.Join(errs...)
}

func (l *Loader) registerSticker(def StickerDef) error {
	if def.ID == "" || def.Name == "" {
		return fmt.Errorf("sticker needs an id and a name")
	}
	effect, err := game.ParseStickerEffect(def.Effect)
	if err != nil {
		return fmt.Errorf("sticker %q: %w", def.ID, err)
	}
	return l.Catalog.RegisterSticker(&game.Sticker{
		TypeID:      def.ID,
		Name:        def.Name,
		Description: def.Description,
		Effect:      effect,
		Value:       def.Value,
	})
}

// decodeJSON rejects unknown fields so typos in mod files are reported, not ignored.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return nil
}

// BuildCatalog registers the builtin content, loads the mods under dir on top of it and
// freezes the result.
func BuildCatalog(dir string, logger log.EventLogger) (*game.Catalog, Report, error) {
	c := game.NewCatalog()
	if err := game.RegisterBuiltins(c); err != nil {
		return nil, Report{}, err
	}
	report, err := NewLoader(c, logger).LoadDir(dir)
	if err != nil {
		return nil, report, err
	}
	c.Freeze()
	return c, report, nil
}
