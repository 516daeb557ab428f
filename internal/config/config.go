package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/peterkuimelis/greenhouse/internal/game"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "GREENHOUSE_"

// Config is the full set of game and tooling settings.
type Config struct {
	Seed          int64 `yaml:"seed" env:"SEED"`
	HandSize      int   `yaml:"hand_size" env:"HAND_SIZE"`
	TurnsPerRound int   `yaml:"turns_per_round" env:"TURNS_PER_ROUND"`
	PlantSlots    int   `yaml:"plant_slots" env:"PLANT_SLOTS"`

	AfflictionDraw DrawRange `yaml:"affliction_draw" envPrefix:"AFFLICTION_DRAW_"`
	MoldIntensity  Band      `yaml:"mold_intensity" envPrefix:"MOLD_INTENSITY_"`

	DiscoveryMode      bool `yaml:"discovery_mode" env:"DISCOVERY_MODE"`
	PersistDiscoveries bool `yaml:"persist_discoveries" env:"PERSIST_DISCOVERIES"`

	StartingMoney int `yaml:"starting_money" env:"STARTING_MONEY"`
	ShopIncome    int `yaml:"shop_income" env:"SHOP_INCOME"`
	PriceFactor   int `yaml:"price_factor" env:"PRICE_FACTOR"`
	RetainPrice   int `yaml:"retain_price" env:"RETAIN_PRICE"`

	Watchdog time.Duration `yaml:"watchdog" env:"WATCHDOG"`
	Save     SaveConfig    `yaml:"save" envPrefix:"SAVE_"`

	DecksFile string `yaml:"decks_file" env:"DECKS_FILE"`
	Deck      string `yaml:"deck" env:"DECK"`
	ModsDir   string `yaml:"mods_dir" env:"MODS_DIR"`
	SaveDB    string `yaml:"save_db" env:"SAVE_DB"`
	Tutorial  string `yaml:"tutorial" env:"TUTORIAL"`
}

// DrawRange bounds a round-weighted draw: results fall in [Min, MaxExclusive-1].
type DrawRange struct {
	Min          int `yaml:"min" env:"MIN"`
	MaxExclusive int `yaml:"max_exclusive" env:"MAX_EXCLUSIVE"`
}

type Band struct {
	Min float64 `yaml:"min" env:"MIN"`
	Max float64 `yaml:"max" env:"MAX"`
}

type SaveConfig struct {
	MaxBytes int `yaml:"max_bytes" env:"MAX_BYTES"`
}

// Default returns the standard settings.
func Default() Config {
	r := game.DefaultRules()
	return Config{
		HandSize:       r.HandSize,
		TurnsPerRound:  r.TurnsPerRound,
		PlantSlots:     r.PlantSlots,
		AfflictionDraw: DrawRange{Min: r.AfflictionDrawMin, MaxExclusive: r.AfflictionDrawMaxExclusive},
		MoldIntensity:  Band{Min: r.MoldIntensity.Min, Max: r.MoldIntensity.Max},
		DiscoveryMode:  r.DiscoveryMode,
		StartingMoney:  r.StartingMoney,
		ShopIncome:     r.ShopIncome,
		PriceFactor:    r.PriceFactor,
		RetainPrice:    r.RetainPrice,
		Watchdog:       r.Watchdog,
		Save:           SaveConfig{MaxBytes: 1 << 20},
		DecksFile:      "decks.yaml",
		ModsDir:        "mods",
		SaveDB:         "greenhouse.db",
	}
}

// Load reads the YAML file at path over the defaults, then applies environment overrides.
// A missing file is not an error; path "" skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ParseEnv applies GREENHOUSE_* environment variables to target.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.HandSize < 1 {
		errs = append(errs, fmt.Errorf("hand_size must be at least 1, got %d", c.HandSize))
	}
	if c.TurnsPerRound < 1 {
		errs = append(errs, fmt.Errorf("turns_per_round must be at least 1, got %d", c.TurnsPerRound))
	}
	if c.PlantSlots < 1 {
		errs = append(errs, fmt.Errorf("plant_slots must be at least 1, got %d", c.PlantSlots))
	}
	if c.AfflictionDraw.Min < 0 || c.AfflictionDraw.MaxExclusive <= c.AfflictionDraw.Min {
		errs = append(errs, fmt.Errorf("affliction_draw: need 0 <= min < max_exclusive, got %d/%d",
			c.AfflictionDraw.Min, c.AfflictionDraw.MaxExclusive))
	}
	if err := (game.IntensityBand{Min: c.MoldIntensity.Min, Max: c.MoldIntensity.Max}).Validate(); err != nil {
		errs = append(errs, fmt.Errorf("mold_intensity: %w", err))
	}
	if c.Save.MaxBytes < 1 {
		errs = append(errs, fmt.Errorf("save.max_bytes must be positive, got %d", c.Save.MaxBytes))
	}
	if c.Watchdog < 0 {
		errs = append(errs, fmt.Errorf("watchdog must not be negative, got %s", c.Watchdog))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Rules converts the settings into engine rules.
func (c Config) Rules() game.Rules {
	return game.Rules{
		HandSize:                   c.HandSize,
		TurnsPerRound:              c.TurnsPerRound,
		PlantSlots:                 c.PlantSlots,
		AfflictionDrawMin:          c.AfflictionDraw.Min,
		AfflictionDrawMaxExclusive: c.AfflictionDraw.MaxExclusive,
		MoldIntensity:              game.IntensityBand{Min: c.MoldIntensity.Min, Max: c.MoldIntensity.Max},
		DiscoveryMode:              c.DiscoveryMode,
		StartingMoney:              c.StartingMoney,
		ShopIncome:                 c.ShopIncome,
		PriceFactor:                c.PriceFactor,
		RetainPrice:                c.RetainPrice,
		Watchdog:                   c.Watchdog,
	}
}

// LoadTutorial reads a tutorial script from YAML.
func LoadTutorial(path string) (*game.TutorialScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tutorial: %w", err)
	}
	var script game.TutorialScript
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse tutorial %s: %w", path, err)
	}
	return &script, nil
}
