// Package config reads the emulator settings from flags, environment and the
// optional config file.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beanboi7/chyp-8/emu/cpu"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/viper"
)

// viper keys
const (
	KeyCPUHz      = "cpu_hz"
	KeyRefresh    = "refresh"
	KeyScale      = "scale"
	KeyShiftQuirk = "shift_quirk"
	KeyStoreQuirk = "store_quirk"
	KeySeed       = "seed"
	KeyBeep       = "beep"
	KeyHeadless   = "headless"
	KeyTrace      = "trace"
	KeyDebug      = "debug"
	KeyQuiet      = "quiet"
	KeyKeyMap     = "keymap"
)

// DefaultKeyMap binds the hex keypad to the left hand side of a QWERTY
// keyboard:
//
//	1 2 3 C     1 2 3 4
//	4 5 6 D     Q W E R
//	7 8 9 E     A S D F
//	A 0 B F     Z X C V
var DefaultKeyMap = map[string]string{
	"1": "1", "2": "2", "3": "3", "c": "4",
	"4": "q", "5": "w", "6": "e", "d": "r",
	"7": "a", "8": "s", "9": "d", "e": "f",
	"a": "z", "0": "x", "b": "c", "f": "v",
}

type Config struct {
	CPUHz      int
	Refresh    int
	Scale      float64
	ShiftQuirk string
	StoreQuirk bool
	Seed       int64
	Beep       string
	Headless   bool
	Trace      bool
	Debug      bool
	Quiet      bool
	KeyMap     map[string]string
}

func init() {
	viper.SetDefault(KeyCPUHz, 700)
	viper.SetDefault(KeyRefresh, 60)
	viper.SetDefault(KeyScale, 10.0)
	viper.SetDefault(KeyShiftQuirk, cpu.ShiftFromVY.String())
	viper.SetDefault(KeyKeyMap, DefaultKeyMap)
}

// Init reads in config file and ENV variables if set. It returns the config
// file used, or an empty string when none was found.
func Init(cfgFile string) (string, error) {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}

		// Search config in home directory with name ".chyp8" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".chyp8")
	}

	viper.SetEnvPrefix("chyp8")
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return viper.ConfigFileUsed(), nil
}

// Load collects the current settings and validates them.
func Load() (Config, error) {
	cfg := Config{
		CPUHz:      viper.GetInt(KeyCPUHz),
		Refresh:    viper.GetInt(KeyRefresh),
		Scale:      viper.GetFloat64(KeyScale),
		ShiftQuirk: viper.GetString(KeyShiftQuirk),
		StoreQuirk: viper.GetBool(KeyStoreQuirk),
		Seed:       viper.GetInt64(KeySeed),
		Beep:       viper.GetString(KeyBeep),
		Headless:   viper.GetBool(KeyHeadless),
		Trace:      viper.GetBool(KeyTrace),
		Debug:      viper.GetBool(KeyDebug),
		Quiet:      viper.GetBool(KeyQuiet),
		KeyMap:     viper.GetStringMapString(KeyKeyMap),
	}

	if cfg.CPUHz <= 0 {
		return cfg, fmt.Errorf("%s must be positive, got %d", KeyCPUHz, cfg.CPUHz)
	}
	if cfg.Refresh <= 0 {
		return cfg, fmt.Errorf("%s must be positive, got %d", KeyRefresh, cfg.Refresh)
	}
	if cfg.Scale <= 0 {
		return cfg, fmt.Errorf("%s must be positive, got %g", KeyScale, cfg.Scale)
	}
	if _, err := cfg.Quirks(); err != nil {
		return cfg, err
	}
	if _, err := cfg.Bindings(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Quirks() (cpu.Quirks, error) {
	shift, err := cpu.ParseShiftQuirk(strings.ToLower(c.ShiftQuirk))
	if err != nil {
		return cpu.Quirks{}, err
	}
	return cpu.Quirks{
		Shift:              shift,
		StoreAdvancesIndex: c.StoreQuirk,
	}, nil
}

// Bindings maps every keypad key to a lower case host key name.
func (c Config) Bindings() (map[uint8]string, error) {
	keymap := c.KeyMap
	if len(keymap) == 0 {
		keymap = DefaultKeyMap
	}

	bindings := make(map[uint8]string, len(keymap))
	for k, host := range keymap {
		key, err := strconv.ParseUint(k, 16, 8)
		if err != nil || key >= cpu.KeyCount {
			return nil, fmt.Errorf("invalid keypad key %q in %s", k, KeyKeyMap)
		}
		bindings[uint8(key)] = strings.ToLower(host)
	}
	return bindings, nil
}

func (c Config) Options() ([]cpu.Option, error) {
	quirks, err := c.Quirks()
	if err != nil {
		return nil, err
	}
	opts := []cpu.Option{cpu.WithQuirks(quirks)}
	if c.Seed != 0 {
		opts = append(opts, cpu.WithSeed(c.Seed))
	}
	return opts, nil
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
