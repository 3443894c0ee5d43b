package config

// This file binds CLI flags, ATTRITION_* environment variables (optionally
// seeded from a .env file) and an optional YAML config file onto Config.
// Precedence: flag > environment > config file > DefaultConfig.

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. ATTRITION_TEST_SIZE.
const EnvPrefix = "ATTRITION"

// Flag names double as viper keys and YAML config keys.
const (
	keyInput       = "input"
	keyOutput      = "output"
	keySQLite      = "sqlite"
	keyConfig      = "config"
	keySeed        = "seed"
	keyTestSize    = "test-size"
	keyNoStratify  = "no-stratify"
	keyTrees       = "trees"
	keyMaxFeatures = "max-features"
	keyMaxIter     = "max-iter"
	keyTopFeatures = "top-features"
	keyWorkers     = "workers"
	keyBins        = "bins"
	keyVerbose     = "verbose"
	keyColor       = "color"
	keyNoColor     = "no-color"
	keyLog         = "log"
)

// configAliases maps the underscore spellings accepted in config files onto
// the flag keys.
var configAliases = map[string]string{
	"test_size":    keyTestSize,
	"no_stratify":  keyNoStratify,
	"max_features": keyMaxFeatures,
	"max_iter":     keyMaxIter,
	"top_features": keyTopFeatures,
	"no_color":     keyNoColor,
	"log_file":     keyLog,
}

// BindFlags registers the shared flags on fs, using cfg for defaults, and
// binds each of them into v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper, cfg *Config) error {
	defineIOFlags(fs, cfg)
	defineModelFlags(fs, cfg)
	defineDisplayFlags(fs, cfg)

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = v.BindPFlag(f.Name, f)
	})
	return errors.Wrap(err, "bind flags")
}

// defineIOFlags registers -i/--input, -o/--output, --sqlite, -c/--config.
func defineIOFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP(keyInput, "i", cfg.InputPath, "Input CSV (default: dataset/HR_comma_sep.csv, then data/HR_comma_sep.csv)")
	fs.StringP(keyOutput, "o", cfg.OutputDir, "Output directory for xlsx_output/ and image_output/")
	fs.String(keySQLite, cfg.SQLitePath, "Also write every report table to this SQLite database")
	fs.StringP(keyConfig, "c", cfg.ConfigFile, "YAML config file")
}

// defineModelFlags registers the split and classifier settings.
func defineModelFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Int64(keySeed, cfg.Seed, "Random seed for the split and the forest")
	fs.Float64(keyTestSize, cfg.TestSize, "Held-out fraction of rows")
	fs.Bool(keyNoStratify, false, "Split without stratifying on the target")
	fs.Int(keyTrees, cfg.Trees, "Random forest size")
	fs.Int(keyMaxFeatures, cfg.MaxFeatures, "Features tried per split (0 = sqrt of feature count)")
	fs.Int(keyMaxIter, cfg.MaxIter, "Logistic regression iteration cap")
	fs.Int(keyTopFeatures, cfg.TopFeatures, "Feature importances written to the report")
	fs.Int(keyWorkers, cfg.Workers, "Goroutines used to grow trees")
	fs.Int(keyBins, cfg.HistBins, "Histogram bins for the distribution chart")
}

// defineDisplayFlags registers -v/--verbose, --color, --no-color, -l/--log.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolP(keyVerbose, "v", cfg.Verbose, "Verbose output")
	fs.String(keyColor, string(cfg.ColorMode), "Colored logs: auto | always | never")
	fs.Bool(keyNoColor, false, "Same as --color=never")
	fs.StringP(keyLog, "l", cfg.LogFile, "Append logs to file")
}

// Load resolves every setting from v onto cfg. A .env file in the working
// directory is applied to the environment first; a missing .env is not an
// error. The config file, when named, must be readable; it accepts both the
// flag names and their underscore spellings (test_size, log_file, ...).
func Load(v *viper.Viper, cfg *Config) error {
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config file %s", path)
		}
		cfg.ConfigFile = path
	}
	// Registered after the read so values under an alias move to the flag key.
	for alias, key := range configAliases {
		v.RegisterAlias(alias, key)
	}

	cfg.InputPath = v.GetString(keyInput)
	cfg.OutputDir = NormalizeDirArg(v.GetString(keyOutput))
	cfg.SQLitePath = v.GetString(keySQLite)

	cfg.Seed = v.GetInt64(keySeed)
	cfg.TestSize = v.GetFloat64(keyTestSize)
	if v.GetBool(keyNoStratify) {
		cfg.Stratify = false
	}
	cfg.Trees = v.GetInt(keyTrees)
	cfg.MaxFeatures = v.GetInt(keyMaxFeatures)
	cfg.MaxIter = v.GetInt(keyMaxIter)
	cfg.TopFeatures = v.GetInt(keyTopFeatures)
	cfg.Workers = v.GetInt(keyWorkers)
	cfg.HistBins = v.GetInt(keyBins)

	cfg.Verbose = v.GetBool(keyVerbose)
	cfg.ColorMode = ColorMode(strings.ToLower(v.GetString(keyColor)))
	if v.GetBool(keyNoColor) {
		cfg.ColorMode = ColorNever
	}
	cfg.LogFile = v.GetString(keyLog)

	cfg.ResolveInput()
	return nil
}
