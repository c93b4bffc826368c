package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/yumyai/ggutils/logger"
	"github.com/yumyai/ggutils/pkg/antismash"
)

type Log struct {
	LogLevel string `mapstructure:"ggutils_log_level" default:"info"`
	LogFile  string `mapstructure:"ggutils_log_file"`
}

type Antismash struct {
	Executable string `mapstructure:"antismash_executable" default:"antismash"`
	CPUs       int    `mapstructure:"antismash_cpus" default:"4"`
	TempDir    string `mapstructure:"antismash_temp_dir"`
}

// Validate is only called by commands that run antiSMASH.
func (a Antismash) Validate() error {
	if a.CPUs < 1 {
		return fmt.Errorf("invalid ANTISMASH_CPUS %d: must be at least 1", a.CPUs)
	}
	if a.Executable == "" {
		return fmt.Errorf("ANTISMASH_EXECUTABLE must not be empty")
	}
	return nil
}

func (a Antismash) Options() antismash.Options {
	return antismash.Options{
		Executable: a.Executable,
		CPUs:       a.CPUs,
		TempDir:    a.TempDir,
	}
}

type GlobalConfig struct {
	Log       Log       `mapstructure:",squash"`
	Antismash Antismash `mapstructure:",squash"`
}

var config = &GlobalConfig{}

func init() {
	if err := defaults.Set(config); err != nil {
		fmt.Printf("set default err: %+v", err)
		os.Exit(1)
	}
}

func Global() *GlobalConfig {
	return config
}

// Load reads .env files (./.env when none are given), then the environment,
// on top of the defaults. The result also becomes Global().
func Load(envFiles ...string) (*GlobalConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		logger.Debug("No .env found, using local environment")
	}

	conf := &GlobalConfig{}
	if err := defaults.Set(conf); err != nil {
		return nil, fmt.Errorf("set config defaults: %w", err)
	}

	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.AutomaticEnv()
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("read config from environment: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	config = conf
	return conf, nil
}

// Validate checks the settings every command depends on.
func (c *GlobalConfig) Validate() error {
	if _, err := logger.ParseLevel(c.Log.LogLevel); err != nil {
		return fmt.Errorf("invalid GGUTILS_LOG_LEVEL %q: %w", c.Log.LogLevel, err)
	}
	return nil
}
