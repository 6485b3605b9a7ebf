// Package config loads the dnet tool configuration with viper. Values come
// from, in increasing priority: defaults, an optional YAML file, DNET_*
// environment variables and command line flags.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "DNET"

const (
	OutputText = "text"
	OutputYAML = "yaml"

	LogText = "text"
	LogJSON = "json"
)

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	// Interface is the default network device of device commands.
	Interface string `mapstructure:"interface"`
	Log       Log    `mapstructure:"log"`
	Output    string `mapstructure:"output"`
}

// Flags maps configuration keys to the command line flags that override
// them.
var Flags = map[string]string{
	"interface": "interface",
	"log.level": "log-level",
	"output":    "output",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interface", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", LogText)
	v.SetDefault("output", OutputText)
}

// Load reads the configuration. An empty path skips the file. flags may be
// nil; flags it holds that are named in Flags override the other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	if flags != nil {
		for key, name := range Flags {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "binding flag %s", name)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case LogText, LogJSON:
	default:
		return errors.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	switch c.Output {
	case OutputText, OutputYAML:
	default:
		return errors.Errorf("output: unknown format %q", c.Output)
	}
	return nil
}
