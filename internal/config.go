package internal

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type RowEncConfig struct {
	AppName string `mapstructure:"app_name"`

	Schema struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"schema"`

	Log struct {
		Level  string `mapstructure:"level"`  // debug | info | warn | error
		Format string `mapstructure:"format"` // text | json
	} `mapstructure:"log"`

	Output struct {
		Format string `mapstructure:"format"` // hex | base64 | raw
		Frame  bool   `mapstructure:"frame"`
	} `mapstructure:"output"`
}

// LoadConfig reads the YAML file at path, if any, over the defaults.
// ROWENC_* environment variables override both, e.g. ROWENC_LOG_LEVEL.
func LoadConfig(path string) (*RowEncConfig, error) {
	v := viper.New()
	v.SetDefault("app_name", "rowenc")
	v.SetDefault("schema.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("output.format", "hex")
	v.SetDefault("output.frame", false)

	v.SetEnvPrefix("ROWENC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg RowEncConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *RowEncConfig) validate() error {
	switch c.Output.Format {
	case "hex", "base64", "raw":
	default:
		return fmt.Errorf("config: output.format %q: want hex, base64 or raw", c.Output.Format)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q: want text or json", c.Log.Format)
	}
	return nil
}
