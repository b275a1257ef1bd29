package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// Sources lists the optional inputs of Load. Later sources win: defaults,
// then File, then EnvFile, then the process environment, then Overrides.
type Sources struct {
	// File is a YAML configuration file.
	File string
	// EnvFile is a dotenv file holding DASHSCHEMA_ variables.
	EnvFile string
	// Overrides maps dotted keys such as "server.port" to values, typically
	// from command line flags.
	Overrides map[string]any
}

// Load builds the configuration from src and validates it.
func Load(src Sources) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if src.File != "" {
		if err := loadYAML(k, src.File); err != nil {
			return nil, err
		}
	}
	if src.EnvFile != "" {
		vars, err := godotenv.Read(src.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", src.EnvFile, err)
		}
		for name, value := range vars {
			key, v := transformEnv(name, value)
			if key == "" {
				continue
			}
			if err := k.Set(key, v); err != nil {
				return nil, fmt.Errorf("failed to set %s from env file: %w", key, err)
			}
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	for key, v := range src.Overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("failed to set override %s: %w", key, err)
		}
	}
	return unmarshalAndValidate(k)
}

func loadYAML(k *koanf.Koanf, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := k.Load(rawMap(m), nil); err != nil {
		return fmt.Errorf("failed to apply config file %s: %w", path, err)
	}
	return nil
}

// transformEnv maps DASHSCHEMA_SERVER_READ_TIMEOUT to server.read_timeout.
// Variables without the prefix or without a section are dropped.
func transformEnv(name, value string) (string, any) {
	rest, ok := strings.CutPrefix(name, EnvPrefix)
	if !ok {
		return "", nil
	}
	parts := strings.FieldsFunc(strings.ToLower(rest), func(r rune) bool { return r == '_' })
	if len(parts) < 2 {
		return "", nil
	}
	return parts[0] + "." + strings.Join(parts[1:], "_"), value
}

func unmarshalAndValidate(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// rawMap is a koanf.Provider adapter for map[string]any data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
