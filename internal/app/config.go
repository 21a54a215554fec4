package app

import (
	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// Config holds the complete application configuration, loadable from
// environment variables (MINISTORE_ prefix), flags, or YAML config files.
type Config struct {
	Manager   ManagerConfig `yaml:"manager"`
	SeedFiles []string      `yaml:"seed_files" usage:"JSON seed files (optionally .gz) with the initial products" flag:"seed-files"`
	Catalog   CatalogConfig `yaml:"catalog"`
}

// ManagerConfig holds the credentials that unlock the manager menu.
type ManagerConfig struct {
	Username string `yaml:"username" default:"admin" validate:"required" usage:"Manager login name"`
	Password string `yaml:"password" default:"1234"  validate:"required" usage:"Manager password"`
}

// CatalogConfig sizes the catalog name filter.
type CatalogConfig struct {
	BloomCapacity uint    `yaml:"bloom_capacity" default:"1024" validate:"gt=0"       usage:"Expected number of products" flag:"bloom-capacity"`
	BloomFPR      float64 `yaml:"bloom_fpr"      default:"0.01" validate:"gt=0,lt=1" usage:"Name filter false positive rate" flag:"bloom-fpr"`
}

// LoadConfig loads configuration from environment variables, flags and YAML
// config files, then validates it.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "MINISTORE",
		Files:     []string{"config.yaml", "/etc/ministore/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against its validate tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
