package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/booketlist.yaml"

	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
	EnvironmentTest        = "test"
)

// Config holds every setting the services read at startup. Values are resolved
// from struct defaults, then the YAML config file, then environment variables.
type Config struct {
	CORSOrigins               []string      `koanf:"cors_origins" default:"[\"*\"]"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	Environment               string        `koanf:"environment" default:"development"`
	JWTSecret                 string        `koanf:"jwt_secret" required:"server"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"5000"`
	TokenExpiry               time.Duration `koanf:"token_expiry" default:"168h"`
}

// New loads the configuration for the API server. A .env file in the working
// directory is read into the process environment first, if present.
func New() (*Config, error) {
	return load(true)
}

// NewForCLI loads the configuration for command line tools that only touch
// the database. Settings tagged required:"server" may be left unset.
func NewForCLI() (*Config, error) {
	return load(false)
}

func load(server bool) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.WithStack(err)
	}

	known := knownKeys()
	err := k.Load(env.ProviderWithValue("", ".", func(s, v string) (string, interface{}) {
		key := strings.ToLower(s)
		kind, ok := known[key]
		if !ok {
			return "", nil
		}
		if kind == reflect.Slice {
			return key, splitList(v)
		}
		return key, v
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validateRequired(cfg, server); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config pointing at an in-memory database.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.Environment = EnvironmentTest
	cfg.JWTSecret = "test-secret"
	cfg.ServerHost = "127.0.0.1"
	return cfg
}

// IsTest reports whether test-only routes should be mounted.
func (cfg *Config) IsTest() bool {
	return cfg.Environment == EnvironmentTest
}

// knownKeys maps each config key to the kind of its field so that env values
// for list settings can be split.
func knownKeys() map[string]reflect.Kind {
	keys := map[string]reflect.Kind{}
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		keys[keyFor(t.Field(i))] = t.Field(i).Type.Kind()
	}
	return keys
}

func splitList(v string) []string {
	list := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func keyFor(f reflect.StructField) string {
	return f.Tag.Get("koanf")
}

// validateRequired checks fields tagged required:"true", and also those tagged
// required:"server" when server is set.
func validateRequired(cfg *Config, server bool) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		switch f.Tag.Get("required") {
		case "true":
		case "server":
			if !server {
				continue
			}
		default:
			continue
		}
		if v.Field(i).IsZero() {
			key := keyFor(f)
			return errors.Errorf("missing required config: %s (%s)", strings.ToUpper(key), key)
		}
	}
	return nil
}
