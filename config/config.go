package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath         = "."
	defaultTokenType    = "bearer"
	defaultTokenExpires = 24
	defaultHTTPPort     = 8000
)

// dotenvFiles are loaded into the process environment before config is read.
// Variables already present in the environment win.
var dotenvFiles = []string{".env.backend", ".env"}

// envAliases maps flat environment names onto config paths that the
// segment matching in canonicalizeEnvKey cannot reach.
var envAliases = map[string]string{
	"SECRET_KEY":      "auth.secretKey",
	"TOKEN_ALGORITHM": "auth.tokenAlgorithm",
	"TOKEN_EXPIRES":   "auth.tokenExpires",
	"TOKEN_TYPE":      "auth.tokenType",
}

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP HTTPConfig `json:"http" yaml:"http"`

	Database *DatabaseConfig `json:"database" yaml:"database" validate:"required"`

	Auth *AuthConfig `json:"auth" yaml:"auth" validate:"required"`

	// Celery configures the task broker. Optional; without a broker URL no
	// tasks are published.
	Celery *CeleryConfig `json:"celery" yaml:"celery"`
}

type HTTPConfig struct {
	Port     int `json:"port" yaml:"port"`
	Timeouts struct {
		ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
		ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
		WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
		IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
	} `json:"timeouts" yaml:"timeouts"`
}

// DatabaseConfig defines the relational store connection.
type DatabaseConfig struct {
	URL             string        `json:"url" yaml:"url" validate:"required"`
	Echo            bool          `json:"echo" yaml:"echo"`
	Replicas        []string      `json:"replicas" yaml:"replicas"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
}

// AuthConfig defines authentication-related configuration
type AuthConfig struct {
	SecretKey      string `json:"secretKey" yaml:"secretKey" validate:"required"`
	TokenAlgorithm string `json:"tokenAlgorithm" yaml:"tokenAlgorithm" validate:"required"`
	TokenExpires   int    `json:"tokenExpires" yaml:"tokenExpires"` // hours
	TokenType      string `json:"tokenType" yaml:"tokenType"`
	BcryptCost     int    `json:"bcryptCost" yaml:"bcryptCost"`
}

// CeleryConfig names the task namespace and the redis endpoints used as
// broker and result backend.
type CeleryConfig struct {
	AppName    string `json:"appName" yaml:"appName"`
	BrokerURL  string `json:"brokerUrl" yaml:"brokerUrl"`
	BackendURL string `json:"backendUrl" yaml:"backendUrl"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
	// File additionally writes every record, at debug level, to this path.
	File string `json:"file" yaml:"file"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			if filepath.IsAbs(path) {
				searchPaths = append(searchPaths, path)

				continue
			}
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Only variables that land on a known top-level section are taken, which
	// keeps PATH, HOME and friends out of the tree.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			if alias, ok := envAliases[strings.ToUpper(k)]; ok {
				return alias, v
			}

			key := canonicalizeEnvKey(k, existingConfigMap)
			if !isKnownLeaf(key, existingConfigMap) {
				return "", nil
			}

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads dotenv files, config/config.yaml and the environment, applies
// defaults and validates the result.
func New() (*Config, error) {
	loadDotenv(dotenvFiles...)

	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := finalize(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// finalize fills defaults and replicas, then validates required keys.
func finalize(cfg *Config) error {
	if cfg.Database == nil {
		cfg.Database = &DatabaseConfig{}
	}
	if cfg.Auth == nil {
		cfg.Auth = &AuthConfig{}
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = defaultHTTPPort
	}
	if cfg.Auth.TokenType == "" {
		cfg.Auth.TokenType = defaultTokenType
	}
	if cfg.Auth.TokenExpires == 0 {
		cfg.Auth.TokenExpires = defaultTokenExpires
	}

	// Replicas from DATABASE_REPLICAS_0_URL, DATABASE_REPLICAS_1_URL, ...
	cfg.Database.Replicas = append(cfg.Database.Replicas, buildReplicasFromEnv()...)

	if err := validator.New().Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	return nil
}

func loadDotenv(files ...string) {
	for _, name := range files {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		// godotenv.Load never overrides variables that are already set.
		_ = godotenv.Load(name)
	}
}

// canonicalizeEnvKey converts ENV_VAR_NAME to a dotted path and aligns it with
// existing YAML keys. Consecutive segments are joined greedily so that
// CELERY_APP_NAME resolves to celery.appName when the YAML declares appName.
func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := make([]string, 0)
	for _, segment := range strings.Split(strings.ToLower(rawKey), "_") {
		if segment != "" {
			segments = append(segments, segment)
		}
	}

	canonical := make([]string, 0, len(segments))
	current := existing

	for i := 0; i < len(segments); {
		matched, next, width := findExistingSegment(current, segments[i:])
		if width == 0 {
			canonical = append(canonical, segments[i])
			current = nil
			i++

			continue
		}

		canonical = append(canonical, matched)
		current = next
		i += width
	}

	return strings.Join(canonical, ".")
}

// findExistingSegment finds the longest run of leading segments that names a
// key of current. width is 0 when nothing matches.
func findExistingSegment(current map[string]any, segments []string) (matched string, next map[string]any, width int) {
	if len(current) == 0 {
		return "", nil, 0
	}

	for n := len(segments); n > 0; n-- {
		needle := normalizeToken(strings.Join(segments[:n], ""))
		for key, value := range current {
			if normalizeToken(key) != needle {
				continue
			}

			child, _ := value.(map[string]any)

			return key, child, n
		}
	}

	return "", nil, 0
}

// isKnownLeaf reports whether path starts at a known section and does not
// replace a whole section with a scalar.
func isKnownLeaf(path string, existing map[string]any) bool {
	parts := strings.Split(path, ".")
	if len(parts) < 2 {
		return false
	}

	var node any = existing
	for i, part := range parts {
		m, ok := node.(map[string]any)
		if !ok {
			// Descending below a scalar or list would clobber it.
			return false
		}
		child, ok := m[part]
		if !ok {
			return i > 0
		}
		node = child
	}

	_, isSection := node.(map[string]any)

	return !isSection
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replica DSN list from environment variables.
// Environment variable format: DATABASE_REPLICAS_{index}_URL
func buildReplicasFromEnv() []string {
	var replicas []string

	for i := 0; ; i++ {
		url := os.Getenv("DATABASE_REPLICAS_" + strconv.Itoa(i) + "_URL")
		if url == "" {
			break
		}

		replicas = append(replicas, url)
	}

	return replicas
}
