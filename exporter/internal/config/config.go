package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHubURI             = "http://localhost:8581"
	DefaultHubTimeout         = 10 * time.Second
	DefaultHTTPPort           = 8001
	DefaultPrefix             = "homebridge"
	DefaultKeyFile            = "keys.yaml"
	DefaultRestartMinInterval = 30 * time.Second
)

// prefixPattern is the metric-name grammar a prefix has to satisfy so that
// prefix + "_" + name is still a valid metric name.
var prefixPattern = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// Config is the top-level exporter configuration.
type Config struct {
	Hub     HubConfig     `yaml:"hub"`
	HTTP    HTTPConfig    `yaml:"http"`
	Metrics MetricsConfig `yaml:"metrics"`
	Auth    AuthConfig    `yaml:"auth"`
	Restart RestartConfig `yaml:"restart"`
}

// HubConfig describes how to reach and log in to the Homebridge UI API.
type HubConfig struct {
	// URI is the base URI of the Homebridge UI, without the /api suffix.
	URI string `yaml:"uri"`

	Username string `yaml:"username"`

	// Password is the literal password. Prefer PasswordEnv in files.
	Password string `yaml:"password"`

	// PasswordEnv is the name of the environment variable holding the password.
	// Used when Password is empty.
	PasswordEnv string `yaml:"password_env"`

	// Timeout bounds each HTTP request to the hub.
	Timeout time.Duration `yaml:"timeout"`

	TLS TLSConfig `yaml:"tls"`
}

// EffectivePassword returns Password, or the value of PasswordEnv when
// Password is empty.
func (h HubConfig) EffectivePassword() string {
	if h.Password != "" {
		return h.Password
	}
	if h.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(h.PasswordEnv)
}

// TLSConfig holds TLS dial options for https hubs.
type TLSConfig struct {
	// InsecureSkipVerify disables certificate verification. Homebridge
	// installs commonly use self-signed certificates.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// CAFile is an optional PEM bundle used instead of the system roots.
	CAFile string `yaml:"ca_file"`
}

// HTTPConfig controls the exporter's own listener.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// MetricsConfig controls metric naming.
type MetricsConfig struct {
	// Prefix is prepended to every metric name with an underscore.
	Prefix string `yaml:"prefix"`
}

// AuthConfig locates the bearer key allowlist for /restart.
type AuthConfig struct {
	// KeyFile is a YAML document of the form `keys: [k1, k2]`. A missing file
	// means an empty allowlist: /restart then rejects every request.
	KeyFile string `yaml:"keyfile"`

	// Watch reloads KeyFile whenever it changes on disk.
	Watch bool `yaml:"watch"`
}

// RestartConfig throttles POST /restart.
type RestartConfig struct {
	// MinInterval is the minimum time between two accepted restarts.
	// Zero disables throttling.
	MinInterval time.Duration `yaml:"min_interval"`
}

// Load reads and parses the YAML config file at path. Missing optional
// fields are filled with defaults, then each override is applied in order,
// then the result is validated. An empty path skips the file and starts from
// Default.
func Load(path string, overrides ...func(*Config)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values.
// It does not validate: Hub.Username has no default.
func Default() *Config {
	return &Config{
		Hub: HubConfig{
			URI:     DefaultHubURI,
			Timeout: DefaultHubTimeout,
		},
		HTTP: HTTPConfig{
			Port: DefaultHTTPPort,
		},
		Metrics: MetricsConfig{
			Prefix: DefaultPrefix,
		},
		Auth: AuthConfig{
			KeyFile: DefaultKeyFile,
			Watch:   true,
		},
		Restart: RestartConfig{
			MinInterval: DefaultRestartMinInterval,
		},
	}
}

// Validate checks required fields and structural constraints.
func (c *Config) Validate() error {
	if c.Hub.URI == "" {
		return fmt.Errorf("hub.uri is required")
	}
	u, err := url.Parse(c.Hub.URI)
	if err != nil {
		return fmt.Errorf("hub.uri %q: %w", c.Hub.URI, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("hub.uri %q must be an absolute http(s) URI", c.Hub.URI)
	}
	if c.Hub.Username == "" {
		return fmt.Errorf("hub.username is required")
	}
	if c.Hub.Timeout <= 0 {
		return fmt.Errorf("hub.timeout must be positive")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d is out of range [1, 65535]", c.HTTP.Port)
	}
	if c.Metrics.Prefix != "" && !prefixPattern.MatchString(c.Metrics.Prefix) {
		return fmt.Errorf("metrics.prefix %q is not a valid metric name prefix", c.Metrics.Prefix)
	}
	if c.Restart.MinInterval < 0 {
		return fmt.Errorf("restart.min_interval must not be negative")
	}
	return nil
}
