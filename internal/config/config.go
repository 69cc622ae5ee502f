package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/pdfdesk/internal/errors"
	"github.com/vango-dev/pdfdesk/pkg/controller"
	"github.com/vango-dev/pdfdesk/pkg/zone"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "pdfdesk.yaml"

	// DefaultPort is the default port of `pdfdesk serve`.
	DefaultPort = 8080

	// DefaultHost is the default host of `pdfdesk serve`.
	DefaultHost = "localhost"

	// DefaultBaseURL is where the document service listens by default.
	DefaultBaseURL = "http://localhost:5000"

	// DefaultDownloadDir is where documents are saved by default.
	DefaultDownloadDir = "downloads"
)

// Storage drivers.
const (
	DriverDisk = "disk"
	DriverS3   = "s3"
)

// Config represents the complete pdfdesk.yaml configuration.
type Config struct {
	// Service is the document service the zones post to.
	Service ServiceConfig `yaml:"service"`

	// Server contains `pdfdesk serve` settings.
	Server ServerConfig `yaml:"server"`

	// Storage is where converted documents are saved.
	Storage StorageConfig `yaml:"storage"`

	// Staging holds files between the browser upload and the submission.
	Staging StagingConfig `yaml:"staging"`

	// Log contains logging settings.
	Log LogConfig `yaml:"log"`

	// Toast contains notification settings.
	Toast ToastConfig `yaml:"toast"`

	// Messages overrides the texts shown to the user. Empty fields keep
	// their defaults.
	Messages MessagesConfig `yaml:"messages,omitempty"`

	// Zones overrides or replaces the built-in zone table.
	Zones ZonesConfig `yaml:"zones,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServiceConfig describes the document service.
type ServiceConfig struct {
	// BaseURL is the absolute URL zone endpoints are appended to.
	BaseURL string `yaml:"baseURL"`

	// Timeout bounds each submission. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Exclusive turns away a submission while the same zone is busy.
	Exclusive bool `yaml:"exclusive,omitempty"`
}

// ServerConfig contains web front end settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `yaml:"host"`

	// Port is the port to listen on.
	Port int `yaml:"port"`

	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// StorageConfig selects the artifact store.
type StorageConfig struct {
	// Driver is "disk" or "s3".
	Driver string `yaml:"driver"`

	// Dir is the download directory of the disk driver.
	Dir string `yaml:"dir,omitempty"`

	// MaxAge removes served artifacts older than this. Zero keeps them.
	MaxAge time.Duration `yaml:"maxAge,omitempty"`

	// Bucket, Prefix, Region and Endpoint configure the s3 driver.
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"pathStyle,omitempty"`

	// URLExpiry is the lifetime of presigned download URLs.
	URLExpiry time.Duration `yaml:"urlExpiry,omitempty"`
}

// StagingConfig configures the staging store of `pdfdesk serve`.
type StagingConfig struct {
	// Dir is the staging directory (default: a pdfdesk directory under the
	// system temp dir).
	Dir string `yaml:"dir,omitempty"`

	// MaxFileSize limits each staged file, in bytes.
	MaxFileSize int64 `yaml:"maxFileSize,omitempty"`

	// MaxFiles limits the files of one staging request.
	MaxFiles int `yaml:"maxFiles,omitempty"`

	// Expiry removes staged files that were never claimed.
	Expiry time.Duration `yaml:"expiry,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

// ToastConfig contains notification settings.
type ToastConfig struct {
	// Duration is how long a notification stays visible.
	Duration time.Duration `yaml:"duration,omitempty"`
}

// MessagesConfig mirrors controller.Messages.
type MessagesConfig struct {
	Processing    string `yaml:"processing,omitempty"`
	Downloaded    string `yaml:"downloaded,omitempty"`
	Completed     string `yaml:"completed,omitempty"`
	FailurePrefix string `yaml:"failurePrefix,omitempty"`
	HTTPError     string `yaml:"httpError,omitempty"`
	Busy          string `yaml:"busy,omitempty"`
}

// ZonesConfig overrides the zone table.
type ZonesConfig struct {
	// Replace drops the built-in zones; only Routes are used.
	Replace bool `yaml:"replace,omitempty"`

	// Routes override built-in zones with the same ID, or add new ones.
	Routes []ZoneConfig `yaml:"routes,omitempty"`
}

// ZoneConfig is one zone entry. Empty fields keep the built-in values.
type ZoneConfig struct {
	ID       string `yaml:"id"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Field    string `yaml:"field,omitempty"`
	Multiple *bool  `yaml:"multiple,omitempty"`
	Title    string `yaml:"title,omitempty"`
	Label    string `yaml:"label,omitempty"`
	Help     string `yaml:"help,omitempty"`
	Accept   string `yaml:"accept,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for pdfdesk.yaml in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Cannot read " + path).
			Wrap(err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes a pdfdesk.yaml document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check the YAML syntax and key names")
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFromWorkingDir loads pdfdesk.yaml from the current working directory.
// A missing file yields the defaults.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := Load(wd)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Service.BaseURL == "" {
		c.Service.BaseURL = DefaultBaseURL
	}

	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverDisk
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = DefaultDownloadDir
	}
	if c.Storage.URLExpiry == 0 {
		c.Storage.URLExpiry = 24 * time.Hour
	}

	if c.Staging.Dir == "" {
		c.Staging.Dir = filepath.Join(os.TempDir(), "pdfdesk-staging")
	}
	if c.Staging.MaxFileSize == 0 {
		c.Staging.MaxFileSize = 16 << 20
	}
	if c.Staging.MaxFiles == 0 {
		c.Staging.MaxFiles = 20
	}
	if c.Staging.Expiry == 0 {
		c.Staging.Expiry = time.Hour
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Toast.Duration == 0 {
		c.Toast.Duration = 5 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("E121").
			WithDetailf("service.baseURL %q is not an absolute http(s) URL", c.Service.BaseURL)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetailf("server.port %d must be between 0 and 65535", c.Server.Port)
	}

	switch c.Storage.Driver {
	case DriverDisk:
	case DriverS3:
		if c.Storage.Bucket == "" {
			return errors.New("E124")
		}
	default:
		return errors.New("E123").
			WithDetailf("storage.driver %q is not disk or s3", c.Storage.Driver)
	}

	durations := map[string]time.Duration{
		"service.timeout":        c.Service.Timeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"storage.maxAge":         c.Storage.MaxAge,
		"storage.urlExpiry":      c.Storage.URLExpiry,
		"staging.expiry":         c.Staging.Expiry,
		"toast.duration":         c.Toast.Duration,
	}
	for key, d := range durations {
		if d < 0 {
			return errors.New("E125").WithDetailf("%s is %s", key, d)
		}
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	if _, err := c.Table(); err != nil {
		return err
	}
	return nil
}

// Address returns the listen address of `pdfdesk serve`.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Table builds the zone table: the built-in zones with overrides applied,
// followed by new zones in the order they are listed.
func (c *Config) Table() (*zone.Table, error) {
	var routes []zone.Route
	if !c.Zones.Replace {
		routes = zone.DefaultRoutes()
	}

	for _, zc := range c.Zones.Routes {
		i := indexOf(routes, zone.ID(zc.ID))
		if i < 0 {
			routes = append(routes, zone.Route{ID: zone.ID(zc.ID), Field: "file"})
			i = len(routes) - 1
		}
		zc.apply(&routes[i])
	}
	return zone.NewTable(routes...)
}

func indexOf(routes []zone.Route, id zone.ID) int {
	for i, r := range routes {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (zc ZoneConfig) apply(r *zone.Route) {
	if zc.Endpoint != "" {
		r.Endpoint = zc.Endpoint
	}
	if zc.Field != "" {
		r.Field = zc.Field
	}
	if zc.Multiple != nil {
		if *zc.Multiple {
			r.Policy = zone.Multiple
		} else {
			r.Policy = zone.Single
		}
	}
	if zc.Title != "" {
		r.Title = zc.Title
	}
	if zc.Label != "" {
		r.Label = zc.Label
	}
	if zc.Help != "" {
		r.Help = zc.Help
	}
	if zc.Accept != "" {
		r.Accept = zc.Accept
	}
}

// ControllerMessages returns the default texts with the configured
// overrides applied.
func (c *Config) ControllerMessages() controller.Messages {
	m := controller.DefaultMessages()
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&m.Processing, c.Messages.Processing)
	override(&m.Downloaded, c.Messages.Downloaded)
	override(&m.Completed, c.Messages.Completed)
	override(&m.FailurePrefix, c.Messages.FailurePrefix)
	override(&m.HTTPError, c.Messages.HTTPError)
	override(&m.Busy, c.Messages.Busy)
	return m
}

// ParseLevel converts a log level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.New("E126").WithDetailf("log.level %q", level)
}
