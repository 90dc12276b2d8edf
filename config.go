package datekeeper

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// A Config is the declarative form of a [Keeper], for programs that
// load sink definitions from a file instead of assembling options in
// code. Zero values mean the same defaults as [New].
type Config struct {
	// Path is the keeper's base path.
	Path     string         `yaml:"path"`
	Rotation RotationConfig `yaml:"rotation"`
	// Truncate discards an existing file's content on open.
	Truncate bool `yaml:"truncate"`
	// MaxFiles bounds the number of files kept on disk; 0 keeps all.
	MaxFiles int `yaml:"max_files"`
	// DeleteOnInit removes out-of-window files during construction.
	DeleteOnInit bool `yaml:"delete_on_init"`
	// Compress gzips rotated files.
	Compress bool `yaml:"compress"`
	// Cron forces rotations on a schedule, see [WithCron].
	Cron string `yaml:"cron"`
}

// A RotationConfig describes when a [Keeper] turns its file over.
type RotationConfig struct {
	// Granularity is "daily" (the default) or "minute".
	Granularity string `yaml:"granularity"`
	// Hour and Minute anchor a daily rotation.
	Hour   int `yaml:"hour"`
	Minute int `yaml:"minute"`
	// Interval is the number of minutes between minute rotations.
	Interval int `yaml:"interval"`
}

// ParseConfig decodes a YAML keeper configuration. Unknown fields are
// rejected.
func ParseConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse keeper config, caused by %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a YAML keeper configuration from a file.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load keeper config, caused by %w", err)
	}
	defer f.Close()
	return ParseConfig(f)
}

// Opts translates the config into the options [New] expects.
func (c Config) Opts() ([]Opt, error) {
	var opts []Opt
	switch c.Rotation.Granularity {
	case "", "daily":
		opts = append(opts, WithDailyRotation(c.Rotation.Hour, c.Rotation.Minute))
	case "minute":
		opts = append(opts, WithMinuteRotation(c.Rotation.Interval))
	default:
		return nil, fmt.Errorf("unknown rotation granularity %q", c.Rotation.Granularity)
	}
	opts = append(opts, WithMaxFiles(c.MaxFiles))
	if c.Truncate {
		opts = append(opts, WithTruncate())
	}
	if c.DeleteOnInit {
		opts = append(opts, WithDeleteOnInit())
	}
	if c.Compress {
		opts = append(opts, WithGzip())
	}
	if c.Cron != "" {
		opts = append(opts, WithCron(c.Cron))
	}
	return opts, nil
}

// New creates the Keeper the config describes.
func (c Config) New() (*Keeper, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("failed to create keeper from config, caused by missing path")
	}
	opts, err := c.Opts()
	if err != nil {
		return nil, fmt.Errorf("failed to create keeper from config, caused by %w", err)
	}
	return New(c.Path, opts...)
}

// NewFromConfig loads a YAML config file and creates the Keeper it
// describes.
func NewFromConfig(path string) (*Keeper, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.New()
}
