package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputYAML OutputFormat = "yaml"
	OutputJSON OutputFormat = "json"
)

// Permission is a file mode written in octal, e.g. "0755".
type Permission os.FileMode

func ParsePermission(s string) (Permission, error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0o"), 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid permission %q: %w", s, err)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("invalid permission %q: must be within 0000-0777", s)
	}
	return Permission(v), nil
}

func (p Permission) FileMode() os.FileMode {
	return os.FileMode(p)
}

func (p Permission) String() string {
	return fmt.Sprintf("%04o", uint32(p))
}

func (p *Permission) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParsePermission(value.Value)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p Permission) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

type Config struct {
	DirPermission Permission   `yaml:"dirPermission"`
	LogLevel      string       `yaml:"logLevel"`
	Output        OutputFormat `yaml:"output"`
	Recursive     bool         `yaml:"recursive"`
}

// Default returns the configuration used when no file is given.
// An empty LogLevel keeps whatever level LOG_LEVEL selected.
func Default() Config {
	return Config{
		DirPermission: 0o755,
		Output:        OutputText,
	}
}

// Load decodes a YAML document on top of the defaults.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// FileReader reads whole files. filesystem.DefaultFileSystem satisfies it.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// LoadFile loads path through reader, or returns the defaults when path is empty.
func LoadFile(reader FileReader, path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := reader.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Output {
	case OutputText, OutputYAML, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	if c.LogLevel != "" {
		if _, err := ParseLogLevel(c.LogLevel); err != nil {
			return err
		}
	}
	if c.DirPermission > 0o777 {
		return fmt.Errorf("dirPermission must be within 0000-0777")
	}
	return nil
}

// ParseLogLevel maps debug/info/warn/warning/error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
