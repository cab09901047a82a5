package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	TransformZlib = "zlib"
	TransformZstd = "zstd"

	DefaultDir     = ".git"
	DefaultBranch  = "main"
	catalogDirName = "gitcas-catalog"
)

// Config describes one repository. Every path is derived from Dir unless set
// explicitly, so several independent stores can live in one process.
type Config struct {
	Dir string `yaml:"dir"` // repository root, e.g. ".git"

	Objects   ObjectsConfig   `yaml:"objects"`
	Refs      RefsConfig      `yaml:"refs"`
	Transform TransformConfig `yaml:"transform"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Limits    LimitsConfig    `yaml:"limits"`
	Log       LogConfig       `yaml:"log"`
}

type ObjectsConfig struct {
	Dir          string `yaml:"dir"`
	Fsync        bool   `yaml:"fsync"`
	VerifyOnRead bool   `yaml:"verify_on_read"`
}

type RefsConfig struct {
	Dir           string `yaml:"dir"`
	HeadFile      string `yaml:"head_file"`
	DefaultBranch string `yaml:"default_branch"`
}

// TransformConfig selects the compression codec. Level 0 selects the codec
// default.
type TransformConfig struct {
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
}

type CatalogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type LimitsConfig struct {
	// MaxObjectBytes caps the content size accepted by Put and the declared
	// size accepted by reads. 0 means unlimited.
	MaxObjectBytes uint64 `yaml:"max_object_bytes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a configuration for a repository rooted at ".git".
func Default() Config {
	return Config{
		Dir: DefaultDir,
		Refs: RefsConfig{
			DefaultBranch: DefaultBranch,
		},
		Transform: TransformConfig{
			Name: TransformZlib,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// WithDefaults fills every derived path and unset field.
func (c Config) WithDefaults() Config {
	if c.Dir == "" {
		c.Dir = DefaultDir
	}
	if c.Objects.Dir == "" {
		c.Objects.Dir = filepath.Join(c.Dir, "objects")
	}
	if c.Refs.Dir == "" {
		c.Refs.Dir = filepath.Join(c.Dir, "refs")
	}
	if c.Refs.HeadFile == "" {
		c.Refs.HeadFile = filepath.Join(c.Dir, "HEAD")
	}
	if c.Refs.DefaultBranch == "" {
		c.Refs.DefaultBranch = DefaultBranch
	}
	if c.Catalog.Dir == "" {
		c.Catalog.Dir = filepath.Join(c.Dir, catalogDirName)
	}
	if c.Transform.Name == "" {
		c.Transform.Name = TransformZlib
	}
	return c
}

func (c Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("%w: repository dir is required", ErrInvalidInput)
	}
	switch c.Transform.Name {
	case "", TransformZlib:
		if c.Transform.Level < -2 || c.Transform.Level > 9 {
			return fmt.Errorf("%w: zlib level %d out of range [-2, 9]", ErrInvalidInput, c.Transform.Level)
		}
	case TransformZstd:
		if c.Transform.Level < 0 || c.Transform.Level > 22 {
			return fmt.Errorf("%w: zstd level %d out of range [0, 22]", ErrInvalidInput, c.Transform.Level)
		}
	default:
		return fmt.Errorf("%w: unsupported transform %q", ErrInvalidInput, c.Transform.Name)
	}
	return nil
}

// LoadFile reads a YAML configuration on top of Default. Relative paths in
// the file are kept as written.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("gitcas: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parse config %s: %v", ErrInvalidInput, path, err)
	}
	return cfg, cfg.Validate()
}
