package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/langkit/internal/engine"
	"github.com/dshills/langkit/internal/loader"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "LANGKIT_"

// Config holds all settings.
type Config struct {
	Assets     AssetsConfig     `toml:"assets"`
	TypeScript TypeScriptConfig `toml:"typescript"`
	Libraries  LibrariesConfig  `toml:"libraries"`
	Logging    LoggingConfig    `toml:"logging"`
	Server     ServerConfig     `toml:"server"`

	// IgnoredEnv names the LANGKIT_ variables Load found but could not
	// map to a setting.
	IgnoredEnv []string `toml:"-"`
}

// AssetsConfig locates the engine assets.
type AssetsConfig struct {
	// BasePath holds lib/monaco-editor/<EngineVersion>. Empty uses the
	// in-process engine only.
	BasePath string `toml:"base_path"`

	// EngineVersion is the engine release directory name.
	EngineVersion string `toml:"engine_version"`
}

// TypeScriptConfig holds the script-family type-checker options.
type TypeScriptConfig struct {
	ExperimentalDecorators       bool   `toml:"experimental_decorators"`
	AllowSyntheticDefaultImports bool   `toml:"allow_synthetic_default_imports"`
	JSX                          string `toml:"jsx"`
	ModuleResolution             string `toml:"module_resolution"`
	AllowNonTSExtensions         bool   `toml:"allow_non_ts_extensions"`
	Target                       string `toml:"target"`
	NoEmit                       bool   `toml:"no_emit"`
	CheckJS                      bool   `toml:"check_js"`

	// EagerModelSync syncs every model to the type checker as soon as it
	// changes.
	EagerModelSync bool `toml:"eager_model_sync"`
}

// LibrariesConfig configures declaration-file injection.
type LibrariesConfig struct {
	// Dir is scanned for *.d.ts files. Empty disables injection.
	Dir string `toml:"dir"`

	// Watch re-injects files in Dir when they change.
	Watch bool `toml:"watch"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	// Level is one of "error", "warn", "info" or "debug".
	Level string `toml:"level"`

	// File receives log output. Empty logs to stderr.
	File string `toml:"file"`
}

// ServerConfig configures the language server.
type ServerConfig struct {
	Name string `toml:"name"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Assets: AssetsConfig{
			EngineVersion: loader.DefaultVersion,
		},
		TypeScript: TypeScriptConfig{
			ExperimentalDecorators:       true,
			AllowSyntheticDefaultImports: true,
			JSX:                          "preserve",
			ModuleResolution:             "node",
			AllowNonTSExtensions:         true,
			Target:                       "es2020",
			NoEmit:                       true,
			CheckJS:                      false,
			EagerModelSync:               false,
		},
		Libraries: LibrariesConfig{
			Watch: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Name: "langkit",
		},
	}
}

// Load builds the settings from the defaults, the TOML file at path and
// the environment. An empty path or a missing file is skipped.
func Load(path string) (*Config, error) {
	var file map[string]any
	if path != "" {
		var err error
		file, err = readFile(path)
		if err != nil {
			return nil, err
		}
	}

	envLoader := NewEnvLoader(EnvPrefix)
	env, err := envLoader.Load()
	if err != nil {
		return nil, err
	}

	cfg, err := apply(Default(), DeepMerge(file, env))
	if err != nil {
		return nil, err
	}
	cfg.IgnoredEnv = envLoader.Ignored()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds the settings from the defaults and TOML data, without
// consulting the environment.
func Parse(source string, data []byte) (*Config, error) {
	m, err := parse(source, data)
	if err != nil {
		return nil, err
	}

	cfg, err := apply(Default(), m)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(path, data)
}

func parse(source string, data []byte) (map[string]any, error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return nil, pe
	}
	return m, nil
}

// apply decodes the merged layer map over cfg. Keys absent from m keep
// their current values.
func apply(cfg *Config, m map[string]any) (*Config, error) {
	if len(m) == 0 {
		return cfg, nil
	}

	data, err := toml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return nil, &ValidationError{Path: "settings", Err: fmt.Errorf("unknown key: %s", sme.String())}
		}
		return nil, &ValidationError{Path: "settings", Err: err}
	}
	return cfg, nil
}

// Validate checks that every setting holds a usable value.
func (c *Config) Validate() error {
	if _, err := c.CompilerOptions(); err != nil {
		return err
	}
	if _, err := c.Verbosity(); err != nil {
		return err
	}
	if c.Server.Name == "" {
		return &ValidationError{Path: "server.name", Err: errors.New("must not be empty")}
	}
	return nil
}

// CompilerOptions converts the [typescript] section.
func (c *Config) CompilerOptions() (engine.CompilerOptions, error) {
	ts := c.TypeScript

	jsx, err := engine.ParseJsxEmit(ts.JSX)
	if err != nil {
		return engine.CompilerOptions{}, &ValidationError{Path: "typescript.jsx", Err: err}
	}
	resolution, err := engine.ParseModuleResolution(ts.ModuleResolution)
	if err != nil {
		return engine.CompilerOptions{}, &ValidationError{Path: "typescript.module_resolution", Err: err}
	}
	target, err := engine.ParseScriptTarget(ts.Target)
	if err != nil {
		return engine.CompilerOptions{}, &ValidationError{Path: "typescript.target", Err: err}
	}

	return engine.CompilerOptions{
		ExperimentalDecorators:       ts.ExperimentalDecorators,
		AllowSyntheticDefaultImports: ts.AllowSyntheticDefaultImports,
		JSX:                          jsx,
		ModuleResolution:             resolution,
		AllowNonTSExtensions:         ts.AllowNonTSExtensions,
		Target:                       target,
		NoEmit:                       ts.NoEmit,
		CheckJS:                      ts.CheckJS,
	}, nil
}

// LoaderConfig converts the [assets] section.
func (c *Config) LoaderConfig() loader.Config {
	return loader.Config{
		BasePath: c.Assets.BasePath,
		Version:  c.Assets.EngineVersion,
	}
}

// Verbosity maps the log level to a commonlog verbosity.
func (c *Config) Verbosity() (int, error) {
	switch c.Logging.Level {
	case "error", "warn", "warning":
		return 0, nil
	case "info", "":
		return 1, nil
	case "debug":
		return 2, nil
	default:
		return 0, &ValidationError{Path: "logging.level", Err: fmt.Errorf("unknown level %q", c.Logging.Level)}
	}
}
