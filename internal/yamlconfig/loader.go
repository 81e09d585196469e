// Package yamlconfig is the YAML implementation of the config.Loader
// interface. It accepts the same release definition as internal/hclconfig
// and produces an identical model.
package yamlconfig

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/wheelgrid/internal/config"
	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
)

// Loader is the YAML-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML release-file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot mirrors the document structure of a YAML release file.
type fileRoot struct {
	Release struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"release"`
	Matrix struct {
		OS           []string `yaml:"os"`
		Interpreters []string `yaml:"interpreters"`
	} `yaml:"matrix"`
	Source struct {
		Interpreter string `yaml:"interpreter"`
	} `yaml:"source"`
	Verify struct {
		OptionalPackages []string `yaml:"optional_packages"`
		TestTimeout      string   `yaml:"test_timeout"`
		TargetTimeout    string   `yaml:"target_timeout"`
		GracePeriod      string   `yaml:"grace_period"`
		InstallRetries   int      `yaml:"install_retries"`
	} `yaml:"verify"`
}

// Load parses one YAML release file into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file %s: %w", path, err)
	}

	var root fileRoot
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}

	model := &config.Model{
		Release: config.Release{Name: root.Release.Name, Version: root.Release.Version},
		Matrix:  config.Matrix{OSes: root.Matrix.OS, Interpreters: root.Matrix.Interpreters},
		Source:  config.SourceJob{Interpreter: root.Source.Interpreter},
		Verify: config.Verify{
			OptionalPackages: root.Verify.OptionalPackages,
			InstallRetries:   root.Verify.InstallRetries,
		},
	}

	for _, d := range []struct {
		raw   string
		field string
		dst   *time.Duration
	}{
		{root.Verify.TestTimeout, "verify.test_timeout", &model.Verify.TestTimeout},
		{root.Verify.TargetTimeout, "verify.target_timeout", &model.Verify.TargetTimeout},
		{root.Verify.GracePeriod, "verify.grace_period", &model.Verify.GracePeriod},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, &config.ConfigurationError{Field: d.field, Reason: err.Error()}
		}
		*d.dst = parsed
	}

	model.ApplyDefaults()
	logger.Debug("YAML release file loaded.", "package", model.Release.Name, "version", model.Release.Version)
	return model, nil
}
