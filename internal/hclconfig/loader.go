// Package hclconfig is the HCL implementation of the config.Loader
// interface.
package hclconfig

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/wheelgrid/internal/config"
	"github.com/specialistvlad/wheelgrid/internal/ctxlog"
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL release-file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot mirrors the top-level blocks of a release file.
type fileRoot struct {
	Release *releaseBlock `hcl:"release,block"`
	Matrix  *matrixBlock  `hcl:"matrix,block"`
	Source  *sourceBlock  `hcl:"source,block"`
	Verify  *verifyBlock  `hcl:"verify,block"`
}

type releaseBlock struct {
	Name    string `hcl:"name"`
	Version string `hcl:"version"`
}

// matrixBlock keeps its axes as raw expressions so they are evaluated to
// cty values explicitly, the same way the model package treats
// user-provided lists.
type matrixBlock struct {
	OS           hcl.Expression `hcl:"os,attr"`
	Interpreters hcl.Expression `hcl:"interpreters,attr"`
}

type sourceBlock struct {
	Interpreter string `hcl:"interpreter"`
}

type verifyBlock struct {
	OptionalPackages hcl.Expression `hcl:"optional_packages,optional"`
	TestTimeout      string         `hcl:"test_timeout,optional"`
	TargetTimeout    string         `hcl:"target_timeout,optional"`
	GracePeriod      string         `hcl:"grace_period,optional"`
	InstallRetries   int            `hcl:"install_retries,optional"`
}

// Load parses one HCL release file into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	model := &config.Model{}
	if root.Release != nil {
		model.Release = config.Release{Name: root.Release.Name, Version: root.Release.Version}
	}
	if root.Matrix != nil {
		oses, err := stringList(root.Matrix.OS, "matrix.os")
		if err != nil {
			return nil, err
		}
		interps, err := stringList(root.Matrix.Interpreters, "matrix.interpreters")
		if err != nil {
			return nil, err
		}
		model.Matrix = config.Matrix{OSes: oses, Interpreters: interps}
	}
	if root.Source != nil {
		model.Source = config.SourceJob{Interpreter: root.Source.Interpreter}
	}
	if root.Verify != nil {
		verify, err := translateVerify(root.Verify)
		if err != nil {
			return nil, err
		}
		model.Verify = *verify
	}

	model.ApplyDefaults()
	logger.Debug("HCL release file loaded.", "package", model.Release.Name, "version", model.Release.Version)
	return model, nil
}

// translateVerify converts the decoded verify block, parsing durations.
func translateVerify(b *verifyBlock) (*config.Verify, error) {
	verify := &config.Verify{InstallRetries: b.InstallRetries}

	packages, err := stringList(b.OptionalPackages, "verify.optional_packages")
	if err != nil {
		return nil, err
	}
	verify.OptionalPackages = packages

	for _, d := range []struct {
		raw   string
		field string
		dst   *time.Duration
	}{
		{b.TestTimeout, "verify.test_timeout", &verify.TestTimeout},
		{b.TargetTimeout, "verify.target_timeout", &verify.TargetTimeout},
		{b.GracePeriod, "verify.grace_period", &verify.GracePeriod},
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
	return verify, nil
}

// stringList evaluates an HCL expression to a list of strings. A nil or
// absent expression yields nil.
func stringList(expr hcl.Expression, field string) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate %s: %w", field, diags)
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.CanIterateElements() {
		return nil, &config.ConfigurationError{Field: field, Reason: "must be a list of strings"}
	}

	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.Type() != cty.String || elem.IsNull() {
			return nil, &config.ConfigurationError{Field: field, Reason: "must be a list of strings"}
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}
