package bend

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cogentcore.org/core/base/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultResolution is the number of arc-length samples taken per curve
	// piece.
	DefaultResolution = 500
	// DefaultVertexBudget is the number of vertices a single deformation job
	// processes before the batch is considered full.
	DefaultVertexBudget = 25000
	// DefaultLinkTolerance is the distance within which two anchors count as
	// coincident.
	DefaultLinkTolerance = 1e-3
	// DefaultLinearTangentLength is the length of the derived handles of
	// linear segments.
	DefaultLinearTangentLength = 1e-3
)

// Settings holds the tunables shared by splines, registries and batches.
type Settings struct {
	// Resolution is the number of arc-length samples per curve piece.
	Resolution int `toml:"resolution" yaml:"resolution"`
	// VertexBudget caps the number of vertices dispatched in one job.
	VertexBudget int `toml:"vertex_budget" yaml:"vertex_budget"`
	// Workers bounds the number of goroutines of a job. Zero means
	// GOMAXPROCS.
	Workers int `toml:"workers" yaml:"workers"`
	// LinkTolerance is the coincidence distance for anchor and connector
	// lookups.
	LinkTolerance float64 `toml:"link_tolerance" yaml:"link_tolerance"`
	// LinearTangentLength is the handle length of linear segments.
	LinearTangentLength float64 `toml:"linear_tangent_length" yaml:"linear_tangent_length"`
	// SnapStartThreshold and SnapEndThreshold are the maximum distances an
	// object's bounds are moved by snapping.
	SnapStartThreshold float64 `toml:"snap_start_threshold" yaml:"snap_start_threshold"`
	SnapEndThreshold   float64 `toml:"snap_end_threshold" yaml:"snap_end_threshold"`
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		Resolution:          DefaultResolution,
		VertexBudget:        DefaultVertexBudget,
		LinkTolerance:       DefaultLinkTolerance,
		LinearTangentLength: DefaultLinearTangentLength,
		SnapStartThreshold:  1,
		SnapEndThreshold:    1,
	}
}

// Validate reports whether all settings are usable.
func (s Settings) Validate() error {
	var errs []error
	if s.Resolution < 1 {
		errs = append(errs, fmt.Errorf("%w: resolution %d < 1", ErrInvalidSettings, s.Resolution))
	}
	if s.VertexBudget < 1 {
		errs = append(errs, fmt.Errorf("%w: vertex budget %d < 1", ErrInvalidSettings, s.VertexBudget))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: negative worker count %d", ErrInvalidSettings, s.Workers))
	}
	if s.LinkTolerance < 0 {
		errs = append(errs, fmt.Errorf("%w: negative link tolerance", ErrInvalidSettings))
	}
	if s.LinearTangentLength <= 0 {
		errs = append(errs, fmt.Errorf("%w: linear tangent length must be positive", ErrInvalidSettings))
	}
	if s.SnapStartThreshold < 0 || s.SnapEndThreshold < 0 {
		errs = append(errs, fmt.Errorf("%w: negative snap threshold", ErrInvalidSettings))
	}
	return errors.Join(errs...)
}

func (s Settings) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// LoadSettings reads settings from a TOML or YAML file, chosen by extension.
// Fields missing from the file keep their default values.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	s := DefaultSettings()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&s)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&s); errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return Settings{}, fmt.Errorf("settings %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadSettingsOrDefault is like [LoadSettings], but logs any error and falls
// back to [DefaultSettings].
func LoadSettingsOrDefault(path string) Settings {
	s, err := LoadSettings(path)
	if errors.Log(err) != nil {
		return DefaultSettings()
	}
	return s
}
