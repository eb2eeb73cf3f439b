package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eddie-c-davis/gt4py/internal/errors"
	"github.com/eddie-c-davis/gt4py/internal/sink"
)

// ManifestName is the file name of a build manifest inside its build directory.
const ManifestName = "manifest.yaml"

// Manifest records a completed build.
type Manifest struct {
	BuildID string        `yaml:"build_id"`
	Stencil string        `yaml:"stencil"`
	Key     string        `yaml:"key"`
	CUDA    bool          `yaml:"cuda"`
	Debug   bool          `yaml:"debug"`
	Created time.Time     `yaml:"created"`
	Source  string        `yaml:"source"`
	Stages  []StageRecord `yaml:"stages"`
	Binary  string        `yaml:"binary"`

	Dir    string `yaml:"-"`
	Cached bool   `yaml:"-"`
}

// BinaryPath is the absolute location of the linked binary.
func (m *Manifest) BinaryPath() string {
	return filepath.Join(m.Dir, m.Binary)
}

// Summary is a one-line description for status output.
func (m *Manifest) Summary() string {
	state := "built"
	if m.Cached {
		state = "cached"
	}
	return fmt.Sprintf("%s %s [%s] -> %s", state, m.Stencil, shortID(m.BuildID), m.BinaryPath())
}

func (m *Manifest) Write(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return sink.WriteFile(path, data)
}

// ReadManifest loads the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ResourceFailure("read", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return &m, nil
}
