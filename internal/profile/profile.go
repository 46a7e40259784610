// internal/profile/profile.go
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"digitizer-service/internal/service"
)

// Profile describes one unattended capture run
type Profile struct {
	Name    string          `yaml:"name"`
	Driver  string          `yaml:"driver"`
	Serial  string          `yaml:"serial"`
	Options service.Options `yaml:"options"`
	// Repeat re-arms on the previous programming for every capture after
	// the first
	Repeat   bool          `yaml:"repeat"`
	Captures int           `yaml:"captures"`
	Output   string        `yaml:"output"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default is the profile used when no file is given
func Default() *Profile {
	return &Profile{
		Name:     "default",
		Captures: 1,
		Output:   "result.bin",
		Timeout:  30 * time.Second,
	}
}

// Load reads a profile from path
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Decode parses a profile, rejecting unknown keys. Absent fields keep
// the values of Default.
func Decode(r io.Reader) (*Profile, error) {
	p := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the fields the capture loop depends on
func (p *Profile) Validate() error {
	if p.Captures < 1 {
		return fmt.Errorf("captures must be at least 1, got %d", p.Captures)
	}
	if p.Output == "" {
		return errors.New("output path is required")
	}
	if p.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", p.Timeout)
	}
	return nil
}

// Marshal renders the profile as YAML
func (p *Profile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
