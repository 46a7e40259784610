package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const benchProfile = `
name: bench
driver: simulator
options:
  verticalScale: 8
  verticalCoupling: 2
  verticalBandwidth: 0
  horizontalSamplerate: 0.5
  horizontalSamples: 1000
  horizontalSegments: 20
  triggerDelay: 0
captures: 3
output: out/run.bin
timeout: 5s
`

func TestDecodeProfile(t *testing.T) {
	p, err := Decode(strings.NewReader(benchProfile))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Name != "bench" || p.Captures != 3 || p.Timeout != 5*time.Second {
		t.Fatalf("unexpected profile %+v", p)
	}
	if p.Options.VerticalScale == nil || *p.Options.VerticalScale != 8 {
		t.Fatalf("vertical scale not decoded")
	}
	if p.Options.HorizontalSegments == nil || *p.Options.HorizontalSegments != 20 {
		t.Fatalf("segments not decoded")
	}
	if p.Options.VerticalOffset != nil || p.Options.Channel != nil {
		t.Fatalf("absent options must stay nil")
	}
}

func TestDecodeKeepsDefaults(t *testing.T) {
	p, err := Decode(strings.NewReader("name: quick\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Output != "result.bin" || p.Captures != 1 || p.Timeout != 30*time.Second {
		t.Fatalf("defaults lost: %+v", p)
	}

	if _, err := Decode(strings.NewReader("")); err != nil {
		t.Fatalf("empty profile: %v", err)
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "segmentz: 4\n",
		"zero captures": "captures: 0\n",
		"bad timeout":   "timeout: -1s\n",
		"empty output":  "output: \"\"\n",
	}
	for name, doc := range cases {
		if _, err := Decode(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestLoadAndMarshal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	if err := os.WriteFile(path, []byte(benchProfile), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	out, err := p.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	again, err := Decode(strings.NewReader(string(out)))
	if err != nil {
		t.Fatalf("decode marshalled profile: %v\n%s", err, out)
	}
	if *again.Options.HorizontalSamples != 1000 || again.Output != "out/run.bin" {
		t.Fatalf("marshalled profile lost fields:\n%s", out)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestShippedExampleProfile(t *testing.T) {
	p, err := Load(filepath.Join("..", "..", "profiles", "example.yaml"))
	if err != nil {
		t.Fatalf("load example: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("example invalid: %v", err)
	}
	if p.Captures != 3 || !p.Repeat || p.Timeout != 20*time.Second {
		t.Fatalf("unexpected example profile %+v", p)
	}
	if p.Options.HorizontalSegments == nil || *p.Options.HorizontalSegments != 20 {
		t.Fatalf("segments not decoded: %+v", p.Options)
	}
}
