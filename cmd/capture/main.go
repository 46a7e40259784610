// cmd/capture/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"digitizer-service/internal/config"
	"digitizer-service/internal/driver"
	"digitizer-service/internal/profile"
	"digitizer-service/internal/repository"
	"digitizer-service/internal/service"
	"digitizer-service/internal/utils"
)

// captureReport is printed to stdout once per capture
type captureReport struct {
	Capture  int         `json:"capture"`
	ID       string      `json:"id"`
	File     string      `json:"file"`
	Bytes    int         `json:"bytes"`
	Segments uint32      `json:"segments"`
	Summary  interface{} `json:"summary"`
}

func main() {
	configPath := flag.String("config", "", "path to the service configuration file")
	profilePath := flag.String("profile", "", "path to a capture profile (YAML)")
	output := flag.String("output", "", "override the profile's output file")
	flag.Parse()

	if err := run(*configPath, *profilePath, *output); err != nil {
		fmt.Fprintf(os.Stderr, "capture: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, profilePath, output string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	p := profile.Default()
	if profilePath != "" {
		if p, err = profile.Load(profilePath); err != nil {
			return err
		}
	}
	if output != "" {
		p.Output = output
	}
	if p.Driver != "" {
		cfg.Digitizer.Driver = p.Driver
	}
	if p.Serial != "" {
		cfg.Digitizer.Serial = p.Serial
	}

	// stdout carries the capture reports
	cfg.Logging.Output = "stderr"
	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer utils.CloseLogger(logger)

	registry := driver.NewRegistry(logger)
	driver.RegisterDefaultDrivers(registry, logger)

	drv, err := registry.CreateDriver(cfg.Digitizer.Driver, cfg.DriverOptions())
	if err != nil {
		return err
	}

	svc, err := service.NewAcquisitionService(drv, cfg.Digitizer.Driver,
		repository.NewMemoryCaptureRepository(p.Captures), nil, nil, cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer svc.Shutdown(context.Background())

	logger.Info("Running capture profile",
		zap.String("profile", p.Name),
		zap.String("driver", cfg.Digitizer.Driver),
		zap.Int("captures", p.Captures),
	)
	return runProfile(ctx, svc, p, os.Stdout)
}

// runProfile opens the unit, applies the profile and writes one file per
// capture. The unit is closed before returning.
func runProfile(ctx context.Context, svc *service.AcquisitionService, p *profile.Profile, out io.Writer) error {
	opCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	status, err := svc.Open(opCtx, &p.Options)
	cancel()
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer svc.Close(context.Background())

	fmt.Fprintf(out, "opened %s %s (%s)\n", status.Model, status.Variant, status.Serial)

	enc := json.NewEncoder(out)
	for i := 0; i < p.Captures; i++ {
		report, err := captureOnce(ctx, svc, p, i)
		if err != nil {
			return fmt.Errorf("capture %d: %w", i+1, err)
		}
		if err := enc.Encode(report); err != nil {
			return err
		}
	}
	return nil
}

func captureOnce(ctx context.Context, svc *service.AcquisitionService, p *profile.Profile, index int) (*captureReport, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	repeat := p.Repeat && index > 0
	if _, err := svc.SetDigitizer(ctx, repeat); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	if err := svc.RunAcquisition(ctx); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	if err := svc.WaitForAcquisition(ctx); err != nil {
		return nil, fmt.Errorf("wait: %w", err)
	}
	result, err := svc.FetchData(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	file := outputName(p.Output, index, p.Captures)
	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(file, result.Capture.Data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", file, err)
	}

	return &captureReport{
		Capture:  index + 1,
		ID:       result.Record.ID.String(),
		File:     file,
		Bytes:    len(result.Capture.Data),
		Segments: result.Capture.Segments,
		Summary:  result.Capture.Summary,
	}, nil
}

// outputName numbers the file when the profile takes several captures:
// result.bin becomes result-001.bin, result-002.bin and so on
func outputName(base string, index, total int) string {
	if total <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(base, ext), index+1, ext)
}
