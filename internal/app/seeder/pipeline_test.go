package seeder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/heartmarshall/geo-explorer/internal/domain"
	"github.com/heartmarshall/geo-explorer/internal/provider"
	"github.com/heartmarshall/geo-explorer/internal/service/importer"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockGateway struct {
	regions map[string][]provider.Country

	mu    sync.Mutex
	calls []string
}

func (m *mockGateway) FindCountriesByRegion(_ context.Context, region string) []provider.Country {
	m.mu.Lock()
	m.calls = append(m.calls, region)
	m.mu.Unlock()
	return m.regions[region]
}

type mockImporter struct {
	AddCountryFunc func(ctx context.Context, in provider.Country) (*importer.CountryResult, error)

	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (m *mockImporter) AddCountry(ctx context.Context, in provider.Country) (*importer.CountryResult, error) {
	m.calls.Add(1)
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	return m.AddCountryFunc(ctx, in)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countries(names ...string) []provider.Country {
	out := make([]provider.Country, len(names))
	for i, n := range names {
		out[i] = provider.Country{Name: n, Region: "Europe", Code: n[:2]}
	}
	return out
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestPipeline_CountsOutcomes(t *testing.T) {
	gw := &mockGateway{regions: map[string][]provider.Country{
		"Europe": countries("Portugal", "Espanha", "França", "Itália"),
	}}
	imp := &mockImporter{AddCountryFunc: func(_ context.Context, in provider.Country) (*importer.CountryResult, error) {
		switch in.Name {
		case "Espanha":
			return nil, domain.NewDuplicateError(domain.KindCountry, domain.KeyName, nil)
		case "Itália":
			return nil, domain.NewValidationError("population", "must not be negative")
		}
		return &importer.CountryResult{Country: &domain.Country{Name: in.Name}}, nil
	}}

	p := NewPipeline(testLogger(), gw, imp, Config{Concurrency: 2})
	if err := p.Run(context.Background(), []string{"Europe"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := p.Results()["Europe"]
	if got.Inserted != 2 || got.Skipped != 1 || got.Errors != 1 {
		t.Errorf("result = %+v, want inserted=2 skipped=1 errors=1", got)
	}
	if !p.HasErrors() {
		t.Error("HasErrors should report the rejected country")
	}
}

func TestPipeline_RespectsConcurrency(t *testing.T) {
	gw := &mockGateway{regions: map[string][]provider.Country{
		"Asia": countries("Japão", "China", "Índia", "Nepal", "Laos", "Omã"),
	}}
	imp := &mockImporter{AddCountryFunc: func(context.Context, provider.Country) (*importer.CountryResult, error) {
		time.Sleep(5 * time.Millisecond)
		return &importer.CountryResult{}, nil
	}}

	p := NewPipeline(testLogger(), gw, imp, Config{Concurrency: 2})
	if err := p.Run(context.Background(), []string{"Asia"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if imp.maxSeen.Load() > 2 {
		t.Errorf("max in-flight imports = %d, want <= 2", imp.maxSeen.Load())
	}
	if got := p.Results()["Asia"].Inserted; got != 6 {
		t.Errorf("inserted = %d, want 6", got)
	}
}

func TestPipeline_DryRunImportsNothing(t *testing.T) {
	gw := &mockGateway{regions: map[string][]provider.Country{"Oceania": countries("Fiji", "Samoa")}}
	imp := &mockImporter{AddCountryFunc: func(context.Context, provider.Country) (*importer.CountryResult, error) {
		t.Fatal("AddCountry must not be called in dry run")
		return nil, nil
	}}

	p := NewPipeline(testLogger(), gw, imp, Config{DryRun: true})
	if err := p.Run(context.Background(), []string{"Oceania"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := p.Results()["Oceania"].Skipped; got != 2 {
		t.Errorf("skipped = %d, want 2", got)
	}
}

func TestPipeline_EmptyRegionIsPhaseError(t *testing.T) {
	gw := &mockGateway{regions: map[string][]provider.Country{"Europe": countries("Portugal")}}
	imp := &mockImporter{AddCountryFunc: func(context.Context, provider.Country) (*importer.CountryResult, error) {
		return &importer.CountryResult{}, nil
	}}

	p := NewPipeline(testLogger(), gw, imp, Config{})
	if err := p.Run(context.Background(), []string{"Atlantis", "Europe"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	res := p.Results()
	if res["Atlantis"].Err == nil {
		t.Error("unknown region should record an error")
	}
	if res["Europe"].Inserted != 1 {
		t.Errorf("Europe inserted = %d, want 1 (later regions keep running)", res["Europe"].Inserted)
	}
}

func TestPipeline_RegionFallbacks(t *testing.T) {
	gw := &mockGateway{regions: map[string][]provider.Country{}}
	imp := &mockImporter{}

	NewPipeline(testLogger(), gw, imp, Config{Regions: []string{"Europe"}}).Run(context.Background(), nil)
	if len(gw.calls) != 1 || gw.calls[0] != "Europe" {
		t.Errorf("configured regions: calls = %v", gw.calls)
	}

	gw.calls = nil
	NewPipeline(testLogger(), gw, imp, Config{}).Run(context.Background(), nil)
	if len(gw.calls) != len(DefaultRegions) {
		t.Errorf("default regions: calls = %v, want %v", gw.calls, DefaultRegions)
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	gw := &mockGateway{regions: map[string][]provider.Country{"Europe": countries("Portugal")}}
	imp := &mockImporter{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPipeline(testLogger(), gw, imp, Config{}).Run(ctx, []string{"Europe"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(gw.calls) != 0 {
		t.Errorf("gateway called after cancellation: %v", gw.calls)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	data := "regions:\n  - Europe\n  - Asia\nconcurrency: 8\ndry_run: true\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if len(cfg.Regions) != 2 || cfg.Regions[1] != "Asia" || cfg.Concurrency != 8 || !cfg.DryRun {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
