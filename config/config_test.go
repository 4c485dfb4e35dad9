package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sw965/chlorine/config"
	"github.com/sw965/chlorine/quantize"
	"github.com/sw965/chlorine/waterpark"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Seed != nil {
		t.Error("default seed should be unset")
	}
	env := cfg.EnvConfig()
	if env.MaxSteps != 60 || env.MaxDailyStock != 200 || len(env.Doses) != 4 || env.Doses[2] != 20 {
		t.Errorf("unexpected default env %+v", env)
	}
	fixed, err := cfg.FixedPolicy()
	if err != nil {
		t.Fatal(err)
	}
	if fixed.Interval != 6 || fixed.Action != 2 {
		t.Errorf("unexpected fixed policy %+v", fixed)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
variant: extended
seed: 42
episodes: 500
window: 10
env:
  max_daily_stock: 300
agent:
  learning_rate: 0.2
  discount_factor: 0.9
  epsilon: 0.5
  epsilon_decay: 0.99
  epsilon_min: 0.01
report:
  chart: false
`)
	cfg, err := config.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Errorf("seed: got %v", cfg.Seed)
	}
	if cfg.Episodes != 500 || cfg.Window != 10 {
		t.Errorf("episodes/window: got %d/%d", cfg.Episodes, cfg.Window)
	}
	if cfg.EvalEpisodes != config.Default().EvalEpisodes {
		t.Errorf("unset fields must keep defaults, eval_episodes = %d", cfg.EvalEpisodes)
	}
	env := cfg.EnvConfig()
	if env.MaxDailyStock != 300 || env.Doses[2] != 15 || env.Reward.Baseline != 0.7 {
		t.Errorf("extended env not applied: %+v", env)
	}
	if got, want := cfg.Layout().Shape(), (quantize.Shape{3, 2, 3, 5, 4}); got != want {
		t.Errorf("layout shape: want %v, got %v", want, got)
	}
	if p := cfg.AgentParams(); p.LearningRate != 0.2 || p.EpsilonMin != 0.01 {
		t.Errorf("agent params: %+v", p)
	}
	if cfg.Report.Chart {
		t.Error("report.chart override ignored")
	}
	fixed, err := cfg.FixedPolicy()
	if err != nil {
		t.Fatal(err)
	}
	if fixed.Interval != 3 || fixed.Action != 1 {
		t.Errorf("extended fixed policy: %+v", fixed)
	}
}

func TestParseExplicitZero(t *testing.T) {
	tests := []struct {
		name       string
		yaml       string
		wantStock  float64
		wantAction int
	}{
		{name: "正常_未指定はプリセット", yaml: "", wantStock: 200, wantAction: 2},
		{name: "正常_在庫0", yaml: "env:\n  max_daily_stock: 0\n", wantStock: 0, wantAction: 2},
		{name: "正常_投入なしの固定方策", yaml: "fixed:\n  action: 0\n", wantStock: 200, wantAction: 0},
		{name: "正常_両方0", yaml: "fixed:\n  action: 0\nenv:\n  max_daily_stock: 0\n", wantStock: 0, wantAction: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(tc.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := cfg.EnvConfig().MaxDailyStock; got != tc.wantStock {
				t.Errorf("max daily stock: want %v, got %v", tc.wantStock, got)
			}
			fixed, err := cfg.FixedPolicy()
			if err != nil {
				t.Fatal(err)
			}
			if fixed.Action != tc.wantAction {
				t.Errorf("fixed action: want %d, got %d", tc.wantAction, fixed.Action)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "異常_未知のバリアント", yaml: "variant: deluxe\n"},
		{name: "異常_未知のキー", yaml: "episodez: 10\n"},
		{name: "異常_負のエピソード", yaml: "episodes: -1\n"},
		{name: "異常_型違い", yaml: "window: ten\n"},
		{name: "異常_学習率", yaml: "agent:\n  learning_rate: 2\n"},
		{name: "異常_空の投入量", yaml: "env:\n  doses: []\n"},
		{name: "異常_投入量が昇順でない", yaml: "env:\n  doses: [0, 20, 5]\n"},
		{name: "異常_投入行動が範囲外", yaml: "fixed:\n  action: 7\n"},
		{name: "異常_ε下限", yaml: "agent:\n  epsilon: 0.01\n  epsilon_min: 0.1\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := config.Parse([]byte(tc.yaml)); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestParseSchemaError(t *testing.T) {
	_, err := config.Parse([]byte("variant: deluxe\n"))
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("want ErrInvalidConfig, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if cfg.Variant != config.VariantStandard {
		t.Errorf("want standard variant, got %q", cfg.Variant)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waterpark.yaml")
	if err := os.WriteFile(path, []byte("episodes: 20\nseed: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WATERPARK_SEED", "9")
	t.Setenv("WATERPARK_VARIANT", "extended")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Episodes != 20 {
		t.Errorf("episodes: want 20, got %d", cfg.Episodes)
	}
	if cfg.Seed == nil || *cfg.Seed != 9 {
		t.Errorf("env seed override ignored: %v", cfg.Seed)
	}
	if cfg.Variant != config.VariantExtended {
		t.Errorf("env variant override ignored: %q", cfg.Variant)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("want error for a missing file")
	}
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("WATERPARK_SEED", "-3")
	if _, err := config.Load(""); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("want ErrInvalidConfig, got %v", err)
	}
}

func TestRandReproducible(t *testing.T) {
	seed := uint64(5)
	cfg := config.Default()
	cfg.Seed = &seed
	a, b := cfg.Rand(), cfg.Rand()
	for range 10 {
		if a.Uint64() != b.Uint64() {
			t.Fatal("seeded generators diverged")
		}
	}
	if _, err := waterpark.New(cfg.EnvConfig(), cfg.Rand()); err != nil {
		t.Fatal(err)
	}
}
