package policy_test

import (
	"errors"
	"testing"

	"github.com/sw965/chlorine/mathx/randx"
	"github.com/sw965/chlorine/policy"
	"github.com/sw965/chlorine/ql"
	"github.com/sw965/chlorine/quantize"
	"github.com/sw965/chlorine/waterpark"
)

func TestFixedInterval(t *testing.T) {
	p, err := policy.NewFixedInterval(60, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	if p.Interval != 6 {
		t.Fatalf("want interval 6, got %d", p.Interval)
	}
	tests := []struct {
		name  string
		stock float64
		step  int
		want  int
	}{
		{name: "正常_開始時", stock: 200, step: 0, want: 2},
		{name: "正常_間隔の倍数", stock: 50, step: 42, want: 2},
		{name: "正常_倍数以外", stock: 200, step: 7, want: 0},
		{name: "準正常_在庫なし", stock: 0, step: 12, want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Act(waterpark.Observation{RemainingStock: tc.stock, Step: tc.step})
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestFixedIntervalPulsesPerDay(t *testing.T) {
	p, err := policy.NewFixedInterval(60, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	doses := 0
	for step := range 60 {
		a, _ := p.Act(waterpark.Observation{RemainingStock: 200, Step: step})
		if a != 0 {
			doses++
		}
	}
	if doses != 10 {
		t.Errorf("want 10 doses per day, got %d", doses)
	}
}

func TestNewFixedIntervalInvalid(t *testing.T) {
	for _, tc := range []struct{ maxSteps, pulses, action int }{
		{60, 0, 2},
		{5, 10, 2},
		{60, 10, -1},
	} {
		if _, err := policy.NewFixedInterval(tc.maxSteps, tc.pulses, tc.action); !errors.Is(err, policy.ErrInvalidPolicy) {
			t.Errorf("%+v: want ErrInvalidPolicy, got %v", tc, err)
		}
	}
	if _, err := (policy.FixedInterval{}).Act(waterpark.Observation{}); !errors.Is(err, policy.ErrInvalidPolicy) {
		t.Errorf("zero FixedInterval: want ErrInvalidPolicy, got %v", err)
	}
}

func TestRandom(t *testing.T) {
	p := policy.NewRandom(randx.NewSeeded(3))
	counts := map[int]int{}
	for range 2000 {
		a, err := p.Act(waterpark.Observation{})
		if err != nil {
			t.Fatal(err)
		}
		counts[a]++
	}
	if len(counts) != 2 {
		t.Fatalf("want only actions 0 and 1, got %v", counts)
	}
	for _, a := range []int{0, 1} {
		if counts[a] < 850 || counts[a] > 1150 {
			t.Errorf("action %d chosen %d/2000 times", a, counts[a])
		}
	}
}

func TestGreedy(t *testing.T) {
	q, err := quantize.New(quantize.StandardLayout())
	if err != nil {
		t.Fatal(err)
	}
	agent, err := ql.NewAgentFor(q, q.Shape(), 4, ql.DefaultParams(), randx.NewSeeded(1))
	if err != nil {
		t.Fatal(err)
	}
	obs := waterpark.Observation{ResidualDisinfectant: 0.2, Turbidity: 1, PH: 7, RemainingStock: 150, Step: 3}
	if err := agent.Table().Set(q.Quantize(obs), 3, 1); err != nil {
		t.Fatal(err)
	}

	g := policy.Greedy{Agent: agent, Quantizer: q}
	for range 50 {
		a, err := g.Act(obs)
		if err != nil {
			t.Fatal(err)
		}
		if a != 3 {
			t.Fatalf("want 3, got %d", a)
		}
	}
	if agent.Epsilon() != ql.DefaultParams().Epsilon {
		t.Error("greedy evaluation must not touch epsilon")
	}
}
