package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sw965/chlorine/policy"
	"github.com/sw965/chlorine/waterpark"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play one day with a baseline policy and print every step",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rng := cfg.Rand()

			var p policy.Policy
			switch name, _ := cmd.Flags().GetString("policy"); name {
			case "fixed":
				fixed, err := cfg.FixedPolicy()
				if err != nil {
					return err
				}
				p = fixed
			case "random":
				p = policy.NewRandom(rng)
			default:
				return fmt.Errorf("%w: unknown policy %q (valid: fixed, random)", policy.ErrInvalidPolicy, name)
			}

			env, err := newEnv(cfg, rng)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%4s %5s %6s %6s %8s %9s %6s %9s %8s\n",
				"step", "hour", "guests", "action", "residual", "turbidity", "ph", "stock", "reward")

			state := env.State()
			total := 0.0
			for !env.Done() {
				action, err := p.Act(state)
				if err != nil {
					return err
				}
				next, reward, _, diag, err := env.Step(action)
				if err != nil {
					return err
				}
				total += reward
				fmt.Fprintf(out, "%4d %5.0f %6.0f %6d %8.3f %9.3f %6.2f %9.1f %8.3f\n",
					diag.Step(), diag[waterpark.KeyHour], diag[waterpark.KeyGuests], action,
					next.ResidualDisinfectant, next.Turbidity, next.PH, next.RemainingStock, reward)
				state = next
			}
			fmt.Fprintf(out, "policy %s: total reward %.3f, used %.1f kg\n", p.Name(), total, env.UsedStock())
			return nil
		},
	}
	cmd.Flags().String("policy", "fixed", "Baseline policy: fixed or random")
	return cmd
}
