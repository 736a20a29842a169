package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Tanmoy095/LogiSynapse/services/emission-optimizer/internal/models"
	"github.com/spf13/cobra"
)

var baselinesCmd = &cobra.Command{
	Use:   "baselines",
	Short: "Record missing original and current snapshots, then exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := offlineService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		changed, err := svc.EnsureBaselines(cmd.Context())
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintln(cmd.OutOrStdout(), "baselines updated")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "baselines already complete")
		}
		return nil
	},
}

var policyFlags models.PolicyInput

var optimizeCmd = &cobra.Command{
	Use:   "optimize <shipment-id>",
	Short: "Print the carrier comparison for one shipment",
	Example: `  emission-optimizer optimize SHP001
  emission-optimizer optimize SHP001 --sla-due-date 2026-10-20 --budget-cap-usd 900`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := offlineService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := svc.Optimize(cmd.Context(), args[0], cliPolicy(cmd))
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the emission and cost dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := offlineService(cmd)
		if err != nil {
			return err
		}
		defer closeStore()

		d, err := svc.Dashboard(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), d)
	},
}

func init() {
	f := optimizeCmd.Flags()
	policyFlags.SLADueDate = f.String("sla-due-date", "", "deliver by this date (YYYY-MM-DD)")
	policyFlags.SLAPriority = f.String("sla-priority", "", "informational priority label")
	policyFlags.BudgetCapUSD = f.Float64("budget-cap-usd", 0, "absolute cost ceiling")
	policyFlags.BudgetIncreaseMaxPct = f.Float64("budget-increase-max-pct", models.DefaultBudgetIncreaseMaxPct, "allowed cost increase over current")
	policyFlags.EmissionReductionMinPct = f.Float64("emission-reduction-min-pct", models.DefaultEmissionReductionMinPct, "required emission reduction")
}

// cliPolicy keeps only the policy flags the user actually passed.
func cliPolicy(cmd *cobra.Command) *models.Policy {
	f := cmd.Flags()
	var in models.PolicyInput
	if f.Changed("sla-due-date") {
		in.SLADueDate = policyFlags.SLADueDate
	}
	if f.Changed("sla-priority") {
		in.SLAPriority = policyFlags.SLAPriority
	}
	if f.Changed("budget-cap-usd") {
		in.BudgetCapUSD = policyFlags.BudgetCapUSD
	}
	if f.Changed("budget-increase-max-pct") {
		in.BudgetIncreaseMaxPct = policyFlags.BudgetIncreaseMaxPct
	}
	if f.Changed("emission-reduction-min-pct") {
		in.EmissionReductionMinPct = policyFlags.EmissionReductionMinPct
	}
	return in.Policy()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
