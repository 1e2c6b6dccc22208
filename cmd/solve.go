/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowgrid/pipeflow/friction"
	"github.com/flowgrid/pipeflow/network"
	"github.com/flowgrid/pipeflow/results"
	"github.com/flowgrid/pipeflow/solver"
)

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run the steady-state solve on a YAML network definition",
	Long: `
Reads a network definition file, runs the hydraulic (and optionally
thermal) Newton iteration and prints the per-element results,

pipeflow solve -f network.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		netFile, err := cmd.Flags().GetString("networkFile")
		if err != nil {
			panic(err)
		}
		if len(netFile) == 0 {
			fmt.Println("error: must supply a network definition file (-f, --networkFile)")
			printExample()
			os.Exit(1)
		}
		if prof, _ := cmd.Flags().GetBool("profile"); prof {
			defer profile.Start().Stop()
		}
		mode := solver.Hydraulics
		if m, _ := cmd.Flags().GetString("mode"); m == "all" {
			mode = solver.All
		}
		outFile, _ := cmd.Flags().GetString("output")
		verbose, _ := cmd.Flags().GetBool("verbose")
		RunSolve(netFile, outFile, mode, verbose)
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	SolveCmd.Flags().StringP("networkFile", "f", "", "YAML network definition file")
	SolveCmd.Flags().StringP("output", "o", "", "write results as CSV to this file")
	SolveCmd.Flags().StringP("mode", "m", "hydraulics", "balances to solve: hydraulics or all (adds heat transfer)")
	SolveCmd.Flags().BoolP("verbose", "v", false, "print per-iteration residuals")
	SolveCmd.Flags().Bool("profile", false, "write a CPU profile for the solve")
}

func RunSolve(netFile, outFile string, mode solver.Mode, verbose bool) {
	net, err := network.ParseFile(netFile)
	if err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
	built, err := net.Build()
	if err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}

	opts := solver.DefaultOptions()
	opts.Mode = mode
	opts.Verbose = verbose
	opts.MaxIterations = viper.GetInt("max_iterations")
	opts.TolP = viper.GetFloat64("tol_p")
	opts.TolV = viper.GetFloat64("tol_v")
	opts.TolT = viper.GetFloat64("tol_t")
	opts.Damping = viper.GetFloat64("damping")
	model, ok := friction.ParseModel(viper.GetString("friction_model"))
	if !ok {
		fmt.Printf("error: unknown friction model %q\n", viper.GetString("friction_model"))
		os.Exit(1)
	}
	opts.FrictionModel = model

	fmt.Printf("Solving %q: %d junctions, %d branch rows, fluid %s\n",
		net.Name, built.Nodes.Len(), built.Branches.Len(), built.Fluid.Name)
	rep, err := solver.Solve(built, opts)
	if err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Converged: %d hydraulic iterations", rep.HydraulicIterations)
	if mode == solver.All {
		fmt.Printf(", %d thermal iterations", rep.ThermalIterations)
	}
	fmt.Printf(", residual = %11.4e\n\n", rep.ResidualNorm)

	res := results.Extract(built.Nodes, built.Branches, built.Lookups, built.Fluid)
	for _, r := range res {
		fmt.Printf("%-14s %3d: v = %9.4f m/s, mdot = %10.5f kg/s, p %8.4f -> %8.4f bar, T %7.2f -> %7.2f K\n",
			r.Kind, r.Index, r.VMeanMPerS, r.MdotFromKgPerS, r.PFromBar, r.PToBar, r.TFromK, r.TToK)
	}
	if len(outFile) != 0 {
		if err := results.WriteCSVFile(res, outFile); err != nil {
			fmt.Printf("error: %s\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nResults written to %s\n", outFile)
	}
}

func printExample() {
	fmt.Print(`
########################################
name: two-pipe example
fluid: water
junctions:
  - {name: j0, pn_bar: 1.0, t_k: 293.15}
  - {name: j1, pn_bar: 1.0, t_k: 293.15}
  - {name: j2, pn_bar: 1.0, t_k: 293.15}
pipes:
  - {from: j0, to: j1, length_m: 100, diameter_m: 0.05, k_mm: 0.1}
  - {from: j1, to: j2, length_m: 100, diameter_m: 0.05, k_mm: 0.1}
ext_grids:
  - {junction: j0, p_bar: 2.0, t_k: 293.15}
sinks:
  - {junction: j2, mdot_kg_per_s: 1.0}
########################################
`)
}
