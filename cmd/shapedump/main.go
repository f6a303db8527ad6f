// Command shapedump writes sampled target shapes and converted meshes as
// x,y,z vertex CSV files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shapedump",
		Short: "Export swarm target shapes as vertex CSV",
		Long: `shapedump samples the swarm's target shapes with the same sampler the
simulation uses and writes them as x,y,z CSV. The output can be loaded
back as a mesh with -mesh or shape.mesh_path.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().StringP("output", "o", "-", "Output file (- = stdout)")

	rootCmd.AddCommand(
		newSampleCmd(),
		newConvertCmd(),
	)
	return rootCmd
}
