package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/shapes"
)

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample <sphere|torus|mesh>",
		Short: "Sample points from a target shape",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			count, _ := cmd.Flags().GetInt("count")
			seed, _ := cmd.Flags().GetInt64("seed")
			mesh, _ := cmd.Flags().GetString("mesh")

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if mesh != "" {
				cfg.Shape.MeshPath = mesh
			}

			return withOutput(cmd, func(w io.Writer) error {
				return runSample(w, cfg.Shape, args[0], count, seed)
			})
		},
	}

	cmd.Flags().IntP("count", "n", 1000, "Number of points")
	cmd.Flags().Int64("seed", 1, "RNG seed")
	cmd.Flags().String("mesh", "", "OBJ or CSV vertex file for the mesh shape")
	return cmd
}

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <file.obj>",
		Short: "Convert OBJ vertices to vertex CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vertices, err := shapes.LoadVertices(args[0])
			if err != nil {
				return err
			}
			return withOutput(cmd, func(w io.Writer) error {
				return writeVertices(w, vertices)
			})
		},
	}
}

// runSample fills count points of the named shape and writes them to w.
// Naming the mesh shape without a loadable mesh is an error rather than
// the silent sphere fallback the simulation uses.
func runSample(w io.Writer, cfg config.ShapeConfig, name string, count int, seed int64) error {
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	shape := shapes.ParseShape(name)
	if string(shape) != name {
		return fmt.Errorf("unknown shape %q", name)
	}

	sampler := shapes.NewSampler(cfg, rand.New(rand.NewSource(seed)))
	if cfg.MeshPath != "" {
		vertices, err := shapes.LoadVertices(cfg.MeshPath)
		if err != nil {
			return err
		}
		sampler.SetMesh(vertices)
	}

	dst := make([]float32, 3*count)
	if !sampler.Fill(shape, dst) {
		return fmt.Errorf("shape %q has no mesh loaded (use --mesh)", name)
	}
	return writeVertices(w, dst)
}

func writeVertices(w io.Writer, flat []float32) error {
	rows := shapes.ToVertices(flat)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing vertices: %w", err)
	}
	return nil
}

// withOutput opens the --output destination and passes it to fn.
func withOutput(cmd *cobra.Command, fn func(io.Writer) error) error {
	path, _ := cmd.Flags().GetString("output")
	if path == "" || path == "-" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
