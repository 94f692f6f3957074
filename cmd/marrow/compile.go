package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/chazu/marrow/pkg/rig"
	"github.com/chazu/marrow/pkg/skeleton"
)

var compileOut string

var compileCmd = &cobra.Command{
	Use:   "compile <script-or-collection>",
	Short: "Compile a module graph into a joint hierarchy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}

		s, err := skeleton.NewCompiler(skeleton.WithLogger(log)).Compile(g)
		if err != nil {
			var verr *rig.VersionIncompatibleError
			if !errors.As(err, &verr) {
				return err
			}
			// Excluded modules are reported but the rest compiled.
			log.Warn("modules excluded from compilation", zap.String("reason", verr.Error()))
		}

		for _, j := range s.Joints {
			fmt.Fprintf(cmd.OutOrStdout(), "%-40s parent=%-40s pos=(%.3f, %.3f, %.3f)\n",
				j.Name, j.Parent, j.WorldPosition.X, j.WorldPosition.Y, j.WorldPosition.Z)
		}
		for _, c := range s.Constraints {
			fmt.Fprintf(cmd.OutOrStdout(), "constraint: %s follows %s\n", c.ChildRoot, c.Target)
		}

		if compileOut != "" {
			if err := writeSkeleton(compileOut, s); err != nil {
				return err
			}
			log.Info("skeleton written", zap.String("path", compileOut), zap.Int("joints", s.Len()))
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "write the compiled skeleton as YAML")
}

// jointDoc is the YAML shape of one compiled joint.
type jointDoc struct {
	Name          string     `yaml:"name"`
	Parent        string     `yaml:"parent,omitempty"`
	Position      [3]float64 `yaml:"position"`
	Orientation   [4]float64 `yaml:"orientation"`
	RotationOrder string     `yaml:"rotationOrder"`
	Radius        float64    `yaml:"radius,omitempty"`
	ModuleKind    string     `yaml:"moduleKind,omitempty"`
	ConstrainedTo string     `yaml:"constrainedTo,omitempty"`
}

func writeSkeleton(path string, s *skeleton.Skeleton) error {
	docs := make([]jointDoc, 0, s.Len())
	for _, j := range s.Joints {
		d := jointDoc{
			Name:          j.Name,
			Parent:        j.Parent,
			Position:      [3]float64{j.WorldPosition.X, j.WorldPosition.Y, j.WorldPosition.Z},
			Orientation:   [4]float64{j.WorldOrientation.W, j.WorldOrientation.X, j.WorldOrientation.Y, j.WorldOrientation.Z},
			RotationOrder: j.RotationOrder.String(),
			Radius:        j.Radius,
			ConstrainedTo: j.ConstrainedTo,
		}
		if !j.Module.IsZero() {
			d.ModuleKind = j.ModuleKind.String()
		}
		docs = append(docs, d)
	}
	data, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("write skeleton: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write skeleton: %w", err)
	}
	return nil
}
