package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	sdfxkernel "github.com/chazu/marrow/pkg/kernel/sdfx"
	"github.com/chazu/marrow/pkg/proxy"
	"github.com/chazu/marrow/pkg/rig"
	"github.com/chazu/marrow/pkg/skeleton"
	"github.com/chazu/marrow/pkg/tessellate"
)

var meshOut string

var meshCmd = &cobra.Command{
	Use:   "mesh <script-or-collection>",
	Short: "Bind proxy geometry and tessellate it to triangle meshes",
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
			log.Warn("modules excluded from compilation", zap.String("reason", verr.Error()))
		}

		k := sdfxkernel.New()
		solids, err := proxy.NewKernelBinder(k).Bind(g, s)
		if err != nil {
			return err
		}
		meshes, err := tessellate.Tessellate(s, solids, k)
		if err != nil {
			return err
		}
		if len(meshes) == 0 {
			return fmt.Errorf("no proxy geometry: enable :proxy bones or elbows on at least one module")
		}

		triangles := 0
		for _, m := range meshes {
			triangles += m.TriangleCount()
			fmt.Fprintf(cmd.OutOrStdout(), "%-40s %d triangle(s)\n", m.JointName, m.TriangleCount())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "meshed %d solid(s), %d triangle(s)\n", len(meshes), triangles)

		if meshOut != "" {
			if err := sdfxkernel.SaveSTL(meshOut, meshes); err != nil {
				return err
			}
			log.Info("mesh written", zap.String("path", meshOut), zap.Int("solids", len(meshes)))
		}
		return nil
	},
}

func init() {
	meshCmd.Flags().StringVarP(&meshOut, "out", "o", "", "write the meshes as a binary STL file")
}
