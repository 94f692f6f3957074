package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/marrow/pkg/collection"
	"github.com/chazu/marrow/pkg/rig"
)

var evalOut string

var evalCmd = &cobra.Command{
	Use:   "eval <script>",
	Short: "Evaluate a module script and print the resulting graph",
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
		log.Debug("graph loaded", zap.Int("modules", g.ModuleCount()))

		printGraph(cmd, g)

		if evalOut != "" {
			if err := collection.Save(evalOut, g); err != nil {
				return err
			}
			log.Info("collection written", zap.String("path", evalOut))
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVarP(&evalOut, "out", "o", "", "write the graph as a collection file")
}

func printGraph(cmd *cobra.Command, g *rig.ModuleGraph) {
	for _, m := range g.Sorted() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  kind=%s nodes=%d plane=%s",
			m.Name(), m.Kind, len(m.Nodes), m.Descriptor.CreationPlane)
		if m.Mirrored() {
			fmt.Fprintf(cmd.OutOrStdout(), " peer=%s", m.MirrorPeerName)
		}
		if e, ok := g.Parentage.Edge(m.ID); ok {
			fmt.Fprintf(cmd.OutOrStdout(), " parent=%s[%d] (%s)", e.ParentName, e.ParentNode, e.Kind)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
}
