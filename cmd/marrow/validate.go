package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/marrow/pkg/rig"
)

var validateCmd = &cobra.Command{
	Use:   "validate <script-or-collection>",
	Short: "Check a module graph for structural problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGraph(args[0])
		if err != nil {
			return err
		}

		findings := rig.ValidateGraph(g)
		for _, m := range g.Sorted() {
			for _, v := range rig.ValidateDescriptor(m.Descriptor) {
				v.ModuleID = m.ID
				findings = append(findings, v)
			}
		}
		if ids := rig.IncompatibleModules(g, rig.CurrentSchemaVersion); len(ids) > 0 {
			for _, id := range ids {
				findings = append(findings, rig.ValidationError{
					ModuleID: id,
					Field:    "schemaVersion",
					Message:  fmt.Sprintf("below required schema version %d; excluded from compilation", rig.CurrentSchemaVersion),
				})
			}
		}

		if len(findings) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d module(s), %d edge(s)\n",
				g.ModuleCount(), len(g.Parentage.Edges()))
			return nil
		}
		for _, v := range findings {
			fmt.Fprintln(cmd.ErrOrStderr(), v.Error())
		}
		return fmt.Errorf("%d validation finding(s)", len(findings))
	},
}
