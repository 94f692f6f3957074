package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/marrow/pkg/collection"
	"github.com/chazu/marrow/pkg/engine"
	"github.com/chazu/marrow/pkg/rig"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "marrow",
		Short: "Parametric rig-module builder and skeleton compiler",
		Long: `marrow builds parametric rig modules (joint chains, splines,
hinges) from Lisp scripts or saved YAML collections, keeps mirrored
pairs in sync, and compiles the module graph into a joint hierarchy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(evalCmd, compileCmd, validateCmd, meshCmd, watchCmd)
}

// newLogger builds the CLI logger; debug level with --verbose.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// loadGraph reads a module graph from path: a .yaml/.yml collection is
// decoded directly, anything else is evaluated as a marrow Lisp script.
func loadGraph(path string) (*rig.ModuleGraph, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return collection.Load(path)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		msgs := make([]string, len(evalErrs))
		for i, e := range evalErrs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%s: %s", path, strings.Join(msgs, "; "))
	}
	return g, nil
}
