// Package cli implements the rdfbind command-line interface.
//
// The commands move graphs between the available backends and syntaxes,
// replace blank nodes with IRIs and summarise the resources of a graph
// through the loose-mode unmarshaller.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdfbind/config"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:           "rdfbind",
		Short:         "rdfbind converts and inspects RDF graphs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			level, err := cfg.Level()
			if err != nil {
				return err
			}
			if verbose {
				level = log.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("rdfbind %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("RDFBIND_CONFIG"), "TOML configuration file")

	root.AddCommand(newConvertCmd())
	root.AddCommand(newSkolemizeCmd())
	root.AddCommand(newInspectCmd())
	return root
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
