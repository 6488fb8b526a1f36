package cli

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdfbind/graph"
	"github.com/geoknoesis/rdfbind/rdf"
)

type skolemizeOpts struct {
	from   string
	output string
	prefix string
	uuid   bool
}

func newSkolemizeCmd() *cobra.Command {
	var opts skolemizeOpts
	cmd := &cobra.Command{
		Use:   "skolemize IN",
		Short: "Replace blank nodes with IRIs",
		Long:  "Skolemize names every blank node of IN and writes the result as N-Triples.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSkolemize(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.from, "from", "f", "", "input format or media type (default: from the file extension)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", stdio, "output file")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "IRI prefix for skolem names (default: from the configuration)")
	cmd.Flags().BoolVar(&opts.uuid, "uuid", false, "name nodes with name-based UUIDs under the prefix")
	return cmd
}

func runSkolemize(cmd *cobra.Command, in string, opts skolemizeOpts) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx))

	from, err := resolveFormat(opts.from, in)
	if err != nil {
		return err
	}
	g, err := readGraph(ctx, in, from)
	if err != nil {
		return err
	}
	prefix := opts.prefix
	if prefix == "" {
		prefix = configFromContext(ctx).Skolem.Prefix
	}
	n, err := graph.Skolemize(g, skolemNamer(prefix, opts.uuid))
	if err != nil {
		return err
	}
	if err := writeGraph(opts.output, cmd.OutOrStdout(), g, rdf.FormatNTriples); err != nil {
		return err
	}
	prog.done("skolemized", "nodes", n)
	return nil
}

// skolemNamer maps blank labels under prefix. With hashed set the label is
// replaced by a SHA-1 name-based UUID so names do not leak parser labels.
func skolemNamer(prefix string, hashed bool) func(string) string {
	if !hashed {
		return func(label string) string { return prefix + label }
	}
	space := uuid.NewSHA1(uuid.NameSpaceURL, []byte(prefix))
	return func(label string) string {
		return prefix + uuid.NewSHA1(space, []byte(label)).String()
	}
}
