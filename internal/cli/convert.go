package cli

import (
	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdfbind/graph"
)

type convertOpts struct {
	from    string
	to      string
	backend string
}

func newConvertCmd() *cobra.Command {
	var opts convertOpts
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert a graph between syntaxes",
		Long:  "Convert reads IN with a backend that understands its syntax and writes OUT. Use - for standard input or output.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], args[1], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.from, "from", "f", "", "input format or media type (default: from the file extension)")
	cmd.Flags().StringVarP(&opts.to, "to", "t", "", "output format or media type (default: from the file extension)")
	cmd.Flags().StringVarP(&opts.backend, "backend", "b", "", "copy through this backend: mem, quad or jsonld")
	return cmd
}

func runConvert(cmd *cobra.Command, in, out string, opts convertOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	from, err := resolveFormat(opts.from, in)
	if err != nil {
		return err
	}
	to, err := resolveFormat(opts.to, out)
	if err != nil {
		return err
	}
	g, err := readGraph(ctx, in, from)
	if err != nil {
		return err
	}
	if opts.backend != "" {
		b, err := backendByName(opts.backend)
		if err != nil {
			return err
		}
		dst := b.NewGraph()
		if err := graph.Copy(dst, g); err != nil {
			return err
		}
		logger.Debug("copied graph", "backend", b.Name(), "triples", dst.Len())
		g = dst
	}
	bindPrefixes(g, configFromContext(ctx).Namespaces)
	if err := writeGraph(out, cmd.OutOrStdout(), g, to); err != nil {
		return err
	}
	prog.done("converted", "from", from, "to", to, "triples", g.Len())
	return nil
}
