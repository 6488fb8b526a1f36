package cli

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdfbind/bind"
	"github.com/geoknoesis/rdfbind/resource"
	"github.com/geoknoesis/rdfbind/shape"
)

func newInspectCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "inspect IN",
		Short: "Summarise the root resources of a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], from)
		},
	}
	cmd.Flags().StringVarP(&from, "from", "f", "", "input format or media type (default: from the file extension)")
	return cmd
}

func runInspect(cmd *cobra.Command, in, fromFlag string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	from, err := resolveFormat(fromFlag, in)
	if err != nil {
		return err
	}
	g, err := readGraph(ctx, in, from)
	if err != nil {
		return err
	}
	opts := append(configFromContext(ctx).Options(logger), bind.OptLooseRoots(), bind.OptLenientLiterals())
	u := bind.NewUnmarshaller(shape.NewRegistry(), opts...)
	roots, err := u.Unmarshal(g, reflect.TypeFor[*resource.Any]())
	if err != nil {
		return err
	}
	for _, r := range roots {
		writeSummary(cmd.OutOrStdout(), r.(*resource.Any))
	}
	prog.done("inspected", "triples", g.Len(), "roots", len(roots))
	return nil
}

func writeSummary(w io.Writer, a *resource.Any) {
	name := string(a.About)
	if name == "" {
		name = "[]"
	}
	types := make([]string, 0, len(a.Types()))
	for _, t := range a.Types() {
		types = append(types, string(t))
	}
	fmt.Fprintf(w, "%s\n", name)
	if len(types) > 0 {
		fmt.Fprintf(w, "  types: %s\n", strings.Join(types, ", "))
	}
	a.Range(func(q resource.QName, v any) bool {
		fmt.Fprintf(w, "  %s: %s\n", q, describe(v))
		return true
	})
}

func describe(v any) string {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = describe(e)
		}
		return strings.Join(parts, ", ")
	case *resource.Any:
		if x.About != "" {
			return "<" + string(x.About) + ">"
		}
		return fmt.Sprintf("[%d properties]", x.Len())
	case resource.URI:
		return "<" + string(x) + ">"
	default:
		return fmt.Sprintf("%v", x)
	}
}
