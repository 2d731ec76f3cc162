package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/inamate/transformer/internal/geometry"
)

func (c *CLI) handlesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "handles",
		Short: "List handle ids usable as drag targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HANDLE\tKIND")
			for _, h := range geometry.AllHandles {
				fmt.Fprintf(w, "%s\t%s\n", h, h.Kind())
			}
			fmt.Fprintf(w, "%s\t%s\n", targetTranslate, "wireframe")
			fmt.Fprintf(w, "%s\t%s\n", targetPointer, "raw")
			return w.Flush()
		},
	}
}
