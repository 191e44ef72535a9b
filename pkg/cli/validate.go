package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/getmockd/voodoo/pkg/config"
	"github.com/getmockd/voodoo/pkg/endpoint"
)

func newValidateCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a config without serving it",
		Long: `Load a config file or directory exactly as run would and report the number
of endpoints it declares. With --verbose every endpoint is listed in
match order.`,
		Example: `  voodoo validate -c endpoints.yml
  voodoo validate -c mocks/ --verbose`,
		Args: cobra.NoArgs,
	}
	addCommonFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		v, err := newViper(cmd.Flags())
		if err != nil {
			return err
		}
		s, err := readSettings(v, false)
		if err != nil {
			return err
		}

		loader := &config.Loader{Functions: o.functions, Logger: s.logger()}
		endpoints, err := loader.Load(s.Config)
		if err != nil {
			return err
		}

		var rest, graphQL int
		for _, e := range endpoints {
			if e.Kind().IsGraphQL() {
				graphQL++
			} else {
				rest++
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d endpoints (%d REST, %d GraphQL)\n", s.Config, len(endpoints), rest, graphQL)
		if s.Verbose {
			printEndpoints(cmd, endpoints)
		}
		return nil
	}
	return cmd
}

func printEndpoints(cmd *cobra.Command, endpoints []*endpoint.Endpoint) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tENDPOINT\tSOURCE")
	for _, e := range endpoints {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Kind(), e, e.Source)
	}
	_ = w.Flush()
}
