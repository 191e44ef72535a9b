package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/voodoo/pkg/config"
	"github.com/getmockd/voodoo/pkg/server"
)

func newRunCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Serve the endpoints declared in a config",
		Long: `Load the endpoints declared in a config file or directory and serve them
until interrupted. The first free port of --port-range is used and its base
URL is stored in the cache under "mockServer".`,
		Example: `  # Serve a single config file
  voodoo run -c endpoints.yml

  # Serve a directory of configs on a fixed port with templates
  voodoo run -c mocks/ -p 9000 -t templates/

  # Serve static files from two directories
  voodoo run -c endpoints.yml -f fixtures -f public`,
		Args: cobra.NoArgs,
	}
	addCommonFlags(cmd.Flags())
	addServeFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		v, err := newViper(cmd.Flags())
		if err != nil {
			return err
		}
		s, err := readSettings(v, true)
		if err != nil {
			return err
		}
		log := s.logger()

		loader := &config.Loader{Functions: o.functions, Logger: log}
		endpoints, err := loader.Load(s.Config)
		if err != nil {
			return err
		}

		srv, err := server.New(endpoints, s.serverOptions(log))
		if err != nil {
			return err
		}
		if err := srv.Listen(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "voodoo listening on %s\n", srv.URL())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	}
	return cmd
}
