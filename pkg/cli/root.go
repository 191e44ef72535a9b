package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/getmockd/voodoo/pkg/response"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// EnvPrefix prefixes the environment variables that override flags.
const EnvPrefix = "VOODOO"

// Option configures the command tree.
type Option func(*options)

type options struct {
	functions map[string]response.DynamicFunc
}

// WithFunctions registers the Go functions "dynamic:" responses may name.
func WithFunctions(funcs map[string]response.DynamicFunc) Option {
	return func(o *options) { o.functions = funcs }
}

// NewRootCmd builds the voodoo command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	root := &cobra.Command{
		Use:   "voodoo",
		Short: "voodoo is a mock HTTP and GraphQL server for test suites",
		Long: `voodoo serves canned, templated, scripted and computed responses for
declared HTTP and GraphQL endpoints so test suites can run without the real
backend services.

Flags can also be set through environment variables prefixed with VOODOO_,
for example VOODOO_PORT_RANGE=9000-9010.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(&o), newValidateCmd(&o), newVersionCmd())
	return root
}

// Execute runs the command tree against os.Args.
func Execute(opts ...Option) {
	if err := NewRootCmd(opts...).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newViper binds flags so that VOODOO_<FLAG_NAME> overrides their
// defaults while explicit flags still win.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}
	return v, nil
}
