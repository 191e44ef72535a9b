package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/getmockd/voodoo/pkg/logging"
	"github.com/getmockd/voodoo/pkg/script"
	"github.com/getmockd/voodoo/pkg/server"
)

// Flag names. Environment variables use the upper-cased name with
// dashes replaced, prefixed with VOODOO_.
const (
	flagConfig        = "config"
	flagPortRange     = "port-range"
	flagTemplateDir   = "template-dir"
	flagFileDir       = "file-dir"
	flagUseAnyAddr    = "use-any-addr"
	flagGraphQLPath   = "graphql-path"
	flagScriptTimeout = "script-timeout"
	flagVerbose       = "verbose"
	flagLogFormat     = "log-format"
)

// defaultPortRange is the range scanned when no port range is given.
const defaultPortRange = "8080-8090"

var errNoConfig = errors.New("no config given: use --config or VOODOO_CONFIG")

// settings is the resolved configuration of a command.
type settings struct {
	Config        string
	PortRange     server.PortRange
	TemplateDir   string
	FileDirs      []string
	UseAnyAddr    bool
	GraphQLPath   string
	ScriptTimeout time.Duration
	Verbose       bool
	LogFormat     logging.Format
}

func addCommonFlags(flags *pflag.FlagSet) {
	flags.StringP(flagConfig, "c", "", "Config file or directory of config files")
	flags.BoolP(flagVerbose, "v", false, "Enable debug logging")
	flags.String(flagLogFormat, string(logging.FormatText), "Log format: text or json")
}

func addServeFlags(flags *pflag.FlagSet) {
	flags.StringP(flagPortRange, "p", defaultPortRange, `Port or port range to bind, e.g. "8080" or "8080-8090"`)
	flags.StringP(flagTemplateDir, "t", "", "Directory of response templates")
	flags.StringSliceP(flagFileDir, "f", nil, "Directory of static files and file bodies (repeatable)")
	flags.Bool(flagUseAnyAddr, false, "Listen on all interfaces instead of 127.0.0.1")
	flags.String(flagGraphQLPath, server.DefaultGraphQLPath, "Path GraphQL requests are served on")
	flags.Duration(flagScriptTimeout, script.DefaultTimeout, "Time limit for each script response")
}

// readSettings resolves settings from v. Serve-only keys are read only
// when serve is set.
func readSettings(v *viper.Viper, serve bool) (settings, error) {
	s := settings{
		Config:    v.GetString(flagConfig),
		Verbose:   v.GetBool(flagVerbose),
		LogFormat: logging.ParseFormat(v.GetString(flagLogFormat)),
	}
	if s.Config == "" {
		return settings{}, errNoConfig
	}
	if !serve {
		return s, nil
	}

	r, err := server.ParsePortRange(v.GetString(flagPortRange))
	if err != nil {
		return settings{}, fmt.Errorf("invalid --%s: %w", flagPortRange, err)
	}
	s.PortRange = r
	s.TemplateDir = v.GetString(flagTemplateDir)
	s.FileDirs = v.GetStringSlice(flagFileDir)
	s.UseAnyAddr = v.GetBool(flagUseAnyAddr)
	s.GraphQLPath = v.GetString(flagGraphQLPath)
	s.ScriptTimeout = v.GetDuration(flagScriptTimeout)
	if s.ScriptTimeout <= 0 {
		return settings{}, fmt.Errorf("invalid --%s: must be positive", flagScriptTimeout)
	}
	return s, nil
}

func (s settings) logger() *slog.Logger {
	cfg := logging.DefaultConfig()
	if s.Verbose {
		cfg = logging.VerboseConfig()
	}
	cfg.Format = s.LogFormat
	cfg.Output = os.Stderr
	return logging.New(cfg)
}

func (s settings) serverOptions(log *slog.Logger) server.Options {
	return server.Options{
		PortRange:     s.PortRange,
		UseAnyAddr:    s.UseAnyAddr,
		GraphQLPath:   s.GraphQLPath,
		FileDirs:      s.FileDirs,
		TemplateDir:   s.TemplateDir,
		ScriptTimeout: s.ScriptTimeout,
		Logger:        log,
	}
}
