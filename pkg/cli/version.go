package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
	Go      string
	OS      string
	Arch    string
}

// CurrentBuild returns the injected build variables, filled in from the
// module build info where they were not injected.
func CurrentBuild() BuildInfo {
	info := BuildInfo{
		Version: Version,
		Commit:  Commit,
		Date:    BuildDate,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.Version == "dev" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.Commit == "none" {
					info.Commit = setting.Value
				}
			case "vcs.time":
				if info.Date == "unknown" {
					info.Date = setting.Value
				}
			case "vcs.modified":
				if setting.Value == "true" {
					info.Commit += "-dirty"
				}
			}
		}
	}
	return info
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show voodoo version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := CurrentBuild()
			v := info.Version
			if len(v) > 0 && v[0] != 'v' && v != "dev" && v != "(devel)" {
				v = "v" + v
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "voodoo %s (%s, %s)\n", v, info.Commit, info.Date)
			fmt.Fprintf(out, "%s %s/%s\n", info.Go, info.OS, info.Arch)
			return nil
		},
	}
}
