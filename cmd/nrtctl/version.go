package main

import (
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"

	"github.com/joshuapare/nrtkit/meminfo"
	"github.com/joshuapare/nrtkit/memsys"
)

// Set through -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const wazeroModule = "github.com/tetratelabs/wazero"

// VersionInfo is what the version command reports.
type VersionInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	Built      string `json:"built"`
	Go         string `json:"go"`
	Platform   string `json:"platform"`
	Debug      bool   `json:"nrtdebug"`
	HeaderSize int    `json:"header_size"`
	Wazero     string `json:"wazero,omitempty"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and runtime build configuration",
		Long: `The version command prints the nrtctl version together with how the
runtime was built: whether the nrtdebug tag (refcount assertions and debug
events) is on, the record header size, and the wazero version in use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

func collectVersion() VersionInfo {
	info := VersionInfo{
		Version:    version,
		Commit:     commit,
		Built:      date,
		Go:         runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		Debug:      memsys.DebugEnabled,
		HeaderSize: meminfo.HeaderSize,
	}
	if bi, ok := rdebug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			if dep.Path == wazeroModule {
				info.Wazero = dep.Version
			}
		}
	}
	return info
}

func runVersion() error {
	info := collectVersion()
	if jsonOut {
		return printJSON(info)
	}
	debugState := "off"
	if info.Debug {
		debugState = "on"
	}
	printInfo("nrtctl %s\n", info.Version)
	printInfo("  commit:      %s\n", info.Commit)
	printInfo("  built:       %s\n", info.Built)
	printInfo("  go:          %s %s\n", info.Go, info.Platform)
	printInfo("  nrtdebug:    %s\n", debugState)
	printInfo("  header size: %d bytes\n", info.HeaderSize)
	if info.Wazero != "" {
		printInfo("  wazero:      %s\n", info.Wazero)
	}
	return nil
}
