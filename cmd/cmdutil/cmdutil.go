// Package cmdutil holds helpers shared by the subcommands.
package cmdutil

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/LegacyCodeHQ/quire/internal/workspace"
	"github.com/spf13/cobra"
)

// FlagManifest is the persistent flag naming the manifest file.
const FlagManifest = "manifest"

// AddManifestFlag registers the persistent --manifest/-m flag on cmd.
func AddManifestFlag(cmd *cobra.Command, target *string) {
	cmd.PersistentFlags().StringVarP(target, FlagManifest, "m", "", "Manifest file (default: quire.yaml, quire.yml, quire.toml or quire.hcl in the current directory)")
}

// ManifestPath returns the value of the manifest flag inherited by cmd.
func ManifestPath(cmd *cobra.Command) string {
	if flag := cmd.Flag(FlagManifest); flag != nil {
		return flag.Value.String()
	}
	return ""
}

// OpenWorkspace loads the manifest selected for cmd.
func OpenWorkspace(cmd *cobra.Command) (*workspace.Workspace, error) {
	return workspace.Open(Context(cmd), ManifestPath(cmd))
}

// Context returns the command context, falling back to Background.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// SignalContext derives a context cancelled on interrupt or termination.
func SignalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(Context(cmd), os.Interrupt, syscall.SIGTERM)
}
