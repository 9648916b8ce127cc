package main

import (
	"github.com/joeydtaylor/steeze-relay/pkg/serverfx"
	"github.com/spf13/cobra"
)

var (
	manifestPath string
	opts         = serverfx.DefaultOptions()
)

var rootCmd = &cobra.Command{
	Use:   "steeze-relay",
	Short: "Webhook relay with protocol-selectable fan-out",
	Long: `steeze-relay accepts webhook deliveries and forwards each one to the sink
named by its ?protocol= query parameter: HTTP, AMQP, AZURE-AMQP, SQL or LAMBDA.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "manifest file (default: $RELAY_MANIFEST or relay.toml)")
	rootCmd.AddCommand(serveCmd, validateCmd)
}

// resolveManifest makes the --manifest flag win over the environment.
func resolveManifest() string {
	if manifestPath != "" {
		opts.DefaultManifest = manifestPath
		opts.ManifestEnv = ""
	}
	return opts.ManifestPath()
}
