package main

import (
	"fmt"
	"strings"

	"github.com/joeydtaylor/steeze-relay/pkg/core"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the manifest, apply the environment and print the resulting routes and sinks",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveManifest()
		cfg, err := core.LoadConfig(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "manifest: %s\n", path)
		fmt.Fprintf(out, "listen:   %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(out, "timing:   queue=%s record=%s\n", cfg.Dispatch.QueueTiming, cfg.Dispatch.RecordTiming)
		for _, rt := range cfg.Routes {
			fmt.Fprintf(out, "route:    %s %s source=%s prefixes=[%s]\n",
				rt.Method, rt.Path, rt.Source, strings.Join(rt.HeaderPrefixes, ","))
		}
		enabled := cfg.Sinks.Enabled()
		if len(enabled) == 0 {
			fmt.Fprintln(out, "sinks:    none (every protocol answers 503)")
			return nil
		}
		fmt.Fprintf(out, "sinks:    %s\n", strings.Join(enabled, ", "))
		return nil
	},
}
