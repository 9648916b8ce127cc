package main

import (
	"github.com/joeydtaylor/steeze-relay/pkg/serverfx"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook relay",
	RunE: func(cmd *cobra.Command, args []string) error {
		resolveManifest()
		app := fx.New(serverfx.Module(opts))
		if err := app.Err(); err != nil {
			return err
		}
		app.Run()
		return nil
	},
}
