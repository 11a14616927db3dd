package main

import (
	"fmt"

	"github.com/minimem/minimem/internal/version"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", version.AppName, version.Detailed())
		},
	})
}
