package main

import (
	"fmt"

	"github.com/minimem/minimem/internal/memdir"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInitCmd())
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a memory directory",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			dir := openDir()
			if err := dir.Init(); err != nil {
				fail("%v", err)
			}

			info := memdir.Info(dir.Root)
			fmt.Printf("Initialized %s (%s)\n", cyan(dir.Root), info.Type)
			if info.Type == memdir.ProjectBound {
				fmt.Printf("Directory is inside the git repository at %s and will be synced by it.\n", info.GitRoot)
			}
		},
	}
}
