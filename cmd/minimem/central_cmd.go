package main

import (
	"fmt"

	"github.com/minimem/minimem/internal/central"
	"github.com/spf13/cobra"
)

func init() {
	centralCmd := &cobra.Command{
		Use:   "central",
		Short: "Manage the shared central repository",
	}
	centralCmd.AddCommand(newCentralInitCmd())
	centralCmd.AddCommand(newCentralValidateCmd())
	rootCmd.AddCommand(centralCmd)
}

func newCentralInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [PATH]",
		Short: "Bootstrap a central repository",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := central.Init(args[0])
			if !result.Success {
				fail("%s", result.Message)
			}
			if result.Created {
				fmt.Printf("%s %s\n", green("Created"), result.Message)
			} else {
				fmt.Println(result.Message)
			}
		},
	}
}

func newCentralValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [PATH]",
		Short: "Validate a central repository",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := central.Validate(args[0])
			for _, w := range result.Warnings {
				fmt.Printf("%s: %s\n", yellow("WARN"), w)
			}
			if !result.Valid {
				for _, e := range result.Errors {
					fmt.Printf("%s: %s\n", red("ERROR"), e)
				}
				fail("central repository is not usable")
			}
			fmt.Printf("%s central repository is valid\n", green("OK"))
		},
	}
}
