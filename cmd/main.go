package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paddle",
	Short: "paddle ",
	Long:  `Auction bid gateway for the storefront`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("paddle")
		_ = cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
