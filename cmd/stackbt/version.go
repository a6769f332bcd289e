package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/stackbt"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of stackbt",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stackbt version %s\n", strings.TrimSpace(stackbt.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
