package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stackbt",
	Short: "stackbt runs and inspects behavior trees and state machines",
	Long:  `stackbt loads YAML tree definitions, ticks them, and renders their structure and live execution path.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("world", "", "YAML file overlaid on the definition's world")
}

// treePath returns the definition path: the first argument, or tree.yaml.
func treePath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "tree.yaml"
}
