package main

import (
	"fmt"
	"os"

	"github.com/aretw0/stackbt/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [tree.yaml]",
	Short: "Check a tree definition",
	Long:  `Compiles a tree definition and reports every unknown type, bad parameter, missing child and undefined state.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.Validate(os.Stdout, treePath(args)); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Tree is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
