package main

import (
	"fmt"
	"os"

	"github.com/aretw0/stackbt/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [tree.yaml]",
	Short: "Export the tree as a Mermaid chart",
	Long:  `Outputs a Mermaid diagram (graph TD) of the node tree. With --ticks the tree is run first and its active path is highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		world, _ := cmd.Flags().GetString("world")
		ticks, _ := cmd.Flags().GetInt("ticks")

		err := cli.Graph(cmd.Context(), os.Stdout, cli.GraphOptions{
			Path:      treePath(args),
			WorldPath: world,
			Ticks:     ticks,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().IntP("ticks", "n", 0, "Run this many ticks and highlight the active path")
}
