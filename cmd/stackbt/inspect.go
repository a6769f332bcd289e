package main

import (
	"fmt"
	"os"

	"github.com/aretw0/stackbt/internal/cli"
	"github.com/aretw0/stackbt/internal/presentation/tui"
	"github.com/aretw0/stackbt/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [tree-id]",
	Short: "Show snapshots published to Redis",
	Long:  `Lists the trees publishing to Redis, or shows the last result and active path of one of them.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("redis")
		prefix, _ := cmd.Flags().GetString("prefix")
		jsonOut, _ := cmd.Flags().GetBool("json")

		opts := cli.InspectOptions{
			RedisAddr: addr,
			Prefix:    prefix,
			JSON:      jsonOut,
			Profile:   tui.Profile(os.Stdout),
		}
		if len(args) > 0 {
			opts.TreeID = args[0]
		}
		if err := cli.Inspect(cmd.Context(), os.Stdout, opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("redis", "localhost:6379", "Redis address")
	inspectCmd.Flags().String("prefix", redis.DefaultPrefix, "Snapshot key prefix")
	inspectCmd.Flags().Bool("json", false, "Print JSON")
}
