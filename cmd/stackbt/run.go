package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/stackbt/internal/cli"
	"github.com/aretw0/stackbt/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [tree.yaml]",
	Short: "Tick a tree until it completes",
	Long:  `Loads a tree definition and ticks it, printing the result and the active path after every tick.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		world, _ := cmd.Flags().GetString("world")
		ticks, _ := cmd.Flags().GetInt("ticks")
		interval, _ := cmd.Flags().GetDuration("interval")
		debug, _ := cmd.Flags().GetBool("debug")
		quiet, _ := cmd.Flags().GetBool("quiet")
		redisAddr, _ := cmd.Flags().GetString("redis")
		serve, _ := cmd.Flags().GetString("serve")
		id, _ := cmd.Flags().GetString("id")

		ctx := cli.WatchInterrupts(cmd.Context())
		defer ctx.Stop()

		err := cli.Run(ctx, cli.RunOptions{
			Path:      treePath(args),
			WorldPath: world,
			Ticks:     ticks,
			Interval:  interval,
			Debug:     debug,
			Quiet:     quiet,
			RedisAddr: redisAddr,
			ServeAddr: serve,
			TreeID:    id,
			Out:       os.Stdout,
			Profile:   tui.Profile(os.Stdout),
		})
		if sig := ctx.Caught(); sig != nil {
			fmt.Printf("\nStopped by %v\n", sig)
		}
		if errors.Is(err, cli.ErrRootFailed) {
			os.Exit(2)
		}
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntP("ticks", "n", 0, "Stop after this many ticks (0 runs until the root completes)")
	runCmd.Flags().Duration("interval", 0, "Pause between ticks")
	runCmd.Flags().Bool("debug", false, "Log every frame push, pop and abort to stderr")
	runCmd.Flags().BoolP("quiet", "q", false, "Skip the banner")
	runCmd.Flags().String("redis", "", "Publish snapshots to this Redis address")
	runCmd.Flags().String("serve", "", "Serve snapshots, graph and metrics over HTTP on this address")
	runCmd.Flags().String("id", "", "Tree instance ID (default: random UUID)")
}
