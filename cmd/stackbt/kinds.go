package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/aretw0/stackbt/pkg/registry"
	"github.com/spf13/cobra"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the builtin leaf kinds",
	Run: func(cmd *cobra.Command, args []string) {
		reg := registry.Default()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, kind := range reg.Kinds() {
			e, _ := reg.Lookup(kind)
			fmt.Fprintf(w, "%s\t%s\n", kind, e.Description)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}
