package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func profilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in benchmark profiles",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range profileNames() {
				p := profiles[name]
				fmt.Println(name)
				info("managers:      %d", p.Managers)
				info("clients:       %d", p.Clients)
				info("duration:      %s", p.Duration)
				info("refresh rate:  %.1f /s per manager", p.RefreshRate)
				info("op latency:    %s", p.OpLatency)
				info("failure rate:  %.1f%%", p.FailureRate*100)
				if p.MaxProcs > 0 {
					info("max procs:     %d", p.MaxProcs)
				}
				fmt.Println()
			}
			info("Select one with 'loadbench run --profile <name>'.")
		},
	}
}
