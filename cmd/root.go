// Package cmd provides the command-line entry point. Grounded on the
// teacher's `cmd/root.go` (cobra.Command + Execute()), reduced to the
// spec's single optional positional argument: "No flags, no
// environment variables, no exit codes beyond 0/crash" (spec §6). The
// teacher's profiling/config-file flags are kept as persistent flags
// since they are ambient process concerns, not simulation behaviour,
// and the spec only forbids flags that would alter simulation
// semantics.
package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/Arti-Code/biosynth/config"
	"github.com/Arti-Code/biosynth/runner"
)

var (
	configFile string
	cpuProfile string
	memProfile string
	statsDB    string
	seed       int64
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "biosynth [sim-file]",
	Short: "biosynth: artificial-life population simulator",
	Long: `biosynth runs a closed 2D world of evolving agents and regenerating
plant resources. Given no argument it starts a fresh population; given
the path to a .sim snapshot it resumes from that file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cpuProfile != "" {
			f, err := os.Create(cpuProfile)
			if err != nil {
				return fmt.Errorf("creating CPU profile: %w", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("starting CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		cli := config.CLIConfig{
			ConfigFile: configFile,
			CPUProfile: cpuProfile,
			MemProfile: memProfile,
			StatsDB:    statsDB,
			Seed:       seed,
			LogLevel:   logLevel,
		}
		if len(args) == 1 {
			cli.SimPath = args[0]
		}

		app, err := config.NewAppConfig(cli)
		if err != nil {
			return err
		}

		err = runner.Run(app, log.New(os.Stdout, "", log.LstdFlags))

		if memProfile != "" {
			f, ferr := os.Create(memProfile)
			if ferr != nil {
				log.Printf("creating memory profile: %v", ferr)
			} else {
				defer f.Close()
				if werr := pprof.WriteHeapProfile(f); werr != nil {
					log.Printf("writing memory profile: %v", werr)
				}
			}
		}

		return err
	},
}

// Execute is the process entry point called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a TOML settings override file")
	rootCmd.PersistentFlags().StringVar(&cpuProfile, "cpuprofile", "", "write a CPU profile to this path")
	rootCmd.PersistentFlags().StringVar(&memProfile, "memprofile", "", "write a memory profile to this path")
	rootCmd.PersistentFlags().StringVar(&statsDB, "stats-db", "", "SQLite path to log bucketed statistics to")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "PRNG seed (0 uses the current time)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log verbosity: info or debug")
}
