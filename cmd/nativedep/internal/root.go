package internal

import (
	"fmt"
	"os"

	nativedep "github.com/contriboss/nativedep-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "nativedep",
	Short: "nativedep prepares native dependencies for extension builds",
	Long: `nativedep compiles a bundled native library, or locates a system-installed
copy via pkg-config, and reports the compiler and linker settings the
dependent extension module needs.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "nativedep.yml", "Build configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// loadSetup assembles the dependency and build configuration from the config
// file (when present) with the libcares defaults underneath.
func loadSetup() (nativedep.Dependency, *nativedep.BuildConfig, error) {
	dep := nativedep.Libcares()
	config := &nativedep.BuildConfig{}

	if _, err := os.Stat(configPath); err == nil {
		file, err := nativedep.LoadConfigFile(configPath)
		if err != nil {
			return dep, config, fmt.Errorf("loading %s: %w", configPath, err)
		}
		dep = file.ToDependency(dep)
		config = file.ToBuildConfig()
	}

	if verbose {
		config.Verbose = true
	}
	return dep, config, nil
}

// printOutput writes collected build output lines, coloring warnings.
func printOutput(result *nativedep.BuildResult) {
	warn := color.New(color.FgYellow)
	for _, line := range result.Output {
		if len(line) >= 8 && line[:8] == "warning:" {
			warn.Println(line)
			continue
		}
		fmt.Println(line)
	}
}
