package internal

import (
	"context"

	nativedep "github.com/contriboss/nativedep-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the vendored dependency tree",
	RunE:  runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	dep, config, err := loadSetup()
	if err != nil {
		return err
	}

	step := nativedep.NewBuildStep(dep, config, nativedep.NewCompilerDriver(nativedep.DetectToolchain()))

	result, err := step.Clean(context.Background())
	printOutput(result)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("%s cleaned\n", dep.Name)
	return nil
}
