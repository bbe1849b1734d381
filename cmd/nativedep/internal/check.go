package internal

import (
	"context"
	"fmt"

	nativedep "github.com/contriboss/nativedep-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var checkUseSystem bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify build tools and the system dependency version",
	Long: `Check verifies that the external tools the configured build needs are on
PATH. With --use-system it also runs the pkg-config version check against the
required minimum.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkUseSystem, "use-system", false, "Check the system-provided library via pkg-config")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	dep, config, err := loadSetup()
	if err != nil {
		return err
	}
	if checkUseSystem {
		config.UseSystemLib = true
	}

	toolchain := nativedep.DetectToolchain()
	ok := color.New(color.FgGreen)

	tools := nativedep.RequiredTools(config, toolchain)
	if err := nativedep.CheckRequiredTools(tools); err != nil {
		return err
	}
	for _, tool := range tools {
		ok.Printf("found %s\n", tool.Name)
	}

	if config.UseSystemLib {
		pc := &nativedep.PkgConfig{}
		if err := pc.VersionCheck(context.Background(), dep.PkgName, dep.MinVersion); err != nil {
			return err
		}
		version, err := pc.ModVersion(context.Background(), dep.PkgName)
		if err == nil {
			ok.Printf("%s %s detected (>= %s required)\n", dep.PkgName, version, dep.MinVersion)
		} else {
			ok.Printf("%s >= %s detected\n", dep.PkgName, dep.MinVersion)
		}
	}

	fmt.Printf("toolchain: %s\n", toolchain)
	return nil
}
