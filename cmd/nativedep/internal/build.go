package internal

import (
	"context"
	"fmt"
	"strings"

	nativedep "github.com/contriboss/nativedep-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	buildCleanFirst bool
	buildUseSystem  bool
	buildMinVersion string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or locate the native dependency",
	Long: `Build ensures a link-ready copy of the native dependency exists and prints
the compiler and linker settings the extension build needs. With --use-system
the dependency is located via pkg-config instead of compiling the vendored
tree.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildCleanFirst, "clean-first", false, "Clean the vendored tree before compilation")
	buildCmd.Flags().BoolVar(&buildUseSystem, "use-system", false, "Use the system-provided library instead of the bundled one")
	buildCmd.Flags().StringVar(&buildMinVersion, "min-version", "", "Override the minimum system version")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	dep, config, err := loadSetup()
	if err != nil {
		return err
	}

	if buildCleanFirst {
		config.CleanFirst = true
	}
	if buildUseSystem {
		config.UseSystemLib = true
	}
	if buildMinVersion != "" {
		dep.MinVersion = buildMinVersion
	}

	driver := nativedep.NewCompilerDriver(nativedep.DetectToolchain())
	step := nativedep.NewBuildStep(dep, config, driver)

	if err := nativedep.CheckRequiredTools(nativedep.RequiredTools(config, driver.Toolchain)); err != nil {
		return err
	}

	target := &nativedep.ExtensionTarget{Name: dep.Name}

	result, err := step.BuildExtension(context.Background(), target)
	printOutput(result)
	if err != nil {
		return err
	}

	printDriver(driver, target)
	color.New(color.FgGreen).Printf("%s ready\n", dep.Name)
	return nil
}

// printDriver dumps the accumulated compiler settings.
func printDriver(driver *nativedep.CompilerDriver, target *nativedep.ExtensionTarget) {
	section := func(name string, values []string) {
		if len(values) == 0 {
			return
		}
		fmt.Printf("%-22s %s\n", name+":", strings.Join(values, " "))
	}

	section("include dirs", driver.IncludeDirs())
	section("library dirs", driver.LibraryDirs())
	section("runtime library dirs", driver.RuntimeLibraryDirs())
	section("libraries", driver.Libraries())
	section("link args", driver.LinkArgs())
	section("extra objects", target.ExtraObjects)
	section("extra link args", target.ExtraLinkArgs)

	var macros []string
	for _, m := range driver.Macros() {
		macros = append(macros, fmt.Sprintf("%s=%s", m.Name, m.Value))
	}
	section("macros", macros)
}
