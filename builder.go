package nativedep

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
)

// BuildStep runs the native-dependency phase of an extension build: it makes
// a link-ready copy of the dependency available, configures the compiler
// driver to find it, and then hands control to the extension's own
// compilation procedure.
//
// # Lifecycle
//
//  1. Source() picks the dependency source from the configuration
//     (system-installed vs bundled)
//  2. BuildExtension() resolves the source, attaches the static artifact to
//     the target, applies platform link libraries, and delegates to the
//     target's Compile hook
//
// # Failure Semantics
//
// Every failure is fatal and unretried. The step either fully configures the
// dependency or returns before the extension compiles; there is no
// partial-success state.
type BuildStep struct {
	Dep       Dependency
	Config    *BuildConfig
	Driver    *CompilerDriver
	PkgConfig *PkgConfig
}

// NewBuildStep creates a build step for one dependency. Derivable dependency
// fields (artifact names, make target, batch script) are defaulted from the
// link name when unset.
func NewBuildStep(dep Dependency, config *BuildConfig, driver *CompilerDriver) *BuildStep {
	dep.applyDefaults()
	if config == nil {
		config = &BuildConfig{}
	}
	if driver == nil {
		driver = NewCompilerDriver(DetectToolchain())
	}
	return &BuildStep{Dep: dep, Config: config, Driver: driver}
}

// Source returns the dependency source selected by the configuration.
func (s *BuildStep) Source() DepSource {
	if s.Config.UseSystemLib {
		return &SystemSource{Dep: s.Dep, Config: s.Config, PkgConfig: s.PkgConfig}
	}
	return &BundledSource{Dep: s.Dep, Config: s.Config, Toolchain: s.Driver.Toolchain}
}

// BuildExtension runs the dependency step for one extension target and then
// delegates to the target's compilation procedure.
//
// The returned BuildResult carries the collected output lines either way; on
// failure its Error field is set and Success stays false.
func (s *BuildStep) BuildExtension(ctx context.Context, target *ExtensionTarget) (*BuildResult, error) {
	result := &BuildResult{}

	source := s.Source()
	if err := source.Resolve(ctx, s.Driver, result); err != nil {
		result.Error = err
		return result, err
	}

	if artifact := source.Artifact(); artifact != "" {
		target.ExtraObjects = append(target.ExtraObjects, artifact)
		result.Artifact = artifact
	}

	applyPlatformLibraries(runtime.GOOS, s.Dep, s.Config, s.Driver, target)

	if target.Compile != nil {
		if err := target.Compile(ctx, s.Driver, target); err != nil {
			err = fmt.Errorf("compiling extension %s: %w", target.Name, err)
			result.Error = err
			return result, err
		}
	}

	result.Success = true
	return result, nil
}

// Clean removes previous build artifacts from the vendored tree, regardless
// of which source the configuration selects.
func (s *BuildStep) Clean(ctx context.Context) (*BuildResult, error) {
	result := &BuildResult{}

	source := &BundledSource{Dep: s.Dep, Config: s.Config, Toolchain: s.Driver.Toolchain}
	if err := source.Clean(ctx, result); err != nil {
		result.Error = err
		return result, err
	}

	result.Success = true
	return result, nil
}

// applyPlatformLibraries appends the platform-specific link libraries the
// dependency needs and performs per-toolchain runtime adjustments. The GOOS
// parameter keeps the branching independent of the host platform.
func applyPlatformLibraries(goos string, dep Dependency, config *BuildConfig, driver *CompilerDriver, target *ExtensionTarget) {
	if driver.Toolchain == ToolchainMinGW {
		// MinGW links its default C runtime into every DLL; dropping the
		// msvcr entries avoids linking more than one runtime. The static
		// archive lives in the vendored tree, so the linker needs that
		// search path and the bare library name.
		driver.StripRuntimeLibraries("msvcr")
		driver.AddLibraryDir(vendorPath(config, dep))
		driver.AddLibrary(dep.LinkName)
	}

	switch {
	case goos == "linux":
		driver.AddLibrary("rt")
	case goos == "windows":
		if driver.Toolchain == ToolchainMSVC {
			target.ExtraLinkArgs = append(target.ExtraLinkArgs, "/NODEFAULTLIB:libcmt")
			driver.AddLibrary("advapi32")
		}
		driver.AddLibrary("iphlpapi")
		driver.AddLibrary("psapi")
		driver.AddLibrary("ws2_32")
	}
}

func vendorPath(config *BuildConfig, dep Dependency) string {
	root := ""
	if config != nil {
		root = config.RootDir
	}
	return filepath.Join(root, dep.VendorDir)
}
