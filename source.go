package nativedep

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// External build-tool invocation, swappable in tests.
var (
	runMake    = ExecMake
	runProcess = ExecProcess
)

// DepSource resolves a native dependency for the extension build.
//
// A source's lifecycle mirrors the build step:
//
//  1. Resolve() - verify the dependency is usable and configure the compiler
//     driver with its include dirs, library dirs, macros, and link libraries,
//     building the vendored copy first when needed
//  2. Artifact() - report the static library to link, if the source produced
//     one
//  3. Clean() - remove vendored build artifacts, a no-op for system copies
type DepSource interface {
	// Name returns the human-readable source name used in messages.
	Name() string

	// Resolve makes the dependency link-ready and configures the driver.
	// Progress and tool output go into result.Output. Any failure is fatal
	// to the enclosing build.
	Resolve(ctx context.Context, driver *CompilerDriver, result *BuildResult) error

	// Artifact returns the path of the static library produced by Resolve,
	// or "" when the dependency is linked from the system instead.
	Artifact() string

	// Clean removes build artifacts from the vendored tree.
	Clean(ctx context.Context, result *BuildResult) error
}

// SystemSource satisfies the dependency from a system-installed copy located
// through pkg-config. It never produces an artifact; the linker finds the
// library through the configured search paths.
type SystemSource struct {
	Dep       Dependency
	Config    *BuildConfig
	PkgConfig *PkgConfig
}

func (s *SystemSource) Name() string {
	return "system " + s.Dep.Name
}

// Resolve verifies the installed version and copies pkg-config's reported
// flags onto the driver, preserving their order.
func (s *SystemSource) Resolve(ctx context.Context, driver *CompilerDriver, result *BuildResult) error {
	pc := s.PkgConfig
	if pc == nil {
		pc = &PkgConfig{}
	}

	if err := pc.VersionCheck(ctx, s.Dep.PkgName, s.Dep.MinVersion); err != nil {
		return err
	}

	runtimeLibraryDirs, err := pc.Parse(ctx, "--libs-only-L", s.Dep.PkgName)
	if err != nil {
		return err
	}
	includeDirs, err := pc.Parse(ctx, "--cflags-only-I", s.Dep.PkgName)
	if err != nil {
		return err
	}
	libraryDirs, err := pc.Parse(ctx, "--libs-only-L", s.Dep.PkgName)
	if err != nil {
		return err
	}
	libraries, err := pc.Parse(ctx, "--libs-only-l", s.Dep.PkgName)
	if err != nil {
		return err
	}

	// System headers plus the vendored tree's internal headers, which the
	// extension includes directly.
	includeDirs = append(includeDirs, "/usr/include")
	includeDirs = append(includeDirs, filepath.Join(s.vendorDir(), "src"))

	driver.AddLibraries(libraries)
	driver.AddLibraryDirs(libraryDirs)
	driver.AddIncludeDirs(includeDirs)
	driver.SetRuntimeLibraryDirs(runtimeLibraryDirs)

	if s.Config != nil && s.Config.Verbose {
		result.logf("using system %s (%s >= %s)", s.Dep.Name, s.Dep.PkgName, s.Dep.MinVersion)
	}
	return nil
}

// Artifact returns "" since the system library is found through search paths.
func (s *SystemSource) Artifact() string {
	return ""
}

// Clean is a no-op for system copies.
func (s *SystemSource) Clean(ctx context.Context, result *BuildResult) error {
	return nil
}

func (s *SystemSource) vendorDir() string {
	root := ""
	if s.Config != nil {
		root = s.Config.RootDir
	}
	return filepath.Join(root, s.Dep.VendorDir)
}

// BundledSource satisfies the dependency from the vendored source tree,
// compiling it into a static library when no previous artifact exists.
type BundledSource struct {
	Dep    Dependency
	Config *BuildConfig

	// Toolchain decides between make and the MSVC batch script, and which
	// artifact filename to expect.
	Toolchain Toolchain

	artifact string
}

func (b *BundledSource) Name() string {
	return "bundled " + b.Dep.Name
}

// Resolve marks the build as bundled, cleans the vendored tree when
// requested, compiles the static artifact when it is missing, and registers
// the vendored headers with the driver.
//
// An existing artifact is trusted as already built; CleanFirst is the escape
// hatch when the vendored source changed.
func (b *BundledSource) Resolve(ctx context.Context, driver *CompilerDriver, result *BuildResult) error {
	driver.DefineMacro(b.Dep.BundledMacro, "1")

	b.artifact = filepath.Join(b.vendorDir(), b.Dep.ArtifactName(b.Toolchain))

	if b.Config != nil && b.Config.CleanFirst {
		if err := b.Clean(ctx, result); err != nil {
			return err
		}
	}

	if _, err := os.Stat(b.artifact); os.IsNotExist(err) {
		result.logf("%s needs to be compiled", b.Dep.Name)
		if err := b.build(ctx, result); err != nil {
			return err
		}
	} else {
		result.logf("no need to build %s", b.Dep.Name)
	}

	driver.AddIncludeDir(filepath.Join(b.vendorDir(), "src"))
	return nil
}

// Artifact returns the static library path once Resolve has run.
func (b *BundledSource) Artifact() string {
	return b.artifact
}

// Clean removes previous build artifacts from the vendored tree.
func (b *BundledSource) Clean(ctx context.Context, result *BuildResult) error {
	opts := ExecOptions{Dir: b.vendorDir(), Warn: result.warn}

	if b.Toolchain == ToolchainMSVC {
		_, err := runProcess(ctx, opts, "cmd.exe", "/C", b.Dep.VCBuildScript, "clean")
		return err
	}
	_, err := runMake(ctx, opts, "clean")
	return err
}

// build compiles the vendored tree into the static artifact.
func (b *BundledSource) build(ctx context.Context, result *BuildResult) error {
	env := map[string]string{}
	if b.Config != nil {
		for key, value := range b.Config.Env {
			env[key] = value
		}
	}
	env["CFLAGS"] = mergeCFLAGS(env["CFLAGS"])

	result.logf("building %s...", b.Dep.Name)

	opts := ExecOptions{Dir: b.vendorDir(), Env: env, Warn: result.warn}

	if b.Toolchain == ToolchainMSVC {
		_, err := runProcess(ctx, opts, "cmd.exe", "/C", b.Dep.VCBuildScript)
		return err
	}
	_, err := runMake(ctx, opts, b.Dep.MakeTarget)
	return err
}

func (b *BundledSource) vendorDir() string {
	root := ""
	if b.Config != nil {
		root = b.Config.RootDir
	}
	return filepath.Join(root, b.Dep.VendorDir)
}

// mergeCFLAGS joins the position-independent-code flag the static library
// needs with any pre-existing CFLAGS value. The explicit value wins over the
// process environment.
func mergeCFLAGS(existing string) string {
	if existing == "" {
		existing = os.Getenv("CFLAGS")
	}

	parts := []string{"-fPIC"}
	if existing != "" {
		parts = append(parts, existing)
	}
	return strings.Join(parts, " ")
}
