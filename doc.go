// Package nativedep prepares a bundled third-party native library for an
// extension-module build.
//
// Before a host extension is compiled, the package ensures a link-ready copy
// of its native dependency is available and that the compiler driver knows
// where to find it. The dependency comes from one of two sources:
//
//   - System: an installed copy located through pkg-config, after verifying
//     that its version meets a required minimum.
//   - Bundled: a vendored source tree shipped inside the repository, compiled
//     into a static library with make (or a batch build script under MSVC).
//
// # Basic Usage
//
// Describe the dependency, configure the build, and run the step:
//
//	dep := nativedep.Libcares()
//
//	config := &nativedep.BuildConfig{
//	    RootDir:      "/path/to/project",
//	    UseSystemLib: false,
//	    CleanFirst:   false,
//	}
//
//	driver := nativedep.NewCompilerDriver(nativedep.DetectToolchain())
//	step := nativedep.NewBuildStep(dep, config, driver)
//
//	target := &nativedep.ExtensionTarget{Name: "pycares._cares", Compile: compile}
//	result, err := step.BuildExtension(ctx, target)
//
// # Architecture
//
// The step selects a dependency source and drives it through a fixed
// sequence:
//
//	BuildStep
//	├── SystemSource  (pkg-config version check + flag extraction)
//	└── BundledSource (vendored tree, make / vcbuild.bat, static artifact)
//
// Either source configures the CompilerDriver accumulator (include dirs,
// library dirs, macros, link args). The bundled source additionally produces
// a static library artifact that is attached to the extension target as an
// extra link object before the target's own compilation runs.
//
// # Failure Semantics
//
// Every external command failure is fatal: a missing executable is reported
// as "not present on this system", a nonzero exit carries the joined command
// line and captured stderr, and a system dependency below the required
// minimum version aborts with an explicit "X >= Y not found" message. Nothing
// is retried; the step either fully configures the build or returns an error
// before the extension compiles.
//
// # Platform Support
//
// POSIX make-based toolchains are fully supported, with gmake preferred on
// BSD-derived systems. Windows is supported through MinGW and MSVC, including
// the C-runtime adjustments each one needs to avoid duplicate-runtime link
// conflicts.
package nativedep
