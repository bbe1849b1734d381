package nativedep

import (
	"fmt"
	"path/filepath"
)

// Dependency describes a native library that an extension module links
// against.
//
// A dependency can be satisfied from two places: an installed system copy
// (located through pkg-config) or a vendored source tree shipped inside the
// repository. The fields cover both paths:
//
// pkg-config lookup:
//   - PkgName: the name the library registers with pkg-config
//   - MinVersion: minimum acceptable installed version
//
// Vendored build:
//   - VendorDir: source tree location, relative to the project root
//   - StaticArtifact: static library filename produced by make
//   - MSVCArtifact: static library filename produced by the MSVC batch script
//   - MakeTarget: make target that produces StaticArtifact
//   - VCBuildScript: batch script driving the MSVC build
//   - BundledMacro: preprocessor macro defined when the vendored copy is used
//
// Linking:
//   - LinkName: library name passed to the linker (without lib prefix)
type Dependency struct {
	Name string // Human-readable name used in messages

	// pkg-config lookup
	PkgName    string // Registered pkg-config package name
	MinVersion string // Minimum acceptable system version

	// Vendored build
	VendorDir      string // Vendored source tree, relative to the project root
	StaticArtifact string // Artifact filename for make-based toolchains
	MSVCArtifact   string // Artifact filename for the MSVC toolchain
	MakeTarget     string // Make target producing StaticArtifact
	VCBuildScript  string // Batch script driving the MSVC build
	BundledMacro   string // Macro marking the bundled copy in the extension

	// Linking
	LinkName string // Library name for -l / MinGW linking
}

// ArtifactName returns the static library filename the given toolchain
// produces for this dependency.
func (d Dependency) ArtifactName(tc Toolchain) string {
	if tc == ToolchainMSVC {
		return d.MSVCArtifact
	}
	return d.StaticArtifact
}

// applyDefaults fills in vendored-build fields that can be derived from
// LinkName. Explicitly set fields are left alone.
func (d *Dependency) applyDefaults() {
	if d.LinkName == "" {
		d.LinkName = d.Name
	}
	if d.StaticArtifact == "" {
		d.StaticArtifact = "lib" + d.LinkName + ".a"
	}
	if d.MSVCArtifact == "" {
		d.MSVCArtifact = d.LinkName + ".lib"
	}
	if d.MakeTarget == "" {
		d.MakeTarget = d.StaticArtifact
	}
	if d.VCBuildScript == "" {
		d.VCBuildScript = "vcbuild.bat"
	}
}

// Libcares returns the dependency description for the c-ares asynchronous
// DNS resolver library, vendored under deps/c-ares.
func Libcares() Dependency {
	return Dependency{
		Name:           "c-ares",
		PkgName:        "libcares",
		MinVersion:     "1.11.0",
		VendorDir:      filepath.Join("deps", "c-ares"),
		StaticArtifact: "libcares.a",
		MSVCArtifact:   "cares.lib",
		MakeTarget:     "libcares.a",
		VCBuildScript:  "vcbuild.bat",
		BundledMacro:   "CARES_BUNDLED",
		LinkName:       "cares",
	}
}

// BuildConfig contains configuration for the native dependency build step.
//
// The configuration is set once, from command-line style options or a config
// file, before the step runs; the step only reads it.
type BuildConfig struct {
	// RootDir is the project root the vendored tree is resolved against.
	// Empty means the current working directory.
	RootDir string

	// UseSystemLib prefers the system-installed dependency (located via
	// pkg-config) over the bundled copy.
	UseSystemLib bool

	// CleanFirst cleans the vendored tree before compilation, forcing a
	// rebuild even when a previous artifact exists.
	CleanFirst bool

	// Verbose enables detailed output lines in the BuildResult.
	Verbose bool

	// Env holds extra environment variables for external build tools.
	Env map[string]string
}

// BuildResult contains the output and status of one build-step run.
type BuildResult struct {
	Success  bool     // True if the step completed without errors
	Output   []string // Human-readable progress and tool output lines
	Artifact string   // Path to the static library artifact, "" for system builds
	Error    error    // Error if the step failed, nil otherwise
}

// logf appends a formatted line to the result output.
func (r *BuildResult) logf(format string, args ...any) {
	r.Output = append(r.Output, fmt.Sprintf(format, args...))
}

// warn appends a single warning line, in the shape ExecOptions.Warn expects.
func (r *BuildResult) warn(msg string) {
	r.Output = append(r.Output, "warning: "+msg)
}
