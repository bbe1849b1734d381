package nativedep

import (
	"fmt"
	"os/exec"
	"strings"
)

// execLookPath resolves tool binaries on PATH. Tests swap it out.
var execLookPath = exec.LookPath

// ToolRequirement describes one external tool the build step depends on.
//
// A requirement is satisfied when the primary tool or any of its alternatives
// is on PATH. Optional tools never fail the check.
//
// # Examples
//
// Required tool with platform alternatives:
//
//	ToolRequirement{
//	    Name:         "make",
//	    Alternatives: []string{"gmake", "nmake"},
//	    Purpose:      "Build automation tool",
//	}
//
// Optional tool:
//
//	ToolRequirement{
//	    Name:     "ccache",
//	    Optional: true,
//	    Purpose:  "Compiler cache",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "make", "pkg-config").
	Name string

	// Alternatives are tool names that can satisfy this requirement instead.
	Alternatives []string

	// Optional marks tools that are checked but never fail the build.
	Optional bool

	// Purpose is a human-readable reason the tool is needed.
	Purpose string
}

// RequiredTools returns the external tools the configured build needs.
//
// System builds need pkg-config for the version check and flag extraction.
// Bundled builds need the build tool for the toolchain: make (with the gmake
// and nmake variants as alternatives) plus a C compiler on POSIX toolchains,
// or cl on MSVC where the batch build script drives compilation.
func RequiredTools(config *BuildConfig, tc Toolchain) []ToolRequirement {
	if config != nil && config.UseSystemLib {
		return []ToolRequirement{
			{
				Name:    "pkg-config",
				Purpose: "Locates the system-installed dependency",
			},
		}
	}

	if tc == ToolchainMSVC {
		return []ToolRequirement{
			{
				Name:    "cl",
				Purpose: "MSVC C/C++ compiler",
			},
		}
	}

	return []ToolRequirement{
		{
			Name:         "make",
			Alternatives: []string{"gmake", "nmake"},
			Purpose:      "Build automation tool",
		},
		{
			Name:         "gcc",
			Alternatives: []string{"clang", "cc"},
			Purpose:      "C compiler for the vendored tree",
		},
	}
}

// CheckToolAvailable checks that a tool is on PATH, returning a consistent
// "not found in PATH" error when it is not.
func CheckToolAvailable(tool string) error {
	if _, err := execLookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies all required tools are available.
//
// The primary name is tried first, then each alternative in order. Optional
// tools are skipped. All missing required tools are reported in a single
// error so the operator can fix them in one pass.
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missing []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil

		if !found {
			for _, alt := range req.Alternatives {
				if CheckToolAvailable(alt) == nil {
					found = true
					break
				}
			}
		}

		if !found && !req.Optional {
			if req.Purpose != "" {
				missing = append(missing, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missing = append(missing, req.Name)
			}
		}
	}

	if len(missing) == 0 {
		return nil
	}
	if len(missing) == 1 {
		return fmt.Errorf("%s not found in PATH", missing[0])
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}
