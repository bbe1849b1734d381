package nativedep

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// runPkgConfig executes the pkg-config binary. Tests swap it out.
var runPkgConfig = ExecProcess

// PkgConfig queries an installed library's compiler and linker flags through
// the pkg-config utility.
type PkgConfig struct {
	// Path is the pkg-config executable. Empty means "pkg-config" from PATH.
	Path string
}

func (p *PkgConfig) tool() string {
	if p.Path != "" {
		return p.Path
	}
	return "pkg-config"
}

// Exists checks that the package is installed and satisfies the minimum
// version, using pkg-config's own version comparison.
func (p *PkgConfig) Exists(ctx context.Context, pkg, minVersion string) error {
	_, err := runPkgConfig(ctx, ExecOptions{}, p.tool(), "--print-errors", "--exists",
		fmt.Sprintf("%s >= %s", pkg, minVersion))
	return err
}

// ModVersion returns the installed version of the package.
func (p *PkgConfig) ModVersion(ctx context.Context, pkg string) (string, error) {
	result, err := runPkgConfig(ctx, ExecOptions{}, p.tool(), "--modversion", pkg)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Stdout), nil
}

// Parse extracts one flag category for the package, e.g. "--cflags-only-I"
// or "--libs-only-l", stripping the two-character option prefix from each
// value. The order pkg-config reports is preserved.
func (p *PkgConfig) Parse(ctx context.Context, opt, pkg string) ([]string, error) {
	result, err := runPkgConfig(ctx, ExecOptions{}, p.tool(), opt, pkg)
	if err != nil {
		return nil, err
	}

	prefix := opt[len(opt)-2:]

	var values []string
	for _, field := range strings.Fields(result.Stdout) {
		values = append(values, strings.TrimPrefix(field, prefix))
	}
	return values, nil
}

// VersionCheck verifies that the installed package meets the minimum
// version. An absent or too-old installation is fatal: the returned error
// reads "pkg >= min not found", with the installed version attached when it
// is known. A missing pkg-config binary is reported as such.
func (p *PkgConfig) VersionCheck(ctx context.Context, pkg, minVersion string) error {
	installed, err := p.ModVersion(ctx, pkg)

	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return err
	}

	if err == nil {
		if cmp, ok := compareVersions(installed, minVersion); ok {
			if cmp < 0 {
				return fmt.Errorf("%s >= %s not found (installed version is %s)", pkg, minVersion, installed)
			}
			return nil
		}
	}

	// Unknown or unparseable version, let pkg-config decide.
	if err := p.Exists(ctx, pkg, minVersion); err != nil {
		if errors.As(err, &notFound) {
			return err
		}
		return fmt.Errorf("%s >= %s not found", pkg, minVersion)
	}
	return nil
}

// VersionAtLeast reports whether the installed version satisfies the
// required minimum. Versions that don't parse count as not satisfying it.
func VersionAtLeast(installed, required string) bool {
	cmp, ok := compareVersions(installed, required)
	return ok && cmp >= 0
}

// compareVersions compares two dotted version strings semver-style. ok is
// false when either side does not parse.
func compareVersions(a, b string) (cmp int, ok bool) {
	va := "v" + strings.TrimPrefix(a, "v")
	vb := "v" + strings.TrimPrefix(b, "v")
	if !semver.IsValid(va) || !semver.IsValid(vb) {
		return 0, false
	}
	return semver.Compare(va, vb), true
}
