package nativedep

import (
	"context"
	"runtime"
	"strings"
)

// Toolchain identifies the compiler toolchain the extension is built with.
// The dependency step needs it to pick artifact names, runtime-library
// handling, and platform link libraries.
type Toolchain int

const (
	// ToolchainUnix is any POSIX make-based toolchain (gcc, clang).
	ToolchainUnix Toolchain = iota

	// ToolchainMinGW is the GNU toolchain targeting Windows.
	ToolchainMinGW

	// ToolchainMSVC is the native Windows toolchain (cl.exe).
	ToolchainMSVC
)

func (t Toolchain) String() string {
	switch t {
	case ToolchainMinGW:
		return "mingw32"
	case ToolchainMSVC:
		return "msvc"
	default:
		return "unix"
	}
}

// DetectToolchain guesses the toolchain for the current platform: MSVC when
// cl.exe is on PATH on Windows, MinGW otherwise there, and the POSIX
// toolchain everywhere else.
func DetectToolchain() Toolchain {
	if runtime.GOOS != "windows" {
		return ToolchainUnix
	}
	if _, err := execLookPath("cl"); err == nil {
		return ToolchainMSVC
	}
	return ToolchainMinGW
}

// Macro is a preprocessor definition passed to the compiler.
type Macro struct {
	Name  string
	Value string
}

// CompilerDriver accumulates compiler and linker settings for the extension
// build. Each setting kind is an ordered, append-only list consumed once by
// the downstream compilation procedure.
type CompilerDriver struct {
	Toolchain Toolchain

	// DLLLibraries mirrors the default runtime libraries MinGW links into
	// every DLL. Entries can be stripped to avoid linking more than one C
	// runtime.
	DLLLibraries []string

	includeDirs        []string
	libraryDirs        []string
	runtimeLibraryDirs []string
	libraries          []string
	macros             []Macro
	linkArgs           []string
}

// NewCompilerDriver creates a driver for the given toolchain. MinGW drivers
// start with the default msvcrt runtime in DLLLibraries.
func NewCompilerDriver(tc Toolchain) *CompilerDriver {
	driver := &CompilerDriver{Toolchain: tc}
	if tc == ToolchainMinGW {
		driver.DLLLibraries = []string{"msvcrt"}
	}
	return driver
}

// AddIncludeDir appends one header search directory.
func (c *CompilerDriver) AddIncludeDir(dir string) {
	c.includeDirs = append(c.includeDirs, dir)
}

// AddIncludeDirs appends header search directories, preserving order.
func (c *CompilerDriver) AddIncludeDirs(dirs []string) {
	c.includeDirs = append(c.includeDirs, dirs...)
}

// AddLibraryDir appends one library search directory.
func (c *CompilerDriver) AddLibraryDir(dir string) {
	c.libraryDirs = append(c.libraryDirs, dir)
}

// AddLibraryDirs appends library search directories, preserving order.
func (c *CompilerDriver) AddLibraryDirs(dirs []string) {
	c.libraryDirs = append(c.libraryDirs, dirs...)
}

// SetRuntimeLibraryDirs replaces the runtime library search path.
func (c *CompilerDriver) SetRuntimeLibraryDirs(dirs []string) {
	c.runtimeLibraryDirs = append([]string{}, dirs...)
}

// AddLibrary appends one library name to link against.
func (c *CompilerDriver) AddLibrary(name string) {
	c.libraries = append(c.libraries, name)
}

// AddLibraries appends library names, preserving order.
func (c *CompilerDriver) AddLibraries(names []string) {
	c.libraries = append(c.libraries, names...)
}

// DefineMacro appends one preprocessor definition.
func (c *CompilerDriver) DefineMacro(name, value string) {
	c.macros = append(c.macros, Macro{Name: name, Value: value})
}

// AddLinkArg appends one extra linker argument.
func (c *CompilerDriver) AddLinkArg(arg string) {
	c.linkArgs = append(c.linkArgs, arg)
}

// StripRuntimeLibraries removes every DLL runtime library whose name starts
// with the given prefix. MinGW builds strip "msvcr" so the extension does not
// end up linked against more than one C runtime.
func (c *CompilerDriver) StripRuntimeLibraries(prefix string) {
	kept := c.DLLLibraries[:0]
	for _, lib := range c.DLLLibraries {
		if !strings.HasPrefix(lib, prefix) {
			kept = append(kept, lib)
		}
	}
	c.DLLLibraries = kept
}

// IncludeDirs returns a copy of the accumulated header search directories.
func (c *CompilerDriver) IncludeDirs() []string {
	return append([]string{}, c.includeDirs...)
}

// LibraryDirs returns a copy of the accumulated library search directories.
func (c *CompilerDriver) LibraryDirs() []string {
	return append([]string{}, c.libraryDirs...)
}

// RuntimeLibraryDirs returns a copy of the runtime library search path.
func (c *CompilerDriver) RuntimeLibraryDirs() []string {
	return append([]string{}, c.runtimeLibraryDirs...)
}

// Libraries returns a copy of the accumulated library names.
func (c *CompilerDriver) Libraries() []string {
	return append([]string{}, c.libraries...)
}

// Macros returns a copy of the accumulated preprocessor definitions.
func (c *CompilerDriver) Macros() []Macro {
	return append([]Macro{}, c.macros...)
}

// LinkArgs returns a copy of the accumulated extra linker arguments.
func (c *CompilerDriver) LinkArgs() []string {
	return append([]string{}, c.linkArgs...)
}

// ExtensionTarget is the extension module being built. The dependency step
// attaches extra link objects and link arguments to it before delegating to
// its compilation procedure.
type ExtensionTarget struct {
	Name          string   // Extension module name
	Sources       []string // Source files of the extension itself
	ExtraObjects  []string // Extra objects linked into the extension
	ExtraLinkArgs []string // Extra linker arguments for this target

	// Compile is the downstream compilation procedure. It runs once the
	// dependency is resolved and the driver is fully configured. Nil means
	// the step only prepares the build.
	Compile func(ctx context.Context, driver *CompilerDriver, target *ExtensionTarget) error
}
