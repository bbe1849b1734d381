package nativedep

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// makeCall records one intercepted build-tool invocation.
type makeCall struct {
	args []string
	opts ExecOptions
}

// stubBuildTools replaces the make and process runners with recorders and
// restores them when the test finishes.
func stubBuildTools(t *testing.T) (makeCalls, processCalls *[]makeCall) {
	t.Helper()

	origMake, origProcess := runMake, runProcess
	t.Cleanup(func() {
		runMake, runProcess = origMake, origProcess
	})

	var mCalls, pCalls []makeCall
	runMake = func(ctx context.Context, opts ExecOptions, args ...string) (*ExecResult, error) {
		mCalls = append(mCalls, makeCall{args: args, opts: opts})
		return &ExecResult{}, nil
	}
	runProcess = func(ctx context.Context, opts ExecOptions, cmdline ...string) (*ExecResult, error) {
		pCalls = append(pCalls, makeCall{args: cmdline, opts: opts})
		return &ExecResult{}, nil
	}

	return &mCalls, &pCalls
}

// vendoredTree creates root/deps/c-ares, optionally with a prebuilt artifact.
func vendoredTree(t *testing.T, artifact string) (root, vendorDir string) {
	t.Helper()

	root = t.TempDir()
	vendorDir = filepath.Join(root, "deps", "c-ares")
	if err := os.MkdirAll(vendorDir, 0o755); err != nil {
		t.Fatalf("failed to create vendored tree: %v", err)
	}

	if artifact != "" {
		if err := os.WriteFile(filepath.Join(vendorDir, artifact), []byte("archive"), 0o644); err != nil {
			t.Fatalf("failed to write artifact: %v", err)
		}
	}
	return root, vendorDir
}

func TestBundledSkipsBuildWhenArtifactExists(t *testing.T) {
	makeCalls, _ := stubBuildTools(t)
	root, vendorDir := vendoredTree(t, "libcares.a")

	source := &BundledSource{
		Dep:    Libcares(),
		Config: &BuildConfig{RootDir: root},
	}

	result := &BuildResult{}
	if err := source.Resolve(context.Background(), NewCompilerDriver(ToolchainUnix), result); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if len(*makeCalls) != 0 {
		t.Errorf("expected no build-tool invocations, got %v", *makeCalls)
	}
	if source.Artifact() != filepath.Join(vendorDir, "libcares.a") {
		t.Errorf("unexpected artifact path %q", source.Artifact())
	}
	if !strings.Contains(strings.Join(result.Output, "\n"), "no need to build") {
		t.Errorf("expected skip message in output, got %v", result.Output)
	}
}

func TestBundledBuildsWhenArtifactMissing(t *testing.T) {
	makeCalls, _ := stubBuildTools(t)
	root, vendorDir := vendoredTree(t, "")

	source := &BundledSource{
		Dep:    Libcares(),
		Config: &BuildConfig{RootDir: root},
	}

	result := &BuildResult{}
	if err := source.Resolve(context.Background(), NewCompilerDriver(ToolchainUnix), result); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if len(*makeCalls) != 1 {
		t.Fatalf("expected exactly one make invocation, got %d", len(*makeCalls))
	}

	call := (*makeCalls)[0]
	if !reflect.DeepEqual(call.args, []string{"libcares.a"}) {
		t.Errorf("expected make target libcares.a, got %v", call.args)
	}
	if call.opts.Dir != vendorDir {
		t.Errorf("expected make to run in %s, got %s", vendorDir, call.opts.Dir)
	}
	if !strings.HasPrefix(call.opts.Env["CFLAGS"], "-fPIC") {
		t.Errorf("expected -fPIC in CFLAGS, got %q", call.opts.Env["CFLAGS"])
	}
}

func TestBundledMergesExistingCFLAGS(t *testing.T) {
	makeCalls, _ := stubBuildTools(t)
	root, _ := vendoredTree(t, "")

	source := &BundledSource{
		Dep: Libcares(),
		Config: &BuildConfig{
			RootDir: root,
			Env:     map[string]string{"CFLAGS": "-O2"},
		},
	}

	result := &BuildResult{}
	if err := source.Resolve(context.Background(), NewCompilerDriver(ToolchainUnix), result); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	call := (*makeCalls)[0]
	if call.opts.Env["CFLAGS"] != "-fPIC -O2" {
		t.Errorf("expected merged CFLAGS '-fPIC -O2', got %q", call.opts.Env["CFLAGS"])
	}
}

func TestBundledCleanFirstRunsCleanEvenWithArtifact(t *testing.T) {
	makeCalls, _ := stubBuildTools(t)
	root, _ := vendoredTree(t, "libcares.a")

	source := &BundledSource{
		Dep:    Libcares(),
		Config: &BuildConfig{RootDir: root, CleanFirst: true},
	}

	result := &BuildResult{}
	if err := source.Resolve(context.Background(), NewCompilerDriver(ToolchainUnix), result); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if len(*makeCalls) == 0 {
		t.Fatal("expected the clean command to run")
	}
	if !reflect.DeepEqual((*makeCalls)[0].args, []string{"clean"}) {
		t.Errorf("expected first invocation to be clean, got %v", (*makeCalls)[0].args)
	}
}

func TestBundledDefinesBundledMacro(t *testing.T) {
	stubBuildTools(t)
	root, _ := vendoredTree(t, "libcares.a")

	source := &BundledSource{
		Dep:    Libcares(),
		Config: &BuildConfig{RootDir: root},
	}

	driver := NewCompilerDriver(ToolchainUnix)
	if err := source.Resolve(context.Background(), driver, &BuildResult{}); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	macros := driver.Macros()
	if len(macros) != 1 || macros[0].Name != "CARES_BUNDLED" {
		t.Errorf("expected CARES_BUNDLED macro, got %v", macros)
	}
}

func TestBundledMSVCUsesBatchScript(t *testing.T) {
	makeCalls, processCalls := stubBuildTools(t)
	root, vendorDir := vendoredTree(t, "")

	source := &BundledSource{
		Dep:       Libcares(),
		Config:    &BuildConfig{RootDir: root},
		Toolchain: ToolchainMSVC,
	}

	result := &BuildResult{}
	if err := source.Resolve(context.Background(), NewCompilerDriver(ToolchainMSVC), result); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	if len(*makeCalls) != 0 {
		t.Errorf("expected make not to run under MSVC, got %v", *makeCalls)
	}
	if len(*processCalls) != 1 {
		t.Fatalf("expected one batch-script invocation, got %d", len(*processCalls))
	}

	call := (*processCalls)[0]
	if !reflect.DeepEqual(call.args, []string{"cmd.exe", "/C", "vcbuild.bat"}) {
		t.Errorf("expected cmd.exe /C vcbuild.bat, got %v", call.args)
	}
	if source.Artifact() != filepath.Join(vendorDir, "cares.lib") {
		t.Errorf("expected cares.lib artifact, got %q", source.Artifact())
	}
}

func TestBundledAddsVendoredIncludeDir(t *testing.T) {
	stubBuildTools(t)
	root, vendorDir := vendoredTree(t, "libcares.a")

	source := &BundledSource{
		Dep:    Libcares(),
		Config: &BuildConfig{RootDir: root},
	}

	driver := NewCompilerDriver(ToolchainUnix)
	if err := source.Resolve(context.Background(), driver, &BuildResult{}); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	expected := filepath.Join(vendorDir, "src")
	if !reflect.DeepEqual(driver.IncludeDirs(), []string{expected}) {
		t.Errorf("expected include dirs [%s], got %v", expected, driver.IncludeDirs())
	}
}

func TestSystemSourceConfiguresDriverInOrder(t *testing.T) {
	orig := runPkgConfig
	defer func() { runPkgConfig = orig }()
	runPkgConfig = fakePkgConfigExec("1.12")

	dep := Libcares()
	config := &BuildConfig{RootDir: "/proj", UseSystemLib: true}
	source := &SystemSource{Dep: dep, Config: config}

	driver := NewCompilerDriver(ToolchainUnix)
	if err := source.Resolve(context.Background(), driver, &BuildResult{}); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	expectedIncludes := []string{
		"/opt/cares/include",
		"/usr/local/include",
		"/usr/include",
		filepath.Join("/proj", "deps", "c-ares", "src"),
	}
	if !reflect.DeepEqual(driver.IncludeDirs(), expectedIncludes) {
		t.Errorf("include dirs = %v, expected %v", driver.IncludeDirs(), expectedIncludes)
	}

	if !reflect.DeepEqual(driver.Libraries(), []string{"cares", "rt"}) {
		t.Errorf("libraries = %v, expected [cares rt]", driver.Libraries())
	}
	if !reflect.DeepEqual(driver.LibraryDirs(), []string{"/opt/cares/lib", "/opt/extra/lib"}) {
		t.Errorf("library dirs = %v", driver.LibraryDirs())
	}
	if !reflect.DeepEqual(driver.RuntimeLibraryDirs(), []string{"/opt/cares/lib", "/opt/extra/lib"}) {
		t.Errorf("runtime library dirs = %v", driver.RuntimeLibraryDirs())
	}

	if source.Artifact() != "" {
		t.Errorf("system source should not produce an artifact, got %q", source.Artifact())
	}
}

func TestSystemSourceRejectsOldVersion(t *testing.T) {
	orig := runPkgConfig
	defer func() { runPkgConfig = orig }()
	runPkgConfig = fakePkgConfigExec("1.10")

	dep := Libcares()
	dep.MinVersion = "1.11"
	source := &SystemSource{Dep: dep, Config: &BuildConfig{UseSystemLib: true}}

	err := source.Resolve(context.Background(), NewCompilerDriver(ToolchainUnix), &BuildResult{})
	if err == nil {
		t.Fatal("expected resolve to fail for an old system version")
	}
	if !strings.Contains(err.Error(), "libcares >= 1.11 not found") {
		t.Errorf("expected version error, got %q", err.Error())
	}
}
