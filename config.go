package nativedep

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk build configuration, typically nativedep.yml at
// the project root. Command-line flags override its values.
type FileConfig struct {
	Dependency struct {
		Name           string `yaml:"name"`
		PkgName        string `yaml:"pkg_name"`
		MinVersion     string `yaml:"min_version"`
		VendorDir      string `yaml:"vendor_dir"`
		StaticArtifact string `yaml:"static_artifact"`
		MSVCArtifact   string `yaml:"msvc_artifact"`
		MakeTarget     string `yaml:"make_target"`
		VCBuildScript  string `yaml:"vcbuild_script"`
		BundledMacro   string `yaml:"bundled_macro"`
		LinkName       string `yaml:"link_name"`
	} `yaml:"dependency"`

	Build struct {
		UseSystem  bool              `yaml:"use_system"`
		CleanFirst bool              `yaml:"clean_first"`
		Verbose    bool              `yaml:"verbose"`
		Env        map[string]string `yaml:"env"`
	} `yaml:"build"`
}

// LoadConfigFile reads and parses a YAML build configuration.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &config, nil
}

// ToDependency converts the file's dependency section, layering it over the
// given base so unset fields keep their defaults.
func (f *FileConfig) ToDependency(base Dependency) Dependency {
	d := f.Dependency

	if d.Name != "" {
		base.Name = d.Name
	}
	if d.PkgName != "" {
		base.PkgName = d.PkgName
	}
	if d.MinVersion != "" {
		base.MinVersion = d.MinVersion
	}
	if d.VendorDir != "" {
		base.VendorDir = d.VendorDir
	}
	if d.StaticArtifact != "" {
		base.StaticArtifact = d.StaticArtifact
	}
	if d.MSVCArtifact != "" {
		base.MSVCArtifact = d.MSVCArtifact
	}
	if d.MakeTarget != "" {
		base.MakeTarget = d.MakeTarget
	}
	if d.VCBuildScript != "" {
		base.VCBuildScript = d.VCBuildScript
	}
	if d.BundledMacro != "" {
		base.BundledMacro = d.BundledMacro
	}
	if d.LinkName != "" {
		base.LinkName = d.LinkName
	}

	base.applyDefaults()
	return base
}

// ToBuildConfig converts the file's build section.
func (f *FileConfig) ToBuildConfig() *BuildConfig {
	return &BuildConfig{
		UseSystemLib: f.Build.UseSystem,
		CleanFirst:   f.Build.CleanFirst,
		Verbose:      f.Build.Verbose,
		Env:          f.Build.Env,
	}
}
