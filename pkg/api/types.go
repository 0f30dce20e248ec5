package api

const (
	DefaultBinary           = "gaianet"
	DefaultInstallScriptURL = "https://github.com/GaiaNet-AI/gaianet-node/releases/latest/download/install.sh"
	DefaultShellProfile     = "~/.bashrc"
	DefaultShell            = "bash"
	DefaultBaseDirName      = "gaianet"
	DefaultDomainSuffix     = ".gaianet.xyz"

	JobInstall   = "install"
	JobStop      = "stop"
	JobUpgrade   = "upgrade"
	JobConfigure = "configure"

	StepInstallBinary     = "install-binary"
	StepApplyShellProfile = "apply-shell-profile"
	StepInitialize        = "initialize"
	StepStart             = "start"
	StepStop              = "stop"
	StepUpgradeBinary     = "upgrade-binary"

	// UpdateStepPrefix prefixes the per-key steps of a configure run.
	UpdateStepPrefix = "update_"

	DerivedPublicURL = "public_url"
)

// Step is a single named shell invocation.
type Step struct {
	Name    string `json:"name" yaml:"name"`
	Command string `json:"command" yaml:"command"`
}

// ConfigUpdate is one key/value pair of a configure batch.
type ConfigUpdate struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// LifecycleResult is what a lifecycle operation hands back to its caller.
type LifecycleResult struct {
	Outputs *StepOutput
	Derived map[string]string
}

// NodeConfig is the node.yaml configuration format.
type NodeConfig struct {
	Name             string           `yaml:"name"`
	Binary           string           `yaml:"binary"`
	InstallScriptURL string           `yaml:"installScriptURL"`
	ShellProfile     string           `yaml:"shellProfile"`
	Shell            string           `yaml:"shell"`
	BaseDir          string           `yaml:"baseDir"`
	PublicURLMarkers []string         `yaml:"publicURLMarkers"`
	Commands         CommandTemplates `yaml:"commands"`

	// Set by the loader, not from YAML.
	FilePath string `yaml:"-"`
}

// CommandTemplates overrides the text/template used for each step kind.
// Empty fields fall back to the built-in templates.
type CommandTemplates struct {
	Install string `yaml:"install,omitempty"`
	Upgrade string `yaml:"upgrade,omitempty"`
	Profile string `yaml:"profile,omitempty"`
	Init    string `yaml:"init,omitempty"`
	Start   string `yaml:"start,omitempty"`
	Stop    string `yaml:"stop,omitempty"`
	Config  string `yaml:"config,omitempty"`
}

// UpdateBatch is the on-disk format of a configure batch.
type UpdateBatch struct {
	Updates []ConfigUpdate `yaml:"updates"`
}
