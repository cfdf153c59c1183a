package config

// CLIConfig is the stakewatch-cli profile.
type CLIConfig struct {
	Server string `yaml:"server,omitempty"`
	Token  string `yaml:"token,omitempty"`
	Output string `yaml:"output,omitempty"`
	CAFile string `yaml:"ca_file,omitempty"`
}

// Default returns an empty profile; every value falls back to the flag
// defaults.
func Default() *CLIConfig {
	return &CLIConfig{}
}
