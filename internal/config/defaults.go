package config

const (
	defaultDataDir   = "~/.local/share/pearl"
	defaultLogDir    = "~/.local/share/pearl/logs"
	defaultGroupName = "WhitePearl Translations"
	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Workspace: Workspace{
			GroupName: defaultGroupName,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
