package config

const (
	defaultConfigPath  = "~/.config/filesort/config.toml"
	projectConfigName  = "filesort.toml"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
	defaultSymlinkMode = SymlinksFollow
)

// Sort modes.
const (
	ModeCopy = "copy"
	ModeMove = "move"
)

// Symlink policies.
const (
	SymlinksFollow = "follow"
	SymlinksSkip   = "skip"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Sort: Sort{
			Mode:            ModeCopy,
			LockDestination: true,
		},
		Traversal: Traversal{
			Symlinks:      defaultSymlinkMode,
			IncludeHidden: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
