package batch

import "strings"

// Configuration defaults. The two account logins are the operator's fixed
// source and destination identities; they double as the reserved logins the
// aggregator filters out of stargazer and watcher lists.
const (
	defaultSourceAccountConstant    = "dmitshur"
	defaultDestinationAccountConst  = "shurcooL"
	defaultCloneSuffixConstant      = "-clone"
	defaultTokenFilePathConstant    = "~/.config/repomove/token"
	defaultSnapshotFilePathConstant = "projects.json"
	defaultPollIntervalMilliseconds = 200
	defaultWorkerCountConstant      = 8
)

// CommandConfiguration captures persisted settings for the repos command.
type CommandConfiguration struct {
	SourceAccount            string `mapstructure:"source_account"`
	DestinationAccount       string `mapstructure:"destination_account"`
	CloneSuffix              string `mapstructure:"clone_suffix"`
	TokenFilePath            string `mapstructure:"token_file"`
	SnapshotFilePath         string `mapstructure:"snapshot_file"`
	PollIntervalMilliseconds int    `mapstructure:"poll_interval_ms"`
	MarkClonePrivate         bool   `mapstructure:"mark_private"`
	WorkerCount              int    `mapstructure:"workers"`
}

// DefaultCommandConfiguration returns baseline configuration values for the repos command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		SourceAccount:            defaultSourceAccountConstant,
		DestinationAccount:       defaultDestinationAccountConst,
		CloneSuffix:              defaultCloneSuffixConstant,
		TokenFilePath:            defaultTokenFilePathConstant,
		SnapshotFilePath:         defaultSnapshotFilePathConstant,
		PollIntervalMilliseconds: defaultPollIntervalMilliseconds,
		MarkClonePrivate:         true,
		WorkerCount:              defaultWorkerCountConstant,
	}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".source_account":      defaults.SourceAccount,
		configurationKeyPrefix + ".destination_account": defaults.DestinationAccount,
		configurationKeyPrefix + ".clone_suffix":        defaults.CloneSuffix,
		configurationKeyPrefix + ".token_file":          defaults.TokenFilePath,
		configurationKeyPrefix + ".snapshot_file":       defaults.SnapshotFilePath,
		configurationKeyPrefix + ".poll_interval_ms":    defaults.PollIntervalMilliseconds,
		configurationKeyPrefix + ".mark_private":        defaults.MarkClonePrivate,
		configurationKeyPrefix + ".workers":             defaults.WorkerCount,
	}
}

// Sanitize trims configured values and restores defaults for unset entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.SourceAccount = valueOrDefault(configuration.SourceAccount, defaults.SourceAccount)
	sanitized.DestinationAccount = valueOrDefault(configuration.DestinationAccount, defaults.DestinationAccount)
	sanitized.CloneSuffix = valueOrDefault(configuration.CloneSuffix, defaults.CloneSuffix)
	sanitized.TokenFilePath = valueOrDefault(configuration.TokenFilePath, defaults.TokenFilePath)
	sanitized.SnapshotFilePath = valueOrDefault(configuration.SnapshotFilePath, defaults.SnapshotFilePath)
	if configuration.PollIntervalMilliseconds <= 0 {
		sanitized.PollIntervalMilliseconds = defaults.PollIntervalMilliseconds
	}
	if configuration.WorkerCount <= 0 {
		sanitized.WorkerCount = defaults.WorkerCount
	}

	return sanitized
}

// ReservedLogins reports the operator logins excluded from stargazer and watcher lists.
func (configuration CommandConfiguration) ReservedLogins() []string {
	return []string{configuration.SourceAccount, configuration.DestinationAccount}
}

func valueOrDefault(value string, defaultValue string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return defaultValue
	}
	return trimmed
}
