package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repomove/cmd/cli"
)

type embeddedConfigurationDocument struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Tools struct {
		Repos struct {
			SourceAccount      string `yaml:"source_account"`
			DestinationAccount string `yaml:"destination_account"`
			CloneSuffix        string `yaml:"clone_suffix"`
			TokenFile          string `yaml:"token_file"`
			SnapshotFile       string `yaml:"snapshot_file"`
			PollIntervalMillis int    `yaml:"poll_interval_ms"`
			MarkPrivate        bool   `yaml:"mark_private"`
			Workers            int    `yaml:"workers"`
		} `yaml:"repos"`
	} `yaml:"tools"`
}

func TestEmbeddedDefaultConfigurationParses(testInstance *testing.T) {
	configurationData, configurationType := cli.EmbeddedDefaultConfiguration()
	require.Equal(testInstance, "yaml", configurationType)
	require.NotEmpty(testInstance, configurationData)

	var document embeddedConfigurationDocument
	require.NoError(testInstance, yaml.Unmarshal(configurationData, &document))

	require.Equal(testInstance, "info", document.Common.LogLevel)
	require.Equal(testInstance, "structured", document.Common.LogFormat)
	require.Equal(testInstance, "dmitshur", document.Tools.Repos.SourceAccount)
	require.Equal(testInstance, "shurcooL", document.Tools.Repos.DestinationAccount)
	require.Equal(testInstance, "-clone", document.Tools.Repos.CloneSuffix)
	require.Equal(testInstance, "~/.config/repomove/token", document.Tools.Repos.TokenFile)
	require.Equal(testInstance, "projects.json", document.Tools.Repos.SnapshotFile)
	require.Equal(testInstance, 200, document.Tools.Repos.PollIntervalMillis)
	require.True(testInstance, document.Tools.Repos.MarkPrivate)
	require.Equal(testInstance, 8, document.Tools.Repos.Workers)
}
