package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repomove/internal/githubapi"
	"github.com/temirov/repomove/internal/githubauth"
	"github.com/temirov/repomove/internal/snapshot"
	"github.com/temirov/repomove/internal/transfer"
)

const (
	commandUseConstant                  = "repos [repository...]"
	commandShortDescriptionConstant     = "Audit and migrate repositories between the configured accounts"
	commandLongDescriptionConstant      = "repos applies exactly one operation to the named repositories (or to every repository of the source account when no names are given): print a social-metadata snapshot, persist snapshots to the snapshot file, print a previously persisted snapshot file, import repositories into destination clones, or revert previously created clones."
	flagInfoNameConstant                = "info"
	flagInfoDescriptionConstant         = "Aggregate snapshots and print them"
	flagSaveNameConstant                = "save"
	flagSaveDescriptionConstant         = "Aggregate snapshots and persist them to the snapshot file"
	flagShowNameConstant                = "show"
	flagShowDescriptionConstant         = "Print snapshots from the persisted snapshot file"
	flagImportNameConstant              = "import"
	flagImportDescriptionConstant       = "Import repositories into destination clones"
	flagRevertNameConstant              = "revert"
	flagRevertDescriptionConstant       = "Delete previously created destination clones"
	flagSkipCommentsNameConstant        = "skip-comments"
	flagSkipCommentsDescriptionConstant = "Skip fetching issue comments during aggregation"
	flagNamesOnlyNameConstant           = "names-only"
	flagNamesOnlyDescriptionConstant    = "Print repository full names only"
	errorExactlyOneActionMessage        = "exactly one of --info, --save, --show, --import, --revert is required"
	aggregatorCreationErrorTemplate     = "unable to construct snapshot aggregator: %w"
	transferCreationErrorTemplate       = "unable to construct transfer service: %w"
	storeCreationErrorTemplate          = "unable to construct snapshot store: %w"
	clientCreationErrorTemplate         = "unable to construct GitHub client: %w"
	nameResolutionErrorTemplate         = "unable to list source account repositories: %w"
	snapshotsPersistedMessage           = "Snapshots persisted"
	logFieldSnapshotFileConstant        = "snapshot_file"
	logFieldProjectCountConstant        = "projects"
)

// GitHubService combines the remote surfaces the repos command consumes.
type GitHubService interface {
	snapshot.RepositoryReader
	transfer.GitHubOperations
	ListAccountRepositories(executionContext context.Context, account string) ([]string, error)
}

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// GitHubServiceProvider constructs the remote client from a resolved token.
type GitHubServiceProvider func(executionContext context.Context, accessToken string) (GitHubService, error)

// TokenResolver resolves the GitHub access credential before any network call.
type TokenResolver func(tokenFilePath string) (string, error)

type commandAction string

const (
	actionAggregateAndPrint   commandAction = "info"
	actionAggregateAndPersist commandAction = "save"
	actionShowPersisted       commandAction = "show"
	actionImport              commandAction = "import"
	actionRevert              commandAction = "revert"
)

type commandOptions struct {
	action          commandAction
	repositoryNames []string
	skipComments    bool
	namesOnly       bool
}

// CommandBuilder assembles the repos cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	GitHubServiceProvider GitHubServiceProvider
	TokenResolver         TokenResolver
	Sleeper               transfer.Sleeper
	FailureReporter       FailureReporter
}

// Build constructs the repos command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	command.Flags().Bool(flagInfoNameConstant, false, flagInfoDescriptionConstant)
	command.Flags().Bool(flagSaveNameConstant, false, flagSaveDescriptionConstant)
	command.Flags().Bool(flagShowNameConstant, false, flagShowDescriptionConstant)
	command.Flags().Bool(flagImportNameConstant, false, flagImportDescriptionConstant)
	command.Flags().Bool(flagRevertNameConstant, false, flagRevertDescriptionConstant)
	command.Flags().Bool(flagSkipCommentsNameConstant, false, flagSkipCommentsDescriptionConstant)
	command.Flags().Bool(flagNamesOnlyNameConstant, false, flagNamesOnlyDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := parseOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	if options.action == actionShowPersisted {
		return builder.runShow(command, configuration, options)
	}

	accessToken, tokenError := builder.resolveToken(configuration.TokenFilePath)
	if tokenError != nil {
		return tokenError
	}

	githubService, clientError := builder.resolveGitHubService(command.Context(), accessToken)
	if clientError != nil {
		return clientError
	}

	repositoryNames, namesError := resolveRepositoryNames(command.Context(), githubService, configuration, options.repositoryNames)
	if namesError != nil {
		return namesError
	}

	runner := NewRunner(logger, builder.resolveFailureReporter(), configuration.WorkerCount)

	switch options.action {
	case actionAggregateAndPrint, actionAggregateAndPersist:
		return builder.runAggregation(command, logger, configuration, options, githubService, runner, repositoryNames)
	case actionImport:
		return builder.runTransfer(command, logger, configuration, githubService, runner, repositoryNames, false)
	case actionRevert:
		return builder.runTransfer(command, logger, configuration, githubService, runner, repositoryNames, true)
	}

	return nil
}

func (builder *CommandBuilder) runAggregation(command *cobra.Command, logger *zap.Logger, configuration CommandConfiguration, options commandOptions, githubService GitHubService, runner *Runner, repositoryNames []string) error {
	aggregator, aggregatorError := snapshot.NewService(snapshot.ServiceDependencies{
		Logger:           logger,
		RepositoryReader: githubService,
	})
	if aggregatorError != nil {
		return wrapConstructionError(aggregatorCreationErrorTemplate, aggregatorError)
	}

	task := func(executionContext context.Context, repositoryName string) (*snapshot.ProjectInfo, error) {
		project, aggregationError := aggregator.Aggregate(executionContext, snapshot.AggregationOptions{
			Owner:              configuration.SourceAccount,
			Name:               repositoryName,
			ReservedLogins:     configuration.ReservedLogins(),
			DestinationAccount: configuration.DestinationAccount,
			SkipComments:       options.skipComments,
		})
		if aggregationError != nil {
			return nil, aggregationError
		}
		return &project, nil
	}

	outcome := runner.Run(command.Context(), repositoryNames, task)
	SortProjects(outcome.Projects)

	if options.action == actionAggregateAndPersist {
		store, storeError := snapshot.NewStore(configuration.SnapshotFilePath)
		if storeError != nil {
			return wrapConstructionError(storeCreationErrorTemplate, storeError)
		}
		if saveError := store.Save(outcome.Projects); saveError != nil {
			return saveError
		}
		logger.Info(
			snapshotsPersistedMessage,
			zap.String(logFieldSnapshotFileConstant, store.FilePath()),
			zap.Int(logFieldProjectCountConstant, len(outcome.Projects)),
		)
		return nil
	}

	RenderProjects(command.OutOrStdout(), outcome.Projects, RenderOptions{
		NamesOnly:       options.namesOnly,
		IncludeComments: !options.skipComments,
	})
	return nil
}

func (builder *CommandBuilder) runTransfer(command *cobra.Command, logger *zap.Logger, configuration CommandConfiguration, githubService GitHubService, runner *Runner, repositoryNames []string, revert bool) error {
	transferService, transferError := transfer.NewService(transfer.ServiceDependencies{
		Logger:       logger,
		GitHubClient: githubService,
		Sleeper:      builder.Sleeper,
	})
	if transferError != nil {
		return wrapConstructionError(transferCreationErrorTemplate, transferError)
	}

	successReporter := ConsoleReporter{}

	task := func(executionContext context.Context, repositoryName string) (*snapshot.ProjectInfo, error) {
		workflowOptions := transfer.WorkflowOptions{
			SourceAccount:               configuration.SourceAccount,
			DestinationAccount:          configuration.DestinationAccount,
			RepositoryName:              repositoryName,
			CloneSuffix:                 configuration.CloneSuffix,
			PollInterval:                time.Duration(configuration.PollIntervalMilliseconds) * time.Millisecond,
			MarkCloneDestinationPrivate: configuration.MarkClonePrivate,
		}

		if revert {
			if revertError := transferService.Revert(executionContext, workflowOptions); revertError != nil {
				return nil, revertError
			}
		} else {
			if _, importError := transferService.Import(executionContext, workflowOptions); importError != nil {
				return nil, importError
			}
		}

		successReporter.ReportSuccess(repositoryName)
		return nil, nil
	}

	runner.Run(command.Context(), repositoryNames, task)
	return nil
}

func (builder *CommandBuilder) runShow(command *cobra.Command, configuration CommandConfiguration, options commandOptions) error {
	store, storeError := snapshot.NewStore(configuration.SnapshotFilePath)
	if storeError != nil {
		return wrapConstructionError(storeCreationErrorTemplate, storeError)
	}

	projects, loadError := store.Load()
	if loadError != nil {
		return loadError
	}

	selected := selectProjects(projects, options.repositoryNames)
	SortProjects(selected)
	RenderProjects(command.OutOrStdout(), selected, RenderOptions{
		NamesOnly:       options.namesOnly,
		IncludeComments: !options.skipComments,
	})
	return nil
}

func parseOptions(command *cobra.Command, arguments []string) (commandOptions, error) {
	actionsByFlag := map[string]commandAction{
		flagInfoNameConstant:   actionAggregateAndPrint,
		flagSaveNameConstant:   actionAggregateAndPersist,
		flagShowNameConstant:   actionShowPersisted,
		flagImportNameConstant: actionImport,
		flagRevertNameConstant: actionRevert,
	}

	var selectedActions []commandAction
	for flagName, action := range actionsByFlag {
		enabled, _ := command.Flags().GetBool(flagName)
		if enabled {
			selectedActions = append(selectedActions, action)
		}
	}

	if len(selectedActions) != 1 {
		return commandOptions{}, errors.New(errorExactlyOneActionMessage)
	}

	skipComments, _ := command.Flags().GetBool(flagSkipCommentsNameConstant)
	namesOnly, _ := command.Flags().GetBool(flagNamesOnlyNameConstant)

	repositoryNames := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) > 0 {
			repositoryNames = append(repositoryNames, trimmed)
		}
	}

	return commandOptions{
		action:          selectedActions[0],
		repositoryNames: repositoryNames,
		skipComments:    skipComments,
		namesOnly:       namesOnly,
	}, nil
}

func resolveRepositoryNames(executionContext context.Context, githubService GitHubService, configuration CommandConfiguration, requestedNames []string) ([]string, error) {
	if len(requestedNames) > 0 {
		return requestedNames, nil
	}

	names, listError := githubService.ListAccountRepositories(executionContext, configuration.SourceAccount)
	if listError != nil {
		return nil, wrapConstructionError(nameResolutionErrorTemplate, listError)
	}
	return names, nil
}

func selectProjects(projects []snapshot.ProjectInfo, requestedNames []string) []snapshot.ProjectInfo {
	if len(requestedNames) == 0 {
		return projects
	}

	requested := make(map[string]struct{}, len(requestedNames))
	for _, name := range requestedNames {
		requested[name] = struct{}{}
	}

	selected := make([]snapshot.ProjectInfo, 0, len(projects))
	for _, project := range projects {
		_, byName := requested[project.Repository.Name]
		_, byFullName := requested[project.Repository.FullName]
		if byName || byFullName {
			selected = append(selected, project)
		}
	}
	return selected
}

func wrapConstructionError(template string, cause error) error {
	return fmt.Errorf(template, cause)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveToken(tokenFilePath string) (string, error) {
	if builder.TokenResolver != nil {
		return builder.TokenResolver(tokenFilePath)
	}
	return githubauth.ResolveToken(nil, tokenFilePath)
}

func (builder *CommandBuilder) resolveGitHubService(executionContext context.Context, accessToken string) (GitHubService, error) {
	if builder.GitHubServiceProvider != nil {
		return builder.GitHubServiceProvider(executionContext, accessToken)
	}

	client, clientError := githubapi.NewClient(executionContext, accessToken)
	if clientError != nil {
		return nil, wrapConstructionError(clientCreationErrorTemplate, clientError)
	}
	return client, nil
}

func (builder *CommandBuilder) resolveFailureReporter() FailureReporter {
	if builder.FailureReporter != nil {
		return builder.FailureReporter
	}
	return ConsoleReporter{}
}
