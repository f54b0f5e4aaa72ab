package transfer_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomove/internal/githubapi"
	"github.com/temirov/repomove/internal/transfer"
)

const (
	sourceAccountConstant     = "dmitshur"
	destinationAccountConst   = "shurcooL"
	repositoryNameTestConst   = "example"
	cloneNameTestConstant     = "example-clone"
	cloneFullNameTestConstant = destinationAccountConst + "/" + cloneNameTestConstant
)

type countingSleeper struct {
	sleepCount int
}

func (sleeper *countingSleeper) Sleep(duration time.Duration) {
	sleeper.sleepCount++
}

type scriptedGitHubOperations struct {
	sourceDetails        githubapi.RepositoryDetails
	createRepositoryErr  error
	initialImportState   githubapi.ImportJobState
	polledImportStates   []githubapi.ImportJobState
	pollIndex            int
	updatedSettings      []githubapi.RepositorySettingsUpdate
	replacedTopics       [][]string
	pagesDetails         githubapi.PagesDetails
	createdPagesSites    []githubapi.PagesSiteConfiguration
	appliedCNAMEs        []string
	markedPrivate        []string
	deletedRepositories  []string
	deleteRepositoryErr  error
	startedImportSources []string
}

func (operations *scriptedGitHubOperations) GetRepository(executionContext context.Context, owner string, name string) (githubapi.RepositoryDetails, error) {
	return operations.sourceDetails, nil
}

func (operations *scriptedGitHubOperations) CreateRepository(executionContext context.Context, name string) (githubapi.RepositoryDetails, error) {
	if operations.createRepositoryErr != nil {
		return githubapi.RepositoryDetails{}, operations.createRepositoryErr
	}
	return githubapi.RepositoryDetails{Owner: destinationAccountConst, Name: name}, nil
}

func (operations *scriptedGitHubOperations) StartImport(executionContext context.Context, owner string, name string, sourceURL string) (githubapi.ImportJobState, error) {
	operations.startedImportSources = append(operations.startedImportSources, sourceURL)
	return operations.initialImportState, nil
}

func (operations *scriptedGitHubOperations) GetImportStatus(executionContext context.Context, owner string, name string) (githubapi.ImportJobState, error) {
	if operations.pollIndex >= len(operations.polledImportStates) {
		return githubapi.ImportJobState{}, errors.New("unexpected status poll")
	}
	state := operations.polledImportStates[operations.pollIndex]
	operations.pollIndex++
	return state, nil
}

func (operations *scriptedGitHubOperations) UpdateRepository(executionContext context.Context, owner string, name string, update githubapi.RepositorySettingsUpdate) error {
	operations.updatedSettings = append(operations.updatedSettings, update)
	return nil
}

func (operations *scriptedGitHubOperations) ReplaceTopics(executionContext context.Context, owner string, name string, topics []string) error {
	operations.replacedTopics = append(operations.replacedTopics, topics)
	return nil
}

func (operations *scriptedGitHubOperations) GetPagesConfig(executionContext context.Context, owner string, name string) (githubapi.PagesDetails, error) {
	return operations.pagesDetails, nil
}

func (operations *scriptedGitHubOperations) CreatePagesSite(executionContext context.Context, owner string, name string, configuration githubapi.PagesSiteConfiguration) error {
	operations.createdPagesSites = append(operations.createdPagesSites, configuration)
	return nil
}

func (operations *scriptedGitHubOperations) SetPagesCNAME(executionContext context.Context, owner string, name string, cname string) error {
	operations.appliedCNAMEs = append(operations.appliedCNAMEs, cname)
	return nil
}

func (operations *scriptedGitHubOperations) SetRepositoryPrivate(executionContext context.Context, owner string, name string) error {
	operations.markedPrivate = append(operations.markedPrivate, fmt.Sprintf("%s/%s", owner, name))
	return nil
}

func (operations *scriptedGitHubOperations) DeleteRepository(executionContext context.Context, owner string, name string) error {
	if operations.deleteRepositoryErr != nil {
		return operations.deleteRepositoryErr
	}
	operations.deletedRepositories = append(operations.deletedRepositories, fmt.Sprintf("%s/%s", owner, name))
	return nil
}

func sourceRepositoryDetails() githubapi.RepositoryDetails {
	return githubapi.RepositoryDetails{
		Owner:         sourceAccountConstant,
		Name:          repositoryNameTestConst,
		FullName:      sourceAccountConstant + "/" + repositoryNameTestConst,
		Description:   "example project",
		DefaultBranch: "main",
		HasIssues:     true,
		CloneURL:      "https://github.com/dmitshur/example.git",
	}
}

func workflowOptions() transfer.WorkflowOptions {
	return transfer.WorkflowOptions{
		SourceAccount:      sourceAccountConstant,
		DestinationAccount: destinationAccountConst,
		RepositoryName:     repositoryNameTestConst,
	}
}

func TestServiceImportPollsUntilCompletion(testInstance *testing.T) {
	operations := &scriptedGitHubOperations{
		sourceDetails:      sourceRepositoryDetails(),
		initialImportState: githubapi.ImportJobState{Status: "detecting"},
		polledImportStates: []githubapi.ImportJobState{
			{Status: "importing"},
			{Status: "complete"},
		},
	}
	sleeper := &countingSleeper{}

	service, serviceError := transfer.NewService(transfer.ServiceDependencies{GitHubClient: operations, Sleeper: sleeper})
	require.NoError(testInstance, serviceError)

	result, importError := service.Import(context.Background(), workflowOptions())
	require.NoError(testInstance, importError)

	require.Equal(testInstance, cloneFullNameTestConstant, result.CloneFullName)
	require.Equal(testInstance, transfer.StatusKindComplete, result.FinalStatus.Kind)
	require.Equal(testInstance, 2, result.PollCycles)
	require.Equal(testInstance, 2, sleeper.sleepCount)
	require.Equal(testInstance, []string{"https://github.com/dmitshur/example.git"}, operations.startedImportSources)
	require.Len(testInstance, operations.updatedSettings, 1)
	require.Equal(testInstance, "main", operations.updatedSettings[0].DefaultBranch)
	require.True(testInstance, operations.updatedSettings[0].HasIssues)
}

func TestServiceImportFailureSkipsReconciliation(testInstance *testing.T) {
	operations := &scriptedGitHubOperations{
		sourceDetails:      sourceRepositoryDetails(),
		initialImportState: githubapi.ImportJobState{Status: "detecting"},
		polledImportStates: []githubapi.ImportJobState{
			{Status: "error", StatusText: "remote rejected"},
		},
	}
	sleeper := &countingSleeper{}

	service, serviceError := transfer.NewService(transfer.ServiceDependencies{GitHubClient: operations, Sleeper: sleeper})
	require.NoError(testInstance, serviceError)

	result, importError := service.Import(context.Background(), workflowOptions())
	require.Error(testInstance, importError)

	var importFailure transfer.ImportFailedError
	require.ErrorAs(testInstance, importError, &importFailure)
	require.Equal(testInstance, cloneFullNameTestConstant, importFailure.Repository)
	require.Equal(testInstance, transfer.StatusKindFailed, importFailure.Status.Kind)

	require.Equal(testInstance, 1, result.PollCycles)
	require.Equal(testInstance, 1, sleeper.sleepCount)
	require.Empty(testInstance, operations.updatedSettings)
	require.Empty(testInstance, operations.replacedTopics)
	require.Empty(testInstance, operations.markedPrivate)
}

func TestServiceImportCloneNameCollisionIsFatal(testInstance *testing.T) {
	operations := &scriptedGitHubOperations{
		sourceDetails:       sourceRepositoryDetails(),
		createRepositoryErr: errors.New("name already exists"),
	}

	service, serviceError := transfer.NewService(transfer.ServiceDependencies{GitHubClient: operations, Sleeper: &countingSleeper{}})
	require.NoError(testInstance, serviceError)

	_, importError := service.Import(context.Background(), workflowOptions())
	require.Error(testInstance, importError)
	require.Contains(testInstance, importError.Error(), cloneFullNameTestConstant)
	require.Empty(testInstance, operations.startedImportSources)
}

func TestServiceImportTopicsReplacement(testInstance *testing.T) {
	testCases := []struct {
		name             string
		sourceTopics     []string
		expectedReplaced [][]string
	}{
		{
			name:             "no_topics_skips_replacement",
			sourceTopics:     nil,
			expectedReplaced: nil,
		},
		{
			name:             "topics_replaced_once_with_source_set",
			sourceTopics:     []string{"go", "tooling"},
			expectedReplaced: [][]string{{"go", "tooling"}},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			sourceDetails := sourceRepositoryDetails()
			sourceDetails.Topics = testCase.sourceTopics

			operations := &scriptedGitHubOperations{
				sourceDetails:      sourceDetails,
				initialImportState: githubapi.ImportJobState{Status: "complete"},
			}

			service, serviceError := transfer.NewService(transfer.ServiceDependencies{GitHubClient: operations, Sleeper: &countingSleeper{}})
			require.NoError(subtestInstance, serviceError)

			_, importError := service.Import(context.Background(), workflowOptions())
			require.NoError(subtestInstance, importError)
			require.Equal(subtestInstance, testCase.expectedReplaced, operations.replacedTopics)
		})
	}
}

func TestServiceImportReconcilesPagesAndVisibility(testInstance *testing.T) {
	sourceDetails := sourceRepositoryDetails()
	sourceDetails.HasPages = true

	operations := &scriptedGitHubOperations{
		sourceDetails:      sourceDetails,
		initialImportState: githubapi.ImportJobState{Status: "complete"},
		pagesDetails: githubapi.PagesDetails{
			CNAME:           "example.dmitshur.com",
			SourceBranch:    "gh-pages",
			SourceDirectory: "/",
		},
	}

	options := workflowOptions()
	options.MarkCloneDestinationPrivate = true

	service, serviceError := transfer.NewService(transfer.ServiceDependencies{GitHubClient: operations, Sleeper: &countingSleeper{}})
	require.NoError(testInstance, serviceError)

	_, importError := service.Import(context.Background(), options)
	require.NoError(testInstance, importError)

	require.Equal(testInstance, []githubapi.PagesSiteConfiguration{{SourceBranch: "gh-pages", SourceDirectory: "/"}}, operations.createdPagesSites)
	require.Equal(testInstance, []string{"example.dmitshur.com"}, operations.appliedCNAMEs)
	require.Equal(testInstance, []string{cloneFullNameTestConstant}, operations.markedPrivate)
}

func TestServiceRevertDeletesClone(testInstance *testing.T) {
	operations := &scriptedGitHubOperations{}

	service, serviceError := transfer.NewService(transfer.ServiceDependencies{GitHubClient: operations, Sleeper: &countingSleeper{}})
	require.NoError(testInstance, serviceError)

	require.NoError(testInstance, service.Revert(context.Background(), workflowOptions()))
	require.Equal(testInstance, []string{cloneFullNameTestConstant}, operations.deletedRepositories)
}

func TestServiceRevertSurfacesDeletionFailure(testInstance *testing.T) {
	operations := &scriptedGitHubOperations{deleteRepositoryErr: errors.New("repository not found")}

	service, serviceError := transfer.NewService(transfer.ServiceDependencies{GitHubClient: operations, Sleeper: &countingSleeper{}})
	require.NoError(testInstance, serviceError)

	revertError := service.Revert(context.Background(), workflowOptions())
	require.Error(testInstance, revertError)
	require.Contains(testInstance, revertError.Error(), cloneFullNameTestConstant)
}

func TestServiceWorkflowValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		options       transfer.WorkflowOptions
		expectedField string
	}{
		{
			name: "missing_source_account",
			options: transfer.WorkflowOptions{
				DestinationAccount: destinationAccountConst,
				RepositoryName:     repositoryNameTestConst,
			},
			expectedField: "source_account",
		},
		{
			name: "missing_destination_account",
			options: transfer.WorkflowOptions{
				SourceAccount:  sourceAccountConstant,
				RepositoryName: repositoryNameTestConst,
			},
			expectedField: "destination_account",
		},
		{
			name: "missing_repository_name",
			options: transfer.WorkflowOptions{
				SourceAccount:      sourceAccountConstant,
				DestinationAccount: destinationAccountConst,
			},
			expectedField: "repository_name",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			service, serviceError := transfer.NewService(transfer.ServiceDependencies{GitHubClient: &scriptedGitHubOperations{}})
			require.NoError(subtestInstance, serviceError)

			_, importError := service.Import(context.Background(), testCase.options)
			require.Error(subtestInstance, importError)

			var invalidInput transfer.InvalidInputError
			require.ErrorAs(subtestInstance, importError, &invalidInput)
			require.Equal(subtestInstance, testCase.expectedField, invalidInput.FieldName)
		})
	}
}

func TestWorkflowOptionsCloneName(testInstance *testing.T) {
	defaultSuffixOptions := workflowOptions()
	require.Equal(testInstance, cloneNameTestConstant, defaultSuffixOptions.CloneName())

	customSuffixOptions := workflowOptions()
	customSuffixOptions.CloneSuffix = "-mirror"
	require.Equal(testInstance, "example-mirror", customSuffixOptions.CloneName())
}
