package batch_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/repomove/internal/batch"
	"github.com/temirov/repomove/internal/githubapi"
	"github.com/temirov/repomove/internal/snapshot"
)

type recordingFailureReporter struct {
	mutex    sync.Mutex
	failures map[string]error
}

func newRecordingFailureReporter() *recordingFailureReporter {
	return &recordingFailureReporter{failures: make(map[string]error)}
}

func (reporter *recordingFailureReporter) ReportFailure(repositoryName string, failure error) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	reporter.failures[repositoryName] = failure
}

func projectWithName(owner string, name string) *snapshot.ProjectInfo {
	return &snapshot.ProjectInfo{
		Repository: githubapi.RepositoryDetails{Owner: owner, Name: name, FullName: owner + "/" + name},
	}
}

func TestRunnerIsolatesFailures(testInstance *testing.T) {
	reporter := newRecordingFailureReporter()
	runner := batch.NewRunner(nil, reporter, 2)

	failure := errors.New("repository unavailable")
	task := func(executionContext context.Context, repositoryName string) (*snapshot.ProjectInfo, error) {
		if repositoryName == "broken" {
			return nil, failure
		}
		return projectWithName("dmitshur", repositoryName), nil
	}

	outcome := runner.Run(context.Background(), []string{"broken", "healthy"}, task)

	require.Len(testInstance, outcome.Projects, 1)
	require.Equal(testInstance, "dmitshur/healthy", outcome.Projects[0].Repository.FullName)
	require.Len(testInstance, outcome.Failures, 1)
	require.ErrorIs(testInstance, outcome.Failures[0], failure)
	require.Len(testInstance, reporter.failures, 1)
	require.ErrorIs(testInstance, reporter.failures["broken"], failure)
}

func TestRunnerCollectsEveryProject(testInstance *testing.T) {
	runner := batch.NewRunner(nil, newRecordingFailureReporter(), 4)

	repositoryNames := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	task := func(executionContext context.Context, repositoryName string) (*snapshot.ProjectInfo, error) {
		return projectWithName("dmitshur", repositoryName), nil
	}

	outcome := runner.Run(context.Background(), repositoryNames, task)

	require.Len(testInstance, outcome.Projects, len(repositoryNames))
	require.Empty(testInstance, outcome.Failures)
}

func TestRunnerSkipsNilProjects(testInstance *testing.T) {
	runner := batch.NewRunner(nil, newRecordingFailureReporter(), 2)

	task := func(executionContext context.Context, repositoryName string) (*snapshot.ProjectInfo, error) {
		return nil, nil
	}

	outcome := runner.Run(context.Background(), []string{"alpha", "beta"}, task)

	require.Empty(testInstance, outcome.Projects)
	require.Empty(testInstance, outcome.Failures)
}

func TestSortProjectsOrdersCaseInsensitively(testInstance *testing.T) {
	projects := []snapshot.ProjectInfo{
		*projectWithName("Bob", "zeta"),
		*projectWithName("alice", "beta"),
		*projectWithName("Bob", "Alpha"),
		*projectWithName("alice", "alpha"),
	}

	batch.SortProjects(projects)

	fullNames := make([]string, 0, len(projects))
	for _, project := range projects {
		fullNames = append(fullNames, project.Repository.FullName)
	}
	require.Equal(testInstance, []string{"alice/alpha", "alice/beta", "Bob/Alpha", "Bob/zeta"}, fullNames)
}
