package batch

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/repomove/internal/snapshot"
)

const (
	repositoryOperationFailedMessageConstant = "Repository operation failed"
	logFieldRepositoryNameConstant           = "repository"
	logFieldErrorConstant                    = "error"
)

// RepositoryTask applies one operation to one repository name. Aggregation
// tasks return the built project; import and revert tasks return nil.
type RepositoryTask func(executionContext context.Context, repositoryName string) (*snapshot.ProjectInfo, error)

// FailureReporter receives per-repository failures as they happen.
type FailureReporter interface {
	ReportFailure(repositoryName string, failure error)
}

// RunOutcome aggregates the results of one batch run.
type RunOutcome struct {
	Projects []snapshot.ProjectInfo
	Failures []error
}

// Runner applies a task to every repository name with per-name isolation:
// names run concurrently behind a semaphore, each failure is logged and
// reported without halting siblings, and successful projects accumulate
// append-only under a mutex.
type Runner struct {
	logger          *zap.Logger
	failureReporter FailureReporter
	workerCount     int
}

// NewRunner constructs a Runner with the provided collaborators.
func NewRunner(logger *zap.Logger, failureReporter FailureReporter, workerCount int) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workerCount <= 0 {
		workerCount = defaultWorkerCountConstant
	}
	return &Runner{logger: logger, failureReporter: failureReporter, workerCount: workerCount}
}

// Run executes the task for every repository name and returns the collected
// outcome. One name's failure never stops the remaining names.
func (runner *Runner) Run(executionContext context.Context, repositoryNames []string, task RepositoryTask) RunOutcome {
	outcome := RunOutcome{}
	semaphore := make(chan struct{}, runner.workerCount)

	var waitGroup sync.WaitGroup
	var mutex sync.Mutex

	for _, repositoryName := range repositoryNames {
		waitGroup.Add(1)
		go func(name string) {
			defer waitGroup.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			project, taskError := task(executionContext, name)

			mutex.Lock()
			defer mutex.Unlock()
			if taskError != nil {
				outcome.Failures = append(outcome.Failures, taskError)
				runner.logger.Error(
					repositoryOperationFailedMessageConstant,
					zap.String(logFieldRepositoryNameConstant, name),
					zap.Error(taskError),
				)
				if runner.failureReporter != nil {
					runner.failureReporter.ReportFailure(name, taskError)
				}
				return
			}
			if project != nil {
				outcome.Projects = append(outcome.Projects, *project)
			}
		}(repositoryName)
	}

	waitGroup.Wait()

	return outcome
}

// SortProjects orders projects by owner then repository name, both
// case-insensitively, for stable presentation.
func SortProjects(projects []snapshot.ProjectInfo) {
	sort.SliceStable(projects, func(firstIndex int, secondIndex int) bool {
		firstOwner := strings.ToLower(projects[firstIndex].Repository.Owner)
		secondOwner := strings.ToLower(projects[secondIndex].Repository.Owner)
		if firstOwner != secondOwner {
			return firstOwner < secondOwner
		}
		firstName := strings.ToLower(projects[firstIndex].Repository.Name)
		secondName := strings.ToLower(projects[secondIndex].Repository.Name)
		return firstName < secondName
	})
}
