package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/temirov/repomove/internal/githubapi"
)

const (
	ownerFieldNameConstant                 = "owner"
	repositoryFieldNameConstant            = "repository"
	requiredValueMessageConstant           = "value required"
	repositoryClientMissingMessageConstant = "repository reader not configured"
	repositoryFetchErrorTemplateConstant   = "unable to fetch repository metadata: %w"
	stargazerFetchErrorTemplateConstant    = "unable to fetch stargazers: %w"
	watcherFetchErrorTemplateConstant      = "unable to fetch watchers: %w"
	forkFetchErrorTemplateConstant         = "unable to fetch forks: %w"
	issueFetchErrorTemplateConstant        = "unable to fetch issues: %w"
	pagesFetchErrorTemplateConstant        = "unable to fetch pages configuration: %w"
	commentFetchErrorTemplateConstant      = "unable to fetch comments for issue #%d: %w"
	aggregationStartedMessageConstant      = "Aggregating repository snapshot"
	aggregationCompletedMessageConstant    = "Repository snapshot assembled"
	logFieldRepositoryConstant             = "repository"
	logFieldStargazerCountConstant         = "stargazers"
	logFieldWatcherCountConstant           = "watchers"
	logFieldForkCountConstant              = "forks"
	logFieldIssueCountConstant             = "issues"
	defaultCommentWorkerCountConstant      = 8
	ownerRepositoryFullNameFormatConstant  = "%s/%s"
)

// InvalidInputError describes aggregation option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", inputError.FieldName, inputError.Message)
}

// RepositoryReader is the read-only remote surface the aggregator consumes.
type RepositoryReader interface {
	GetRepository(executionContext context.Context, owner string, name string) (githubapi.RepositoryDetails, error)
	ListStargazers(executionContext context.Context, owner string, name string) ([]githubapi.AccountIdentity, error)
	ListWatchers(executionContext context.Context, owner string, name string) ([]githubapi.AccountIdentity, error)
	ListForks(executionContext context.Context, owner string, name string) ([]githubapi.ForkIdentity, error)
	ListIssues(executionContext context.Context, owner string, name string, state githubapi.IssueState) ([]githubapi.IssueRecord, error)
	ListIssueComments(executionContext context.Context, owner string, name string, issueNumber int) ([]githubapi.CommentRecord, error)
	GetPagesConfig(executionContext context.Context, owner string, name string) (githubapi.PagesDetails, error)
}

// ServiceDependencies describes required collaborators for aggregation.
type ServiceDependencies struct {
	Logger           *zap.Logger
	RepositoryReader RepositoryReader
}

// AggregationOptions configures one snapshot aggregation.
type AggregationOptions struct {
	Owner              string
	Name               string
	ReservedLogins     []string
	DestinationAccount string
	SkipComments       bool
	CommentWorkerCount int
}

// Service aggregates one repository's metadata into a ProjectInfo.
type Service struct {
	logger           *zap.Logger
	repositoryReader RepositoryReader
}

var errRepositoryReaderMissing = errors.New(repositoryClientMissingMessageConstant)

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepositoryReader == nil {
		return nil, errRepositoryReaderMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{logger: logger, repositoryReader: dependencies.RepositoryReader}, nil
}

// Aggregate builds a ProjectInfo for one repository. The base metadata fetch
// runs first because downstream calls depend on the canonical owner/name and
// the Pages flag; the remaining sub-queries run as one concurrent round,
// followed by a second concurrent round for per-issue comments. Any sub-query
// failure aborts the whole aggregation; no partial snapshot is produced.
func (service *Service) Aggregate(executionContext context.Context, options AggregationOptions) (ProjectInfo, error) {
	if validationError := validateOptions(options); validationError != nil {
		return ProjectInfo{}, validationError
	}

	service.logger.Debug(
		aggregationStartedMessageConstant,
		zap.String(logFieldRepositoryConstant, fmt.Sprintf(ownerRepositoryFullNameFormatConstant, options.Owner, options.Name)),
	)

	repositoryDetails, repositoryError := service.repositoryReader.GetRepository(executionContext, options.Owner, options.Name)
	if repositoryError != nil {
		return ProjectInfo{}, fmt.Errorf(repositoryFetchErrorTemplateConstant, repositoryError)
	}

	canonicalOwner := repositoryDetails.Owner
	canonicalName := repositoryDetails.Name

	var (
		stargazers   []githubapi.AccountIdentity
		watchers     []githubapi.AccountIdentity
		forks        []githubapi.ForkIdentity
		issues       []githubapi.IssueRecord
		pagesDetails *githubapi.PagesDetails
	)

	collector := newFanOutCollector()
	collector.launch(func() error {
		fetched, fetchError := service.repositoryReader.ListStargazers(executionContext, canonicalOwner, canonicalName)
		if fetchError != nil {
			return fmt.Errorf(stargazerFetchErrorTemplateConstant, fetchError)
		}
		stargazers = fetched
		return nil
	})
	collector.launch(func() error {
		fetched, fetchError := service.repositoryReader.ListWatchers(executionContext, canonicalOwner, canonicalName)
		if fetchError != nil {
			return fmt.Errorf(watcherFetchErrorTemplateConstant, fetchError)
		}
		watchers = fetched
		return nil
	})
	collector.launch(func() error {
		fetched, fetchError := service.repositoryReader.ListForks(executionContext, canonicalOwner, canonicalName)
		if fetchError != nil {
			return fmt.Errorf(forkFetchErrorTemplateConstant, fetchError)
		}
		forks = fetched
		return nil
	})
	collector.launch(func() error {
		fetched, fetchError := service.repositoryReader.ListIssues(executionContext, canonicalOwner, canonicalName, githubapi.IssueStateAll)
		if fetchError != nil {
			return fmt.Errorf(issueFetchErrorTemplateConstant, fetchError)
		}
		issues = fetched
		return nil
	})
	if repositoryDetails.HasPages {
		collector.launch(func() error {
			fetched, fetchError := service.repositoryReader.GetPagesConfig(executionContext, canonicalOwner, canonicalName)
			if fetchError != nil {
				return fmt.Errorf(pagesFetchErrorTemplateConstant, fetchError)
			}
			pagesDetails = &fetched
			return nil
		})
	}

	if fanOutError := collector.wait(); fanOutError != nil {
		return ProjectInfo{}, fanOutError
	}

	stargazers = excludeAccounts(stargazers, options.ReservedLogins)
	watchers = excludeAccounts(watchers, options.ReservedLogins)
	forks = excludeFork(forks, fmt.Sprintf(ownerRepositoryFullNameFormatConstant, options.DestinationAccount, canonicalName))

	sort.SliceStable(issues, func(firstIndex int, secondIndex int) bool {
		return issues[firstIndex].Number < issues[secondIndex].Number
	})

	var issueComments map[int][]githubapi.CommentRecord
	if !options.SkipComments {
		collected, commentsError := service.collectIssueComments(executionContext, canonicalOwner, canonicalName, issues, options.CommentWorkerCount)
		if commentsError != nil {
			return ProjectInfo{}, commentsError
		}
		issueComments = collected
	}

	service.logger.Debug(
		aggregationCompletedMessageConstant,
		zap.String(logFieldRepositoryConstant, repositoryDetails.FullName),
		zap.Int(logFieldStargazerCountConstant, len(stargazers)),
		zap.Int(logFieldWatcherCountConstant, len(watchers)),
		zap.Int(logFieldForkCountConstant, len(forks)),
		zap.Int(logFieldIssueCountConstant, len(issues)),
	)

	return ProjectInfo{
		Repository:    repositoryDetails,
		Stargazers:    stargazers,
		Watchers:      watchers,
		Forks:         forks,
		Issues:        issues,
		IssueComments: issueComments,
		Pages:         pagesDetails,
	}, nil
}

// collectIssueComments fetches comments for every issue concurrently, bounded
// by a semaphore, and merges results by issue-number key. Only issues with at
// least one comment appear in the returned map.
func (service *Service) collectIssueComments(executionContext context.Context, owner string, name string, issues []githubapi.IssueRecord, workerCount int) (map[int][]githubapi.CommentRecord, error) {
	if len(issues) == 0 {
		return nil, nil
	}

	if workerCount <= 0 {
		workerCount = defaultCommentWorkerCountConstant
	}

	issueComments := make(map[int][]githubapi.CommentRecord)
	semaphore := make(chan struct{}, workerCount)

	var waitGroup sync.WaitGroup
	var mutex sync.Mutex
	var firstError error

	for _, issue := range issues {
		waitGroup.Add(1)
		go func(issueNumber int) {
			defer waitGroup.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			comments, fetchError := service.repositoryReader.ListIssueComments(executionContext, owner, name, issueNumber)

			mutex.Lock()
			defer mutex.Unlock()
			if fetchError != nil {
				if firstError == nil {
					firstError = fmt.Errorf(commentFetchErrorTemplateConstant, issueNumber, fetchError)
				}
				return
			}
			if len(comments) > 0 {
				issueComments[issueNumber] = comments
			}
		}(issue.Number)
	}

	waitGroup.Wait()

	if firstError != nil {
		return nil, firstError
	}
	if len(issueComments) == 0 {
		return nil, nil
	}
	return issueComments, nil
}

func validateOptions(options AggregationOptions) error {
	if len(strings.TrimSpace(options.Owner)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.Name)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

// excludeAccounts removes identities whose login matches one of the reserved
// operator logins, preserving the original ordering of everything else.
func excludeAccounts(identities []githubapi.AccountIdentity, reservedLogins []string) []githubapi.AccountIdentity {
	if len(identities) == 0 || len(reservedLogins) == 0 {
		return identities
	}

	reserved := make(map[string]struct{}, len(reservedLogins))
	for _, login := range reservedLogins {
		reserved[login] = struct{}{}
	}

	filtered := make([]githubapi.AccountIdentity, 0, len(identities))
	for _, identity := range identities {
		if _, isReserved := reserved[identity.Login]; isReserved {
			continue
		}
		filtered = append(filtered, identity)
	}
	return filtered
}

// excludeFork removes the fork whose full name matches the expected
// destination clone exactly; every other fork passes through in order.
func excludeFork(forks []githubapi.ForkIdentity, excludedFullName string) []githubapi.ForkIdentity {
	if len(forks) == 0 {
		return forks
	}

	filtered := make([]githubapi.ForkIdentity, 0, len(forks))
	for _, fork := range forks {
		if fork.FullName == excludedFullName {
			continue
		}
		filtered = append(filtered, fork)
	}
	return filtered
}

// fanOutCollector runs tasks concurrently and retains the first failure.
type fanOutCollector struct {
	waitGroup  sync.WaitGroup
	mutex      sync.Mutex
	firstError error
}

func newFanOutCollector() *fanOutCollector {
	return &fanOutCollector{}
}

func (collector *fanOutCollector) launch(task func() error) {
	collector.waitGroup.Add(1)
	go func() {
		defer collector.waitGroup.Done()
		if taskError := task(); taskError != nil {
			collector.mutex.Lock()
			if collector.firstError == nil {
				collector.firstError = taskError
			}
			collector.mutex.Unlock()
		}
	}()
}

func (collector *fanOutCollector) wait() error {
	collector.waitGroup.Wait()
	return collector.firstError
}
