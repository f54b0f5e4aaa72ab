package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/repomove/internal/githubapi"
)

const (
	defaultCloneSuffixConstant                 = "-clone"
	defaultPollIntervalConstant                = 200 * time.Millisecond
	repositoryNameFieldNameConstant            = "repository_name"
	sourceAccountFieldNameConstant             = "source_account"
	destinationAccountFieldNameConstant        = "destination_account"
	requiredValueMessageConstant               = "value required"
	githubClientMissingMessageConstant         = "GitHub client not configured"
	sourceMetadataErrorTemplateConstant        = "unable to fetch source repository metadata: %w"
	cloneCreationErrorTemplateConstant         = "unable to create destination clone %s: %w"
	importStartErrorTemplateConstant           = "unable to start import for %s: %w"
	importPollErrorTemplateConstant            = "unable to poll import status for %s: %w"
	importFailedErrorTemplateConstant          = "import of %s failed with status %s: %s"
	settingsUpdateErrorTemplateConstant        = "unable to reconcile destination settings: %w"
	topicsReplaceErrorTemplateConstant         = "unable to replace destination topics: %w"
	pagesConfigFetchErrorTemplateConstant      = "unable to fetch source pages configuration: %w"
	pagesCreationErrorTemplateConstant         = "unable to create destination pages site: %w"
	pagesCNAMEErrorTemplateConstant            = "unable to apply pages custom domain: %w"
	markPrivateErrorTemplateConstant           = "unable to mark destination private: %w"
	cloneDeletionErrorTemplateConstant         = "unable to delete destination clone %s: %w"
	importStartedMessageConstant               = "Import started"
	importStatusChangedMessageConstant         = "Import status changed"
	importCompletedMessageConstant             = "Import completed"
	cloneCreatedMessageConstant                = "Destination clone created"
	reconciliationCompletedMessageConstant     = "Destination settings reconciled"
	cloneDeletedMessageConstant                = "Destination clone deleted"
	logFieldSourceRepositoryConstant           = "source_repository"
	logFieldCloneRepositoryConstant            = "clone_repository"
	logFieldPreviousStatusConstant             = "previous_status"
	logFieldCurrentStatusConstant              = "current_status"
	logFieldStatusTextConstant                 = "status_text"
	logFieldPollCyclesConstant                 = "poll_cycles"
	ownerRepositoryFullNameFormatTransferConst = "%s/%s"
)

// InvalidInputError describes workflow option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s", inputError.FieldName, inputError.Message)
}

// ImportFailedError reports an import job that reached a terminal failure
// status. The remote call succeeded; the job itself failed.
type ImportFailedError struct {
	Repository string
	Status     ImportStatus
}

// Error surfaces the terminal status and its human-readable text.
func (importError ImportFailedError) Error() string {
	return fmt.Sprintf(importFailedErrorTemplateConstant, importError.Repository, importError.Status.Raw, importError.Status.Text)
}

// GitHubOperations is the remote surface the transfer workflows consume.
type GitHubOperations interface {
	GetRepository(executionContext context.Context, owner string, name string) (githubapi.RepositoryDetails, error)
	CreateRepository(executionContext context.Context, name string) (githubapi.RepositoryDetails, error)
	StartImport(executionContext context.Context, owner string, name string, sourceURL string) (githubapi.ImportJobState, error)
	GetImportStatus(executionContext context.Context, owner string, name string) (githubapi.ImportJobState, error)
	UpdateRepository(executionContext context.Context, owner string, name string, update githubapi.RepositorySettingsUpdate) error
	ReplaceTopics(executionContext context.Context, owner string, name string, topics []string) error
	GetPagesConfig(executionContext context.Context, owner string, name string) (githubapi.PagesDetails, error)
	CreatePagesSite(executionContext context.Context, owner string, name string, configuration githubapi.PagesSiteConfiguration) error
	SetPagesCNAME(executionContext context.Context, owner string, name string, cname string) error
	SetRepositoryPrivate(executionContext context.Context, owner string, name string) error
	DeleteRepository(executionContext context.Context, owner string, name string) error
}

// Sleeper abstracts the poll delay for deterministic tests.
type Sleeper interface {
	Sleep(duration time.Duration)
}

// SystemSleeper implements Sleeper using the standard library.
type SystemSleeper struct{}

// Sleep pauses the calling goroutine for the requested duration.
func (SystemSleeper) Sleep(duration time.Duration) {
	time.Sleep(duration)
}

// ServiceDependencies describes required collaborators for transfers.
type ServiceDependencies struct {
	Logger       *zap.Logger
	GitHubClient GitHubOperations
	Sleeper      Sleeper
}

// WorkflowOptions configures one import or revert workflow.
type WorkflowOptions struct {
	SourceAccount               string
	DestinationAccount          string
	RepositoryName              string
	CloneSuffix                 string
	PollInterval                time.Duration
	MarkCloneDestinationPrivate bool
}

// CloneName reports the destination repository name for the configured source name.
func (options WorkflowOptions) CloneName() string {
	suffix := options.CloneSuffix
	if len(suffix) == 0 {
		suffix = defaultCloneSuffixConstant
	}
	return options.RepositoryName + suffix
}

func (options WorkflowOptions) pollInterval() time.Duration {
	if options.PollInterval <= 0 {
		return defaultPollIntervalConstant
	}
	return options.PollInterval
}

// ImportResult captures the observable outcome of a completed import.
type ImportResult struct {
	CloneFullName string
	FinalStatus   ImportStatus
	PollCycles    int
}

// Service orchestrates the import state machine and the revert operation.
type Service struct {
	logger       *zap.Logger
	githubClient GitHubOperations
	sleeper      Sleeper
}

var errGitHubClientMissing = errors.New(githubClientMissingMessageConstant)

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.GitHubClient == nil {
		return nil, errGitHubClientMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sleeper := dependencies.Sleeper
	if sleeper == nil {
		sleeper = SystemSleeper{}
	}

	return &Service{logger: logger, githubClient: dependencies.GitHubClient, sleeper: sleeper}, nil
}

// Import migrates one source repository into a freshly created destination
// clone. Steps run sequentially: source metadata fetch, clone shell creation
// (a name collision is fatal and surfaced, never retried), import start, the
// poll loop, and reconciliation of the settings the import does not carry.
// There is no compensating rollback between steps; a failure partway through
// leaves the destination as-is for the operator or the Revert operation.
func (service *Service) Import(executionContext context.Context, options WorkflowOptions) (ImportResult, error) {
	if validationError := validateWorkflowOptions(options); validationError != nil {
		return ImportResult{}, validationError
	}

	sourceDetails, sourceError := service.githubClient.GetRepository(executionContext, options.SourceAccount, options.RepositoryName)
	if sourceError != nil {
		return ImportResult{}, fmt.Errorf(sourceMetadataErrorTemplateConstant, sourceError)
	}

	cloneName := options.CloneName()
	cloneFullName := fmt.Sprintf(ownerRepositoryFullNameFormatTransferConst, options.DestinationAccount, cloneName)

	if _, creationError := service.githubClient.CreateRepository(executionContext, cloneName); creationError != nil {
		return ImportResult{}, fmt.Errorf(cloneCreationErrorTemplateConstant, cloneFullName, creationError)
	}

	service.logger.Info(
		cloneCreatedMessageConstant,
		zap.String(logFieldSourceRepositoryConstant, sourceDetails.FullName),
		zap.String(logFieldCloneRepositoryConstant, cloneFullName),
	)

	initialState, startError := service.githubClient.StartImport(executionContext, options.DestinationAccount, cloneName, sourceDetails.CloneURL)
	if startError != nil {
		return ImportResult{}, fmt.Errorf(importStartErrorTemplateConstant, cloneFullName, startError)
	}

	currentStatus := classifyImportStatus(initialState)
	service.logger.Info(
		importStartedMessageConstant,
		zap.String(logFieldCloneRepositoryConstant, cloneFullName),
		zap.String(logFieldCurrentStatusConstant, currentStatus.Raw),
	)

	pollCycles := 0
	for currentStatus.Kind == StatusKindInProgress {
		service.sleeper.Sleep(options.pollInterval())
		pollCycles++

		polledState, pollError := service.githubClient.GetImportStatus(executionContext, options.DestinationAccount, cloneName)
		if pollError != nil {
			return ImportResult{}, fmt.Errorf(importPollErrorTemplateConstant, cloneFullName, pollError)
		}

		polledStatus := classifyImportStatus(polledState)
		if polledStatus.Raw != currentStatus.Raw {
			service.logger.Info(
				importStatusChangedMessageConstant,
				zap.String(logFieldCloneRepositoryConstant, cloneFullName),
				zap.String(logFieldPreviousStatusConstant, currentStatus.Raw),
				zap.String(logFieldCurrentStatusConstant, polledStatus.Raw),
				zap.String(logFieldStatusTextConstant, polledStatus.Text),
			)
		}
		currentStatus = polledStatus
	}

	result := ImportResult{CloneFullName: cloneFullName, FinalStatus: currentStatus, PollCycles: pollCycles}

	if currentStatus.Kind == StatusKindFailed {
		return result, ImportFailedError{Repository: cloneFullName, Status: currentStatus}
	}

	service.logger.Info(
		importCompletedMessageConstant,
		zap.String(logFieldCloneRepositoryConstant, cloneFullName),
		zap.Int(logFieldPollCyclesConstant, pollCycles),
	)

	if reconcileError := service.reconcile(executionContext, sourceDetails, options, cloneName); reconcileError != nil {
		return result, reconcileError
	}

	service.logger.Info(
		reconciliationCompletedMessageConstant,
		zap.String(logFieldCloneRepositoryConstant, cloneFullName),
	)

	return result, nil
}

// reconcile copies the settings the import mechanism does not transfer:
// repository settings verbatim, topics when the source has any, the Pages
// site with its custom domain, and finally destination visibility.
func (service *Service) reconcile(executionContext context.Context, sourceDetails githubapi.RepositoryDetails, options WorkflowOptions, cloneName string) error {
	settingsUpdate := githubapi.RepositorySettingsUpdate{
		DefaultBranch: sourceDetails.DefaultBranch,
		Description:   sourceDetails.Description,
		Homepage:      sourceDetails.Homepage,
		HasIssues:     sourceDetails.HasIssues,
		HasProjects:   sourceDetails.HasProjects,
		HasWiki:       sourceDetails.HasWiki,
	}
	if updateError := service.githubClient.UpdateRepository(executionContext, options.DestinationAccount, cloneName, settingsUpdate); updateError != nil {
		return fmt.Errorf(settingsUpdateErrorTemplateConstant, updateError)
	}

	if len(sourceDetails.Topics) > 0 {
		if topicsError := service.githubClient.ReplaceTopics(executionContext, options.DestinationAccount, cloneName, sourceDetails.Topics); topicsError != nil {
			return fmt.Errorf(topicsReplaceErrorTemplateConstant, topicsError)
		}
	}

	if sourceDetails.HasPages {
		pagesDetails, pagesError := service.githubClient.GetPagesConfig(executionContext, options.SourceAccount, options.RepositoryName)
		if pagesError != nil {
			return fmt.Errorf(pagesConfigFetchErrorTemplateConstant, pagesError)
		}

		pagesConfiguration := githubapi.PagesSiteConfiguration{
			SourceBranch:    pagesDetails.SourceBranch,
			SourceDirectory: pagesDetails.SourceDirectory,
		}
		if creationError := service.githubClient.CreatePagesSite(executionContext, options.DestinationAccount, cloneName, pagesConfiguration); creationError != nil {
			return fmt.Errorf(pagesCreationErrorTemplateConstant, creationError)
		}

		if len(pagesDetails.CNAME) > 0 {
			if cnameError := service.githubClient.SetPagesCNAME(executionContext, options.DestinationAccount, cloneName, pagesDetails.CNAME); cnameError != nil {
				return fmt.Errorf(pagesCNAMEErrorTemplateConstant, cnameError)
			}
		}
	}

	if options.MarkCloneDestinationPrivate {
		if privateError := service.githubClient.SetRepositoryPrivate(executionContext, options.DestinationAccount, cloneName); privateError != nil {
			return fmt.Errorf(markPrivateErrorTemplateConstant, privateError)
		}
	}

	return nil
}

// Revert deletes the destination clone created for a source repository. It is
// the single corrective mechanism for a bad or unwanted import: the deletion
// is irreversible and fails when the clone does not exist.
func (service *Service) Revert(executionContext context.Context, options WorkflowOptions) error {
	if validationError := validateWorkflowOptions(options); validationError != nil {
		return validationError
	}

	cloneName := options.CloneName()
	cloneFullName := fmt.Sprintf(ownerRepositoryFullNameFormatTransferConst, options.DestinationAccount, cloneName)

	if deletionError := service.githubClient.DeleteRepository(executionContext, options.DestinationAccount, cloneName); deletionError != nil {
		return fmt.Errorf(cloneDeletionErrorTemplateConstant, cloneFullName, deletionError)
	}

	service.logger.Info(
		cloneDeletedMessageConstant,
		zap.String(logFieldCloneRepositoryConstant, cloneFullName),
	)

	return nil
}

func validateWorkflowOptions(options WorkflowOptions) error {
	if len(strings.TrimSpace(options.SourceAccount)) == 0 {
		return InvalidInputError{FieldName: sourceAccountFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.DestinationAccount)) == 0 {
		return InvalidInputError{FieldName: destinationAccountFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.RepositoryName)) == 0 {
		return InvalidInputError{FieldName: repositoryNameFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}
