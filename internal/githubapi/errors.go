package githubapi

import "fmt"

const (
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
)

// OperationName describes a named GitHub API workflow supported by the client.
type OperationName string

// Operation names used in error reporting.
const (
	getRepositoryOperationNameConstant           = OperationName("GetRepository")
	listStargazersOperationNameConstant          = OperationName("ListStargazers")
	listWatchersOperationNameConstant            = OperationName("ListWatchers")
	listForksOperationNameConstant               = OperationName("ListForks")
	listIssuesOperationNameConstant              = OperationName("ListIssues")
	listIssueCommentsOperationNameConstant       = OperationName("ListIssueComments")
	getPagesConfigOperationNameConstant          = OperationName("GetPagesConfig")
	createPagesSiteOperationNameConstant         = OperationName("CreatePagesSite")
	setPagesCNAMEOperationNameConstant           = OperationName("SetPagesCNAME")
	createRepositoryOperationNameConstant        = OperationName("CreateRepository")
	updateRepositoryOperationNameConstant        = OperationName("UpdateRepository")
	replaceTopicsOperationNameConstant           = OperationName("ReplaceTopics")
	setRepositoryPrivateOperationNameConstant    = OperationName("SetRepositoryPrivate")
	deleteRepositoryOperationNameConstant        = OperationName("DeleteRepository")
	startImportOperationNameConstant             = OperationName("StartImport")
	getImportStatusOperationNameConstant         = OperationName("GetImportStatus")
	listAccountRepositoriesOperationNameConstant = OperationName("ListAccountRepositories")
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub API operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}
