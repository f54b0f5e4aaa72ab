package githubapi

import (
	"context"
	"errors"
	"strings"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

const (
	ownerFieldNameConstant            = "owner"
	repositoryFieldNameConstant       = "repository"
	accountFieldNameConstant          = "account"
	issueNumberFieldNameConstant      = "issue_number"
	sourceURLFieldNameConstant        = "source_url"
	sourceBranchFieldNameConstant     = "source_branch"
	cnameFieldNameConstant            = "cname"
	requiredValueMessageConstant      = "value required"
	positiveValueMessageConstant      = "positive value required"
	tokenMissingMessageConstant       = "access token not configured"
	importVCSKindConstant             = "git"
	listPageSizeConstant              = 100
	repositoryListTypeOwnerConstant   = "owner"
	repositoryListSortFullNameSetting = "full_name"
)

// ErrTokenNotConfigured indicates the client was constructed without an access token.
var ErrTokenNotConfigured = errors.New(tokenMissingMessageConstant)

// Client performs GitHub REST API operations on behalf of the configured account.
type Client struct {
	githubClient *github.Client
}

// NewClient constructs a Client authenticated with the provided access token.
func NewClient(executionContext context.Context, accessToken string) (*Client, error) {
	trimmedToken := strings.TrimSpace(accessToken)
	if len(trimmedToken) == 0 {
		return nil, ErrTokenNotConfigured
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedToken})
	httpClient := oauth2.NewClient(executionContext, tokenSource)

	return &Client{githubClient: github.NewClient(httpClient)}, nil
}

// NewClientFromGitHub wraps an existing go-github client, primarily for tests.
func NewClientFromGitHub(githubClient *github.Client) *Client {
	return &Client{githubClient: githubClient}
}

// GetRepository retrieves canonical metadata for one repository.
func (client *Client) GetRepository(executionContext context.Context, owner string, name string) (RepositoryDetails, error) {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return RepositoryDetails{}, validationError
	}

	repository, _, requestError := client.githubClient.Repositories.Get(executionContext, owner, name)
	if requestError != nil {
		return RepositoryDetails{}, OperationError{Operation: getRepositoryOperationNameConstant, Cause: requestError}
	}

	return convertRepository(repository), nil
}

// ListStargazers enumerates stargazer identities in API return order.
func (client *Client) ListStargazers(executionContext context.Context, owner string, name string) ([]AccountIdentity, error) {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.ListOptions{PerPage: listPageSizeConstant}
	var identities []AccountIdentity
	for {
		stargazers, response, requestError := client.githubClient.Activity.ListStargazers(executionContext, owner, name, listOptions)
		if requestError != nil {
			return nil, OperationError{Operation: listStargazersOperationNameConstant, Cause: requestError}
		}
		for _, stargazer := range stargazers {
			identities = append(identities, convertAccount(stargazer.GetUser()))
		}
		if response.NextPage == 0 {
			break
		}
		listOptions.Page = response.NextPage
	}

	return identities, nil
}

// ListWatchers enumerates watcher identities in API return order.
func (client *Client) ListWatchers(executionContext context.Context, owner string, name string) ([]AccountIdentity, error) {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return nil, validationError
	}

	listOptions := &github.ListOptions{PerPage: listPageSizeConstant}
	var identities []AccountIdentity
	for {
		watchers, response, requestError := client.githubClient.Activity.ListWatchers(executionContext, owner, name, listOptions)
		if requestError != nil {
			return nil, OperationError{Operation: listWatchersOperationNameConstant, Cause: requestError}
		}
		for _, watcher := range watchers {
			identities = append(identities, convertAccount(watcher))
		}
		if response.NextPage == 0 {
			break
		}
		listOptions.Page = response.NextPage
	}

	return identities, nil
}

// ListForks enumerates fork identities in API return order.
func (client *Client) ListForks(executionContext context.Context, owner string, name string) ([]ForkIdentity, error) {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return nil, validationError
	}

	forkOptions := &github.RepositoryListForksOptions{ListOptions: github.ListOptions{PerPage: listPageSizeConstant}}
	var forks []ForkIdentity
	for {
		repositories, response, requestError := client.githubClient.Repositories.ListForks(executionContext, owner, name, forkOptions)
		if requestError != nil {
			return nil, OperationError{Operation: listForksOperationNameConstant, Cause: requestError}
		}
		for _, repository := range repositories {
			forks = append(forks, ForkIdentity{
				FullName: repository.GetFullName(),
				Owner:    repository.GetOwner().GetLogin(),
			})
		}
		if response.NextPage == 0 {
			break
		}
		forkOptions.Page = response.NextPage
	}

	return forks, nil
}

// ListIssues enumerates issues matching the requested state in API return order.
func (client *Client) ListIssues(executionContext context.Context, owner string, name string, state IssueState) ([]IssueRecord, error) {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return nil, validationError
	}

	issueOptions := &github.IssueListByRepoOptions{
		State:       string(state),
		ListOptions: github.ListOptions{PerPage: listPageSizeConstant},
	}
	var issues []IssueRecord
	for {
		issueEntries, response, requestError := client.githubClient.Issues.ListByRepo(executionContext, owner, name, issueOptions)
		if requestError != nil {
			return nil, OperationError{Operation: listIssuesOperationNameConstant, Cause: requestError}
		}
		for _, issueEntry := range issueEntries {
			issues = append(issues, IssueRecord{
				Number:      issueEntry.GetNumber(),
				Title:       issueEntry.GetTitle(),
				URL:         issueEntry.GetHTMLURL(),
				AuthorLogin: issueEntry.GetUser().GetLogin(),
				Body:        issueEntry.GetBody(),
				State:       issueEntry.GetState(),
			})
		}
		if response.NextPage == 0 {
			break
		}
		issueOptions.Page = response.NextPage
	}

	return issues, nil
}

// ListIssueComments enumerates comments for one issue in API return order.
func (client *Client) ListIssueComments(executionContext context.Context, owner string, name string, issueNumber int) ([]CommentRecord, error) {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return nil, validationError
	}
	if issueNumber <= 0 {
		return nil, InvalidInputError{FieldName: issueNumberFieldNameConstant, Message: positiveValueMessageConstant}
	}

	commentOptions := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: listPageSizeConstant}}
	var comments []CommentRecord
	for {
		commentEntries, response, requestError := client.githubClient.Issues.ListComments(executionContext, owner, name, issueNumber, commentOptions)
		if requestError != nil {
			return nil, OperationError{Operation: listIssueCommentsOperationNameConstant, Cause: requestError}
		}
		for _, commentEntry := range commentEntries {
			comments = append(comments, CommentRecord{
				AuthorLogin: commentEntry.GetUser().GetLogin(),
				Body:        commentEntry.GetBody(),
			})
		}
		if response.NextPage == 0 {
			break
		}
		commentOptions.Page = response.NextPage
	}

	return comments, nil
}

// GetPagesConfig retrieves the Pages configuration for a repository with Pages enabled.
func (client *Client) GetPagesConfig(executionContext context.Context, owner string, name string) (PagesDetails, error) {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return PagesDetails{}, validationError
	}

	pagesInfo, _, requestError := client.githubClient.Repositories.GetPagesInfo(executionContext, owner, name)
	if requestError != nil {
		return PagesDetails{}, OperationError{Operation: getPagesConfigOperationNameConstant, Cause: requestError}
	}

	return PagesDetails{
		URL:             pagesInfo.GetURL(),
		CNAME:           pagesInfo.GetCNAME(),
		SourceBranch:    pagesInfo.GetSource().GetBranch(),
		SourceDirectory: pagesInfo.GetSource().GetPath(),
	}, nil
}

// CreatePagesSite enables GitHub Pages on a repository using the provided source.
func (client *Client) CreatePagesSite(executionContext context.Context, owner string, name string, configuration PagesSiteConfiguration) error {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(configuration.SourceBranch)) == 0 {
		return InvalidInputError{FieldName: sourceBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	pagesSource := &github.PagesSource{Branch: github.String(configuration.SourceBranch)}
	if len(configuration.SourceDirectory) > 0 {
		pagesSource.Path = github.String(configuration.SourceDirectory)
	}

	_, _, requestError := client.githubClient.Repositories.EnablePages(executionContext, owner, name, &github.Pages{Source: pagesSource})
	if requestError != nil {
		return OperationError{Operation: createPagesSiteOperationNameConstant, Cause: requestError}
	}

	return nil
}

// SetPagesCNAME applies a custom domain to an existing Pages site.
func (client *Client) SetPagesCNAME(executionContext context.Context, owner string, name string, cname string) error {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return validationError
	}
	if len(strings.TrimSpace(cname)) == 0 {
		return InvalidInputError{FieldName: cnameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	pagesUpdate := &github.PagesUpdate{CNAME: github.String(cname)}
	_, requestError := client.githubClient.Repositories.UpdatePages(executionContext, owner, name, pagesUpdate)
	if requestError != nil {
		return OperationError{Operation: setPagesCNAMEOperationNameConstant, Cause: requestError}
	}

	return nil
}

// CreateRepository creates an empty repository for the authenticated account.
func (client *Client) CreateRepository(executionContext context.Context, name string) (RepositoryDetails, error) {
	if len(strings.TrimSpace(name)) == 0 {
		return RepositoryDetails{}, InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	repository, _, requestError := client.githubClient.Repositories.Create(executionContext, "", &github.Repository{Name: github.String(name)})
	if requestError != nil {
		return RepositoryDetails{}, OperationError{Operation: createRepositoryOperationNameConstant, Cause: requestError}
	}

	return convertRepository(repository), nil
}

// UpdateRepository copies the provided settings onto a repository.
func (client *Client) UpdateRepository(executionContext context.Context, owner string, name string, update RepositorySettingsUpdate) error {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return validationError
	}

	repository := &github.Repository{
		DefaultBranch: github.String(update.DefaultBranch),
		Description:   github.String(update.Description),
		Homepage:      github.String(update.Homepage),
		HasIssues:     github.Bool(update.HasIssues),
		HasProjects:   github.Bool(update.HasProjects),
		HasWiki:       github.Bool(update.HasWiki),
	}

	_, _, requestError := client.githubClient.Repositories.Edit(executionContext, owner, name, repository)
	if requestError != nil {
		return OperationError{Operation: updateRepositoryOperationNameConstant, Cause: requestError}
	}

	return nil
}

// ReplaceTopics replaces the full topic list of a repository.
func (client *Client) ReplaceTopics(executionContext context.Context, owner string, name string, topics []string) error {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return validationError
	}

	_, _, requestError := client.githubClient.Repositories.ReplaceAllTopics(executionContext, owner, name, topics)
	if requestError != nil {
		return OperationError{Operation: replaceTopicsOperationNameConstant, Cause: requestError}
	}

	return nil
}

// SetRepositoryPrivate marks a repository private.
func (client *Client) SetRepositoryPrivate(executionContext context.Context, owner string, name string) error {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return validationError
	}

	_, _, requestError := client.githubClient.Repositories.Edit(executionContext, owner, name, &github.Repository{Private: github.Bool(true)})
	if requestError != nil {
		return OperationError{Operation: setRepositoryPrivateOperationNameConstant, Cause: requestError}
	}

	return nil
}

// DeleteRepository removes a repository. The deletion is irreversible.
func (client *Client) DeleteRepository(executionContext context.Context, owner string, name string) error {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return validationError
	}

	_, requestError := client.githubClient.Repositories.Delete(executionContext, owner, name)
	if requestError != nil {
		return OperationError{Operation: deleteRepositoryOperationNameConstant, Cause: requestError}
	}

	return nil
}

// StartImport begins an asynchronous content import into a repository.
func (client *Client) StartImport(executionContext context.Context, owner string, name string, sourceURL string) (ImportJobState, error) {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return ImportJobState{}, validationError
	}
	if len(strings.TrimSpace(sourceURL)) == 0 {
		return ImportJobState{}, InvalidInputError{FieldName: sourceURLFieldNameConstant, Message: requiredValueMessageConstant}
	}

	importRequest := &github.Import{
		VCS:    github.String(importVCSKindConstant),
		VCSURL: github.String(sourceURL),
	}

	importJob, _, requestError := client.githubClient.Migrations.StartImport(executionContext, owner, name, importRequest)
	if requestError != nil {
		return ImportJobState{}, OperationError{Operation: startImportOperationNameConstant, Cause: requestError}
	}

	return ImportJobState{Status: importJob.GetStatus(), StatusText: importJob.GetStatusText()}, nil
}

// GetImportStatus reports the current state of an in-flight import job.
func (client *Client) GetImportStatus(executionContext context.Context, owner string, name string) (ImportJobState, error) {
	if validationError := validateOwnerAndName(owner, name); validationError != nil {
		return ImportJobState{}, validationError
	}

	importJob, _, requestError := client.githubClient.Migrations.ImportProgress(executionContext, owner, name)
	if requestError != nil {
		return ImportJobState{}, OperationError{Operation: getImportStatusOperationNameConstant, Cause: requestError}
	}

	return ImportJobState{Status: importJob.GetStatus(), StatusText: importJob.GetStatusText()}, nil
}

// ListAccountRepositories enumerates repository names owned by an account.
func (client *Client) ListAccountRepositories(executionContext context.Context, account string) ([]string, error) {
	if len(strings.TrimSpace(account)) == 0 {
		return nil, InvalidInputError{FieldName: accountFieldNameConstant, Message: requiredValueMessageConstant}
	}

	repositoryOptions := &github.RepositoryListOptions{
		Type:        repositoryListTypeOwnerConstant,
		Sort:        repositoryListSortFullNameSetting,
		ListOptions: github.ListOptions{PerPage: listPageSizeConstant},
	}
	var names []string
	for {
		repositories, response, requestError := client.githubClient.Repositories.List(executionContext, account, repositoryOptions)
		if requestError != nil {
			return nil, OperationError{Operation: listAccountRepositoriesOperationNameConstant, Cause: requestError}
		}
		for _, repository := range repositories {
			names = append(names, repository.GetName())
		}
		if response.NextPage == 0 {
			break
		}
		repositoryOptions.Page = response.NextPage
	}

	return names, nil
}

func validateOwnerAndName(owner string, name string) error {
	if len(strings.TrimSpace(owner)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(name)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}

func convertRepository(repository *github.Repository) RepositoryDetails {
	details := RepositoryDetails{
		Owner:         repository.GetOwner().GetLogin(),
		Name:          repository.GetName(),
		FullName:      repository.GetFullName(),
		Description:   repository.GetDescription(),
		Homepage:      repository.GetHomepage(),
		DefaultBranch: repository.GetDefaultBranch(),
		HasIssues:     repository.GetHasIssues(),
		HasProjects:   repository.GetHasProjects(),
		HasWiki:       repository.GetHasWiki(),
		HasPages:      repository.GetHasPages(),
		IsFork:        repository.GetFork(),
		Topics:        repository.Topics,
		CloneURL:      repository.GetCloneURL(),
	}
	if parent := repository.GetParent(); parent != nil {
		details.ParentFullName = parent.GetFullName()
	}
	return details
}

func convertAccount(user *github.User) AccountIdentity {
	return AccountIdentity{
		Login:      user.GetLogin(),
		ProfileURL: user.GetHTMLURL(),
	}
}
