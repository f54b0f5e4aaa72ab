package githubapi

// IssueState filters issue listings.
type IssueState string

// Issue state values accepted by ListIssues.
const (
	IssueStateOpen   IssueState = "open"
	IssueStateClosed IssueState = "closed"
	IssueStateAll    IssueState = "all"
)

// RepositoryDetails captures the repository metadata consumed by snapshots and transfers.
type RepositoryDetails struct {
	Owner          string   `json:"owner"`
	Name           string   `json:"name"`
	FullName       string   `json:"full_name"`
	Description    string   `json:"description,omitempty"`
	Homepage       string   `json:"homepage,omitempty"`
	DefaultBranch  string   `json:"default_branch"`
	HasIssues      bool     `json:"has_issues"`
	HasProjects    bool     `json:"has_projects"`
	HasWiki        bool     `json:"has_wiki"`
	HasPages       bool     `json:"has_pages"`
	IsFork         bool     `json:"is_fork"`
	ParentFullName string   `json:"parent_full_name,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	CloneURL       string   `json:"clone_url,omitempty"`
}

// AccountIdentity identifies a stargazer or watcher account.
type AccountIdentity struct {
	Login      string `json:"login"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// ForkIdentity identifies a fork repository.
type ForkIdentity struct {
	FullName string `json:"full_name"`
	Owner    string `json:"owner"`
}

// IssueRecord captures one issue of a repository.
type IssueRecord struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	AuthorLogin string `json:"author_login"`
	Body        string `json:"body,omitempty"`
	State       string `json:"state"`
}

// CommentRecord captures one comment on an issue.
type CommentRecord struct {
	AuthorLogin string `json:"author_login"`
	Body        string `json:"body,omitempty"`
}

// PagesDetails describes an enabled GitHub Pages site.
type PagesDetails struct {
	URL             string `json:"url,omitempty"`
	CNAME           string `json:"cname,omitempty"`
	SourceBranch    string `json:"source_branch,omitempty"`
	SourceDirectory string `json:"source_directory,omitempty"`
}

// PagesSiteConfiguration describes the Pages site to create on a destination repository.
type PagesSiteConfiguration struct {
	SourceBranch    string
	SourceDirectory string
}

// RepositorySettingsUpdate lists the settings copied verbatim during reconciliation.
type RepositorySettingsUpdate struct {
	DefaultBranch string
	Description   string
	Homepage      string
	HasIssues     bool
	HasProjects   bool
	HasWiki       bool
}

// ImportJobState reports the raw status of an asynchronous import job.
type ImportJobState struct {
	Status     string
	StatusText string
}
