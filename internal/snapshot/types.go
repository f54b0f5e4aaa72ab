package snapshot

import "github.com/temirov/repomove/internal/githubapi"

// ProjectInfo is a point-in-time aggregated view of one repository's social
// metadata. It is immutable once built and serializes losslessly to the
// snapshot file: a deserialized ProjectInfo is structurally interchangeable
// with a freshly aggregated one.
type ProjectInfo struct {
	Repository    githubapi.RepositoryDetails         `json:"repository"`
	Stargazers    []githubapi.AccountIdentity         `json:"stargazers,omitempty"`
	Watchers      []githubapi.AccountIdentity         `json:"watchers,omitempty"`
	Forks         []githubapi.ForkIdentity            `json:"forks,omitempty"`
	Issues        []githubapi.IssueRecord             `json:"issues,omitempty"`
	IssueComments map[int][]githubapi.CommentRecord   `json:"issue_comments,omitempty"`
	Pages         *githubapi.PagesDetails             `json:"pages,omitempty"`
}

// CommentsForIssue returns the recorded comments for an issue number. Issues
// without comments yield an empty sequence, never an error: absent map entries
// mean "no comments", not missing data.
func (projectInfo ProjectInfo) CommentsForIssue(issueNumber int) []githubapi.CommentRecord {
	if projectInfo.IssueComments == nil {
		return nil
	}
	return projectInfo.IssueComments[issueNumber]
}
