package batch

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/temirov/repomove/internal/snapshot"
)

const (
	projectHeaderTemplateConstant      = "%s\n"
	projectCountsTemplateConstant      = "  stars: %d  watchers: %d  forks: %d  issues: %d\n"
	projectTopicsTemplateConstant      = "  topics: %s\n"
	projectPagesTemplateConstant       = "  pages: %s\n"
	projectPagesCNAMETemplateConstant  = "  pages: %s (cname %s)\n"
	projectIssueLineTemplateConstant   = "  #%d [%s] %s (%s)\n"
	projectCommentLineTemplateConstant = "    %s: %s\n"
	namesOnlyLineTemplateConstant      = "%s\n"
	topicListSeparatorConstant         = ", "
	commentPreviewLengthConstant       = 80
	commentPreviewEllipsisConstant     = "..."
	failureLineTemplateConstant        = "%s: %v"
	successLineTemplateConstant        = "%s"
)

// RenderOptions controls project report output.
type RenderOptions struct {
	NamesOnly       bool
	IncludeComments bool
}

// RenderProjects writes a readable report of the projects in their given order.
func RenderProjects(writer io.Writer, projects []snapshot.ProjectInfo, options RenderOptions) {
	for _, project := range projects {
		if options.NamesOnly {
			fmt.Fprintf(writer, namesOnlyLineTemplateConstant, project.Repository.FullName)
			continue
		}

		fmt.Fprintf(writer, projectHeaderTemplateConstant, project.Repository.FullName)
		fmt.Fprintf(
			writer,
			projectCountsTemplateConstant,
			len(project.Stargazers),
			len(project.Watchers),
			len(project.Forks),
			len(project.Issues),
		)

		if len(project.Repository.Topics) > 0 {
			fmt.Fprintf(writer, projectTopicsTemplateConstant, strings.Join(project.Repository.Topics, topicListSeparatorConstant))
		}

		if project.Pages != nil {
			if len(project.Pages.CNAME) > 0 {
				fmt.Fprintf(writer, projectPagesCNAMETemplateConstant, project.Pages.URL, project.Pages.CNAME)
			} else {
				fmt.Fprintf(writer, projectPagesTemplateConstant, project.Pages.URL)
			}
		}

		for _, issue := range project.Issues {
			fmt.Fprintf(writer, projectIssueLineTemplateConstant, issue.Number, issue.State, issue.Title, issue.AuthorLogin)
			if !options.IncludeComments {
				continue
			}
			for _, comment := range project.CommentsForIssue(issue.Number) {
				fmt.Fprintf(writer, projectCommentLineTemplateConstant, comment.AuthorLogin, previewText(comment.Body))
			}
		}
	}
}

func previewText(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if len(collapsed) <= commentPreviewLengthConstant {
		return collapsed
	}
	return collapsed[:commentPreviewLengthConstant] + commentPreviewEllipsisConstant
}

// ConsoleReporter prints per-repository outcomes in visually distinct forms:
// successes in the ok style, failures in the alarm style.
type ConsoleReporter struct{}

// ReportFailure prints a failure line with its distinguishing error detail.
func (ConsoleReporter) ReportFailure(repositoryName string, failure error) {
	pterm.Error.Printfln(failureLineTemplateConstant, repositoryName, failure)
}

// ReportSuccess prints an ok line for a completed repository operation.
func (ConsoleReporter) ReportSuccess(repositoryName string) {
	pterm.Success.Printfln(successLineTemplateConstant, repositoryName)
}
