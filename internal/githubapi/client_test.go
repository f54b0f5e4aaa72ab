package githubapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v55/github"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repomove/internal/githubapi"
)

func newTestClient(testInstance *testing.T, handler http.Handler) *githubapi.Client {
	server := httptest.NewServer(handler)
	testInstance.Cleanup(server.Close)

	githubClient := github.NewClient(nil)
	baseURL, parseError := url.Parse(server.URL + "/")
	require.NoError(testInstance, parseError)
	githubClient.BaseURL = baseURL
	githubClient.UploadURL = baseURL

	return githubapi.NewClientFromGitHub(githubClient)
}

func TestClientGetRepositoryConvertsDetails(testInstance *testing.T) {
	handler := http.NewServeMux()
	handler.HandleFunc("/repos/dmitshur/example", func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		fmt.Fprint(responseWriter, `{
			"name": "example",
			"full_name": "dmitshur/example",
			"owner": {"login": "dmitshur"},
			"description": "an example",
			"homepage": "https://example.test",
			"default_branch": "main",
			"has_issues": true,
			"has_wiki": true,
			"has_pages": true,
			"fork": false,
			"topics": ["go", "tooling"],
			"clone_url": "https://github.com/dmitshur/example.git"
		}`)
	})

	client := newTestClient(testInstance, handler)

	details, requestError := client.GetRepository(context.Background(), "dmitshur", "example")
	require.NoError(testInstance, requestError)
	require.Equal(testInstance, "dmitshur", details.Owner)
	require.Equal(testInstance, "dmitshur/example", details.FullName)
	require.Equal(testInstance, "main", details.DefaultBranch)
	require.True(testInstance, details.HasIssues)
	require.True(testInstance, details.HasPages)
	require.Equal(testInstance, []string{"go", "tooling"}, details.Topics)
	require.Equal(testInstance, "https://github.com/dmitshur/example.git", details.CloneURL)
}

func TestClientListStargazersPaginatesToExhaustion(testInstance *testing.T) {
	handler := http.NewServeMux()
	handler.HandleFunc("/repos/dmitshur/example/stargazers", func(responseWriter http.ResponseWriter, request *http.Request) {
		responseWriter.Header().Set("Content-Type", "application/json")
		if request.URL.Query().Get("page") == "2" {
			fmt.Fprint(responseWriter, `[{"user": {"login": "carol"}}]`)
			return
		}
		responseWriter.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/dmitshur/example/stargazers?page=2>; rel="next"`, request.Host))
		fmt.Fprint(responseWriter, `[{"user": {"login": "alice"}}, {"user": {"login": "bob"}}]`)
	})

	client := newTestClient(testInstance, handler)

	stargazers, requestError := client.ListStargazers(context.Background(), "dmitshur", "example")
	require.NoError(testInstance, requestError)

	logins := make([]string, 0, len(stargazers))
	for _, stargazer := range stargazers {
		logins = append(logins, stargazer.Login)
	}
	require.Equal(testInstance, []string{"alice", "bob", "carol"}, logins)
}

func TestClientStartImportSendsGitVCS(testInstance *testing.T) {
	var receivedImport github.Import

	handler := http.NewServeMux()
	handler.HandleFunc("/repos/shurcooL/example-clone/import", func(responseWriter http.ResponseWriter, request *http.Request) {
		require.Equal(testInstance, http.MethodPut, request.Method)
		require.NoError(testInstance, json.NewDecoder(request.Body).Decode(&receivedImport))
		responseWriter.Header().Set("Content-Type", "application/json")
		fmt.Fprint(responseWriter, `{"status": "detecting", "status_text": "Detecting"}`)
	})

	client := newTestClient(testInstance, handler)

	jobState, requestError := client.StartImport(context.Background(), "shurcooL", "example-clone", "https://github.com/dmitshur/example.git")
	require.NoError(testInstance, requestError)
	require.Equal(testInstance, "detecting", jobState.Status)
	require.Equal(testInstance, "Detecting", jobState.StatusText)
	require.Equal(testInstance, "git", receivedImport.GetVCS())
	require.Equal(testInstance, "https://github.com/dmitshur/example.git", receivedImport.GetVCSURL())
}

func TestClientOperationErrorsWrapRemoteFailures(testInstance *testing.T) {
	handler := http.NewServeMux()
	handler.HandleFunc("/", func(responseWriter http.ResponseWriter, request *http.Request) {
		http.Error(responseWriter, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	client := newTestClient(testInstance, handler)

	_, requestError := client.GetRepository(context.Background(), "dmitshur", "missing")
	require.Error(testInstance, requestError)

	var operationError githubapi.OperationError
	require.ErrorAs(testInstance, requestError, &operationError)
	require.Equal(testInstance, githubapi.OperationName("GetRepository"), operationError.Operation)
}

func TestClientValidationErrors(testInstance *testing.T) {
	client := githubapi.NewClientFromGitHub(github.NewClient(nil))

	testCases := []struct {
		name          string
		invoke        func() error
		expectedField string
	}{
		{
			name: "get_repository_requires_owner",
			invoke: func() error {
				_, invocationError := client.GetRepository(context.Background(), "", "example")
				return invocationError
			},
			expectedField: "owner",
		},
		{
			name: "list_issue_comments_requires_positive_number",
			invoke: func() error {
				_, invocationError := client.ListIssueComments(context.Background(), "dmitshur", "example", 0)
				return invocationError
			},
			expectedField: "issue_number",
		},
		{
			name: "start_import_requires_source_url",
			invoke: func() error {
				_, invocationError := client.StartImport(context.Background(), "shurcooL", "example-clone", " ")
				return invocationError
			},
			expectedField: "source_url",
		},
		{
			name: "create_repository_requires_name",
			invoke: func() error {
				_, invocationError := client.CreateRepository(context.Background(), "")
				return invocationError
			},
			expectedField: "repository",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			invocationError := testCase.invoke()
			require.Error(subtestInstance, invocationError)

			var invalidInput githubapi.InvalidInputError
			require.ErrorAs(subtestInstance, invocationError, &invalidInput)
			require.Equal(subtestInstance, testCase.expectedField, invalidInput.FieldName)
		})
	}
}

func TestNewClientRequiresToken(testInstance *testing.T) {
	_, clientError := githubapi.NewClient(context.Background(), "  ")
	require.ErrorIs(testInstance, clientError, githubapi.ErrTokenNotConfigured)
}
