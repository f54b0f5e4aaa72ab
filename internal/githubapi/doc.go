// Package githubapi provides a typed client over the GitHub REST API covering
// every remote operation repomove performs: repository metadata and social
// listings, Pages management, repository lifecycle, topics, and the
// asynchronous Source Import job.
package githubapi
