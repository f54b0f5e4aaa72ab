package transfer

import "github.com/temirov/repomove/internal/githubapi"

// StatusKind classifies an import job status into the closed set the state
// machine reasons about. Raw API strings are converted exactly once, at the
// boundary.
type StatusKind string

// Status kinds recognized by the import state machine.
const (
	StatusKindInProgress StatusKind = "in_progress"
	StatusKindComplete   StatusKind = "complete"
	StatusKindFailed     StatusKind = "failed"
)

// Raw import status values reported by the remote API.
const (
	rawStatusDetectingConstant              = "detecting"
	rawStatusImportingConstant              = "importing"
	rawStatusMappingConstant                = "mapping"
	rawStatusPushingConstant                = "pushing"
	rawStatusCompleteConstant               = "complete"
	rawStatusAuthFailedConstant             = "auth_failed"
	rawStatusErrorConstant                  = "error"
	rawStatusDetectionNeedsAuthConstant     = "detection_needs_auth"
	rawStatusDetectionFoundNothingConstant  = "detection_found_nothing"
	rawStatusDetectionFoundMultipleConstant = "detection_found_multiple"
)

var inProgressStatusSet = map[string]struct{}{
	rawStatusDetectingConstant: {},
	rawStatusImportingConstant: {},
	rawStatusMappingConstant:   {},
	rawStatusPushingConstant:   {},
}

var failureStatusSet = map[string]struct{}{
	rawStatusAuthFailedConstant:             {},
	rawStatusErrorConstant:                  {},
	rawStatusDetectionNeedsAuthConstant:     {},
	rawStatusDetectionFoundNothingConstant:  {},
	rawStatusDetectionFoundMultipleConstant: {},
}

// ImportStatus is the converted form of one import job observation.
type ImportStatus struct {
	Kind StatusKind
	Raw  string
	Text string
}

// classifyImportStatus maps a raw API job state onto the closed status
// variant. Unrecognized statuses are treated as failures so the poll loop can
// never spin on a status the machine does not understand.
func classifyImportStatus(jobState githubapi.ImportJobState) ImportStatus {
	status := ImportStatus{Raw: jobState.Status, Text: jobState.StatusText}

	if jobState.Status == rawStatusCompleteConstant {
		status.Kind = StatusKindComplete
		return status
	}
	if _, inProgress := inProgressStatusSet[jobState.Status]; inProgress {
		status.Kind = StatusKindInProgress
		return status
	}
	if _, failed := failureStatusSet[jobState.Status]; failed {
		status.Kind = StatusKindFailed
		return status
	}

	status.Kind = StatusKindFailed
	return status
}
