package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	storePathMissingMessageConstant     = "snapshot file path not configured"
	storeEncodeErrorTemplateConstant    = "unable to encode snapshot document: %w"
	storeWriteErrorTemplateConstant     = "unable to write snapshot file %s: %w"
	storeRenameErrorTemplateConstant    = "unable to finalize snapshot file %s: %w"
	storeReadErrorTemplateConstant      = "unable to read snapshot file %s: %w"
	storeDecodeErrorTemplateConstant    = "unable to parse snapshot file %s: %w"
	storeTemporaryFileSuffixConstant    = ".tmp"
	storeFilePermissionsConstant        = 0o644
	snapshotDocumentIndentPrefixSetting = ""
	snapshotDocumentIndentSetting       = "  "
)

// Document is the persisted snapshot file shape: a single JSON object holding
// the ordered projects array.
type Document struct {
	Projects []ProjectInfo `json:"projects"`
}

// Store persists ProjectInfo collections to a JSON snapshot file.
type Store struct {
	filePath string
}

var errStorePathMissing = errors.New(storePathMissingMessageConstant)

// NewStore constructs a Store writing to the provided file path.
func NewStore(filePath string) (*Store, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, errStorePathMissing
	}
	return &Store{filePath: trimmedPath}, nil
}

// Save writes the projects to the snapshot file, preserving order. The write
// goes through a temporary file and rename so a crash never leaves a
// truncated document behind.
func (store *Store) Save(projects []ProjectInfo) error {
	document := Document{Projects: projects}

	encoded, encodeError := json.MarshalIndent(document, snapshotDocumentIndentPrefixSetting, snapshotDocumentIndentSetting)
	if encodeError != nil {
		return fmt.Errorf(storeEncodeErrorTemplateConstant, encodeError)
	}

	temporaryPath := store.filePath + storeTemporaryFileSuffixConstant
	if writeError := os.WriteFile(temporaryPath, encoded, storeFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(storeWriteErrorTemplateConstant, temporaryPath, writeError)
	}

	if renameError := os.Rename(temporaryPath, store.filePath); renameError != nil {
		return fmt.Errorf(storeRenameErrorTemplateConstant, store.filePath, renameError)
	}

	return nil
}

// Load reads the snapshot file back into the ordered projects slice.
func (store *Store) Load() ([]ProjectInfo, error) {
	contents, readError := os.ReadFile(store.filePath)
	if readError != nil {
		return nil, fmt.Errorf(storeReadErrorTemplateConstant, store.filePath, readError)
	}

	var document Document
	if decodeError := json.Unmarshal(contents, &document); decodeError != nil {
		return nil, fmt.Errorf(storeDecodeErrorTemplateConstant, store.filePath, decodeError)
	}

	return document.Projects, nil
}

// FilePath reports the configured snapshot file location.
func (store *Store) FilePath() string {
	return filepath.Clean(store.filePath)
}
