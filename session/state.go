// Package session owns the per-job state container and the dual (raw
// JSONL + narrative) event logger every agent run writes to.
package session

import (
	"github.com/sashabaranov/go-openai"

	"codec/timeline"
)

// UploadedFile is one provider-side file reference the session must later
// release.
type UploadedFile struct {
	FileID    string
	LocalPath string
}

// State is the per-job container: the timeline being edited, the
// conversation history, and the bookkeeping the agent loop needs to
// continue a multi-turn session across restarts.
type State struct {
	AssetsDirectory string
	Timeline        *timeline.Timeline

	UploadedFiles     []UploadedFile
	NewMultimodalFiles []UploadedFile

	LastResponseID string
	History        []openai.ChatCompletionMessage
	InitialPrompt  string
}

// New returns a fresh session rooted at assetsDirectory.
func New(assetsDirectory string) *State {
	return &State{
		AssetsDirectory: assetsDirectory,
		Timeline:        timeline.New(),
	}
}

// QueueMultimodalFile records a newly uploaded file for threading into the
// next turn and for eventual cleanup.
func (s *State) QueueMultimodalFile(fileID, localPath string) {
	f := UploadedFile{FileID: fileID, LocalPath: localPath}
	s.UploadedFiles = append(s.UploadedFiles, f)
	s.NewMultimodalFiles = append(s.NewMultimodalFiles, f)
}

// DrainMultimodalFiles returns and clears the pending multimodal queue; the
// executor calls this once per turn boundary.
func (s *State) DrainMultimodalFiles() []UploadedFile {
	files := s.NewMultimodalFiles
	s.NewMultimodalFiles = nil
	return files
}
