package agent

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Uploader is the provider-side file store a preview tool pushes
// images/audio to so the LLM can "see" them on the next turn. It is the
// interface C4 tools are written against; Cleanup releases the IDs in
// session.State.UploadedFiles through the same interface at session end.
type Uploader interface {
	UploadFile(ctx context.Context, localPath string) (fileID string, err error)
	DeleteFile(ctx context.Context, fileID string) error
}

// openAIUploader implements Uploader against the OpenAI Files API, the
// provider this module targets.
type openAIUploader struct {
	client *openai.Client
}

// NewOpenAIUploader wraps an OpenAI client for use as a preview-tool
// Uploader.
func NewOpenAIUploader(client *openai.Client) Uploader {
	return &openAIUploader{client: client}
}

func (u *openAIUploader) UploadFile(ctx context.Context, localPath string) (string, error) {
	f, err := u.client.CreateFile(ctx, openai.FileRequest{
		FilePath: localPath,
		Purpose:  "assistants",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", localPath, err)
	}
	return f.ID, nil
}

func (u *openAIUploader) DeleteFile(ctx context.Context, fileID string) error {
	return u.client.DeleteFile(ctx, fileID)
}

// Cleanup releases every file ID in fileIDs (the caller passes the IDs from
// st.UploadedFiles). A single failure is reported to onError, if non-nil,
// and never aborts cleanup of the remaining files.
func Cleanup(ctx context.Context, up Uploader, fileIDs []string, onError func(fileID string, err error)) {
	for _, id := range fileIDs {
		if err := up.DeleteFile(ctx, id); err != nil && onError != nil {
			onError(id, err)
		}
	}
}
