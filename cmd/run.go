package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"codec/agent"
	"codec/session"
)

const defaultModel = "gpt-5"

const systemPrompt = `You are an autonomous video editing agent. You have a
directory of media assets and a fixed catalog of tools: add_clips, split_clip,
delete_clips, transform, get_timeline_summary, view_video, view_timeline,
visualize_timeline, get_asset_info, list_assets, render_video,
export_timeline, and finish_job. Work the user's instruction by calling
tools; inspect your work with the preview tools before finishing; call
finish_job exactly once you are done, whether the result is a rendered
video, an exchange-format timeline, or a status message.`

var (
	runAssetsDir string
	runPrompt    string
	runModel     string
	runOutputDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive one agent session to completion",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runAssetsDir, "assets", "", "assets directory (or CODEC_ASSETS_DIR)")
	runCmd.Flags().StringVar(&runPrompt, "prompt", "", "natural-language editing instruction")
	runCmd.Flags().StringVar(&runModel, "model", "", "LLM model identifier (or CODEC_OUTPUT_MODEL_NAME)")
	runCmd.Flags().StringVar(&runOutputDir, "output", "", "output directory (defaults to <assets>/../output)")
}

func runRun(cmd *cobra.Command, args []string) error {
	assetsDir := firstNonEmpty(runAssetsDir, os.Getenv("CODEC_ASSETS_DIR"))
	if assetsDir == "" {
		return fmt.Errorf("--assets or CODEC_ASSETS_DIR is required")
	}
	if runPrompt == "" {
		return fmt.Errorf("--prompt is required")
	}
	model := firstNonEmpty(runModel, os.Getenv("CODEC_OUTPUT_MODEL_NAME"), defaultModel)
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	outputDir := runOutputDir
	if outputDir == "" {
		outputDir = filepath.Join(assetsDir, "..", "output")
	}

	jobID := uuid.NewString()
	tmpDir := filepath.Join(os.TempDir(), "codec-"+jobID)
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	logsDir := filepath.Join(outputDir, "logs")
	logger, err := session.NewContextLogger(jobID, logsDir)
	if err != nil {
		return fmt.Errorf("opening session logs: %w", err)
	}
	defer logger.Close()

	client := openai.NewClient(apiKey)
	uploader := agent.NewOpenAIUploader(client)
	registry := agent.NewDefaultRegistry(uploader, tmpDir, outputDir)
	loop := &agent.Loop{
		Client:       client,
		Registry:     registry,
		Model:        model,
		SystemPrompt: systemPrompt,
		JobID:        jobID,
	}

	st := session.New(assetsDir)
	st.InitialPrompt = runPrompt
	logger.LogUserPrompt(runPrompt)
	st.History = append(st.History, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: runPrompt,
	})

	ctx := context.Background()
	result, err := loop.RunToCompletion(ctx, st, logger)

	agent.Cleanup(ctx, uploader, fileIDsOf(st.UploadedFiles), func(fileID string, cerr error) {
		log.Printf("cleanup: failed to release file %s: %v", fileID, cerr)
	})

	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Turn ended without a terminal finish_job call.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", result.Status, result.Message)
	if result.OutputPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", result.OutputPath)
	}
	return nil
}

func fileIDsOf(files []session.UploadedFile) []string {
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.FileID
	}
	return ids
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
