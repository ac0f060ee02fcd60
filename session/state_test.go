package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeedsEmptyTimelineRootedAtAssetsDir(t *testing.T) {
	st := New("/assets")
	assert.Equal(t, "/assets", st.AssetsDirectory)
	assert.NotNil(t, st.Timeline)
	assert.Empty(t, st.Timeline.Clips)
}

func TestQueueMultimodalFileTracksBothUploadedAndPending(t *testing.T) {
	st := New("/assets")
	st.QueueMultimodalFile("file-1", "/tmp/a.png")
	st.QueueMultimodalFile("file-2", "/tmp/b.png")

	assert.Len(t, st.UploadedFiles, 2)
	assert.Len(t, st.NewMultimodalFiles, 2)
	assert.Equal(t, "file-1", st.UploadedFiles[0].FileID)
}

func TestDrainMultimodalFilesClearsOnlyThePendingQueue(t *testing.T) {
	st := New("/assets")
	st.QueueMultimodalFile("file-1", "/tmp/a.png")

	drained := st.DrainMultimodalFiles()
	assert.Len(t, drained, 1)
	assert.Empty(t, st.NewMultimodalFiles)
	assert.Len(t, st.UploadedFiles, 1, "already-uploaded bookkeeping survives the drain")

	assert.Empty(t, st.DrainMultimodalFiles())
}
