package sync

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"cardstock/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleReport() RunReport {
	return RunReport{
		RunID:    "run-1",
		Provider: "cardcatalog",
		Scope:    "en",
		Status:   "completed",
		Games: []GameReport{
			{Game: "ptcg", Phases: map[string]PhaseStats{
				"sets": {Fetched: 12, Written: 12, Matched: 10, Unmatched: 2},
			}},
		},
		Totals:     PhaseStats{Fetched: 12, Written: 12, Matched: 10, Unmatched: 2},
		StartedAt:  time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC),
	}
}

func TestArchiveUploadsReportJSON(t *testing.T) {
	client := &mocks.Client{}
	client.On("BucketExists", mock.Anything, "cardstock").Return(true, nil)

	var uploaded []byte
	client.On("PutObject", mock.Anything, "cardstock", "reports/cardcatalog/run-1.json",
		mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			body, err := io.ReadAll(args.Get(3).(io.Reader))
			require.NoError(t, err)
			uploaded = body
		}).
		Return(minio.UploadInfo{}, nil)

	archiver := NewArchiver(client, "cardstock", "reports")
	require.NoError(t, archiver.Archive(context.Background(), sampleReport()))

	var got RunReport
	require.NoError(t, json.Unmarshal(uploaded, &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, int64(12), got.Totals.Written)
	client.AssertExpectations(t)
}

func TestArchiveCreatesMissingBucket(t *testing.T) {
	client := &mocks.Client{}
	client.On("BucketExists", mock.Anything, "cardstock").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "cardstock", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "cardstock", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil)

	archiver := NewArchiver(client, "cardstock", "")
	require.NoError(t, archiver.Archive(context.Background(), sampleReport()))
	client.AssertExpectations(t)
}

func TestArchiveSurfacesUploadFailure(t *testing.T) {
	client := &mocks.Client{}
	client.On("BucketExists", mock.Anything, "cardstock").Return(true, nil)
	client.On("PutObject", mock.Anything, "cardstock", mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, assert.AnError)

	archiver := NewArchiver(client, "cardstock", "reports")
	err := archiver.Archive(context.Background(), sampleReport())
	assert.ErrorContains(t, err, "failed to upload run report")
	client.AssertExpectations(t)
}
