package merge

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/runs"
	"sheet-reconciler/core/storage"
	"sheet-reconciler/core/storage/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(client storage.Client, store *runs.Store, opts Options) *Service {
	logger := zap.NewNop()
	svc := NewService(reconcile.NewMerger(logger, client), client, store, opts, logger)
	svc.now = fixedNow
	return svc
}

func TestService_Merge(t *testing.T) {
	master, child, dir := fixture(t)
	svc := newTestService(nil, nil, Options{})

	report, err := svc.Merge(context.Background(), Request{Master: master, Child: child})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "owners_20261019.csv"), report.OutputPath)
	assert.Equal(t, 2, report.Attempts)
	assert.Equal(t, []string{"id", "name", "phone", "phone__1"}, report.Schema)
	assert.Empty(t, report.RunID)
	assert.Empty(t, report.RemoteObject)
}

func TestService_MergeIgnoresCallerCancellation(t *testing.T) {
	master, child, dir := fixture(t)
	svc := newTestService(nil, nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := svc.Merge(ctx, Request{Master: master, Child: child})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "owners_20261019.csv"), report.OutputPath)
}

func TestService_MergeUploadsAndRecords(t *testing.T) {
	master, child, _ := fixture(t)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "sheets").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "sheets", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)
	client.On("PutObject", mock.Anything, "sheets", "merged/owners_20261019.csv", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{Bucket: "sheets", Key: "merged/owners_20261019.csv", Size: 32}, nil)

	db, sqlMock := setupMockDB(t)
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("INSERT INTO `merge_runs`").WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	svc := newTestService(client, runs.NewStore(db), Options{
		Bucket:       "sheets",
		Region:       "eu-west-1",
		Upload:       true,
		UploadPrefix: "merged",
	})

	report, err := svc.Merge(context.Background(), Request{Master: master, Child: child})
	require.NoError(t, err)

	assert.Equal(t, "sheets/merged/owners_20261019.csv", report.RemoteObject)
	assert.Len(t, report.RunID, 36)
	client.AssertExpectations(t)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestService_MergeRequestOverridesUpload(t *testing.T) {
	master, child, _ := fixture(t)
	client := new(mocks.Client)
	svc := newTestService(client, nil, Options{Bucket: "sheets", Upload: true})

	off := false
	report, err := svc.Merge(context.Background(), Request{Master: master, Child: child, Upload: &off})
	require.NoError(t, err)
	assert.Empty(t, report.RemoteObject)
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_MergeUploadFails(t *testing.T) {
	master, child, dir := fixture(t)

	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "sheets").Return(false, errors.New("access denied"))

	svc := newTestService(client, nil, Options{Bucket: "sheets", Upload: true})

	_, err := svc.Merge(context.Background(), Request{Master: master, Child: child})
	assert.ErrorContains(t, err, "access denied")
	// The local output is committed before the upload starts.
	assert.FileExists(t, filepath.Join(dir, "owners_20261019.csv"))
}

func TestService_MergeFailureIsRecorded(t *testing.T) {
	master, child, _ := fixture(t)
	child.IDColumn = "parcel"

	db, sqlMock := setupMockDB(t)
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("INSERT INTO `merge_runs`").WillReturnResult(sqlmock.NewResult(0, 1))
	sqlMock.ExpectCommit()

	svc := newTestService(nil, runs.NewStore(db), Options{})

	_, err := svc.Merge(context.Background(), Request{Master: master, Child: child})
	assert.True(t, reconcile.IsConfigError(err))
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestService_LedgerFailureDoesNotFailMerge(t *testing.T) {
	master, child, _ := fixture(t)

	db, sqlMock := setupMockDB(t)
	sqlMock.ExpectBegin()
	sqlMock.ExpectExec("INSERT INTO `merge_runs`").WillReturnError(assert.AnError)
	sqlMock.ExpectRollback()

	svc := newTestService(nil, runs.NewStore(db), Options{})

	report, err := svc.Merge(context.Background(), Request{Master: master, Child: child})
	require.NoError(t, err)
	assert.Empty(t, report.RunID)
}

func TestService_ListRunsWithoutDatabase(t *testing.T) {
	svc := newTestService(nil, nil, Options{})

	_, err := svc.ListRuns(context.Background(), 10)
	assert.ErrorIs(t, err, runs.ErrNoDatabase)
}

func TestService_KeyDistinguishesRequests(t *testing.T) {
	master, child, _ := fixture(t)
	svc := newTestService(nil, nil, Options{})

	base := Request{Master: master, Child: child}
	overwrite := base
	overwrite.Overwrite = true
	wider := base
	wider.Child.IDCharCount = 4

	assert.Equal(t, svc.key(base), svc.key(base))
	assert.NotEqual(t, svc.key(base), svc.key(overwrite))
	assert.NotEqual(t, svc.key(base), svc.key(wider))
}
