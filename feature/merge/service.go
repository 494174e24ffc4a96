package merge

import (
	"context"
	"fmt"
	"time"

	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/runs"
	"sheet-reconciler/core/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Options configures where merge outputs go after they are written.
type Options struct {
	// Bucket receives uploaded outputs.
	Bucket string
	// Region is used when the bucket has to be created.
	Region string
	// Upload sends every output to Bucket unless a request says otherwise.
	Upload bool
	// UploadPrefix is prepended to uploaded object names.
	UploadPrefix string
	// MaxAttempts caps restarts per merge. Zero uses the engine default.
	MaxAttempts int
}

// Request describes one merge.
type Request struct {
	Master    reconcile.DatasetConfig `json:"master"`
	Child     reconcile.DatasetConfig `json:"child"`
	Overwrite bool                    `json:"overwrite"`
	// OutputPath overrides the dated output name.
	OutputPath string `json:"output_path,omitempty"`
	// Upload overrides Options.Upload for this request.
	Upload *bool `json:"upload,omitempty"`
}

// Report is the outcome of a merge.
type Report struct {
	*reconcile.Result
	// RunID is the ledger id, empty when the ledger is disabled.
	RunID string `json:"run_id,omitempty"`
	// RemoteObject is bucket/object of the uploaded output.
	RemoteObject string `json:"remote_object,omitempty"`
}

// Service runs merges, uploads their output and records them in the run ledger.
type Service struct {
	merger *reconcile.Merger
	client storage.Client
	runs   *runs.Store
	opts   Options
	logger *zap.Logger
	group  singleflight.Group
	now    func() time.Time
}

// NewService creates a new merge service. client and store may be nil.
func NewService(merger *reconcile.Merger, client storage.Client, store *runs.Store, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		merger: merger,
		client: client,
		runs:   store,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Merge runs req. Identical requests arriving while one is in flight share its result
// instead of writing a second, bumped output file.
func (s *Service) Merge(ctx context.Context, req Request) (*Report, error) {
	v, err, shared := s.group.Do(s.key(req), func() (any, error) {
		// Callers joining this flight must not inherit the first caller's cancellation.
		return s.merge(context.WithoutCancel(ctx), req)
	})
	if shared {
		s.logger.Debug("Merge request joined an in-flight merge", zap.String("master", req.Master.Location))
	}
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (s *Service) merge(ctx context.Context, req Request) (*Report, error) {
	started := s.now()
	res, err := s.merger.Run(ctx, req.Master, req.Child, reconcile.Options{
		Overwrite:   req.Overwrite,
		OutputPath:  req.OutputPath,
		MaxAttempts: s.opts.MaxAttempts,
		Now:         s.now,
	})

	report := &Report{Result: res}
	var uploadErr error
	if err == nil && s.shouldUpload(req) {
		report.RemoteObject, uploadErr = s.upload(ctx, res.OutputPath)
	}

	report.RunID = s.record(ctx, req, res, report.RemoteObject, err, uploadErr, started)

	if err != nil {
		return nil, err
	}
	if uploadErr != nil {
		return nil, uploadErr
	}
	return report, nil
}

func (s *Service) shouldUpload(req Request) bool {
	if req.Upload != nil {
		return *req.Upload
	}
	return s.opts.Upload
}

func (s *Service) upload(ctx context.Context, localPath string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("upload %s: no storage client configured", localPath)
	}
	if err := storage.EnsureBucket(ctx, s.client, s.opts.Bucket, s.opts.Region); err != nil {
		return "", err
	}

	object := storage.ObjectName(s.opts.UploadPrefix, localPath)
	info, err := storage.UploadFile(ctx, s.client, s.opts.Bucket, object, localPath)
	if err != nil {
		return "", err
	}

	s.logger.Info("Merged output uploaded",
		zap.String("bucket", s.opts.Bucket),
		zap.String("object", object),
		zap.Int64("size", info.Size),
	)
	return s.opts.Bucket + "/" + object, nil
}

// record writes the run to the ledger and returns its id. Ledger failures never fail the merge.
func (s *Service) record(ctx context.Context, req Request, res *reconcile.Result, remote string, mergeErr, uploadErr error, started time.Time) string {
	if !s.runs.Enabled() {
		return ""
	}

	run := runs.NewRun(req.Master, req.Child, started)
	run.Finish(res, mergeErr, s.now())
	if uploadErr != nil {
		run.Status = runs.StatusFailed
		run.Error = uploadErr.Error()
	}
	run.RemoteObject = remote

	if err := s.runs.Record(ctx, run); err != nil {
		s.logger.Warn("Failed to record merge run", zap.Error(err))
		return ""
	}
	return run.ID
}

// ListRuns returns the most recent ledger entries.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]runs.Run, error) {
	return s.runs.List(ctx, limit)
}

func (s *Service) key(r Request) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%t|%s|%t",
		r.Master.Location, r.Master.IDColumn, r.Master.IDCharCount,
		r.Child.Location, r.Child.IDColumn, r.Child.IDCharCount,
		r.Overwrite, r.OutputPath, s.shouldUpload(r),
	)
}
