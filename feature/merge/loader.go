package merge

import (
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/runs"
	"sheet-reconciler/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new merge feature.
func NewFeature(client storage.Client, store *runs.Store, opts Options, logger *zap.Logger) *Feature {
	svc := NewService(reconcile.NewMerger(logger, client), client, store, opts, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "merge"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
