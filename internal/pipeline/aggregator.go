package pipeline

import (
	"context"
	"log/slog"

	"vidscribe/internal/logging"
	"vidscribe/internal/services"
	"vidscribe/internal/store"
)

// Aggregator recomputes project completion after a video finishes.
type Aggregator struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAggregator constructs an aggregator over st.
func NewAggregator(st *store.Store, logger *slog.Logger) *Aggregator {
	return &Aggregator{store: st, logger: logging.NewComponentLogger(logger, "aggregator")}
}

// Recompute marks the project COMPLETED when all of its videos are DONE and
// reports whether it is. It never moves a project backwards; adding a video is
// what reopens a project.
func (a *Aggregator) Recompute(ctx context.Context, projectID string) (bool, error) {
	completed, err := a.store.RecomputeProject(ctx, projectID)
	if err != nil {
		return false, err
	}
	logger := logging.WithContext(services.WithProjectID(ctx, projectID), a.logger)
	if completed {
		logger.Info("project completed", logging.String(logging.FieldEventType, "project_completed"))
	} else {
		logger.Debug("project still has unfinished videos")
	}
	return completed, nil
}
