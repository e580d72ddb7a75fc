package audit

import (
	"context"

	"github.com/populist-vote/platform-sub000/pkg/domain"
)

type runKey struct{}

type runInfo struct {
	runID    domain.RunID
	sourceID string
}

// WithRun stores the run id and source id that every record emitted under ctx
// is stamped with.
func WithRun(ctx context.Context, runID domain.RunID, sourceID string) context.Context {
	return context.WithValue(ctx, runKey{}, runInfo{runID: runID, sourceID: sourceID})
}

// RunFrom returns the run stored by WithRun.
func RunFrom(ctx context.Context) (domain.RunID, string, bool) {
	info, ok := ctx.Value(runKey{}).(runInfo)
	if !ok {
		return domain.RunID{}, "", false
	}
	return info.runID, info.sourceID, true
}
