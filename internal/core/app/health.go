package app

import (
	"context"
	"fmt"
	"time"

	"depgraph/internal/shared/observability"
	"depgraph/internal/shared/util"
)

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app == nil || s.app.Parser == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
		return status
	}
	status.Components["parser"] = fmt.Sprintf("ok (%d active parsers, oldest lease %s)",
		s.app.Parser.ActiveParsers(), s.app.Parser.OldestLease().Round(time.Millisecond))
	status.Components["heap"] = fmt.Sprintf("%d MB", util.HeapAllocMB())

	if last := s.app.Last(); last != nil {
		status.Components["graph"] = "ok (" + last.Summary() + ")"
		status.Components["last_run"] = last.RunID
	} else {
		status.Components["graph"] = "pending"
	}
	return status
}
