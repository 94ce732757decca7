package live

import (
	"time"

	"github.com/aetas/aetas/internal/utils"
	"github.com/aetas/aetas/pkg/calendar"
	"github.com/aetas/aetas/pkg/module"
	"github.com/aetas/aetas/pkg/workspace"
)

// Snapshot is the list view and module overview of one user at one moment.
type Snapshot struct {
	UserId      int
	GeneratedAt time.Time
	// Pending is set while the workspace holds a change that storage has not confirmed yet.
	Pending  bool
	List     calendar.Buckets
	Overview module.Overview
}

type SnapshotDTO struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	Pending     bool                `json:"pending"`
	List        calendar.BucketsDTO `json:"list"`
	Modules     module.OverviewDTO  `json:"modules"`
}

func SnapshotToDTO(s Snapshot) SnapshotDTO {
	return SnapshotDTO{
		GeneratedAt: s.GeneratedAt,
		Pending:     s.Pending,
		List:        calendar.BucketsToDTO(s.List),
		Modules:     module.OverviewToDTO(s.Overview),
	}
}

// ViewBuilder expands and aggregates a workspace state into a snapshot.
type ViewBuilder struct {
	Expander      calendar.Expander
	Clock         utils.Clock
	HorizonMonths int
}

func (b ViewBuilder) Build(userId int, state workspace.State, weekFirstDay time.Weekday) (Snapshot, error) {
	now := utils.WallClock(b.Clock.Now())
	horizon := b.HorizonMonths
	if horizon <= 0 {
		horizon = 3
	}
	weekStart := utils.StartOfWeek(now, weekFirstDay)
	occurrences, err := state.Occurrences(b.Expander, weekStart, now.AddDate(0, horizon, 0))
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		UserId:      userId,
		GeneratedAt: now,
		Pending:     state.Pending,
		List:        calendar.BuildListView(occurrences, now, weekFirstDay),
		Overview:    module.BuildOverview(state.Modules, occurrences, now),
	}, nil
}
