package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOverdueSweep, h.HandleOverdueSweep)
}

// TeamOverdue is one row of the sweep digest.
type TeamOverdue struct {
	TeamID   uint   `json:"team_id"`
	TeamName string `json:"team_name"`
	Overdue  int64  `json:"overdue"`
}

// HandleOverdueSweep logs a per-team digest of tasks past their due date
// that are still open.
func (h *Handler) HandleOverdueSweep(ctx context.Context, t *asynq.Task) error {
	rows, err := h.OverdueByTeam(ctx, time.Now())
	if err != nil {
		h.logger.Error("overdue sweep failed", "error", err)
		return err
	}

	var total int64
	for _, row := range rows {
		total += row.Overdue
		h.logger.Info("overdue tasks",
			"team_id", row.TeamID,
			"team", row.TeamName,
			"count", row.Overdue,
		)
	}

	h.logger.Info("completed overdue sweep",
		"teams", len(rows),
		"total_overdue", total,
	)
	return nil
}

// OverdueByTeam counts open tasks past due, grouped by team. Teams with no
// overdue tasks are omitted.
func (h *Handler) OverdueByTeam(ctx context.Context, now time.Time) ([]TeamOverdue, error) {
	var rows []TeamOverdue
	err := h.db.WithContext(ctx).
		Table("tasks").
		Select("tasks.team_id, teams.name AS team_name, COUNT(*) AS overdue").
		Joins("JOIN teams ON teams.id = tasks.team_id").
		Where("tasks.due_date < ? AND tasks.status NOT IN ('Completed','Cancelled')", now).
		Group("tasks.team_id, teams.name").
		Order("tasks.team_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
