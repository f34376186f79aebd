package jobs

import (
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeOverdueSweep = "team:overdue_sweep"
)

func NewOverdueSweepTask() *asynq.Task {
	return asynq.NewTask(TypeOverdueSweep, nil)
}
