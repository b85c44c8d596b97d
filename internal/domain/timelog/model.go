package timelog

// TimeLog records hours a user spent on a task on a given date.
// StageID is a denormalized copy of the task's stage at log time;
// logs created before stage tagging existed carry none and are
// backfilled lazily during hydration.
type TimeLog struct {
	ID      string  `json:"id"`
	TaskID  string  `json:"taskId"`
	StageID string  `json:"stageId,omitempty"`
	Date    string  `json:"date"`
	Hours   float64 `json:"hours"`
	UserID  string  `json:"userId"`
}

// Update carries the two fields editable on an existing log.
type Update struct {
	Hours float64
	Date  string
}
