package project

// TaskStatus is the kanban column a task sits in.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "Todo"
	StatusInProgress TaskStatus = "In Progress"
	StatusReview     TaskStatus = "Review"
	StatusDone       TaskStatus = "Done"
)

// Stage is a named phase of a project. Order defines display sequence
// and need not be contiguous.
type Stage struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// Task belongs to exactly one project. StageID is a weak reference: a
// task pointing at a removed stage is tolerated and resolved to a
// fallback label at render time. ActualHours is maintained solely via
// Store.AddActualHours.
type Task struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	StageID        string     `json:"stageId"`
	Status         TaskStatus `json:"status"`
	StartDate      string     `json:"startDate"`
	EndDate        string     `json:"endDate"`
	EstimatedHours float64    `json:"estimatedHours"`
	ActualHours    float64    `json:"actualHours"`
	Assignee       string     `json:"assignee"`
}

// Project exclusively owns its stages and tasks.
type Project struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DueDate     string  `json:"dueDate,omitempty"`
	Stages      []Stage `json:"stages"`
	Tasks       []Task  `json:"tasks"`
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing backing arrays. Nil slices become empty ones so the
// serialized form always carries arrays.
func (p Project) Clone() Project {
	out := p
	out.Stages = append([]Stage{}, p.Stages...)
	out.Tasks = append([]Task{}, p.Tasks...)
	return out
}

// CloneAll deep-copies a project slice.
func CloneAll(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}
