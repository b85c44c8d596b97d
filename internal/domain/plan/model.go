// Package plan holds the shapes exchanged with the AI planning
// endpoints and the materialization of a generated plan into a
// project.
package plan

// TaskPlan is one AI-proposed task inside a stage.
type TaskPlan struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	EstimatedHours float64 `json:"estimatedHours"`
	DurationDays   float64 `json:"durationDays"`
}

// StagePlan groups proposed tasks under a stage name.
type StagePlan struct {
	Name  string     `json:"name"`
	Tasks []TaskPlan `json:"tasks"`
}

// Plan is the structured output of the generate-plan endpoint.
type Plan struct {
	Stages []StagePlan `json:"stages"`
}

// Urgency grades an insight.
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// Insight is one AI-derived observation about the active project. An
// empty insight list is never an error.
type Insight struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Urgency     Urgency `json:"urgency"`
}

// Sanitize drops stages and tasks missing required fields, mirroring
// the shape validation applied to AI output before it reaches the
// stores.
func (p Plan) Sanitize() Plan {
	out := Plan{Stages: make([]StagePlan, 0, len(p.Stages))}
	for _, s := range p.Stages {
		if s.Name == "" || s.Tasks == nil {
			continue
		}
		kept := make([]TaskPlan, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			if t.Title == "" {
				continue
			}
			kept = append(kept, t)
		}
		s.Tasks = kept
		out.Stages = append(out.Stages, s)
	}
	return out
}

// FilterInsights keeps only entries with the full
// title/description/urgency shape and a known urgency grade.
func FilterInsights(in []Insight) []Insight {
	out := make([]Insight, 0, len(in))
	for _, i := range in {
		if i.Title == "" || i.Description == "" {
			continue
		}
		switch i.Urgency {
		case UrgencyLow, UrgencyMedium, UrgencyHigh:
		default:
			continue
		}
		out = append(out, i)
	}
	return out
}
