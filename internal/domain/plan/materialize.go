package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/protrackhq/protrack/internal/domain/project"
)

const dateLayout = "2006-01-02"

// Materialize turns a generated plan into a project ready for the
// project store. Stages are ordered as delivered; tasks are laid out
// sequentially within their stage starting at start, each spanning
// its DurationDays (minimum one day). All tasks begin in Todo with
// zero actual hours.
func Materialize(name, description string, start time.Time, p Plan) project.Project {
	p = p.Sanitize()
	start = start.Truncate(24 * time.Hour)

	proj := project.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Stages:      make([]project.Stage, 0, len(p.Stages)),
		Tasks:       []project.Task{},
	}

	for i, sp := range p.Stages {
		stage := project.Stage{
			ID:    uuid.NewString(),
			Name:  sp.Name,
			Order: i + 1,
		}
		proj.Stages = append(proj.Stages, stage)

		cursor := start
		for _, tp := range sp.Tasks {
			days := int(tp.DurationDays)
			if days < 1 {
				days = 1
			}
			end := cursor.AddDate(0, 0, days-1)
			proj.Tasks = append(proj.Tasks, project.Task{
				ID:             uuid.NewString(),
				Title:          tp.Title,
				Description:    tp.Description,
				StageID:        stage.ID,
				Status:         project.StatusTodo,
				StartDate:      cursor.Format(dateLayout),
				EndDate:        end.Format(dateLayout),
				EstimatedHours: tp.EstimatedHours,
				ActualHours:    0,
			})
			cursor = end.AddDate(0, 0, 1)
		}
	}

	return proj
}
