package project_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protrackhq/protrack/internal/domain/project"
)

type recordingSaver struct {
	projectSaves []int
	activeSaves  []string
}

func (r *recordingSaver) SaveProjects(projects []project.Project) {
	r.projectSaves = append(r.projectSaves, len(projects))
}

func (r *recordingSaver) SaveActiveProjectID(id string) {
	r.activeSaves = append(r.activeSaves, id)
}

func newHydratedStore(saver project.Saver, projects ...project.Project) *project.Store {
	s := project.NewStore(saver, nil)
	active := ""
	if len(projects) > 0 {
		active = projects[0].ID
	}
	s.Hydrate(projects, active)
	return s
}

func TestStore_TaskMutationsNoOpWithoutActiveProject(t *testing.T) {
	s := newHydratedStore(nil)

	_, ok := s.AddTask(project.Task{Title: "orphan"})
	require.False(t, ok)
	s.UpdateTaskStatus("t1", project.StatusDone)
	s.AddActualHours("t1", 5)
	require.Empty(t, s.Projects())
}

func TestStore_AddProjectBecomesActive(t *testing.T) {
	saver := &recordingSaver{}
	s := newHydratedStore(saver, project.Project{ID: "p1", Name: "one"})

	s.AddProject(project.Project{ID: "p2", Name: "two"})
	require.Equal(t, "p2", s.ActiveProjectID())
	require.Len(t, s.Projects(), 2)
	require.NotEmpty(t, saver.projectSaves)
	require.Equal(t, "p2", saver.activeSaves[len(saver.activeSaves)-1])
}

func TestStore_AddProjectFromPlanAssignsID(t *testing.T) {
	s := newHydratedStore(nil)
	created := s.AddProjectFromPlan(project.Project{Name: "planned"})
	require.NotEmpty(t, created.ID)
	require.Equal(t, created.ID, s.ActiveProjectID())
}

func TestStore_AddActualHoursClampsAtZero(t *testing.T) {
	s := newHydratedStore(nil, project.Project{ID: "p1", Name: "one"})
	task, ok := s.AddTask(project.Task{Title: "t"})
	require.True(t, ok)

	s.AddActualHours(task.ID, 4)
	s.AddActualHours(task.ID, -10)

	require.Equal(t, float64(0), s.Projects()[0].Tasks[0].ActualHours)
}

func TestStore_UpdateTaskStatus(t *testing.T) {
	s := newHydratedStore(nil, project.Project{ID: "p1", Name: "one"})
	task, _ := s.AddTask(project.Task{Title: "t", Status: project.StatusTodo})

	s.UpdateTaskStatus(task.ID, project.StatusReview)

	require.Equal(t, project.StatusReview, s.Projects()[0].Tasks[0].Status)
}

func TestStore_TaskMutationsScopedToActiveProject(t *testing.T) {
	s := newHydratedStore(nil,
		project.Project{ID: "p1", Name: "one"},
		project.Project{ID: "p2", Name: "two"},
	)
	task, _ := s.AddTask(project.Task{Title: "in p1", Status: project.StatusTodo})

	// Switching away makes the task unreachable for this surface.
	s.SetActiveProject("p2")
	s.UpdateTaskStatus(task.ID, project.StatusDone)

	require.Equal(t, project.StatusTodo, s.Projects()[0].Tasks[0].Status)
}

func TestStore_DeleteProjectRepairsActive(t *testing.T) {
	s := newHydratedStore(nil,
		project.Project{ID: "p1", Name: "one"},
		project.Project{ID: "p2", Name: "two"},
	)
	require.Equal(t, "p1", s.ActiveProjectID())

	s.DeleteProject("p1")
	require.Equal(t, "p2", s.ActiveProjectID())

	s.DeleteProject("p2")
	require.Equal(t, "", s.ActiveProjectID())
}

func TestStore_HydrateRepairsStaleActiveID(t *testing.T) {
	s := project.NewStore(nil, nil)
	s.Hydrate([]project.Project{{ID: "p1", Name: "one"}}, "stale")
	require.Equal(t, "p1", s.ActiveProjectID())
}

func TestStore_NoPersistBeforeHydration(t *testing.T) {
	saver := &recordingSaver{}
	s := project.NewStore(saver, nil)

	s.AddProject(project.Project{ID: "p1", Name: "one"})
	require.Empty(t, saver.projectSaves)

	s.Hydrate([]project.Project{{ID: "p1", Name: "one"}}, "p1")
	s.AddProject(project.Project{ID: "p2", Name: "two"})
	require.NotEmpty(t, saver.projectSaves)
}

func TestStore_TaskStageMap(t *testing.T) {
	s := newHydratedStore(nil, project.Project{
		ID:   "p1",
		Name: "one",
		Tasks: []project.Task{
			{ID: "t1", StageID: "s1"},
			{ID: "t2", StageID: "s2"},
		},
	})

	m := s.TaskStageMap()
	require.Equal(t, map[string]string{"t1": "s1", "t2": "s2"}, m)
}
