package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/registry"
	"github.com/studiodesk/studio-backend/internal/workspace/state"
	"github.com/studiodesk/studio-backend/internal/workspace/workflow"
	"github.com/studiodesk/studio-backend/internal/workspace/workload"
)

type ClientInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Telegram string `json:"telegram"`
}

type EmployeeInput struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Phone    string `json:"phone"`
}

type TaskInput struct {
	Title     string    `json:"title"`
	ProjectID domain.ID `json:"projectId"`
	Assignee  string    `json:"assignee"`
	DueDate   string    `json:"dueDate"`
}

// CreateClient adds a client. Names are unique ignoring case.
func (s *Service) CreateClient(ctx context.Context, in ClientInput) (domain.Client, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Client{}, domain.ErrNameRequired
	}
	c := domain.Client{ID: newID(), Name: name, Phone: strings.TrimSpace(in.Phone), Telegram: strings.TrimSpace(in.Telegram)}
	err := s.store.Update(ctx, state.Event{Kind: "client.created"}, func(st *domain.State) error {
		if registry.FindClient(st.Clients, name) != nil {
			return fmt.Errorf("client %q: %w", name, domain.ErrAlreadyExists)
		}
		st.Clients = append(st.Clients, c)
		return nil
	})
	if err != nil {
		return domain.Client{}, err
	}
	return c, nil
}

// DeleteClient removes a client record. Projects keep the name.
func (s *Service) DeleteClient(ctx context.Context, id domain.ID) error {
	return s.store.Update(ctx, state.Event{Kind: "client.deleted"}, func(st *domain.State) error {
		for i := range st.Clients {
			if st.Clients[i].ID.Equal(id) {
				st.Clients = append(st.Clients[:i], st.Clients[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("client %s: %w", id, domain.ErrNotFound)
	})
}

// CreateEmployee adds an engineer. Names are unique ignoring case.
func (s *Service) CreateEmployee(ctx context.Context, in EmployeeInput) (domain.Employee, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Employee{}, domain.ErrNameRequired
	}
	pos := strings.TrimSpace(in.Position)
	if pos == "" {
		pos = registry.DefaultPosition
	}
	e := domain.Employee{ID: newID(), Name: name, Position: pos, Phone: strings.TrimSpace(in.Phone)}
	err := s.store.Update(ctx, state.Event{Kind: "employee.created"}, func(st *domain.State) error {
		if registry.FindEmployee(st.Employees, name) != nil {
			return fmt.Errorf("employee %q: %w", name, domain.ErrAlreadyExists)
		}
		st.Employees = append(st.Employees, e)
		return nil
	})
	if err != nil {
		return domain.Employee{}, err
	}
	return e, nil
}

// DeleteEmployee removes an engineer. Sections keep the name and show as
// assigned to an unknown engineer.
func (s *Service) DeleteEmployee(ctx context.Context, id domain.ID) error {
	return s.store.Update(ctx, state.Event{Kind: "employee.deleted"}, func(st *domain.State) error {
		for i := range st.Employees {
			if st.Employees[i].ID.Equal(id) {
				st.Employees = append(st.Employees[:i], st.Employees[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("employee %s: %w", id, domain.ErrNotFound)
	})
}

// CreateTask adds a to-do item.
func (s *Service) CreateTask(ctx context.Context, in TaskInput) (domain.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Task{}, domain.ErrNameRequired
	}
	if err := validateDate(in.DueDate); err != nil {
		return domain.Task{}, err
	}
	t := domain.Task{ID: newID(), Title: title, ProjectID: in.ProjectID, Assignee: strings.TrimSpace(in.Assignee), DueDate: in.DueDate}
	err := s.store.Update(ctx, state.Event{Kind: "task.created", ProjectID: in.ProjectID}, func(st *domain.State) error {
		st.Tasks = append(st.Tasks, t)
		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// SetTaskDone marks a task done or open again.
func (s *Service) SetTaskDone(ctx context.Context, id domain.ID, done bool) (domain.Task, error) {
	var out domain.Task
	err := s.store.Update(ctx, state.Event{Kind: "task.updated"}, func(st *domain.State) error {
		for i := range st.Tasks {
			if st.Tasks[i].ID.Equal(id) {
				st.Tasks[i].Done = done
				out = st.Tasks[i]
				return nil
			}
		}
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	})
	return out, err
}

func (s *Service) DeleteTask(ctx context.Context, id domain.ID) error {
	return s.store.Update(ctx, state.Event{Kind: "task.deleted"}, func(st *domain.State) error {
		for i := range st.Tasks {
			if st.Tasks[i].ID.Equal(id) {
				st.Tasks = append(st.Tasks[:i], st.Tasks[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
	})
}

// Workload returns the load of every registered engineer.
func (s *Service) Workload() []workload.Load {
	var out []workload.Load
	now := s.now()
	s.store.View(func(st *domain.State) {
		out = workload.Compute(st.Projects, st.Employees, now).Loads()
	})
	return out
}

// BestEngineer returns the least loaded engineer not in exclude.
func (s *Service) BestEngineer(exclude []string) (*workload.Load, error) {
	var best *workload.Load
	now := s.now()
	s.store.View(func(st *domain.State) {
		best = workload.FindBestEngineer(st.Projects, st.Employees, exclude, now)
	})
	if best == nil {
		return nil, domain.ErrNoEngineers
	}
	return best, nil
}

// AutoAssignSection gives one section to the least loaded engineer.
func (s *Service) AutoAssignSection(ctx context.Context, pid, sid domain.ID) (*workload.Assignment, error) {
	var out *workload.Assignment
	_, err := s.updateProject(ctx, "section.assigned", pid, func(st *domain.State, p *domain.Project) error {
		now := s.now()
		a, err := workload.AssignSection(st, p, sid, now)
		if err != nil {
			return err
		}
		workflow.AddHistory(p, domain.ActionAssign, actor(ctx),
			fmt.Sprintf("Раздел %q: назначен инженер %s", a.SectionName, a.Engineer), now)
		out = a
		return nil
	})
	if !committed(err) {
		return nil, err
	}
	s.syncLater(pid)
	return out, err
}

// AutoAssignProject assigns every unassigned section of a project, spreading
// the batch across engineers.
func (s *Service) AutoAssignProject(ctx context.Context, pid domain.ID) ([]workload.Assignment, error) {
	var out []workload.Assignment
	_, err := s.updateProject(ctx, "project.assigned", pid, func(st *domain.State, p *domain.Project) error {
		if len(st.Employees) == 0 {
			return domain.ErrNoEngineers
		}
		now := s.now()
		out = workload.AssignProject(st, p, now)
		for _, a := range out {
			workflow.AddHistory(p, domain.ActionAssign, actor(ctx),
				fmt.Sprintf("Раздел %q: назначен инженер %s", a.SectionName, a.Engineer), now)
		}
		return nil
	})
	if !committed(err) {
		return nil, err
	}
	if len(out) > 0 {
		s.syncLater(pid)
	}
	return out, err
}

// RestoreRegistry creates client and employee records for names that only
// appear inside projects.
func (s *Service) RestoreRegistry(ctx context.Context) (registry.Result, error) {
	var res registry.Result
	err := s.store.Update(ctx, state.Event{Kind: "registry.restored"}, func(st *domain.State) error {
		res = registry.Restore(st)
		return nil
	})
	return res, err
}
