// Package registry reconciles the client and employee lists with the names
// referenced from projects.
//
// Projects reference clients and engineers by display name. The registries
// are derived from those references: a name seen in a project but missing
// from its registry (compared trimmed and case-insensitively) gets a
// minimal record. Names are therefore unique per registry modulo case, and
// renaming a record does not update the projects that point at it.
package registry

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// DefaultPosition is given to engineers discovered from projects.
const DefaultPosition = "Инженер"

// Result counts the records created by Restore.
type Result struct {
	Clients   []string `json:"clients"`
	Employees []string `json:"employees"`
}

// Created is the total number of new records.
func (r Result) Created() int { return len(r.Clients) + len(r.Employees) }

// Restore scans project clients, section engineers and engineer contract
// keys and adds registry records for unknown names. Running it again on
// unchanged projects creates nothing.
func Restore(s *domain.State) Result {
	res := Result{Clients: []string{}, Employees: []string{}}

	for _, p := range s.Projects {
		if name := strings.TrimSpace(p.Client); name != "" && FindClient(s.Clients, name) == nil {
			s.Clients = append(s.Clients, domain.Client{ID: newID(), Name: name})
			res.Clients = append(res.Clients, name)
		}

		for _, sec := range p.Sections {
			if addEmployee(s, sec.Engineer) {
				res.Employees = append(res.Employees, strings.TrimSpace(sec.Engineer))
			}
		}

		// Map iteration order is random; sort so record order is stable.
		names := make([]string, 0, len(p.EngineerContracts))
		for name := range p.EngineerContracts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if addEmployee(s, name) {
				res.Employees = append(res.Employees, strings.TrimSpace(name))
			}
		}
	}
	return res
}

func addEmployee(s *domain.State, raw string) bool {
	name := strings.TrimSpace(raw)
	if name == "" || FindEmployee(s.Employees, name) != nil {
		return false
	}
	s.Employees = append(s.Employees, domain.Employee{ID: newID(), Name: name, Position: DefaultPosition})
	return true
}

// FindClient looks a client up by name.
func FindClient(clients []domain.Client, name string) *domain.Client {
	for i := range clients {
		if domain.SameName(clients[i].Name, name) {
			return &clients[i]
		}
	}
	return nil
}

// FindEmployee looks an employee up by name.
func FindEmployee(employees []domain.Employee, name string) *domain.Employee {
	for i := range employees {
		if domain.SameName(employees[i].Name, name) {
			return &employees[i]
		}
	}
	return nil
}

func newID() domain.ID {
	return domain.ID(uuid.NewString())
}
