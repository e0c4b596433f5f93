package domain

import "github.com/shopspring/decimal"

// Clone returns a deep copy of p that shares no slices or maps with it.
func (p *Project) Clone() Project {
	c := *p
	c.Sections = make([]Section, len(p.Sections))
	for i, s := range p.Sections {
		s.Files = append([]FileRef(nil), s.Files...)
		c.Sections[i] = s
	}
	c.History = append([]HistoryEntry(nil), p.History...)
	c.Photos = append([]FileRef(nil), p.Photos...)
	c.Comments = append([]Comment(nil), p.Comments...)
	c.Contour = append([]GeoPoint(nil), p.Contour...)
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}
	if p.EngineerContracts != nil {
		c.EngineerContracts = make(map[string]decimal.Decimal, len(p.EngineerContracts))
		for k, v := range p.EngineerContracts {
			c.EngineerContracts[k] = v
		}
	}
	return c
}

// Clone returns a deep copy of s.
func (s *State) Clone() State {
	c := State{
		Projects:     make([]Project, len(s.Projects)),
		Clients:      append([]Client(nil), s.Clients...),
		Transactions: append([]Transaction(nil), s.Transactions...),
		Employees:    append([]Employee(nil), s.Employees...),
		Tasks:        append([]Task(nil), s.Tasks...),
	}
	for i := range s.Projects {
		c.Projects[i] = s.Projects[i].Clone()
	}
	return c
}
