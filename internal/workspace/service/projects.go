package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studiodesk/studio-backend/internal/notify"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
	"github.com/studiodesk/studio-backend/internal/workspace/finance"
	"github.com/studiodesk/studio-backend/internal/workspace/workflow"
)

type ProjectInput struct {
	Name     string            `json:"name"`
	Client   string            `json:"client"`
	Address  string            `json:"address"`
	Amount   decimal.Decimal   `json:"amount"`
	Currency string            `json:"currency"`
	Advance  decimal.Decimal   `json:"advance"`
	Sections []string          `json:"sections"`
	Location *domain.GeoPoint  `json:"location"`
	Contour  []domain.GeoPoint `json:"contour"`
}

// ProjectPatch changes only the fields that are set.
type ProjectPatch struct {
	Name     *string           `json:"name"`
	Client   *string           `json:"client"`
	Address  *string           `json:"address"`
	Amount   *decimal.Decimal  `json:"amount"`
	Currency *string           `json:"currency"`
	Location *domain.GeoPoint  `json:"location"`
	Contour  []domain.GeoPoint `json:"contour"`
}

type SectionInput struct {
	Name     string `json:"name"`
	Engineer string `json:"engineer"`
	DueDate  string `json:"dueDate"`
	DueTime  string `json:"dueTime"`
}

type FileInput struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Type    string `json:"type"`
	Comment string `json:"comment"`
}

func newID() domain.ID { return domain.ID(uuid.NewString()) }

func validateDate(d string) error {
	if d == "" {
		return nil
	}
	if _, err := finance.ParseDate(d, time.UTC); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidInput, d)
	}
	return nil
}

func newSection(name string) domain.Section {
	return domain.Section{
		ID:     newID(),
		Name:   strings.TrimSpace(name),
		Status: domain.StatusInProgress,
		Files:  []domain.FileRef{},
	}
}

// CreateProject adds a project in progress and queues its first sync.
func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (domain.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Project{}, domain.ErrNameRequired
	}
	if in.Amount.IsNegative() || in.Advance.IsNegative() {
		return domain.Project{}, domain.ErrInvalidAmount
	}
	cur, err := domain.ParseCurrency(in.Currency)
	if err != nil {
		return domain.Project{}, err
	}

	now := s.now()
	p := domain.Project{
		ID:        domain.NewTimestampID(now),
		Name:      name,
		Client:    strings.TrimSpace(in.Client),
		Address:   strings.TrimSpace(in.Address),
		Amount:    in.Amount,
		Currency:  cur,
		Advance:   in.Advance,
		Status:    domain.StatusInProgress,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Sections:  []domain.Section{},
		History:   []domain.HistoryEntry{},
		Photos:    []domain.FileRef{},
		Location:  in.Location,
		Contour:   in.Contour,
	}
	for _, sec := range in.Sections {
		if strings.TrimSpace(sec) != "" {
			p.Sections = append(p.Sections, newSection(sec))
		}
	}
	workflow.AddHistory(&p, domain.ActionCreate, actor(ctx), "Проект создан", now)

	err = s.store.Update(ctx, stateEvent("project.created", p.ID), func(st *domain.State) error {
		for st.FindProject(p.ID) != nil {
			p.ID = domain.ID(p.ID.String() + "1")
		}
		st.Projects = append(st.Projects, p)
		if p.Advance.IsPositive() {
			finance.MigrateAdvances(st, now)
		}
		return nil
	})
	if !committed(err) {
		return domain.Project{}, err
	}

	s.syncLater(p.ID)
	s.notifyLater("project", notify.NewProject(p.Name, p.Client))
	return p.Clone(), err
}

// UpdateProject edits the descriptive fields of a project.
func (s *Service) UpdateProject(ctx context.Context, id domain.ID, patch ProjectPatch) (domain.Project, error) {
	var cur domain.Currency
	if patch.Currency != nil {
		c, err := domain.ParseCurrency(*patch.Currency)
		if err != nil {
			return domain.Project{}, err
		}
		cur = c
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Project{}, domain.ErrNameRequired
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		return domain.Project{}, domain.ErrInvalidAmount
	}

	p, err := s.updateProject(ctx, "project.updated", id, func(_ *domain.State, p *domain.Project) error {
		if patch.Name != nil {
			p.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Client != nil {
			p.Client = strings.TrimSpace(*patch.Client)
		}
		if patch.Address != nil {
			p.Address = strings.TrimSpace(*patch.Address)
		}
		if patch.Amount != nil {
			p.Amount = *patch.Amount
		}
		if patch.Currency != nil {
			p.Currency = cur
		}
		if patch.Location != nil {
			loc := *patch.Location
			p.Location = &loc
		}
		if patch.Contour != nil {
			p.Contour = patch.Contour
		}
		now := s.now()
		p.UpdatedAt = now.UTC()
		workflow.AddHistory(p, domain.ActionUpdate, actor(ctx), "Проект обновлен", now)
		return nil
	})
	if !committed(err) {
		return p, err
	}
	s.syncLater(id)
	return p, err
}

// DeleteProject removes a project. Linked transactions are kept.
func (s *Service) DeleteProject(ctx context.Context, id domain.ID) error {
	var folder string
	err := s.store.Update(ctx, stateEvent("project.deleted", id), func(st *domain.State) error {
		for i := range st.Projects {
			if st.Projects[i].ID.Equal(id) {
				folder = st.Projects[i].FolderName
				st.Projects = append(st.Projects[:i], st.Projects[i+1:]...)
				return nil
			}
		}
		return domain.ErrProjectNotFound
	})
	if !committed(err) {
		return err
	}
	if s.coordinator != nil {
		s.background("delete_project", func(ctx context.Context) error {
			return s.coordinator.DeleteRemote(ctx, id, folder)
		})
	}
	return err
}

// AddSection appends a section in progress.
func (s *Service) AddSection(ctx context.Context, pid domain.ID, in SectionInput) (domain.Section, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Section{}, domain.ErrNameRequired
	}
	if err := validateDate(in.DueDate); err != nil {
		return domain.Section{}, err
	}
	sec := newSection(in.Name)
	sec.Engineer = strings.TrimSpace(in.Engineer)
	sec.DueDate = in.DueDate
	sec.DueTime = in.DueTime

	_, err := s.updateProject(ctx, "section.created", pid, func(_ *domain.State, p *domain.Project) error {
		p.Sections = append(p.Sections, sec)
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if !committed(err) {
		return domain.Section{}, err
	}
	s.syncLater(pid)
	return sec, err
}

// UpdateSection edits name, engineer and due date of a section.
func (s *Service) UpdateSection(ctx context.Context, pid, sid domain.ID, in SectionInput) (domain.Section, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Section{}, domain.ErrNameRequired
	}
	if err := validateDate(in.DueDate); err != nil {
		return domain.Section{}, err
	}
	var out domain.Section
	_, err := s.updateProject(ctx, "section.updated", pid, func(_ *domain.State, p *domain.Project) error {
		sec := p.FindSection(sid)
		if sec == nil {
			return domain.ErrSectionNotFound
		}
		engineer := strings.TrimSpace(in.Engineer)
		now := s.now()
		if engineer != "" && !domain.SameName(engineer, sec.Engineer) {
			workflow.AddHistory(p, domain.ActionAssign, actor(ctx),
				fmt.Sprintf("Раздел %q: назначен инженер %s", sec.Name, engineer), now)
		}
		sec.Name = strings.TrimSpace(in.Name)
		sec.Engineer = engineer
		sec.DueDate = in.DueDate
		sec.DueTime = in.DueTime
		p.UpdatedAt = now.UTC()
		out = *sec
		return nil
	})
	if !committed(err) {
		return domain.Section{}, err
	}
	s.syncLater(pid)
	return out, err
}

// DeleteSection removes a section and its file references.
func (s *Service) DeleteSection(ctx context.Context, pid, sid domain.ID) error {
	_, err := s.updateProject(ctx, "section.deleted", pid, func(_ *domain.State, p *domain.Project) error {
		for i := range p.Sections {
			if p.Sections[i].ID.Equal(sid) {
				p.Sections = append(p.Sections[:i], p.Sections[i+1:]...)
				p.UpdatedAt = s.now().UTC()
				return nil
			}
		}
		return domain.ErrSectionNotFound
	})
	if !committed(err) {
		return err
	}
	s.syncLater(pid)
	return err
}

// ReorderSections puts the sections in the order of ids, which must list
// every section exactly once. Section identities do not change.
func (s *Service) ReorderSections(ctx context.Context, pid domain.ID, ids []domain.ID) (domain.Project, error) {
	p, err := s.updateProject(ctx, "section.reordered", pid, func(_ *domain.State, p *domain.Project) error {
		if len(ids) != len(p.Sections) {
			return fmt.Errorf("%w: expected %d section ids, got %d", domain.ErrInvalidInput, len(p.Sections), len(ids))
		}
		ordered := make([]domain.Section, 0, len(ids))
		used := make(map[string]bool, len(ids))
		for _, id := range ids {
			sec := p.FindSection(id)
			if sec == nil {
				return domain.ErrSectionNotFound
			}
			if used[sec.ID.String()] {
				return fmt.Errorf("%w: section %s listed twice", domain.ErrInvalidInput, id)
			}
			used[sec.ID.String()] = true
			ordered = append(ordered, *sec)
		}
		p.Sections = ordered
		p.UpdatedAt = s.now().UTC()
		return nil
	})
	if !committed(err) {
		return p, err
	}
	s.syncLater(pid)
	return p, err
}

// AddComment puts a comment at the top of the project's comment list.
func (s *Service) AddComment(ctx context.Context, pid domain.ID, text string) (domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, fmt.Errorf("%w: comment text is empty", domain.ErrInvalidInput)
	}
	now := s.now()
	c := domain.Comment{ID: newID(), Text: text, Author: actor(ctx), Date: now.UTC()}

	p, err := s.updateProject(ctx, "comment.added", pid, func(_ *domain.State, p *domain.Project) error {
		p.Comments = append([]domain.Comment{c}, p.Comments...)
		workflow.AddHistory(p, domain.ActionComment, c.Author, "Комментарий: "+text, now)
		return nil
	})
	if !committed(err) {
		return domain.Comment{}, err
	}
	s.syncLater(pid)
	s.notifyLater("comment", notify.NewComment(p.Name, text, c.Author))
	return c, err
}

func fileRef(in FileInput, uploader string, s *Service) (domain.FileRef, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.FileRef{}, domain.ErrNameRequired
	}
	if strings.TrimSpace(in.Path) == "" {
		return domain.FileRef{}, fmt.Errorf("%w: file path is empty", domain.ErrInvalidInput)
	}
	typ := in.Type
	if typ == "" {
		typ = "file"
	}
	return domain.FileRef{
		ID:         newID(),
		Name:       strings.TrimSpace(in.Name),
		Path:       in.Path,
		Type:       typ,
		Comment:    strings.TrimSpace(in.Comment),
		UploadedBy: uploader,
		UploadedAt: s.now().UTC(),
	}, nil
}

// AttachSectionFile records an already uploaded file on a section.
func (s *Service) AttachSectionFile(ctx context.Context, pid, sid domain.ID, in FileInput) (domain.FileRef, error) {
	ref, err := fileRef(in, actor(ctx), s)
	if err != nil {
		return ref, err
	}
	var sectionName string
	p, err := s.updateProject(ctx, "file.added", pid, func(_ *domain.State, p *domain.Project) error {
		sec := p.FindSection(sid)
		if sec == nil {
			return domain.ErrSectionNotFound
		}
		sec.Files = append(sec.Files, ref)
		sectionName = sec.Name
		workflow.AddHistory(p, domain.ActionFileUpload, ref.UploadedBy,
			fmt.Sprintf("Раздел %q: загружен файл %s", sec.Name, ref.Name), s.now())
		return nil
	})
	if !committed(err) {
		return domain.FileRef{}, err
	}
	s.syncLater(pid)
	s.notifyLater("file", notify.NewFile(p.Name, sectionName, ref.Name))
	return ref, err
}

// UploadSectionFile uploads content to the project server and attaches it.
// Upload failures are returned since the user is waiting for the file.
func (s *Service) UploadSectionFile(ctx context.Context, pid, sid domain.ID, filename, comment string, r io.Reader) (domain.FileRef, error) {
	if s.coordinator == nil {
		return domain.FileRef{}, domain.ErrRemoteUnavailable
	}
	p, err := s.store.Project(pid)
	if err != nil {
		return domain.FileRef{}, err
	}
	sec := p.FindSection(sid)
	if sec == nil {
		return domain.FileRef{}, domain.ErrSectionNotFound
	}
	res, err := s.coordinator.Upload(ctx, p, sec.Name, filename, r)
	if err != nil {
		return domain.FileRef{}, err
	}
	return s.AttachSectionFile(ctx, pid, sid, FileInput{Name: filename, Path: res.URL, Type: fileType(filename), Comment: comment})
}

// DeleteSectionFile removes a file reference from a section.
func (s *Service) DeleteSectionFile(ctx context.Context, pid, sid, fid domain.ID) error {
	_, err := s.updateProject(ctx, "file.deleted", pid, func(_ *domain.State, p *domain.Project) error {
		sec := p.FindSection(sid)
		if sec == nil {
			return domain.ErrSectionNotFound
		}
		for i := range sec.Files {
			if sec.Files[i].ID.Equal(fid) {
				name := sec.Files[i].Name
				sec.Files = append(sec.Files[:i], sec.Files[i+1:]...)
				workflow.AddHistory(p, domain.ActionFileDelete, actor(ctx),
					fmt.Sprintf("Раздел %q: удален файл %s", sec.Name, name), s.now())
				return nil
			}
		}
		return domain.ErrFileNotFound
	})
	if !committed(err) {
		return err
	}
	s.syncLater(pid)
	return err
}

// AddPhoto records an already uploaded image in the project gallery.
func (s *Service) AddPhoto(ctx context.Context, pid domain.ID, in FileInput) (domain.FileRef, error) {
	in.Type = "image"
	ref, err := fileRef(in, actor(ctx), s)
	if err != nil {
		return ref, err
	}
	_, err = s.updateProject(ctx, "photo.added", pid, func(_ *domain.State, p *domain.Project) error {
		p.Photos = append(p.Photos, ref)
		return nil
	})
	if !committed(err) {
		return domain.FileRef{}, err
	}
	s.syncLater(pid)
	return ref, err
}

// UploadPhoto uploads an image into the project's gallery folder.
func (s *Service) UploadPhoto(ctx context.Context, pid domain.ID, filename, comment string, r io.Reader) (domain.FileRef, error) {
	if s.coordinator == nil {
		return domain.FileRef{}, domain.ErrRemoteUnavailable
	}
	p, err := s.store.Project(pid)
	if err != nil {
		return domain.FileRef{}, err
	}
	res, err := s.coordinator.Upload(ctx, p, "Фото", filename, r)
	if err != nil {
		return domain.FileRef{}, err
	}
	return s.AddPhoto(ctx, pid, FileInput{Name: filename, Path: res.URL, Comment: comment})
}

// DeletePhoto removes an image from the gallery.
func (s *Service) DeletePhoto(ctx context.Context, pid, fid domain.ID) error {
	_, err := s.updateProject(ctx, "photo.deleted", pid, func(_ *domain.State, p *domain.Project) error {
		for i := range p.Photos {
			if p.Photos[i].ID.Equal(fid) {
				p.Photos = append(p.Photos[:i], p.Photos[i+1:]...)
				return nil
			}
		}
		return domain.ErrFileNotFound
	})
	if !committed(err) {
		return err
	}
	s.syncLater(pid)
	return err
}

var imageExt = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".heic"}

func fileType(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range imageExt {
		if strings.HasSuffix(lower, ext) {
			return "image"
		}
	}
	return "file"
}
