package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Stored documents and the browser client use plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Project is one studio commission. Client and section engineers are
// referenced by display name, not by registry identifier.
type Project struct {
	ID                    ID                         `json:"id"`
	Name                  string                     `json:"name"`
	Client                string                     `json:"client"`
	Address               string                     `json:"address,omitempty"`
	Amount                decimal.Decimal            `json:"amount"`
	Currency              Currency                   `json:"currency"`
	Advance               decimal.Decimal            `json:"advance,omitempty"`
	Status                Status                     `json:"status"`
	CreatedAt             time.Time                  `json:"createdAt"`
	UpdatedAt             time.Time                  `json:"updatedAt"`
	Sections              []Section                  `json:"sections"`
	History               []HistoryEntry             `json:"history"`
	Location              *GeoPoint                  `json:"location,omitempty"`
	Contour               []GeoPoint                 `json:"contour,omitempty"`
	Photos                []FileRef                  `json:"photos"`
	Comments              []Comment                  `json:"comments,omitempty"`
	EngineerContracts     map[string]decimal.Decimal `json:"engineerContracts,omitempty"`
	LastCorrectionComment string                     `json:"lastCorrectionComment,omitempty"`
	FolderName            string                     `json:"folderName,omitempty"`
	// Closed marks a project stored as completed or archive. Normalize keeps
	// it after the status is mapped to accepted.
	Closed bool `json:"closed,omitempty"`
}

// Section is a work package inside a project. Its ID never changes once
// created; reordering moves the section within Project.Sections.
type Section struct {
	ID       ID        `json:"id"`
	Name     string    `json:"name"`
	Engineer string    `json:"engineer,omitempty"`
	Status   Status    `json:"status"`
	DueDate  string    `json:"dueDate,omitempty"` // YYYY-MM-DD
	DueTime  string    `json:"dueTime,omitempty"` // HH:MM
	Files    []FileRef `json:"files"`
}

// FileRef points at an uploaded file or gallery image.
type FileRef struct {
	ID         ID        `json:"id,omitempty"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Type       string    `json:"type,omitempty"` // file | image
	Comment    string    `json:"comment,omitempty"`
	UploadedBy string    `json:"uploadedBy,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// HistoryEntry is appended to a project's log and never edited afterwards.
type HistoryEntry struct {
	Date   time.Time `json:"date"`
	Action string    `json:"action"`
	Actor  string    `json:"user,omitempty"`
	Text   string    `json:"text"`
}

// History action types.
const (
	ActionStatusChange = "status_change"
	ActionFileUpload   = "file_upload"
	ActionFileDelete   = "file_delete"
	ActionComment      = "comment"
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionArchive      = "archive"
	ActionAssign       = "engineer_assigned"
)

type Comment struct {
	ID     ID        `json:"id"`
	Text   string    `json:"text"`
	Author string    `json:"author"`
	Date   time.Time `json:"date"`
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TransactionType distinguishes ledger income from expenses.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a ledger entry. ProjectID may be empty for general entries
// and may dangle after its project was deleted.
type Transaction struct {
	ID          ID              `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency,omitempty"`
	Date        string          `json:"date"` // YYYY-MM-DD
	ProjectID   ID              `json:"projectId,omitempty"`
	Engineer    string          `json:"engineer,omitempty"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
}

type Employee struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type Client struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Telegram string `json:"telegram,omitempty"`
}

type Task struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	ProjectID ID     `json:"projectId,omitempty"`
	Assignee  string `json:"assignee,omitempty"`
	DueDate   string `json:"dueDate,omitempty"`
	Done      bool   `json:"done"`
}

// State holds the five collections of a workspace.
type State struct {
	Projects     []Project     `json:"projects"`
	Clients      []Client      `json:"clients"`
	Transactions []Transaction `json:"transactions"`
	Employees    []Employee    `json:"employees"`
	Tasks        []Task        `json:"tasks"`
}

// FindProject returns a pointer into s.Projects or nil.
func (s *State) FindProject(id ID) *Project {
	for i := range s.Projects {
		if s.Projects[i].ID.Equal(id) {
			return &s.Projects[i]
		}
	}
	return nil
}

// FindSection returns a pointer into p.Sections or nil.
func (p *Project) FindSection(id ID) *Section {
	for i := range p.Sections {
		if p.Sections[i].ID.Equal(id) {
			return &p.Sections[i]
		}
	}
	return nil
}

// CorrectionAlert returns the standing correction comment while the project
// is sent back for revision.
func (p *Project) CorrectionAlert() string {
	if NormalizeStatus(p.Status) != StatusCorrection {
		return ""
	}
	return p.LastCorrectionComment
}

// IsClosed reports whether the project is left out of workload and
// reminder calculations.
func (p *Project) IsClosed() bool {
	return p.Closed || p.Status.IsClosed()
}

// Normalize fills defaults on a document read from storage: legacy statuses
// are mapped to the canonical enum and nil slices become empty.
func (p *Project) Normalize() {
	if p.Status.IsClosed() {
		p.Closed = true
	}
	p.Status = NormalizeStatus(p.Status)
	p.Currency = p.Currency.OrDefault()
	if p.Sections == nil {
		p.Sections = []Section{}
	}
	if p.Photos == nil {
		p.Photos = []FileRef{}
	}
	if p.History == nil {
		p.History = []HistoryEntry{}
	}
	for i := range p.Sections {
		p.Sections[i].Status = NormalizeStatus(p.Sections[i].Status)
		if p.Sections[i].Files == nil {
			p.Sections[i].Files = []FileRef{}
		}
	}
}

// SameName is the join used for name references: trimmed and case-insensitive.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NameKey folds a name reference for use as a map key consistent with SameName.
func NameKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
