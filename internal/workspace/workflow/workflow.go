// Package workflow implements status changes for projects and sections.
//
// The state machine is permissive: any canonical status may follow any
// other. What a transition does beyond setting the status is described by
// the side-effect table below rather than by guards.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studiodesk/studio-backend/internal/notify"
	"github.com/studiodesk/studio-backend/internal/workspace/domain"
)

// Level distinguishes project-level from section-level transitions.
type Level string

const (
	LevelProject Level = "project"
	LevelSection Level = "section"
)

// Target names what a status change applies to.
type Target struct {
	Level     Level     `json:"type"`
	SectionID domain.ID `json:"id,omitempty"`
}

// Effect is a side effect run after a transition has been committed.
type Effect string

const (
	EffectNotify  Effect = "notify"
	EffectArchive Effect = "archive"
)

// projectEffects lists the extra effects of entering a status at project level.
var projectEffects = map[domain.Status][]Effect{
	domain.StatusAccepted: {EffectArchive},
}

// Request is one status change.
type Request struct {
	Target  Target
	Status  domain.Status
	Comment string
	Actor   string
}

// Result describes an applied change.
type Result struct {
	Changed     bool                 `json:"changed"`
	Old         domain.Status        `json:"old_status"`
	New         domain.Status        `json:"new_status"`
	Entry       *domain.HistoryEntry `json:"history_entry,omitempty"`
	Effects     []Effect             `json:"effects,omitempty"`
	SectionID   domain.ID            `json:"section_id,omitempty"`
	SectionName string               `json:"section_name,omitempty"`
}

// Has reports whether the result carries effect e.
func (r *Result) Has(e Effect) bool {
	for _, v := range r.Effects {
		if v == e {
			return true
		}
	}
	return false
}

// ChangeStatus applies req to p in place and returns the effects the caller
// must run once the change is persisted. Validation failures leave p
// untouched.
//
// A correction needs a non-empty comment, which becomes the project's
// standing correction comment. Repeating the current status is a no-op
// unless it is a correction carrying a comment, so entering accepted fires
// the archive effect once per transition.
func ChangeStatus(p *domain.Project, req Request, now time.Time) (*Result, error) {
	if !req.Status.IsCanonical() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, req.Status)
	}
	comment := strings.TrimSpace(req.Comment)
	if req.Status == domain.StatusCorrection && comment == "" {
		return nil, domain.ErrCommentRequired
	}

	switch req.Target.Level {
	case LevelProject, "":
		return changeProject(p, req, comment, now), nil
	case LevelSection:
		sec := p.FindSection(req.Target.SectionID)
		if sec == nil {
			return nil, domain.ErrSectionNotFound
		}
		return changeSection(p, sec, req, comment, now), nil
	default:
		return nil, fmt.Errorf("unknown status target %q", req.Target.Level)
	}
}

func changeProject(p *domain.Project, req Request, comment string, now time.Time) *Result {
	old := p.Status
	res := &Result{Old: old, New: req.Status}
	if domain.NormalizeStatus(old) == req.Status && req.Status != domain.StatusCorrection {
		return res
	}

	p.Status = req.Status
	p.Closed = false
	if req.Status == domain.StatusCorrection {
		p.LastCorrectionComment = comment
	}
	p.UpdatedAt = now

	entry := AddHistory(p, domain.ActionStatusChange, req.Actor, transitionText(old, req.Status, comment), now)
	res.Changed = true
	res.Entry = &entry
	res.Effects = append([]Effect{EffectNotify}, projectEffects[req.Status]...)

	// A correction re-sent while already in correction only refreshes the comment.
	if domain.NormalizeStatus(old) == req.Status {
		res.Effects = []Effect{EffectNotify}
	}
	return res
}

func changeSection(p *domain.Project, sec *domain.Section, req Request, comment string, now time.Time) *Result {
	old := sec.Status
	res := &Result{Old: old, New: req.Status, SectionID: sec.ID, SectionName: sec.Name}
	if domain.NormalizeStatus(old) == req.Status && req.Status != domain.StatusCorrection {
		return res
	}

	sec.Status = req.Status
	p.UpdatedAt = now

	text := fmt.Sprintf("Раздел %q: %s", sec.Name, transitionText(old, req.Status, comment))
	entry := AddHistory(p, domain.ActionStatusChange, req.Actor, text, now)
	res.Changed = true
	res.Entry = &entry
	res.Effects = []Effect{EffectNotify}
	return res
}

func transitionText(old, next domain.Status, comment string) string {
	text := fmt.Sprintf("Статус изменен: %s → %s", old.Label(), next.Label())
	if comment != "" {
		text += ". Примечание: " + comment
	}
	return text
}

// AddHistory appends an immutable entry to p's log and returns it.
func AddHistory(p *domain.Project, action, actor, text string, now time.Time) domain.HistoryEntry {
	entry := domain.HistoryEntry{
		Date:   now.UTC(),
		Action: action,
		Actor:  actor,
		Text:   text,
	}
	p.History = append(p.History, entry)
	return entry
}

// Archiver hands an accepted project to the archive service.
type Archiver interface {
	ArchiveProject(ctx context.Context, id domain.ID) error
}

// Notifier delivers a rendered notification text.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Runner executes transition effects against the external collaborators.
type Runner struct {
	archiver Archiver
	notifier Notifier
}

func NewRunner(archiver Archiver, notifier Notifier) *Runner {
	return &Runner{archiver: archiver, notifier: notifier}
}

// Run executes the effects of res for the project snapshot p. Every effect
// runs even when an earlier one fails; the returned map holds the failures.
func (r *Runner) Run(ctx context.Context, p domain.Project, res *Result) map[Effect]error {
	failed := make(map[Effect]error)
	if res == nil || !res.Changed {
		return failed
	}
	for _, e := range res.Effects {
		if err := r.RunEffect(ctx, e, p, res); err != nil {
			failed[e] = err
		}
	}
	return failed
}

// RunEffect executes a single effect. Missing collaborators are skipped.
func (r *Runner) RunEffect(ctx context.Context, e Effect, p domain.Project, res *Result) error {
	switch e {
	case EffectNotify:
		if r.notifier != nil {
			return r.notifier.Send(ctx, StatusMessage(p, res))
		}
	case EffectArchive:
		if r.archiver != nil {
			return r.archiver.ArchiveProject(ctx, p.ID)
		}
	default:
		return fmt.Errorf("unknown effect %q", e)
	}
	return nil
}

// StatusMessage renders the notification text of a status change.
func StatusMessage(p domain.Project, res *Result) string {
	comment := ""
	if res.New == domain.StatusCorrection && res.SectionID.IsZero() {
		comment = p.LastCorrectionComment
	}
	return notify.StatusChange(p.Name, res.SectionName, res.Old.Label(), res.New.Label(), comment)
}
