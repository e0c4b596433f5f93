package domain

import "strings"

// Status is the workflow state shared by projects and sections.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusOnReview   Status = "on-review"
	StatusCorrection Status = "correction"
	StatusAccepted   Status = "accepted"
)

// Legacy values still found in stored documents. They are accepted on read
// and mapped onto the canonical enum by NormalizeStatus.
const (
	LegacySketch    Status = "sketch"
	LegacyCompleted Status = "completed"
	LegacyDelivered Status = "delivered"
	LegacyChecked   Status = "checked"
	LegacyArchive   Status = "archive"
)

// CanonicalStatuses lists the values a client may request, in board order.
var CanonicalStatuses = []Status{StatusInProgress, StatusOnReview, StatusCorrection, StatusAccepted}

var legacyAliases = map[Status]Status{
	LegacySketch:    StatusInProgress,
	LegacyCompleted: StatusAccepted,
	LegacyDelivered: StatusAccepted,
	LegacyChecked:   StatusAccepted,
}

var statusLabels = map[Status]string{
	StatusInProgress: "В процессе",
	StatusOnReview:   "На проверку",
	StatusCorrection: "На правку",
	StatusAccepted:   "Принято",
}

// ParseStatus trims the raw value and reports whether it is canonical.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.TrimSpace(raw))
	return s, s.IsCanonical()
}

// IsCanonical reports whether s belongs to the current enum.
func (s Status) IsCanonical() bool {
	switch s {
	case StatusInProgress, StatusOnReview, StatusCorrection, StatusAccepted:
		return true
	}
	return false
}

// IsLegacy reports whether s is a read-only alias of a canonical status.
func (s Status) IsLegacy() bool {
	_, ok := legacyAliases[s]
	return ok
}

// NormalizeStatus maps legacy aliases to their canonical value. Empty input
// becomes in-progress; unknown values are returned unchanged.
func NormalizeStatus(s Status) Status {
	if s == "" {
		return StatusInProgress
	}
	if c, ok := legacyAliases[s]; ok {
		return c
	}
	return s
}

// Label is the human readable name used in history entries and messages.
func (s Status) Label() string {
	if l, ok := statusLabels[NormalizeStatus(s)]; ok && s != "" {
		return l
	}
	return string(s)
}

// IsClosed reports whether s is one of the legacy values that take a
// project out of workload and reminder calculations.
func (s Status) IsClosed() bool {
	return s == LegacyCompleted || s == LegacyArchive
}
