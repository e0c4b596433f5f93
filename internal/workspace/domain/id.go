package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID identifies projects, sections, transactions and registry records.
// Older records carry numeric identifiers (millisecond timestamps) while
// newer ones are strings, so decoding accepts both and every comparison
// happens on the string form.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// Equal compares two identifiers by their string form.
func (id ID) Equal(other ID) bool {
	return strings.TrimSpace(string(id)) == strings.TrimSpace(string(other))
}

// NewTimestampID mirrors the timestamp identifiers the browser client used to mint.
func NewTimestampID(now time.Time) ID {
	return ID(strconv.FormatInt(now.UnixMilli(), 10))
}
