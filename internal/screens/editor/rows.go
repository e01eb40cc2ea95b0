package editor

import (
	"strings"

	"github.com/abhisek/assessor/internal/draft"
)

// row is one editable line: an assessment field when entry is empty,
// otherwise a field of that entry.
type row struct {
	entry      draft.EntryID
	position   int // entry position, 0-based
	field      draft.Field
	entryField draft.EntryField
}

func (r row) isEntry() bool { return r.entry != "" }

func (r row) lang() string {
	if r.isEntry() {
		return r.entryField.Lang()
	}
	return r.field.Lang()
}

func (r row) label() string {
	var l string
	if r.isEntry() {
		l = r.entryField.Label()
	} else {
		l = r.field.Label()
	}
	if lang := r.lang(); lang != "" {
		l += " (" + strings.ToUpper(lang) + ")"
	}
	return l
}

// counterpart returns the same field in the other language.
func (r row) counterpart() (row, bool) {
	if !r.isEntry() {
		c := r
		c.field = r.field.Counterpart()
		return c, true
	}
	f, ok := r.entryField.Counterpart()
	if !ok {
		return r, false
	}
	c := r
	c.entryField = f
	return c, true
}

// key identifies the field independent of the entry's current position.
func (r row) key() row {
	r.position = 0
	return r
}

func (r row) searchable() bool {
	return r.isEntry() && (r.entryField == draft.EntryCategory || r.entryField == draft.EntryName)
}

func (r row) sameField(o row) bool {
	if r.entry != o.entry {
		return false
	}
	if r.isEntry() {
		return r.entryField == o.entryField
	}
	return r.field == o.field
}

// buildRows lists the assessment fields followed by every entry's fields.
func buildRows(a draft.Assessment) []row {
	rows := make([]row, 0, len(draft.AllFields())+len(a.Entries)*len(draft.AllEntryFields()))
	for _, f := range draft.AllFields() {
		rows = append(rows, row{field: f})
	}
	for i, e := range a.Entries {
		for _, f := range draft.AllEntryFields() {
			rows = append(rows, row{entry: e.ID, position: i, entryField: f})
		}
	}
	return rows
}

func valueOf(a *draft.Assessment, r row) string {
	if !r.isEntry() {
		return a.Get(r.field)
	}
	for i := range a.Entries {
		if a.Entries[i].ID == r.entry {
			return a.Entries[i].Get(r.entryField)
		}
	}
	return ""
}

func indexOfRow(rows []row, target row) int {
	for i, r := range rows {
		if r.sameField(target) {
			return i
		}
	}
	return -1
}
