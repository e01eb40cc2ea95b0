package draft

import "github.com/abhisek/assessor/internal/api"

// Field names one of the six assessment text fields.
type Field int

const (
	FieldName Field = iota
	FieldNameEn
	FieldDescription
	FieldDescriptionEn
	FieldInstruction
	FieldInstructionEn
)

// AllFields lists the assessment fields in display order.
func AllFields() []Field {
	return []Field{
		FieldName, FieldNameEn,
		FieldDescription, FieldDescriptionEn,
		FieldInstruction, FieldInstructionEn,
	}
}

var fieldMeta = map[Field]struct {
	key, label, lang string
}{
	FieldName:          {"assessmentName", "Assessment name", api.LangNL},
	FieldNameEn:        {"assessmentNameEn", "Assessment name", api.LangEN},
	FieldDescription:   {"assessmentDescription", "Description", api.LangNL},
	FieldDescriptionEn: {"assessmentDescriptionEn", "Description", api.LangEN},
	FieldInstruction:   {"assessmentInstruction", "Instruction", api.LangNL},
	FieldInstructionEn: {"assessmentInstructionEn", "Instruction", api.LangEN},
}

// Key returns the wire name of the field.
func (f Field) Key() string { return fieldMeta[f].key }

// Label returns a human-readable name without the language suffix.
func (f Field) Label() string { return fieldMeta[f].label }

// Lang returns the field's language code.
func (f Field) Lang() string { return fieldMeta[f].lang }

// Valid reports whether f names a known field.
func (f Field) Valid() bool {
	_, ok := fieldMeta[f]
	return ok
}

// Counterpart returns the same field in the other language.
func (f Field) Counterpart() Field {
	if f%2 == 0 {
		return f + 1
	}
	return f - 1
}

// EntryField names one of the seven text fields of a competence entry.
type EntryField int

const (
	EntryName EntryField = iota
	EntryNameEn
	EntryDescription
	EntryDescriptionEn
	EntryCategory
	EntryCategoryDescription
	EntryCategoryDescriptionEn
)

// AllEntryFields lists the entry fields in display order.
func AllEntryFields() []EntryField {
	return []EntryField{
		EntryName, EntryNameEn,
		EntryDescription, EntryDescriptionEn,
		EntryCategory,
		EntryCategoryDescription, EntryCategoryDescriptionEn,
	}
}

var entryFieldMeta = map[EntryField]struct {
	key, label, lang string
	counterpart      EntryField
}{
	EntryName:                  {"name", "Name", api.LangNL, EntryNameEn},
	EntryNameEn:                {"nameEn", "Name", api.LangEN, EntryName},
	EntryDescription:           {"description", "Description", api.LangNL, EntryDescriptionEn},
	EntryDescriptionEn:         {"descriptionEn", "Description", api.LangEN, EntryDescription},
	EntryCategory:              {"category", "Category", "", EntryCategory},
	EntryCategoryDescription:   {"categoryDescription", "Category description", api.LangNL, EntryCategoryDescriptionEn},
	EntryCategoryDescriptionEn: {"categoryDescriptionEn", "Category description", api.LangEN, EntryCategoryDescription},
}

// Key returns the wire name of the field.
func (f EntryField) Key() string { return entryFieldMeta[f].key }

// Label returns a human-readable name without the language suffix.
func (f EntryField) Label() string { return entryFieldMeta[f].label }

// Lang returns the field's language code, or "" for language-neutral fields.
func (f EntryField) Lang() string { return entryFieldMeta[f].lang }

// Valid reports whether f names a known field.
func (f EntryField) Valid() bool {
	_, ok := entryFieldMeta[f]
	return ok
}

// Counterpart returns the same field in the other language. The second
// result is false for fields that are not bilingual.
func (f EntryField) Counterpart() (EntryField, bool) {
	m, ok := entryFieldMeta[f]
	if !ok || m.counterpart == f {
		return f, false
	}
	return m.counterpart, true
}

// Assessment is the complete in-memory draft.
type Assessment struct {
	Name          string  `yaml:"assessmentName" json:"assessmentName"`
	NameEn        string  `yaml:"assessmentNameEn" json:"assessmentNameEn"`
	Description   string  `yaml:"assessmentDescription" json:"assessmentDescription"`
	DescriptionEn string  `yaml:"assessmentDescriptionEn" json:"assessmentDescriptionEn"`
	Instruction   string  `yaml:"assessmentInstruction" json:"assessmentInstruction"`
	InstructionEn string  `yaml:"assessmentInstructionEn" json:"assessmentInstructionEn"`
	Entries       []Entry `yaml:"competences" json:"competences"`
}

// Get returns the value of f.
func (a *Assessment) Get(f Field) string {
	if p := a.field(f); p != nil {
		return *p
	}
	return ""
}

func (a *Assessment) field(f Field) *string {
	switch f {
	case FieldName:
		return &a.Name
	case FieldNameEn:
		return &a.NameEn
	case FieldDescription:
		return &a.Description
	case FieldDescriptionEn:
		return &a.DescriptionEn
	case FieldInstruction:
		return &a.Instruction
	case FieldInstructionEn:
		return &a.InstructionEn
	}
	return nil
}

// clone returns a deep copy.
func (a Assessment) clone() Assessment {
	out := a
	if a.Entries != nil {
		out.Entries = make([]Entry, len(a.Entries))
		copy(out.Entries, a.Entries)
	}
	return out
}

// Entry is one competence within a draft.
type Entry struct {
	ID                    EntryID `yaml:"-" json:"-"`
	Name                  string  `yaml:"name" json:"name"`
	NameEn                string  `yaml:"nameEn" json:"nameEn"`
	Description           string  `yaml:"description" json:"description"`
	DescriptionEn         string  `yaml:"descriptionEn" json:"descriptionEn"`
	Category              string  `yaml:"category" json:"category"`
	CategoryDescription   string  `yaml:"categoryDescription" json:"categoryDescription"`
	CategoryDescriptionEn string  `yaml:"categoryDescriptionEn" json:"categoryDescriptionEn"`

	// IsNew marks an entry added in this session and not yet built.
	IsNew bool `yaml:"-" json:"-"`
}

// Get returns the value of f.
func (e *Entry) Get(f EntryField) string {
	if p := e.field(f); p != nil {
		return *p
	}
	return ""
}

func (e *Entry) field(f EntryField) *string {
	switch f {
	case EntryName:
		return &e.Name
	case EntryNameEn:
		return &e.NameEn
	case EntryDescription:
		return &e.Description
	case EntryDescriptionEn:
		return &e.DescriptionEn
	case EntryCategory:
		return &e.Category
	case EntryCategoryDescription:
		return &e.CategoryDescription
	case EntryCategoryDescriptionEn:
		return &e.CategoryDescriptionEn
	}
	return nil
}
