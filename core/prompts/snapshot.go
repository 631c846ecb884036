package prompts

import (
	"slices"

	"github.com/jinzhu/copier"
)

type PromptType string

const (
	PromptTypeText       PromptType = "TEXT"
	PromptTypeImage      PromptType = "IMAGE"
	PromptTypeVideo      PromptType = "VIDEO"
	PromptTypeAudio      PromptType = "AUDIO"
	PromptTypeStructured PromptType = "STRUCTURED"
)

type StructuredFormat string

const (
	StructuredFormatJSON StructuredFormat = "JSON"
	StructuredFormatYAML StructuredFormat = "YAML"
)

type MediaType string

const (
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeDocument MediaType = "DOCUMENT"
)

// StateSnapshot is the value of the document under construction as the
// backend believes it to be after all tool calls of a request.
//
// Every field is optional. A nil field is not carried by the snapshot and
// leaves the corresponding document field untouched when applied. TagIDs
// follows the same rule: nil is "not carried", an empty slice clears the
// tags.
type StateSnapshot struct {
	Title               *string           `json:"title,omitempty"`
	Description         *string           `json:"description,omitempty"`
	Content             *string           `json:"content,omitempty"`
	Type                *PromptType       `json:"type,omitempty"`
	StructuredFormat    *StructuredFormat `json:"structuredFormat,omitempty"`
	CategoryID          *string           `json:"categoryId,omitempty"`
	TagIDs              []string          `json:"tagIds"`
	IsPrivate           *bool             `json:"isPrivate,omitempty"`
	RequiresMediaUpload *bool             `json:"requiresMediaUpload,omitempty"`
	RequiredMediaType   *MediaType        `json:"requiredMediaType,omitempty"`
	RequiredMediaCount  *int              `json:"requiredMediaCount,omitempty"`
}

// Clone returns a deep copy that carries exactly the fields s carries. A nil
// TagIDs stays nil.
func (s StateSnapshot) Clone() StateSnapshot {
	var clone StateSnapshot
	if err := copier.CopyWithOption(&clone, &s, copier.Option{DeepCopy: true}); err != nil {
		return s
	}
	if s.TagIDs == nil {
		clone.TagIDs = nil
	}
	return clone
}

// IsEmpty reports whether the snapshot carries no fields at all.
func (s StateSnapshot) IsEmpty() bool {
	return s.Title == nil && s.Description == nil && s.Content == nil &&
		s.Type == nil && s.StructuredFormat == nil && s.CategoryID == nil &&
		s.TagIDs == nil && s.IsPrivate == nil && s.RequiresMediaUpload == nil &&
		s.RequiredMediaType == nil && s.RequiredMediaCount == nil
}

// Document is the prompt record being authored. It is owned by the host
// application; the conversation only ever replaces it wholesale with the
// result of [Document.Apply].
type Document struct {
	Title               string           `json:"title" yaml:"title"`
	Description         string           `json:"description" yaml:"description"`
	Content             string           `json:"content" yaml:"content"`
	Type                PromptType       `json:"type" yaml:"type"`
	StructuredFormat    StructuredFormat `json:"structuredFormat,omitempty" yaml:"structuredFormat,omitempty"`
	CategoryID          string           `json:"categoryId,omitempty" yaml:"categoryId,omitempty"`
	TagIDs              []string         `json:"tagIds" yaml:"tagIds"`
	IsPrivate           bool             `json:"isPrivate" yaml:"isPrivate"`
	RequiresMediaUpload bool             `json:"requiresMediaUpload" yaml:"requiresMediaUpload"`
	RequiredMediaType   MediaType        `json:"requiredMediaType,omitempty" yaml:"requiredMediaType,omitempty"`
	RequiredMediaCount  int              `json:"requiredMediaCount,omitempty" yaml:"requiredMediaCount,omitempty"`
}

func NewDocument() Document {
	return Document{Type: PromptTypeText, TagIDs: []string{}}
}

// Snapshot returns a snapshot carrying every field of the document. Empty
// optional fields (structured format, category, media type and count) are
// left out, the way the backend expects them.
func (d Document) Snapshot() StateSnapshot {
	snapshot := StateSnapshot{
		Title:               ptr(d.Title),
		Description:         ptr(d.Description),
		Content:             ptr(d.Content),
		Type:                ptr(d.Type),
		TagIDs:              slices.Clone(d.TagIDs),
		IsPrivate:           ptr(d.IsPrivate),
		RequiresMediaUpload: ptr(d.RequiresMediaUpload),
	}
	if snapshot.TagIDs == nil {
		snapshot.TagIDs = []string{}
	}
	if d.Type == "" {
		snapshot.Type = ptr(PromptTypeText)
	}
	if d.StructuredFormat != "" {
		snapshot.StructuredFormat = ptr(d.StructuredFormat)
	}
	if d.CategoryID != "" {
		snapshot.CategoryID = ptr(d.CategoryID)
	}
	if d.RequiredMediaType != "" {
		snapshot.RequiredMediaType = ptr(d.RequiredMediaType)
	}
	if d.RequiredMediaCount != 0 {
		snapshot.RequiredMediaCount = ptr(d.RequiredMediaCount)
	}
	return snapshot
}

// Apply overwrites every field the snapshot carries and returns the new
// document together with a digest of what changed. The receiver is not
// modified and no validation is performed.
func (d Document) Apply(snapshot StateSnapshot) (Document, Digest) {
	next := d
	next.TagIDs = slices.Clone(d.TagIDs)
	digest := Digest{}

	if snapshot.Title != nil {
		digest.track(FieldTitle, next.Title != *snapshot.Title)
		next.Title = *snapshot.Title
	}
	if snapshot.Description != nil {
		digest.track(FieldDescription, next.Description != *snapshot.Description)
		next.Description = *snapshot.Description
	}
	if snapshot.Content != nil {
		digest.track(FieldContent, next.Content != *snapshot.Content)
		next.Content = *snapshot.Content
	}
	if snapshot.Type != nil {
		digest.track(FieldType, next.Type != *snapshot.Type)
		next.Type = *snapshot.Type
	}
	if snapshot.StructuredFormat != nil {
		digest.track(FieldStructuredFormat, next.StructuredFormat != *snapshot.StructuredFormat)
		next.StructuredFormat = *snapshot.StructuredFormat
	}
	if snapshot.CategoryID != nil {
		digest.track(FieldCategory, next.CategoryID != *snapshot.CategoryID)
		next.CategoryID = *snapshot.CategoryID
	}
	if snapshot.TagIDs != nil {
		digest.track(FieldTags, !slices.Equal(next.TagIDs, snapshot.TagIDs))
		next.TagIDs = slices.Clone(snapshot.TagIDs)
	}
	if snapshot.IsPrivate != nil {
		digest.track(FieldPrivacy, next.IsPrivate != *snapshot.IsPrivate)
		next.IsPrivate = *snapshot.IsPrivate
	}
	if snapshot.RequiresMediaUpload != nil {
		digest.track(FieldRequiresMediaUpload, next.RequiresMediaUpload != *snapshot.RequiresMediaUpload)
		next.RequiresMediaUpload = *snapshot.RequiresMediaUpload
	}
	if snapshot.RequiredMediaType != nil {
		digest.track(FieldRequiredMediaType, next.RequiredMediaType != *snapshot.RequiredMediaType)
		next.RequiredMediaType = *snapshot.RequiredMediaType
	}
	if snapshot.RequiredMediaCount != nil {
		digest.track(FieldRequiredMediaCount, next.RequiredMediaCount != *snapshot.RequiredMediaCount)
		next.RequiredMediaCount = *snapshot.RequiredMediaCount
	}

	return next, digest
}

type Field string

const (
	FieldTitle               Field = "title"
	FieldDescription         Field = "description"
	FieldContent             Field = "content"
	FieldType                Field = "type"
	FieldStructuredFormat    Field = "structuredFormat"
	FieldCategory            Field = "categoryId"
	FieldTags                Field = "tagIds"
	FieldPrivacy             Field = "isPrivate"
	FieldRequiresMediaUpload Field = "requiresMediaUpload"
	FieldRequiredMediaType   Field = "requiredMediaType"
	FieldRequiredMediaCount  Field = "requiredMediaCount"
)

// Digest is a compact summary of an applied snapshot: how many fields were
// carried and which of them actually changed value.
type Digest struct {
	Carried int
	Changed []Field
}

func (d *Digest) track(field Field, changed bool) {
	d.Carried++
	if changed {
		d.Changed = append(d.Changed, field)
	}
}

// ChangedCount is the number of fields whose value changed.
func (d Digest) ChangedCount() int {
	return len(d.Changed)
}

func ptr[T any](v T) *T {
	return &v
}
