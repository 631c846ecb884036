package prompts

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestSnapshotCloneKeepsUncarriedTags(t *testing.T) {
	var snapshot StateSnapshot
	if err := json.Unmarshal([]byte(`{"title":"Only title"}`), &snapshot); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}

	clone := snapshot.Clone()
	if clone.TagIDs != nil {
		t.Fatalf("expected tags to stay uncarried, got %#v", clone.TagIDs)
	}

	document := NewDocument()
	document.TagIDs = []string{"t1", "t2"}
	next, digest := document.Apply(clone)
	if !slices.Equal(next.TagIDs, []string{"t1", "t2"}) {
		t.Fatalf("expected tags to be left untouched, got %v", next.TagIDs)
	}
	if !slices.Equal(digest.Changed, []Field{FieldTitle}) || digest.Carried != 1 {
		t.Fatalf("expected a title-only digest, got %#v", digest)
	}
}

func TestSnapshotCloneKeepsEmptyTags(t *testing.T) {
	snapshot := StateSnapshot{TagIDs: []string{}}

	clone := snapshot.Clone()
	if clone.TagIDs == nil || len(clone.TagIDs) != 0 {
		t.Fatalf("expected empty tags to stay carried, got %#v", clone.TagIDs)
	}

	document := NewDocument()
	document.TagIDs = []string{"t1"}
	next, digest := document.Apply(clone)
	if len(next.TagIDs) != 0 || !slices.Equal(digest.Changed, []Field{FieldTags}) {
		t.Fatalf("expected tags to be cleared, got %v %#v", next.TagIDs, digest)
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	title := "Title"
	snapshot := StateSnapshot{Title: &title, TagIDs: []string{"t1"}}

	clone := snapshot.Clone()
	*clone.Title = "Changed"
	clone.TagIDs[0] = "t2"

	if title != "Title" || snapshot.TagIDs[0] != "t1" {
		t.Fatalf("expected original snapshot to be untouched, got %q %v", title, snapshot.TagIDs)
	}
}

func TestApplyDoesNotModifyReceiver(t *testing.T) {
	document := NewDocument()
	document.TagIDs = []string{"t1"}
	title := "New"

	next, digest := document.Apply(StateSnapshot{Title: &title, TagIDs: []string{"t1"}})
	next.TagIDs[0] = "changed"

	if document.Title != "" || document.TagIDs[0] != "t1" {
		t.Fatalf("expected receiver to be untouched, got %#v", document)
	}
	if digest.Carried != 2 || !slices.Equal(digest.Changed, []Field{FieldTitle}) {
		t.Fatalf("expected two carried fields and one change, got %#v", digest)
	}
}

func TestDocumentSnapshotCarriesEveryField(t *testing.T) {
	document := Document{
		Title:              "T",
		Type:               PromptTypeStructured,
		StructuredFormat:   StructuredFormatJSON,
		CategoryID:         "c1",
		RequiredMediaType:  MediaTypeImage,
		RequiredMediaCount: 2,
	}

	snapshot := document.Snapshot()
	if snapshot.Title == nil || snapshot.Description == nil || snapshot.Content == nil ||
		snapshot.Type == nil || snapshot.StructuredFormat == nil || snapshot.CategoryID == nil ||
		snapshot.IsPrivate == nil || snapshot.RequiresMediaUpload == nil ||
		snapshot.RequiredMediaType == nil || snapshot.RequiredMediaCount == nil {
		t.Fatalf("expected every field to be carried, got %#v", snapshot)
	}
	if snapshot.TagIDs == nil {
		t.Fatalf("expected tags to be carried as an empty list")
	}

	next, digest := document.Apply(snapshot)
	if digest.ChangedCount() != 0 || !slices.Equal(next.TagIDs, []string{}) {
		t.Fatalf("expected a round trip without changes, got %#v", digest)
	}
}

func TestDocumentSnapshotLeavesOutEmptyOptionals(t *testing.T) {
	snapshot := Document{}.Snapshot()

	if snapshot.StructuredFormat != nil || snapshot.CategoryID != nil ||
		snapshot.RequiredMediaType != nil || snapshot.RequiredMediaCount != nil {
		t.Fatalf("expected empty optional fields to be left out, got %#v", snapshot)
	}
	if snapshot.Type == nil || *snapshot.Type != PromptTypeText {
		t.Fatalf("expected missing type to default to TEXT, got %v", snapshot.Type)
	}
}

func TestIsEmpty(t *testing.T) {
	if !(StateSnapshot{}).IsEmpty() {
		t.Fatalf("expected zero snapshot to be empty")
	}
	if (StateSnapshot{TagIDs: []string{}}).IsEmpty() {
		t.Fatalf("expected a snapshot clearing tags not to be empty")
	}
}
