package authoring

import (
	"slices"
	"sync"

	"github.com/koscakluka/promptbuilder/core/prompts"
)

// Form is the host-owned document under construction. A session applies at
// most one snapshot per request to it, and only after the request finished
// with a done event.
type Form interface {
	ApplySnapshot(snapshot prompts.StateSnapshot) prompts.Digest
}

// FormFunc adapts a function to the Form interface.
type FormFunc func(snapshot prompts.StateSnapshot) prompts.Digest

func (f FormFunc) ApplySnapshot(snapshot prompts.StateSnapshot) prompts.Digest {
	return f(snapshot)
}

// StateProvider supplies the current document state sent with each request.
type StateProvider interface {
	Snapshot() prompts.StateSnapshot
}

type DocumentFormOption func(*DocumentForm)

// WithChangeCallback is called after every applied snapshot, outside the
// form's lock.
func WithChangeCallback(callback func(document prompts.Document, digest prompts.Digest)) DocumentFormOption {
	return func(f *DocumentForm) { f.onChange = callback }
}

// DocumentForm is an in-memory Form holding a prompts.Document.
type DocumentForm struct {
	mu       sync.RWMutex
	document prompts.Document
	onChange func(prompts.Document, prompts.Digest)
}

func NewDocumentForm(document prompts.Document, opts ...DocumentFormOption) *DocumentForm {
	form := &DocumentForm{document: cloneDocument(document)}
	for _, opt := range opts {
		opt(form)
	}
	return form
}

func (f *DocumentForm) ApplySnapshot(snapshot prompts.StateSnapshot) prompts.Digest {
	f.mu.Lock()
	next, digest := f.document.Apply(snapshot)
	f.document = next
	onChange := f.onChange
	f.mu.Unlock()

	if onChange != nil {
		onChange(cloneDocument(next), digest)
	}
	return digest
}

func (f *DocumentForm) Document() prompts.Document {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return cloneDocument(f.document)
}

func (f *DocumentForm) Snapshot() prompts.StateSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.document.Snapshot()
}

// Replace sets the document wholesale, e.g. after the host edited it.
func (f *DocumentForm) Replace(document prompts.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.document = cloneDocument(document)
}

func cloneDocument(document prompts.Document) prompts.Document {
	document.TagIDs = slices.Clone(document.TagIDs)
	return document
}
