// Package document persists the prompt under construction and the
// reference data sent with every request as YAML files.
package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	authoring "github.com/koscakluka/promptbuilder/core"
	"github.com/koscakluka/promptbuilder/core/prompts"
	"gopkg.in/yaml.v3"
)

// FileForm is a form whose document is written back to a YAML file every
// time a snapshot is applied.
type FileForm struct {
	*authoring.DocumentForm
	path string

	mu      sync.Mutex
	saveErr error
	onSave  func(prompts.Document, prompts.Digest, error)
}

type FileFormOption func(*FileForm)

// WithSaveCallback is called after every save triggered by an applied
// snapshot, with the save error if there was one.
func WithSaveCallback(callback func(document prompts.Document, digest prompts.Digest, err error)) FileFormOption {
	return func(f *FileForm) { f.onSave = callback }
}

// OpenFileForm loads the document at path. A missing file starts a new
// document, which is only created on the first save.
func OpenFileForm(path string, opts ...FileFormOption) (*FileForm, error) {
	document, err := Load(path)
	if err != nil {
		return nil, err
	}

	form := &FileForm{path: path}
	for _, opt := range opts {
		opt(form)
	}
	form.DocumentForm = authoring.NewDocumentForm(document, authoring.WithChangeCallback(form.persist))
	return form, nil
}

func (f *FileForm) Path() string {
	return f.path
}

// Save writes the current document.
func (f *FileForm) Save() error {
	return Save(f.path, f.Document())
}

// Err returns the error of the most recent save triggered by a snapshot.
func (f *FileForm) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.saveErr
}

func (f *FileForm) persist(document prompts.Document, digest prompts.Digest) {
	err := Save(f.path, document)

	f.mu.Lock()
	f.saveErr = err
	onSave := f.onSave
	f.mu.Unlock()

	if onSave != nil {
		onSave(document, digest, err)
	}
}

// Load reads a document. A missing file yields a new, empty document.
func Load(path string) (prompts.Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return prompts.NewDocument(), nil
	} else if err != nil {
		return prompts.Document{}, fmt.Errorf("failed to read document: %w", err)
	}

	document := prompts.NewDocument()
	if err := yaml.Unmarshal(data, &document); err != nil {
		return prompts.Document{}, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	if document.TagIDs == nil {
		document.TagIDs = []string{}
	}
	return document, nil
}

// Save writes a document through a temporary file so a crash never leaves
// a truncated document behind.
func Save(path string, document prompts.Document) error {
	data, err := yaml.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary document: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}

// LoadReferenceData reads the tags and categories file. An empty path
// yields empty reference data.
func LoadReferenceData(path string) (prompts.ReferenceData, error) {
	reference := prompts.ReferenceData{Tags: []prompts.Tag{}, Categories: []prompts.Category{}}
	if path == "" {
		return reference, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return reference, fmt.Errorf("failed to read reference data: %w", err)
	}
	if err := yaml.Unmarshal(data, &reference); err != nil {
		return reference, fmt.Errorf("failed to unmarshal reference data: %w", err)
	}
	return reference, nil
}
