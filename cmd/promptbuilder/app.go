package main

import (
	"log/slog"

	authoring "github.com/koscakluka/promptbuilder/core"
	"github.com/koscakluka/promptbuilder/core/backend"
	"github.com/koscakluka/promptbuilder/core/framing"
	"github.com/koscakluka/promptbuilder/core/prompts"
	"github.com/koscakluka/promptbuilder/internal/config"
	"github.com/koscakluka/promptbuilder/internal/document"
	"github.com/pkg/errors"
)

// app holds what every command needs to run a session: the backend, the
// document form and the reference data.
type app struct {
	config    *config.Config
	backend   backend.Backend
	form      *document.FileForm
	reference prompts.ReferenceData
}

func newApp(cfg *config.Config) (*app, error) {
	form, err := document.OpenFileForm(cfg.Document.Path,
		document.WithSaveCallback(func(_ prompts.Document, _ prompts.Digest, err error) {
			if err != nil {
				slog.Error("failed to save document", "path", cfg.Document.Path, "error", err)
			}
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "open document")
	}

	reference, err := document.LoadReferenceData(cfg.Document.ReferencePath)
	if err != nil {
		return nil, errors.Wrap(err, "load reference data")
	}

	return &app{
		config:    cfg,
		backend:   newBackend(cfg.Backend),
		form:      form,
		reference: reference,
	}, nil
}

func newBackend(cfg config.BackendConfig) backend.Backend {
	if cfg.Transport == config.TransportWebSocket {
		opts := []backend.WebSocketOption{backend.WithWebSocketHeaders(cfg.Headers)}
		if cfg.Timeout > 0 {
			opts = append(opts, backend.WithHandshakeTimeout(cfg.Timeout))
		}
		return backend.NewWebSocketClient(cfg.URL, opts...)
	}
	return backend.NewHTTPClient(cfg.URL,
		backend.WithHeaders(cfg.Headers),
		backend.WithTimeout(cfg.Timeout),
	)
}

// sessionOptions are the options shared by every front end, extra options
// are appended after them.
func (a *app) sessionOptions(extra ...authoring.SessionOption) []authoring.SessionOption {
	opts := []authoring.SessionOption{
		authoring.WithForm(a.form),
		authoring.WithReferenceData(a.reference),
		authoring.WithFailureMessage(a.config.Session.FailureMessage),
		authoring.WithFramingConfig(framing.Config{
			Marker:   a.config.Framing.Marker,
			Sentinel: a.config.Framing.Sentinel,
		}),
		authoring.WithSkippedFrameCallback(func(line []byte, err error) {
			slog.Debug("skipped malformed frame", "line", string(line), "error", err)
		}),
	}
	return append(opts, extra...)
}
