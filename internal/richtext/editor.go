package richtext

import (
	"context"
	"errors"
	"sync"
)

// ErrEditorNotReady is returned by any editor call made before Init completed.
var ErrEditorNotReady = errors.New("rich-text editor is not initialized")

// Editor is the boundary to a component that edits entry bodies as HTML.
type Editor interface {
	Init(ctx context.Context, containerID string) error
	HTML(ctx context.Context) (string, error)
	PlainText(ctx context.Context) (string, error)
	SetHTML(ctx context.Context, markup string) error
	Clear(ctx context.Context) error
}

// Buffer is an in-memory Editor. The bot uses one per conversation to collect the entry body.
type Buffer struct {
	mu        sync.Mutex
	ready     bool
	container string
	markup    string
}

var _ Editor = (*Buffer)(nil)

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Init(_ context.Context, containerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.container = containerID
	b.ready = true
	return nil
}

func (b *Buffer) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ready
}

func (b *Buffer) HTML(_ context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return "", ErrEditorNotReady
	}
	return b.markup, nil
}

func (b *Buffer) PlainText(ctx context.Context) (string, error) {
	markup, err := b.HTML(ctx)
	if err != nil {
		return "", err
	}
	return PlainText(markup), nil
}

// SetHTML replaces the content with the sanitized markup.
func (b *Buffer) SetHTML(_ context.Context, markup string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return ErrEditorNotReady
	}
	b.markup = Sanitize(markup)
	return nil
}

// AppendText adds typed text as new paragraphs.
func (b *Buffer) AppendText(_ context.Context, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return ErrEditorNotReady
	}
	b.markup += FromPlainText(text)
	return nil
}

func (b *Buffer) Clear(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ready {
		return ErrEditorNotReady
	}
	b.markup = ""
	return nil
}
