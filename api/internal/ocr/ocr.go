// Package ocr defines the handwriting-recognition boundary: an Engine turns
// a photo of a worked solution into plain text for step segmentation.
package ocr

import (
	"context"
	"sync"
)

// Result is the recognized text plus the engine's own confidence, 0 when the
// engine does not report one.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Options tunes a single Recognize call.
type Options struct {
	Model string   // engine-specific model override
	Langs []string // recognition language hints, e.g. ["ru","en"]
}

type Engine interface {
	Name() string
	GetModel() string
	Recognize(ctx context.Context, image []byte, opt Options) (Result, error)
}

// Manager holds the per-chat engine choice.
type Manager struct {
	def Engine
	m   sync.Map // chatID -> Engine
}

func NewManager(defaultEngine Engine) *Manager {
	return &Manager{def: defaultEngine}
}

func (m *Manager) Get(chatID int64) Engine {
	if v, ok := m.m.Load(chatID); ok {
		return v.(Engine)
	}
	return m.def
}

func (m *Manager) Set(chatID int64, e Engine) {
	m.m.Store(chatID, e)
}
