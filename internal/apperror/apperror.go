// Package apperror is the application-wide error reporting bus. Services
// report typed errors here instead of returning them to the UI; subscribers
// (toast display, logging) receive every report.
package apperror

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Type classifies a reported error.
type Type string

const (
	TypeStorage    Type = "storage"
	TypeNetwork    Type = "network"
	TypeValidation Type = "validation"
	TypeUnknown    Type = "unknown"
)

// Common user-facing messages. The app ships in Spanish.
const (
	MsgStorageFull     = "El almacenamiento está lleno. No se pudo guardar."
	MsgStorageError    = "Error al acceder al almacenamiento local."
	MsgParseError      = "Error al procesar los datos."
	MsgNotFound        = "El elemento solicitado no existe."
	MsgValidationError = "Los datos proporcionados no son válidos."
	MsgUnknownError    = "Ocurrió un error inesperado."
)

// AppError is the shape delivered to every registered handler.
type AppError struct {
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler receives reported errors.
type Handler func(AppError)

// Reporter is the narrow interface services depend on.
type Reporter interface {
	Report(t Type, message, details string)
}

// Bus fans reported errors out to registered handlers. Fan-out is
// synchronous and best-effort: a handler that panics is recovered and
// logged so it cannot block other handlers or the caller.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler

	logger *zap.Logger
}

// NewBus creates a bus that also logs every report through logger.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[int]Handler),
		logger:   logger,
	}
}

// RegisterHandler adds a handler and returns its unsubscribe function.
func (b *Bus) RegisterHandler(h Handler) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = h
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Report builds an AppError stamped with the current time and delivers it
// to every registered handler.
func (b *Bus) Report(t Type, message, details string) {
	b.ReportError(AppError{
		Type:      t,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	})
}

// ReportError delivers a fully-formed error to every registered handler.
func (b *Bus) ReportError(err AppError) {
	b.logger.Warn("application error",
		zap.String("type", string(err.Type)),
		zap.String("message", err.Message),
		zap.String("details", err.Details),
	)

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, err)
	}
}

func (b *Bus) dispatch(h Handler, err AppError) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("error handler panicked", zap.Any("panic", r))
		}
	}()
	h(err)
}
