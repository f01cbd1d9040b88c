package notify

import (
	"context"
	"sync"

	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/logger"
)

// Notification is a short user-facing message ("toast").
type Notification struct {
	Level   enums.NotificationLevel `json:"level"`
	Code    pkgerrors.Code          `json:"code,omitempty"`
	Message string                  `json:"message"`
}

// Sink receives notifications. Implementations must not block the caller for long.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

func Success(message string) Notification {
	return Notification{Level: enums.NotificationLevelSuccess, Message: message}
}

func Info(message string) Notification {
	return Notification{Level: enums.NotificationLevelInfo, Message: message}
}

func Failure(code pkgerrors.Code, message string) Notification {
	return Notification{Level: enums.NotificationLevelError, Code: code, Message: message}
}

// OrNop returns sink, or a Nop sink when sink is nil.
func OrNop(sink Sink) Sink {
	if sink == nil {
		return Nop{}
	}
	return sink
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) {}

// Recorder keeps notifications in arrival order.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Messages returns the recorded message texts.
func (r *Recorder) Messages() []string {
	all := r.All()
	out := make([]string, 0, len(all))
	for _, n := range all {
		out = append(out, n.Message)
	}
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Drain returns and forgets everything recorded so far.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.items
	r.items = nil
	return out
}

// LogSink writes notifications to the structured logger.
type LogSink struct {
	logg *logger.Logger
}

func NewLogSink(logg *logger.Logger) *LogSink {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogSink{logg: logg}
}

func (s *LogSink) Notify(ctx context.Context, n Notification) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"notification_level": n.Level.String(),
		"notification_code":  string(n.Code),
	})
	if n.Level == enums.NotificationLevelError {
		s.logg.Warn(ctx, n.Message)
		return
	}
	s.logg.Debug(ctx, n.Message)
}

// Multi fans a notification out to every sink in order.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(ctx, n)
		}
	}
}
