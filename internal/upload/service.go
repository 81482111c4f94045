package upload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bankdash/internal/log"

	"github.com/google/uuid"
)

// SuccessMessage is returned for every accepted upload.
const SuccessMessage = "File uploaded successfully"

// DefaultDelay mimics the latency of a real upload endpoint.
const DefaultDelay = 1500 * time.Millisecond

// Statement describes an uploaded file.
type Statement struct {
	Filename    string
	Size        int64
	ContentType string
}

// Event is emitted once per accepted upload.
type Event struct {
	ID         uuid.UUID `json:"upload_id"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	ReceivedAt time.Time `json:"received_at"`
}

// Receipt is the caller-facing result of an accepted upload.
type Receipt struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Message  string    `json:"message"`
}

// Notifier publishes accepted uploads, e.g. to a message broker.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Recorder keeps an audit trail of accepted uploads.
type Recorder interface {
	RecordUpload(ctx context.Context, ev Event) error
}

// Service validates uploads and fans accepted ones out to the optional
// notifier and recorder.
type Service struct {
	validator Validator
	delay     time.Duration
	notifier  Notifier
	recorder  Recorder
	logger    *log.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithDelay(d time.Duration) Option { return func(s *Service) { s.delay = d } }
func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }
func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }
func WithLogger(l *log.Logger) Option { return func(s *Service) { s.logger = l } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(v Validator, opts ...Option) *Service {
	s := &Service{
		validator: v,
		delay:     DefaultDelay,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = log.Discard()
	}
	s.logger = s.logger.WithComponent(log.ComponentUpload)
	return s
}

// Validator exposes the configured extension check.
func (s *Service) Validator() Validator { return s.validator }

// Upload waits out the simulated latency, then accepts or rejects the file
// by name. Notification and audit failures are logged and do not fail the
// upload.
func (s *Service) Upload(ctx context.Context, st Statement) (Receipt, error) {
	if err := sleep(ctx, s.delay); err != nil {
		return Receipt{}, fmt.Errorf("upload %s: %w", st.Filename, err)
	}
	name := CleanFilename(st.Filename)
	if err := s.validator.Validate(st.Filename); err != nil {
		s.logger.WarnContext(ctx, "Statement upload rejected",
			log.NewFields().WithUpload("", name, st.Size).WithError(err).ToSlice()...)
		return Receipt{}, err
	}

	ev := Event{
		ID:         uuid.New(),
		Filename:   name,
		SizeBytes:  st.Size,
		ReceivedAt: s.now().UTC(),
	}
	if s.recorder != nil {
		if err := s.recorder.RecordUpload(ctx, ev); err != nil {
			s.logger.ErrorContext(ctx, "Failed to record upload",
				log.NewFields().WithUpload(ev.ID.String(), ev.Filename, ev.SizeBytes).WithError(err).ToSlice()...)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, ev); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish upload event",
				log.NewFields().WithUpload(ev.ID.String(), ev.Filename, ev.SizeBytes).WithError(err).ToSlice()...)
		}
	}

	log.NewStructuredLogger(s.logger).LogUploadAccepted(ctx, ev.ID.String(), ev.Filename, ev.SizeBytes)
	return Receipt{ID: ev.ID, Filename: ev.Filename, Message: SuccessMessage}, nil
}

// CleanFilename drops control characters other than tab, newline and
// carriage return and trims surrounding whitespace. Validation always sees
// the name as received; the cleaned form is what gets logged and recorded.
func CleanFilename(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
