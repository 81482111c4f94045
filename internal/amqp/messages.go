package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"bankdash/internal/upload"

	"github.com/google/uuid"
)

// StatementUploaded announces an accepted statement upload. It carries only
// metadata; the file content is never forwarded.
type StatementUploaded struct {
	UploadID    uuid.UUID `json:"upload_id"`
	Filename    string    `json:"filename"`
	SizeBytes   int64     `json:"size_bytes"`
	ReceivedAt  time.Time `json:"received_at"`
	PublishedAt time.Time `json:"published_at"`
}

var errMissingUploadID = errors.New("message has no upload_id")

// NewStatementUploaded builds the message for an upload event.
func NewStatementUploaded(ev upload.Event) *StatementUploaded {
	return &StatementUploaded{
		UploadID:    ev.ID,
		Filename:    ev.Filename,
		SizeBytes:   ev.SizeBytes,
		ReceivedAt:  ev.ReceivedAt,
		PublishedAt: time.Now().UTC(),
	}
}

// Event converts the message back into the upload event it describes.
func (m *StatementUploaded) Event() upload.Event {
	return upload.Event{
		ID:         m.UploadID,
		Filename:   m.Filename,
		SizeBytes:  m.SizeBytes,
		ReceivedAt: m.ReceivedAt,
	}
}

// ToJSON converts the message to JSON bytes
func (m *StatementUploaded) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StatementUploadedFromJSON decodes a message and rejects one without an ID.
func StatementUploadedFromJSON(data []byte) (*StatementUploaded, error) {
	var msg StatementUploaded
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UploadID == uuid.Nil {
		return nil, errMissingUploadID
	}
	return &msg, nil
}
