package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cuotas/internal/core"
)

// Reasons attached to export messages.
const (
	ReasonLedgerChange = "ledger_change"
	ReasonManual       = "manual"
	ReasonScheduled    = "scheduled"
)

// ReportExportMessage asks the worker to rebuild one course's reports. It
// carries no report data; the worker reads a fresh snapshot.
type ReportExportMessage struct {
	ID        uuid.UUID     `json:"id"`
	CourseID  core.CourseID `json:"course_id"`
	Reason    string        `json:"reason"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewReportExportMessage(course core.CourseID, reason string) *ReportExportMessage {
	return &ReportExportMessage{
		ID:        uuid.New(),
		CourseID:  course,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ReportExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportExportMessageFromJSON decodes and validates a message body.
func ReportExportMessageFromJSON(data []byte) (*ReportExportMessage, error) {
	var msg ReportExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.CourseID.Validate(); err != nil {
		return nil, fmt.Errorf("message %s: %w", msg.ID, err)
	}
	return &msg, nil
}
