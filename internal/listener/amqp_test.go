package listener

import (
	"strings"
	"testing"
	"time"

	"github.com/resplan/resplan-backend/internal/model"
)

func TestDecodeMessage(t *testing.T) {
	body := []byte(`{
		"principal": "room-a@example.com",
		"event": {
			"unique_id": "ev-1",
			"kind": "single",
			"subject": "Standup",
			"body": "daily",
			"start": "2020-03-10T10:00:00Z",
			"end": "2020-03-10T10:30:00Z",
			"location": "Room A",
			"organizer": "organizer@example.com",
			"attendees": ["a@example.com", "b@example.com"],
			"reservation_id": 42
		}
	}`)

	m, err := decodeMessage(body)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	if m.Principal != "room-a@example.com" {
		t.Fatalf("principal = %q", m.Principal)
	}
	e := m.Event
	if e.UniqueID != "ev-1" || e.Kind != model.AppointmentSingle {
		t.Fatalf("unexpected event identity: %+v", e)
	}
	if e.Subject != "Standup" || e.Location != "Room A" || e.ReservationID != 42 {
		t.Fatalf("unexpected event fields: %+v", e)
	}
	if len(e.Attendees) != 2 {
		t.Fatalf("attendees = %v", e.Attendees)
	}
	want := time.Date(2020, 3, 10, 10, 0, 0, 0, time.UTC)
	if !e.Start.Equal(want) {
		t.Fatalf("start = %v, want %v", e.Start, want)
	}
}

func TestDecodeMessageDefaultsOriginalStart(t *testing.T) {
	body := []byte(`{
		"principal": "room-a@example.com",
		"event": {
			"unique_id": "ev-2",
			"kind": "occurrence",
			"master_unique_id": "ev-master",
			"start": "2020-03-11T10:00:00Z",
			"end": "2020-03-11T10:30:00Z"
		}
	}`)

	m, err := decodeMessage(body)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	if !m.Event.OriginalStart.Equal(m.Event.Start) {
		t.Fatalf("original start = %v, want start %v", m.Event.OriginalStart, m.Event.Start)
	}
}

func TestDecodeMessageKeepsExplicitOriginalStart(t *testing.T) {
	body := []byte(`{
		"principal": "room-a@example.com",
		"event": {
			"unique_id": "ev-3",
			"kind": "exception",
			"master_unique_id": "ev-master",
			"start": "2020-03-11T12:00:00Z",
			"end": "2020-03-11T12:30:00Z",
			"original_start": "2020-03-11T10:00:00Z"
		}
	}`)

	m, err := decodeMessage(body)
	if err != nil {
		t.Fatalf("decodeMessage: %v", err)
	}
	want := time.Date(2020, 3, 11, 10, 0, 0, 0, time.UTC)
	if !m.Event.OriginalStart.Equal(want) {
		t.Fatalf("original start = %v, want %v", m.Event.OriginalStart, want)
	}
}

func TestDecodeMessageRejectsUnknownKind(t *testing.T) {
	body := []byte(`{"principal": "p", "event": {"unique_id": "x", "kind": "banquet"}}`)

	_, err := decodeMessage(body)
	if err == nil || !strings.Contains(err.Error(), "unknown appointment kind") {
		t.Fatalf("err = %v, want unknown kind error", err)
	}
}

func TestDecodeMessageRejectsMalformedJSON(t *testing.T) {
	if _, err := decodeMessage([]byte(`{`)); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
