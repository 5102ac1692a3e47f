package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
)

func sampleEvent() ReservationEvent {
	r := model.Reservation{
		ID:                  "r1",
		GuestName:           "Alice",
		GuestEmail:          "alice@example.com",
		GuestPhone:          "100861",
		ExpectedArrivalTime: "2030-06-02 20:00",
		MealPeriod:          model.Dinner,
		TableSize:           2,
		Status:              model.StatusApproved,
		UpdatedAt:           time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC),
	}
	return NewReservationEvent(EventStatusChanged, r, model.StatusRequested, "7", model.RoleEmployee)
}

func TestNewReservationEvent(t *testing.T) {
	ev := sampleEvent()
	if ev.EventID == "" {
		t.Error("missing event id")
	}
	if ev.ReservationID != "r1" || ev.Status != "Approved" || ev.PreviousStatus != "Requested" {
		t.Errorf("event = %+v", ev)
	}
	if other := sampleEvent(); other.EventID == ev.EventID {
		t.Error("event ids are not unique")
	}
}

func TestLogLine(t *testing.T) {
	line := sampleEvent().LogLine()
	for _, want := range []string{
		"[2030-06-01T09:00:00Z] reservation.status_changed",
		"reservation_id=r1",
		"status=Requested->Approved",
		"by=employee:7",
		`arrival="2030-06-02 20:00"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("line not newline terminated")
	}
}

func TestHandleMessageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reservations.log")
	body, _ := json.Marshal(sampleEvent())
	for i := 0; i < 2; i++ {
		if err := HandleMessage(body, path); err != nil {
			t.Fatalf("HandleMessage: %v", err)
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(b), "\n"); n != 2 {
		t.Errorf("got %d lines, want 2", n)
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.log")
	if err := HandleMessage([]byte("{"), path); err == nil {
		t.Error("accepted invalid json")
	}
	if err := HandleMessage([]byte(`{"type":""}`), path); err == nil {
		t.Error("accepted empty event")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("log file created for rejected message")
	}
}
