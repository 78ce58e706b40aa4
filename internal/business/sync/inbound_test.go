package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resplan/resplan-backend/internal/model"
)

func member(id int64, day int, uniqueID string, parentID int64) *model.Reservation {
	res := baseReservation()
	res.ID = id
	res.UniqueID = uniqueID
	res.ParentID = parentID
	res.Period.Start = time.Date(2011, time.November, day, 10, 0, 0, 0, time.UTC)
	res.Period.End = time.Date(2011, time.November, day, 11, 0, 0, 0, time.UTC)
	return res
}

func singleEvent(res *model.Reservation) *model.CalendarEvent {
	event := matchingEvent()
	event.Kind = model.AppointmentSingle
	event.UniqueID = res.UniqueID
	event.ReservationID = res.ID
	event.Location = ""
	event.Start = res.Period.Start
	event.End = res.Period.End
	return event
}

func TestInboundSingleEquivalentAcceptedUntouched(t *testing.T) {
	res := member(1, 9, "uid-a", 0)
	fx := newEngine(newFakeReservations(res))

	err := fx.svc.ProcessInbound(context.Background(), fx.session, singleEvent(res))
	if err != nil {
		t.Fatal(err)
	}

	if len(fx.series.applied) != 0 {
		t.Error("equivalent event triggered a stored update")
	}
	if len(fx.notifier.notified) != 0 {
		t.Error("equivalent event triggered a notification")
	}
	if len(fx.session.declined) != 0 {
		t.Error("equivalent event was declined")
	}
}

func TestInboundSingleUnlinkedRejected(t *testing.T) {
	fx := newEngine(newFakeReservations())

	event := singleEvent(member(99, 9, "uid-zzz", 0))

	err := fx.svc.ProcessInbound(context.Background(), fx.session, event)

	conflict := &model.SyncConflict{}
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want SyncConflict", err)
	}
	if len(fx.session.declined) != 1 {
		t.Fatalf("declined %d times, want 1", len(fx.session.declined))
	}
}

func TestInboundSingleChangeAppliedAndNotified(t *testing.T) {
	res := member(1, 9, "uid-a", 0)
	fx := newEngine(newFakeReservations(res))

	event := singleEvent(res)
	event.Subject = "Replanning"

	if err := fx.svc.ProcessInbound(context.Background(), fx.session, event); err != nil {
		t.Fatal(err)
	}

	if len(fx.series.applied) != 1 {
		t.Fatalf("applied %d updates, want 1", len(fx.series.applied))
	}
	if res.Title != "Replanning" {
		t.Errorf("title = %q, want applied subject", res.Title)
	}
	if len(fx.notifier.notified) != 1 || fx.notifier.notified[0] != res.ID {
		t.Errorf("notified = %v, want [%d]", fx.notifier.notified, res.ID)
	}
}

func TestInboundSinglePersistFailureRejected(t *testing.T) {
	res := member(1, 9, "uid-a", 0)
	fx := newEngine(newFakeReservations(res))
	fx.series.err = errors.New("room taken")

	event := singleEvent(res)
	event.Subject = "Replanning"

	err := fx.svc.ProcessInbound(context.Background(), fx.session, event)

	conflict := &model.SyncConflict{}
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want SyncConflict", err)
	}
	if len(fx.session.declined) != 1 {
		t.Error("rejected change was not declined")
	}
	if len(fx.notifier.notified) != 0 {
		t.Error("rejected change was notified")
	}
}

func TestInboundOccurrenceResolvedThroughMasterMap(t *testing.T) {
	m1 := member(1, 9, "uid-m", 1)
	m2 := member(2, 10, "uid-m", 1)
	fx := newEngine(newFakeReservations(m1, m2))

	master := matchingEvent()
	master.Kind = model.AppointmentRecurringMaster
	master.UniqueID = "uid-m"
	master.OccurrenceIDs = map[string]int64{
		model.OccurrenceKey(m1.Period.Start): m1.ID,
		model.OccurrenceKey(m2.Period.Start): m2.ID,
	}
	fx.session.events["uid-m"] = master

	occ := matchingEvent()
	occ.Kind = model.AppointmentOccurrence
	occ.Location = ""
	occ.MasterUniqueID = "uid-m"
	occ.OriginalStart = m2.Period.Start
	occ.Start = m2.Period.Start
	occ.End = m2.Period.End
	occ.Subject = "Second one renamed"

	if err := fx.svc.ProcessInbound(context.Background(), fx.session, occ); err != nil {
		t.Fatal(err)
	}

	if m2.Title != "Second one renamed" {
		t.Errorf("occurrence update landed on the wrong member: m2 title = %q", m2.Title)
	}
	if m1.Title != "Planning" {
		t.Errorf("sibling member was touched: m1 title = %q", m1.Title)
	}
}

func masterFixture(t *testing.T) (*engineFixture, *model.Reservation, *model.Reservation, *model.CalendarEvent) {
	t.Helper()

	m1 := member(1, 9, "uid-m", 1)
	m2 := member(2, 10, "uid-m", 1)
	fx := newEngine(newFakeReservations(m1, m2))

	master := matchingEvent()
	master.Kind = model.AppointmentRecurringMaster
	master.UniqueID = "uid-m"
	master.Location = ""
	master.OccurrenceIDs = map[string]int64{
		model.OccurrenceKey(m1.Period.Start): m1.ID,
		model.OccurrenceKey(m2.Period.Start): m2.ID,
	}
	fx.session.events["uid-m"] = master

	return fx, m1, m2, master
}

func addOccurrence(fx *engineFixture, res *model.Reservation, master *model.CalendarEvent) {
	occ := matchingEvent()
	occ.Kind = model.AppointmentOccurrence
	occ.Location = ""
	occ.UniqueID = master.UniqueID
	occ.Subject = master.Subject
	occ.Body = master.Body
	occ.Attendees = append([]string(nil), master.Attendees...)
	occ.Start = res.Period.Start
	occ.End = res.Period.End
	fx.session.occurrences[occKey(master.UniqueID, res.Period.Start)] = occ
}

func TestInboundMasterMissingOccurrenceRejectsWholeUpdate(t *testing.T) {
	fx, m1, m2, master := masterFixture(t)
	addOccurrence(fx, m1, master)
	// m2 has no matching external occurrence.

	master.Subject = "Renamed everywhere"

	err := fx.svc.ProcessInbound(context.Background(), fx.session, master)

	conflict := &model.SyncConflict{}
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want SyncConflict", err)
	}
	if len(fx.series.applied) != 0 {
		t.Error("members were modified despite the rejection")
	}
	if m1.Title != "Planning" || m2.Title != "Planning" {
		t.Error("stored titles changed despite the rejection")
	}
	if len(fx.session.declined) != 1 {
		t.Error("rejected master update was not declined")
	}
}

func TestInboundMasterAppliesNonTemporalChangesToAllMembers(t *testing.T) {
	fx, m1, m2, master := masterFixture(t)
	addOccurrence(fx, m1, master)
	addOccurrence(fx, m2, master)

	master.Subject = "Renamed everywhere"
	for _, occ := range fx.session.occurrences {
		occ.Subject = "Renamed everywhere"
		// The calendar also reports shifted times; these must not win.
		occ.Start = occ.Start.Add(2 * time.Hour)
		occ.End = occ.End.Add(2 * time.Hour)
	}

	if err := fx.svc.ProcessInbound(context.Background(), fx.session, master); err != nil {
		t.Fatal(err)
	}

	if len(fx.series.applied) != 2 {
		t.Fatalf("applied %d updates, want 2", len(fx.series.applied))
	}
	for _, m := range []*model.Reservation{m1, m2} {
		if m.Title != "Renamed everywhere" {
			t.Errorf("member %d title = %q", m.ID, m.Title)
		}
		if m.Period.Start.Hour() != 10 {
			t.Errorf("member %d start moved to %02d:00; master updates must not move times", m.ID, m.Period.Start.Hour())
		}
	}
}

func TestInboundUnknownKindErrors(t *testing.T) {
	fx := newEngine(newFakeReservations())

	event := matchingEvent()
	event.Kind = model.AppointmentKind(42)

	if err := fx.svc.ProcessInbound(context.Background(), fx.session, event); err == nil {
		t.Fatal("expected error for unknown appointment kind")
	}
}
