package reports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
		return Event{}
	}
}

func TestMemorySubscription_FullSnapshots(t *testing.T) {
	repo := NewMemoryRepository()
	sub, err := repo.SubscribeOrdered(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	ev := recvEvent(t, sub)
	require.NoError(t, ev.Err)
	require.Empty(t, ev.Reports)

	_, err = repo.Create(context.Background(), &Report{Title: "a", Timestamp: 1, Identity: Anonymous{}})
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), &Report{Title: "b", Timestamp: 2, Identity: Anonymous{}})
	require.NoError(t, err)

	// Undelivered snapshots are replaced, so the consumer sees the latest state.
	ev = recvEvent(t, sub)
	require.Len(t, ev.Reports, 2)
	require.Equal(t, "b", ev.Reports[0].Title)
	require.Equal(t, "a", ev.Reports[1].Title)
}

func TestMemorySubscription_PermissionDenied(t *testing.T) {
	repo := NewMemoryRepository()
	repo.DenyReads(true)

	sub, err := repo.SubscribeOrdered(context.Background())
	require.NoError(t, err)
	defer sub.Close()

	ev := recvEvent(t, sub)
	require.ErrorIs(t, ev.Err, ErrPermissionDenied)
}

func TestSubscription_CloseTwice(t *testing.T) {
	repo := NewMemoryRepository()
	sub, err := repo.SubscribeOrdered(context.Background())
	require.NoError(t, err)

	sub.Close()
	sub.Close()

	require.Eventually(t, func() bool { return repo.Subscribers() == 0 }, time.Second, 10*time.Millisecond)

	var nilSub *Subscription
	nilSub.Close()
}

func TestFindOneByField_NotFound(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.FindOneByField(context.Background(), FieldTrackingCode, "ZZZZZZ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateFields_RejectsUnknownField(t *testing.T) {
	repo := NewMemoryRepository()
	id, err := repo.Create(context.Background(), &Report{Title: "a", Identity: Anonymous{}})
	require.NoError(t, err)

	err = repo.UpdateFields(context.Background(), id, Fields{FieldTitle: "changed"})
	var writeErr *StoreWriteError
	require.ErrorAs(t, err, &writeErr)
}

func TestRecord_AnonymousHidesIdentity(t *testing.T) {
	rec := Record{Anonymous: true, StudentName: "stray", StudentContact: "stray"}
	require.Equal(t, Anonymous{}, rec.Report().Identity)

	r := &Report{Identity: Disclosed{Name: "Nguyen An", Contact: "0900"}}
	rec = r.Record()
	require.False(t, rec.Anonymous)
	require.Equal(t, "Nguyen An", rec.StudentName)
}

func TestReportJSON_AnonymousOmitsIdentityFields(t *testing.T) {
	r := &Report{ID: "1", Title: "t", Status: StatusPending, Identity: Anonymous{}, CreatedBy: "anon_1"}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, true, raw["anonymous"])
	require.NotContains(t, raw, "studentName")
	require.NotContains(t, raw, "studentContact")
	require.NotContains(t, raw, "createdBy")
	require.Equal(t, "Chờ xử lý", raw["status"])

	var back Report
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, "1", back.ID)
	require.True(t, back.Anonymous())
}

func TestTrackingView_AwaitingReply(t *testing.T) {
	r := &Report{TrackingCode: "K7Q2ZD", Status: StatusPending}
	require.True(t, r.TrackingView().AwaitingReply)

	r.AdminReply = "Đã xử lý"
	view := r.TrackingView()
	require.False(t, view.AwaitingReply)
	require.Equal(t, "Đã xử lý", view.AdminReply)
}

func TestParseEnums(t *testing.T) {
	c, err := ParseCategory("health")
	require.NoError(t, err)
	require.Equal(t, CategoryHealth, c)

	c, err = ParseCategory("Bạo lực học đường")
	require.NoError(t, err)
	require.Equal(t, CategoryViolence, c)

	_, err = ParseCategory("All")
	require.Error(t, err)

	s, err := ParseStatus("resolved")
	require.NoError(t, err)
	require.Equal(t, StatusResolved, s)

	require.Len(t, Categories(), 5)
	require.Len(t, Statuses(), 3)
	require.True(t, UrgencyEmergency.Urgent())
	require.False(t, UrgencyMedium.Urgent())
}
