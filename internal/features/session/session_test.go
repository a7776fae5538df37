package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/identity"
	"github.com/xyz-asif/schoolsafe/internal/features/reports"
	"github.com/xyz-asif/schoolsafe/internal/pkg/jwt"
)

type fixedIssuer struct{}

func (fixedIssuer) Issue(context.Context) (string, error) { return "K7Q2ZD", nil }

type fixture struct {
	client  *identity.Client
	repo    *reports.MemoryRepository
	service *reports.Service
	session *Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	auth := identity.NewAuthenticator(identity.NewMemoryStaffRepository(), jwt.DefaultConfig("test"), zap.NewNop())
	require.NoError(t, auth.EnsureStaff(context.Background(), "teacher@school.edu.vn", "s3cret", ""))

	client := identity.NewClient(auth)
	repo := reports.NewMemoryRepository()
	svc := reports.NewService(repo, fixedIssuer{}, "Trường", zap.NewNop())

	s := New(client, svc, zap.NewNop())
	s.Start(context.Background())
	t.Cleanup(s.Close)

	return &fixture{client: client, repo: repo, service: svc, session: s}
}

func (f *fixture) eventually(t *testing.T, cond func(View) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(f.session.View()) }, 2*time.Second, 10*time.Millisecond)
}

func (f *fixture) signInTeacher(t *testing.T) {
	t.Helper()
	_, err := f.client.SignInWithCredentials(context.Background(), "teacher@school.edu.vn", "s3cret")
	require.NoError(t, err)
}

func TestSession_StartsAsAnonymousStudent(t *testing.T) {
	f := newFixture(t)

	f.eventually(t, func(v View) bool {
		return v.State == StateStudent && v.Principal != nil && v.Principal.Anonymous()
	})
	require.Zero(t, f.repo.Subscribers())
}

func TestSession_TeacherReceivesSnapshots(t *testing.T) {
	f := newFixture(t)
	f.signInTeacher(t)

	f.eventually(t, func(v View) bool { return v.Role == identity.RoleTeacher && v.State == StateLive })
	require.Equal(t, 1, f.repo.Subscribers())

	_, err := f.service.Submit(context.Background(), reports.SubmitRequest{
		Title: "Cửa sổ vỡ", Description: "Phòng 7B", Category: "infrastructure", Anonymous: true,
	}, nil)
	require.NoError(t, err)

	f.eventually(t, func(v View) bool { return len(v.Reports) == 1 })
}

func TestSession_LeavingTeacherClosesSubscription(t *testing.T) {
	f := newFixture(t)
	f.signInTeacher(t)
	f.eventually(t, func(v View) bool { return v.State == StateLive })

	require.NoError(t, f.session.SignOut(context.Background()))

	f.eventually(t, func(v View) bool { return v.State == StateStudent && v.Reports == nil })
	require.Eventually(t, func() bool { return f.repo.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSession_PermissionDeniedIsAccessRestricted(t *testing.T) {
	f := newFixture(t)
	f.repo.DenyReads(true)
	f.signInTeacher(t)

	f.eventually(t, func(v View) bool { return v.State == StateAccessRestricted })
	require.Eventually(t, func() bool { return f.repo.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)

	f.repo.DenyReads(false)
	require.NoError(t, f.session.SignOut(context.Background()))
	f.eventually(t, func(v View) bool { return v.State == StateStudent })
}

func TestSession_CloseReleasesSubscription(t *testing.T) {
	f := newFixture(t)
	f.signInTeacher(t)
	f.eventually(t, func(v View) bool { return v.State == StateLive })

	f.session.Close()
	f.session.Close()

	require.Eventually(t, func() bool { return f.repo.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// droppingSource fails the first `drops` subscriptions with an error followed
// by a closed stream, then serves one report until the subscription closes.
type droppingSource struct {
	mu    sync.Mutex
	drops int
	opens int
}

func (d *droppingSource) Subscribe(ctx context.Context) (*reports.Subscription, error) {
	d.mu.Lock()
	d.opens++
	drop := d.opens <= d.drops
	d.mu.Unlock()

	ch := make(chan reports.Event, 2)
	if drop {
		ch <- reports.Event{Err: errors.New("unavailable")}
		close(ch)
		return reports.NewSubscription(ch, func() {}), nil
	}

	subCtx, cancel := context.WithCancel(ctx)
	ch <- reports.Event{Reports: []*reports.Report{{ID: "r1", Title: "Cửa sổ vỡ"}}}
	go func() {
		<-subCtx.Done()
		close(ch)
	}()
	return reports.NewSubscription(ch, cancel), nil
}

func (d *droppingSource) Opens() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opens
}

func newDroppingFixture(t *testing.T, source *droppingSource) (*identity.Client, *Session) {
	t.Helper()
	auth := identity.NewAuthenticator(identity.NewMemoryStaffRepository(), jwt.DefaultConfig("test"), zap.NewNop())
	require.NoError(t, auth.EnsureStaff(context.Background(), "teacher@school.edu.vn", "s3cret", ""))
	client := identity.NewClient(auth)

	s := New(client, source, zap.NewNop())
	s.retryDelay = 10 * time.Millisecond
	s.Start(context.Background())
	t.Cleanup(s.Close)

	_, err := client.SignInWithCredentials(context.Background(), "teacher@school.edu.vn", "s3cret")
	require.NoError(t, err)
	return client, s
}

func TestSession_ReopensAfterStreamCloses(t *testing.T) {
	source := &droppingSource{drops: 2}
	_, s := newDroppingFixture(t, source)

	require.Eventually(t, func() bool {
		v := s.View()
		return v.State == StateLive && len(v.Reports) == 1
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 3, source.Opens())
}

func TestSession_ClosedStreamIsNotReportedLive(t *testing.T) {
	source := &droppingSource{drops: 1 << 30}
	_, s := newDroppingFixture(t, source)

	require.Eventually(t, func() bool { return source.Opens() > 1 }, 2*time.Second, 10*time.Millisecond)
	state := s.View().State
	require.NotEqual(t, StateLive, state)
	require.Contains(t, []State{StateLoading, StateReconnecting}, state)
}

func TestSession_SignOutStopsReconnecting(t *testing.T) {
	source := &droppingSource{drops: 1 << 30}
	client, s := newDroppingFixture(t, source)

	require.Eventually(t, func() bool { return source.Opens() > 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, client.SignOut(context.Background()))
	require.Eventually(t, func() bool { return s.View().State == StateStudent }, 2*time.Second, 10*time.Millisecond)

	opens := source.Opens()
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, opens, source.Opens())
}
