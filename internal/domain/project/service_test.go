package project_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/mraff116/vugru/internal/domain/account"
	"github.com/mraff116/vugru/internal/domain/activity"
	"github.com/mraff116/vugru/internal/domain/project"
	"github.com/mraff116/vugru/internal/repository"
	"github.com/mraff116/vugru/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo     *mocks.ProjectRepository
	accounts *mocks.AccountRepository
	notifier *mocks.Notifier
	activity *mocks.ActivityRepository
	svc      *project.Service
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:     new(mocks.ProjectRepository),
		accounts: new(mocks.AccountRepository),
		notifier: new(mocks.Notifier),
		activity: new(mocks.ActivityRepository),
		now:      t0.Add(time.Hour),
	}
	seq := 0
	f.svc = project.NewService(f.repo, f.accounts, nil,
		project.WithClock(func() time.Time { return f.now }),
		project.WithNotifier(f.notifier),
		project.WithActivity(f.activity),
		project.WithIDGenerator(func() string {
			seq++
			return "id-" + strconv.Itoa(seq)
		}),
	)
	return f
}

func (f *fixture) assert(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.accounts.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.activity.AssertExpectations(t)
}

func (f *fixture) expectActivity(typ activity.Type) {
	f.activity.On("Log", mock.Anything, mock.MatchedBy(func(e *activity.Entry) bool {
		return e.Type == typ
	})).Return(nil).Once()
}

func TestService_RequestQuote(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.accounts.On("Get", ctx, "V1").Return(&account.Account{ID: "V1", Name: "Val", Role: account.RoleVideographer}, nil)
	f.repo.On("Create", ctx, mock.MatchedBy(func(p *project.Project) bool {
		return p.ID == "id-1" && p.ClientID == "C1" && p.VideographerID == "V1" &&
			p.Status == project.StatusPending && p.ClientName == "Casey" &&
			p.Comments != nil && len(p.Comments) == 0
	})).Return(nil)
	f.notifier.On("Notify", []string{"C1", "V1"}).Return()
	f.expectActivity(activity.TypeQuoteRequested)

	proj, err := f.svc.RequestQuote(ctx, client, project.CreateRequest{
		VideographerID: "V1",
		Name:           " Wedding ",
		Description:    "Ceremony and reception",
		Deliverables:   []string{"highlight reel"},
	})
	require.NoError(t, err)
	require.Equal(t, "Wedding", proj.Name)
	require.Equal(t, f.now, proj.CreatedAt)
	require.Equal(t, []string{"highlight reel"}, proj.Deliverables)
	f.assert(t)
}

func TestService_RequestQuote_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("videographer cannot request", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.RequestQuote(ctx, video, project.CreateRequest{VideographerID: "V1", Name: "x", Description: "y"})
		require.ErrorIs(t, err, project.ErrUnauthorized)
		f.assert(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.RequestQuote(ctx, client, project.CreateRequest{VideographerID: "V1", Name: "  "})
		require.ErrorIs(t, err, project.ErrValidation)
		f.assert(t)
	})

	t.Run("unknown videographer", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("Get", ctx, "V9").Return(nil, repository.ErrNotFound)
		_, err := f.svc.RequestQuote(ctx, client, project.CreateRequest{VideographerID: "V9", Name: "x", Description: "y"})
		require.ErrorIs(t, err, project.ErrValidation)
		f.assert(t)
	})

	t.Run("target is a client", func(t *testing.T) {
		f := newFixture()
		f.accounts.On("Get", ctx, "C2").Return(&account.Account{ID: "C2", Role: account.RoleClient}, nil)
		_, err := f.svc.RequestQuote(ctx, client, project.CreateRequest{VideographerID: "C2", Name: "x", Description: "y"})
		require.ErrorIs(t, err, project.ErrValidation)
		f.assert(t)
	})
}

func TestService_SubmitQuoteResponse_Accept(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	f.repo.On("Update", ctx, "P1", mock.MatchedBy(func(u project.Update) bool {
		return u.Status != nil && *u.Status == project.StatusQuoted &&
			*u.QuotedPrice == "500" && u.LastUpdate.Equal(f.now) && u.Comments == nil
	})).Return(nil).Once()
	f.notifier.On("Notify", []string{"C1", "V1"}).Return()
	f.expectActivity(activity.TypeQuoteResponded)

	got, err := f.svc.SubmitQuoteResponse(ctx, video, "P1", project.QuoteResponse{
		Type:              project.ResponseAccept,
		Message:           "Happy to help",
		QuotedPrice:       "500",
		EstimatedDuration: "2h",
		IncludedServices:  []string{"editing"},
	})
	require.NoError(t, err)
	require.Equal(t, project.StatusQuoted, got.Status)
	require.Equal(t, "2h", *got.EstimatedDuration)
	require.Equal(t, project.StatusPending, p.Status)
	f.assert(t)
}

func TestService_SubmitQuoteResponse_NoWriteOnFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("client cannot respond", func(t *testing.T) {
		f := newFixture()
		p := pendingProject()
		f.repo.On("Get", ctx, "P1").Return(&p, nil)
		_, err := f.svc.SubmitQuoteResponse(ctx, client, "P1", project.QuoteResponse{Type: project.ResponseAccept})
		require.ErrorIs(t, err, project.ErrUnauthorized)
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		f.assert(t)
	})

	t.Run("already quoted", func(t *testing.T) {
		f := newFixture()
		p := pendingProject()
		p.Status = project.StatusQuoted
		f.repo.On("Get", ctx, "P1").Return(&p, nil)
		_, err := f.svc.SubmitQuoteResponse(ctx, video, "P1", project.QuoteResponse{Type: project.ResponseDecline})
		require.ErrorIs(t, err, project.ErrInvalidState)
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
		f.assert(t)
	})

	t.Run("bad response type", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.SubmitQuoteResponse(ctx, video, "P1", project.QuoteResponse{Type: "maybe"})
		require.ErrorIs(t, err, project.ErrValidation)
		f.assert(t)
	})

	t.Run("missing project", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Get", ctx, "P9").Return(nil, repository.ErrNotFound)
		_, err := f.svc.SubmitQuoteResponse(ctx, video, "P9", project.QuoteResponse{Type: project.ResponseAccept})
		require.ErrorIs(t, err, project.ErrProjectNotFound)
		f.assert(t)
	})
}

func TestService_PersistenceErrorIsWrapped(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()
	boom := errors.New("disk full")

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	f.repo.On("Update", ctx, "P1", mock.Anything).Return(boom)

	_, err := f.svc.AddComment(ctx, client, "P1", "hello")
	var perr *project.PersistenceError
	require.ErrorAs(t, err, &perr)
	require.ErrorIs(t, err, boom)
	f.assert(t)
}

func TestService_AddComment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	f.repo.On("Update", ctx, "P1", mock.MatchedBy(func(u project.Update) bool {
		return len(u.Comments) == 1 && u.Status == nil && u.LastUpdate.Equal(f.now)
	})).Return(nil)
	f.notifier.On("Notify", []string{"C1", "V1"}).Return()
	f.expectActivity(activity.TypeCommentAdded)

	got, err := f.svc.AddComment(ctx, client, "P1", "Can you do Friday?")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	c := got.Comments[0]
	require.Equal(t, "id-1", c.ID)
	require.Equal(t, account.RoleClient, c.AuthorType)
	require.Equal(t, []string{"C1"}, c.ReadBy)
	require.Equal(t, 1, project.UnreadCount(got, video))
	f.assert(t)
}

func TestService_AddComment_KeepsStoredUpdatedAt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()
	p.UpdatedAt = t0

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	f.repo.On("Update", ctx, "P1", mock.Anything).Return(nil)
	f.notifier.On("Notify", []string{"C1", "V1"}).Return()
	f.expectActivity(activity.TypeCommentAdded)

	// the store stamps updated_at on its own clock
	got, err := f.svc.AddComment(ctx, client, "P1", "Can you do Friday?")
	require.NoError(t, err)
	require.Equal(t, t0, got.UpdatedAt)
	require.Equal(t, f.now, *got.LastUpdate)
	f.assert(t)
}

func TestService_AddComment_EmptyText(t *testing.T) {
	f := newFixture()
	_, err := f.svc.AddComment(context.Background(), client, "P1", " \n\t ")
	require.ErrorIs(t, err, project.ErrValidation)
	f.assert(t)
}

func TestService_AddComment_ActivityFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	f.repo.On("Update", ctx, "P1", mock.Anything).Return(nil)
	f.notifier.On("Notify", []string{"C1", "V1"}).Return()
	f.activity.On("Log", mock.Anything, mock.Anything).Return(errors.New("log down"))

	_, err := f.svc.AddComment(ctx, video, "P1", "hi")
	require.NoError(t, err)
	f.assert(t)
}

func TestService_MarkMessagesRead(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()
	comment(t, &p, "c1", client, "hello", t0.Add(time.Minute))

	f.repo.On("Get", ctx, "P1").Return(&p, nil).Once()
	f.repo.On("Update", ctx, "P1", mock.MatchedBy(func(u project.Update) bool {
		return len(u.Comments) == 1 && u.LastUpdate == nil
	})).Return(nil).Once()
	f.notifier.On("Notify", []string{"C1", "V1"}).Return().Once()
	f.expectActivity(activity.TypeMessagesRead)

	got, err := f.svc.MarkMessagesRead(ctx, video, "P1")
	require.NoError(t, err)
	require.Equal(t, 0, project.UnreadCount(got, video))

	// second call finds nothing new and must not write
	f.repo.On("Get", ctx, "P1").Return(got, nil).Once()
	again, err := f.svc.MarkMessagesRead(ctx, video, "P1")
	require.NoError(t, err)
	require.Equal(t, got.Comments, again.Comments)
	f.repo.AssertNumberOfCalls(t, "Update", 1)
	f.assert(t)
}

func TestService_SendReminder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()
	p.Status = project.StatusAwaitingInfo

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	f.repo.On("Update", ctx, "P1", mock.Anything).Return(nil)
	f.notifier.On("Notify", []string{"C1", "V1"}).Return()
	f.expectActivity(activity.TypeReminderSent)

	got, err := f.svc.SendReminder(ctx, video, "P1", "")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	require.Equal(t, project.ReminderMessage(&p), got.Comments[0].Text)
	require.Equal(t, project.StatusAwaitingInfo, got.Status)
	f.assert(t)
}

func TestService_SendReminder_WrongStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	_, err := f.svc.SendReminder(ctx, video, "P1", "nudge")
	require.ErrorIs(t, err, project.ErrInvalidState)
	f.assert(t)
}

func TestService_Delete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	f.repo.On("Delete", ctx, "P1").Return(nil)
	f.notifier.On("Notify", []string{"C1", "V1"}).Return()
	f.expectActivity(activity.TypeProjectDeleted)

	require.NoError(t, f.svc.Delete(ctx, client, "P1"))
	f.assert(t)
}

func TestService_Delete_Stranger(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	require.ErrorIs(t, f.svc.Delete(ctx, other, "P1"), project.ErrUnauthorized)
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.assert(t)
}

func TestService_GetAndList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := pendingProject()

	f.repo.On("Get", ctx, "P1").Return(&p, nil)
	f.repo.On("ListByParticipant", ctx, "V1", account.RoleVideographer).Return([]project.Project{p}, nil)

	got, err := f.svc.Get(ctx, video, "P1")
	require.NoError(t, err)
	require.Equal(t, "P1", got.ID)

	_, err = f.svc.Get(ctx, other, "P1")
	require.ErrorIs(t, err, project.ErrUnauthorized)

	list, err := f.svc.List(ctx, video)
	require.NoError(t, err)
	require.Len(t, list, 1)
	f.assert(t)
}

func TestService_DeleteByParticipant(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := pendingProject()
	b := pendingProject()
	b.ID, b.VideographerID = "P2", "V2"

	f.repo.On("ListByParticipant", ctx, "C1", account.RoleClient).Return([]project.Project{a, b}, nil)
	f.repo.On("DeleteByParticipant", ctx, "C1", account.RoleClient).Return([]string{"P1", "P2"}, nil)
	f.notifier.On("Notify", []string{"C1", "V1"}).Return().Once()
	f.notifier.On("Notify", []string{"C1", "V2"}).Return().Once()

	n, err := f.svc.DeleteByParticipant(ctx, "C1", account.RoleClient)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	f.assert(t)
}
