package repository

import (
	"context"
	"testing"
	"time"

	"crewz/internal/models"
	"crewz/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(organizerID, title string, private bool, date time.Time) *models.Event {
	return &models.Event{OrganizerID: organizerID, Title: title, Location: "Willow Springs", Date: date, IsPrivate: private}
}

func TestEventRepository_Visibility(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := testutil.CreateUser(t, db)
	guest := testutil.CreateUser(t, db)
	stranger := testutil.CreateUser(t, db)

	soon := time.Now().UTC().Add(24 * time.Hour)
	public := newEvent(organizer.ID, "Cars and Coffee", false, soon)
	private := newEvent(organizer.ID, "Track Night", true, soon.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, public))
	require.NoError(t, repo.Create(ctx, private))
	assert.Equal(t, 1, private.AttendeesCount)

	invited, err := repo.Invite(ctx, private.ID, organizer.ID, []string{guest.ID, guest.ID, organizer.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, invited)

	invited, err = repo.Invite(ctx, private.ID, organizer.ID, []string{guest.ID})
	require.NoError(t, err)
	assert.Zero(t, invited)

	for _, tc := range []struct {
		name    string
		caller  string
		visible []string
	}{
		{"organizer", organizer.ID, []string{public.ID, private.ID}},
		{"invitee", guest.ID, []string{public.ID, private.ID}},
		{"stranger", stranger.ID, []string{public.ID}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			list, err := repo.List(ctx, tc.caller, 20, 0)
			require.NoError(t, err)
			ids := make([]string, 0, len(list))
			for _, e := range list {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tc.visible, ids)
		})
	}

	_, err = repo.GetVisible(ctx, private.ID, stranger.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = repo.Join(ctx, private.ID, stranger.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestEventRepository_InviteRules(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := testutil.CreateUser(t, db)
	other := testutil.CreateUser(t, db)
	event := newEvent(organizer.ID, "Canyon Run", true, time.Now().UTC().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, event))

	_, err := repo.Invite(ctx, event.ID, other.ID, []string{other.ID})
	assert.True(t, models.IsCode(err, models.CodeNotFound), "non-organizer")

	_, err = repo.Invite(ctx, event.ID, organizer.ID, []string{other.ID, "ghost"})
	assert.True(t, models.IsCode(err, models.CodeNotFound), "unknown invitee")

	var n int64
	require.NoError(t, db.Model(&models.EventInvite{}).Count(&n).Error)
	assert.Zero(t, n, "a failed invite writes nothing")
}

func TestEventRepository_JoinLeave(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	organizer := testutil.CreateUser(t, db)
	rider := testutil.CreateUser(t, db)
	event := newEvent(organizer.ID, "Moto Meet", false, time.Now().UTC().Add(time.Hour))
	require.NoError(t, repo.Create(ctx, event))

	joined, err := repo.Join(ctx, event.ID, rider.ID)
	require.NoError(t, err)
	assert.True(t, joined)
	joined, err = repo.Join(ctx, event.ID, rider.ID)
	require.NoError(t, err)
	assert.False(t, joined)

	got, err := repo.GetVisible(ctx, event.ID, rider.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.AttendeesCount)

	attending, err := repo.AttendingSet(ctx, rider.ID, []string{event.ID})
	require.NoError(t, err)
	assert.True(t, attending[event.ID])

	_, err = repo.Leave(ctx, event.ID, organizer.ID)
	assert.True(t, models.IsCode(err, models.CodeValidation))

	left, err := repo.Leave(ctx, event.ID, rider.ID)
	require.NoError(t, err)
	assert.True(t, left)
	left, err = repo.Leave(ctx, event.ID, rider.ID)
	require.NoError(t, err)
	assert.False(t, left)

	got, err = repo.GetVisible(ctx, event.ID, rider.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttendeesCount)
}
