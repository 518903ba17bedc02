package routes

import (
	"testing"
	"time"

	"github.com/punamchanne/Property-Dealing/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestMeeting(t *testing.T, db *gorm.DB, userID, ownerID, listingID uint, status string, date time.Time) models.Meeting {
	t.Helper()
	meeting := models.Meeting{
		UserID:        userID,
		OwnerID:       ownerID,
		ListingID:     listingID,
		ScheduledDate: date,
		Status:        status,
		Type:          "in-person",
	}
	require.NoError(t, db.Create(&meeting).Error)
	return meeting
}

func TestVirtualMeetLinkFallsBackToPlaceholder(t *testing.T) {
	// Without calendar credentials the attempt fails fast; the meeting still
	// gets the placeholder link, never an empty one
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	t.Setenv("GOOGLE_REFRESH_TOKEN", "")

	link, eventID := virtualMeetLink("Property Visit: Flat", "Virtual visit.",
		time.Now().Add(24*time.Hour), []string{"a@example.com", "b@example.com"})
	assert.Equal(t, meetLinkPending, link)
	assert.Empty(t, eventID)
}

func TestMeetingsForUser(t *testing.T) {
	db := setupTestDB(t)
	visitor := createTestUser(t, db, "visitor@example.com", "user")
	owner := createTestUser(t, db, "owner@example.com", "owner")
	bystander := createTestUser(t, db, "bystander@example.com", "user")
	listing := createTestListing(t, db, owner.ID, listingSeed{
		Title: "Visited Flat", City: "Pune", Price: 100,
	})

	past := time.Now().Add(-48 * time.Hour)
	soon := time.Now().Add(24 * time.Hour)
	later := time.Now().Add(72 * time.Hour)

	done := createTestMeeting(t, db, visitor.ID, owner.ID, listing.ID, models.MeetingCompleted, past)
	upcoming := createTestMeeting(t, db, visitor.ID, owner.ID, listing.ID, models.MeetingScheduled, later)
	cancelled := createTestMeeting(t, db, visitor.ID, owner.ID, listing.ID, models.MeetingCancelled, soon)
	unrelated := createTestMeeting(t, db, bystander.ID, bystander.ID, listing.ID, models.MeetingScheduled, soon)

	// The visitor sees every meeting they are part of, soonest first
	meetings, err := meetingsForUser(db, visitor.ID, "", false)
	require.NoError(t, err)
	require.Len(t, meetings, 3)
	assert.Equal(t, done.ID, meetings[0].ID)
	assert.Equal(t, cancelled.ID, meetings[1].ID)
	assert.Equal(t, upcoming.ID, meetings[2].ID)

	// The owner side of the meeting sees the same rows
	meetings, err = meetingsForUser(db, owner.ID, "", false)
	require.NoError(t, err)
	assert.Len(t, meetings, 3)

	// Status filter
	meetings, err = meetingsForUser(db, visitor.ID, models.MeetingScheduled, false)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, upcoming.ID, meetings[0].ID)

	// Upcoming filter drops past meetings
	meetings, err = meetingsForUser(db, visitor.ID, "", true)
	require.NoError(t, err)
	require.Len(t, meetings, 2)
	for _, m := range meetings {
		assert.True(t, m.ScheduledDate.After(time.Now().Add(-time.Minute)))
	}

	// Bystanders only see their own
	meetings, err = meetingsForUser(db, bystander.ID, "", false)
	require.NoError(t, err)
	require.Len(t, meetings, 1)
	assert.Equal(t, unrelated.ID, meetings[0].ID)
}
