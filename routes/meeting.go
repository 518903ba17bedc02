package routes

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/punamchanne/Property-Dealing/models"
	"github.com/punamchanne/Property-Dealing/services"
	"github.com/punamchanne/Property-Dealing/storage"
	"github.com/punamchanne/Property-Dealing/utils"
	"gorm.io/gorm"
)

// Stored on the meeting when no conference link could be created; the owner
// sends the real link later.
const meetLinkPending = "To be provided"

// virtualMeetLink attempts a calendar event for a virtual visit. Link creation
// is best-effort: the meeting is scheduled either way, with a placeholder link
// when the calendar call fails.
func virtualMeetLink(summary, description string, start time.Time, attendees []string) (link, eventID string) {
	event, err := services.CreateMeetEvent(summary, description, start, attendees)
	if err != nil {
		log.Printf("calendar event creation failed: %v", err)
		return meetLinkPending, ""
	}
	return event.MeetLink, event.EventID
}

// POST /meetings
func CreateMeeting(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	var input CreateMeetingInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	scheduledDate, dateErr := time.Parse(time.RFC3339, input.ScheduledDate)
	if dateErr != nil {
		utils.CreateError(iris.StatusBadRequest, "Validation Error",
			"scheduledDate must be a valid RFC3339 timestamp", ctx)
		return
	}
	if scheduledDate.Before(time.Now()) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error",
			"scheduledDate must be in the future", ctx)
		return
	}

	var listing models.Listing
	listingExists := storage.DB.Preload("Owner").
		Where("id = ? AND approval = ?", input.ListingID, models.ApprovalApproved).
		Find(&listing)
	if listingExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if listingExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	var visitor models.User
	if err := storage.DB.Where("id = ?", userID).Find(&visitor).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	meeting := models.Meeting{
		UserID:        userID,
		OwnerID:       listing.OwnerID,
		ListingID:     listing.ID,
		ScheduledDate: scheduledDate,
		Status:        models.MeetingScheduled,
		Notes:         input.Notes,
		Type:          input.Type,
	}

	if input.Type == "virtual" {
		meeting.MeetLink, meeting.EventID = virtualMeetLink(
			fmt.Sprintf("Property Visit: %s", listing.Title),
			fmt.Sprintf("Virtual visit for listing %q in %s.", listing.Title, listing.City),
			scheduledDate,
			[]string{visitor.Email, listing.Owner.Email},
		)
	}

	if err := storage.DB.Create(&meeting).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if emailErr := services.SendMeetingEmail(services.MeetingEmailInput{
		UserEmail:    visitor.Email,
		OwnerEmail:   listing.Owner.Email,
		ListingTitle: listing.Title,
		MeetingDate:  scheduledDate,
		MeetLink:     meeting.MeetLink,
	}); emailErr != nil {
		log.Printf("meeting email failed: %v", emailErr)
	}

	utils.LogActivity(userID, models.ActionScheduleVisit,
		fmt.Sprintf("Visit scheduled for listing: %s", listing.Title),
		map[string]string{"listingID": strconv.FormatUint(uint64(listing.ID), 10)})

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"success": true, "meeting": meeting})
}

// meetingsForUser returns meetings where the user participates on either side,
// optionally narrowed by status and to upcoming dates, soonest first.
func meetingsForUser(db *gorm.DB, userID uint, status string, upcoming bool) ([]models.Meeting, error) {
	q := db.Model(&models.Meeting{}).
		Where("user_id = ? OR owner_id = ?", userID, userID)

	if status != "" {
		q = q.Where("status = ?", status)
	}
	if upcoming {
		q = q.Where("scheduled_date > ?", time.Now())
	}

	meetings := []models.Meeting{}
	err := q.Preload("Listing").Preload("User").Preload("Owner").
		Order("scheduled_date ASC").Order("id ASC").
		Find(&meetings).Error
	return meetings, err
}

// GET /meetings?status=&upcoming=
func GetMyMeetings(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)

	status := ctx.URLParamDefault("status", "")
	upcoming := ctx.URLParamDefault("upcoming", "") == "true"

	meetings, err := meetingsForUser(storage.DB, userID, status, upcoming)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "count": len(meetings), "meetings": meetings})
}

// GET /meetings/admin
func AdminListMeetings(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	perPage := ctx.URLParamIntDefault("per_page", 25)
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	q := storage.DB.Model(&models.Meeting{})
	if status := ctx.URLParamDefault("status", ""); status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	q.Count(&total)

	var meetings []models.Meeting
	if err := q.Preload("Listing").Preload("User").Preload("Owner").
		Order("scheduled_date DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&meetings).Error; err != nil {
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", err.Error())
		return
	}

	utils.JSONPage(ctx, meetings, page, perPage, total)
}

// fetchParticipantMeeting loads a meeting the caller participates in. Admins
// see every meeting; other users get not-found for meetings they are not part
// of.
func fetchParticipantMeeting(id string, callerID uint, role string, ctx iris.Context) *models.Meeting {
	var meeting models.Meeting
	meetingExists := storage.DB.Preload("Listing").Preload("User").Preload("Owner").
		Where("id = ?", id).Find(&meeting)
	if meetingExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}
	if meetingExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}

	if role != "admin" && meeting.UserID != callerID && meeting.OwnerID != callerID {
		utils.CreateNotFound(ctx)
		return nil
	}

	return &meeting
}

// PUT /meetings/:id
func UpdateMeeting(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	role, _ := ctx.Values().Get("role").(string)
	params := ctx.Params()
	id := params.Get("id")

	meeting := fetchParticipantMeeting(id, userID, role, ctx)
	if meeting == nil {
		return
	}

	var input UpdateMeetingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Status != "" {
		updates["status"] = input.Status
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.ScheduledDate != "" {
		newDate, dateErr := time.Parse(time.RFC3339, input.ScheduledDate)
		if dateErr != nil {
			utils.CreateError(iris.StatusBadRequest, "Validation Error",
				"scheduledDate must be a valid RFC3339 timestamp", ctx)
			return
		}
		updates["scheduled_date"] = newDate
		if input.Status == "" {
			updates["status"] = models.MeetingRescheduled
		}
	}

	if len(updates) == 0 {
		ctx.JSON(iris.Map{"success": true, "meeting": meeting})
		return
	}

	if err := storage.DB.Model(meeting).Updates(updates).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "meeting": meeting})
}

// DELETE /meetings/:id
func CancelMeeting(ctx iris.Context) {
	userID := ctx.Values().Get("userID").(uint)
	role, _ := ctx.Values().Get("role").(string)
	params := ctx.Params()
	id := params.Get("id")

	meeting := fetchParticipantMeeting(id, userID, role, ctx)
	if meeting == nil {
		return
	}

	if err := storage.DB.Model(meeting).Update("status", models.MeetingCancelled).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"success": true, "message": "Meeting cancelled successfully"})
}

type CreateMeetingInput struct {
	ListingID     uint   `json:"listingID" validate:"required"`
	ScheduledDate string `json:"scheduledDate" validate:"required"`
	Type          string `json:"type" validate:"required,oneof=virtual in-person"`
	Notes         string `json:"notes" validate:"max=2048"`
}

type UpdateMeetingInput struct {
	Status        string  `json:"status" validate:"omitempty,oneof=scheduled completed cancelled rescheduled"`
	Notes         *string `json:"notes" validate:"omitempty,max=2048"`
	ScheduledDate string  `json:"scheduledDate" validate:"omitempty"`
}
