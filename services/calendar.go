package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Google Calendar configuration via environment variables
// GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REFRESH_TOKEN, GOOGLE_CALENDAR_ID (optional)

// CalendarEvent is the result of a successful meeting-link creation.
type CalendarEvent struct {
	MeetLink string
	EventID  string
}

type calendarEventInput struct {
	Summary     string
	Description string
	StartTime   time.Time
	Attendees   []string
}

// CreateMeetEvent creates a calendar event with a conference link for a
// virtual property visit. Callers treat failures as best-effort: a meeting is
// still scheduled without a link.
func CreateMeetEvent(summary, description string, startTime time.Time, attendees []string) (*CalendarEvent, error) {
	accessToken, err := refreshAccessToken()
	if err != nil {
		return nil, err
	}

	return insertEvent(accessToken, calendarEventInput{
		Summary:     summary,
		Description: description,
		StartTime:   startTime,
		Attendees:   attendees,
	})
}

// refreshAccessToken exchanges the stored refresh token for a short-lived
// access token.
func refreshAccessToken() (string, error) {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	refreshToken := os.Getenv("GOOGLE_REFRESH_TOKEN")

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return "", fmt.Errorf("missing Google Calendar env vars")
	}

	form := url.Values{}
	form.Add("client_id", clientID)
	form.Add("client_secret", clientSecret)
	form.Add("refresh_token", refreshToken)
	form.Add("grant_type", "refresh_token")

	res, err := http.Post("https://oauth2.googleapis.com/token",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}
	if res.StatusCode != 200 {
		return "", fmt.Errorf("token refresh failed with status %d: %s", res.StatusCode, string(body))
	}

	var tokenRes struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenRes); err != nil {
		return "", err
	}
	if tokenRes.AccessToken == "" {
		return "", fmt.Errorf("no access token in refresh response")
	}

	return tokenRes.AccessToken, nil
}

func insertEvent(accessToken string, input calendarEventInput) (*CalendarEvent, error) {
	calendarID := os.Getenv("GOOGLE_CALENDAR_ID")
	if calendarID == "" {
		calendarID = "primary"
	}

	attendees := make([]map[string]string, 0, len(input.Attendees))
	for _, email := range input.Attendees {
		attendees = append(attendees, map[string]string{"email": email})
	}

	endTime := input.StartTime.Add(30 * time.Minute)
	payload := map[string]interface{}{
		"summary":     input.Summary,
		"description": input.Description,
		"start":       map[string]string{"dateTime": input.StartTime.Format(time.RFC3339)},
		"end":         map[string]string{"dateTime": endTime.Format(time.RFC3339)},
		"attendees":   attendees,
		"conferenceData": map[string]interface{}{
			"createRequest": map[string]interface{}{
				"requestId": fmt.Sprintf("meet-%d", time.Now().UnixNano()),
				"conferenceSolutionKey": map[string]string{
					"type": "hangoutsMeet",
				},
			},
		},
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"https://www.googleapis.com/calendar/v3/calendars/%s/events?conferenceDataVersion=1",
		url.PathEscape(calendarID))

	req, err := http.NewRequest("POST", endpoint, bytes.NewReader(payloadJSON))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("event creation failed with status %d: %s", res.StatusCode, string(body))
	}

	var eventRes struct {
		ID          string `json:"id"`
		HangoutLink string `json:"hangoutLink"`
	}
	if err := json.Unmarshal(body, &eventRes); err != nil {
		return nil, err
	}

	return &CalendarEvent{MeetLink: eventRes.HangoutLink, EventID: eventRes.ID}, nil
}
