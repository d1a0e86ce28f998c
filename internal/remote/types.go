package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/sugarwarrior/internal/model"
)

// ActivityRecord is the backend's activity sub-document.
type ActivityRecord struct {
	Steps      int     `json:"steps"`
	SleepHours float64 `json:"sleepHours"`
}

// UserRecord is the backend user document.
type UserRecord struct {
	ID          string          `json:"_id,omitempty"`
	AnonymousID string          `json:"anonymousID,omitempty"`
	Username    string          `json:"username,omitempty"`
	Name        string          `json:"name,omitempty"`
	Age         int             `json:"age,omitempty"`
	Gender      string          `json:"gender,omitempty"`
	Height      float64         `json:"height,omitempty"`
	Weight      float64         `json:"weight,omitempty"`
	BMI         float64         `json:"bmi,omitempty"`
	DailyLimit  float64         `json:"dailyLimit,omitempty"`
	Onboarded   bool            `json:"onboarded"`
	Avatar      string          `json:"avatar,omitempty"`
	Activity    *ActivityRecord `json:"activity,omitempty"`
	Points      int             `json:"points,omitempty"`
	Streak      int             `json:"streak,omitempty"`
}

// UserFromProfile builds the registration document for p.
func UserFromProfile(p model.Profile) UserRecord {
	return UserRecord{
		AnonymousID: p.AnonymousID,
		Username:    p.Username,
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		Height:      p.Height,
		Weight:      p.Weight,
		BMI:         p.BMI,
		DailyLimit:  p.DailyLimit,
		Onboarded:   p.Onboarded,
		Avatar:      p.Avatar,
		Activity:    &ActivityRecord{Steps: p.Activity.Steps, SleepHours: p.Activity.SleepHours},
		Points:      p.Points,
	}
}

// MergeInto overlays the record's populated fields onto p. The remote id
// always comes from the record; BMI is recomputed from the merged height
// and weight rather than copied.
func (r UserRecord) MergeInto(p model.Profile) model.Profile {
	if r.ID != "" {
		p.RemoteID = r.ID
	}
	if r.AnonymousID != "" {
		p.AnonymousID = r.AnonymousID
	}
	if r.Username != "" {
		p.Username = r.Username
	}
	if r.Name != "" {
		p.Name = r.Name
	}
	if r.Age > 0 {
		p.Age = r.Age
	}
	if r.Gender != "" {
		p.Gender = r.Gender
	}
	if r.DailyLimit > 0 {
		p.DailyLimit = r.DailyLimit
	}
	if r.Avatar != "" {
		p.Avatar = r.Avatar
	}
	if r.Activity != nil {
		p.Activity = model.Activity{Steps: r.Activity.Steps, SleepHours: r.Activity.SleepHours}
	}
	if r.Points > p.Points {
		p.Points = r.Points
	}
	p.Onboarded = p.Onboarded || r.Onboarded

	h, w := p.Height, p.Weight
	if r.Height > 0 {
		h = r.Height
	}
	if r.Weight > 0 {
		w = r.Weight
	}
	return p.WithBody(h, w)
}

// UpdateFields converts a profile edit into the backend's partial update
// document. merged is the profile after the edit; it supplies the full
// activity object and the recomputed BMI.
func UpdateFields(u model.ProfileUpdate, merged model.Profile) map[string]any {
	fields := make(map[string]any)
	if u.Username != nil {
		fields["username"] = *u.Username
	}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Age != nil {
		fields["age"] = *u.Age
	}
	if u.Gender != nil {
		fields["gender"] = *u.Gender
	}
	if u.DailyLimit != nil {
		fields["dailyLimit"] = *u.DailyLimit
	}
	if u.Avatar != nil {
		fields["avatar"] = *u.Avatar
	}
	if u.Onboarded != nil {
		fields["onboarded"] = *u.Onboarded
	}
	if u.Steps != nil || u.SleepHours != nil {
		fields["activity"] = ActivityRecord{Steps: merged.Activity.Steps, SleepHours: merged.Activity.SleepHours}
	}
	if u.ChangesBody() {
		fields["height"] = merged.Height
		fields["weight"] = merged.Weight
		fields["bmi"] = merged.BMI
	}
	return fields
}

// EventSubmission is the body of an event submission.
type EventSubmission struct {
	UserID     string  `json:"userId"`
	FoodName   string  `json:"foodName"`
	SugarGrams float64 `json:"sugarGrams"`
	Calories   float64 `json:"calories"`
	Category   string  `json:"category"`
	Method     string  `json:"method"`
	Timestamp  int64   `json:"timestamp"`
}

// SubmissionFor builds the submission for ev on behalf of remoteUserID.
func SubmissionFor(remoteUserID string, ev model.Event) EventSubmission {
	return EventSubmission{
		UserID:     remoteUserID,
		FoodName:   ev.FoodName,
		SugarGrams: ev.SugarGrams,
		Calories:   ev.Calories,
		Category:   string(ev.Category),
		Method:     string(ev.Method),
		Timestamp:  ev.Timestamp,
	}
}

// SubmitResponse is the backend's gamification result for a submission.
type SubmitResponse struct {
	Streak         int      `json:"streak"`
	PointsEarned   int      `json:"pointsEarned"`
	PointsMessages []string `json:"pointsMessages"`
	EventID        string   `json:"eventId,omitempty"`
}

// Reward converts the response to the model's reconciliation payload.
func (r SubmitResponse) Reward() model.Reward {
	return model.Reward{
		Streak:         r.Streak,
		PointsEarned:   r.PointsEarned,
		PointsMessages: r.PointsMessages,
		RemoteEventID:  r.EventID,
	}
}

// EventRecord is a stored event as returned by the history fetch.
type EventRecord struct {
	ID         string    `json:"_id"`
	UserID     string    `json:"userId,omitempty"`
	ItemName   string    `json:"itemName"`
	SugarGrams float64   `json:"sugarGrams"`
	Calories   float64   `json:"calories"`
	Category   string    `json:"category"`
	Method     string    `json:"method"`
	Timestamp  Timestamp `json:"timestamp"`
}

// Event remaps the record into the local Event shape. The remote id
// serves as both keys since no local id ever existed for it.
func (r EventRecord) Event() model.Event {
	method := model.Method(r.Method)
	if method == "" {
		method = model.MethodConfirmed
	}
	return model.Event{
		ID:         r.ID,
		RemoteID:   r.ID,
		Timestamp:  int64(r.Timestamp),
		FoodName:   r.ItemName,
		SugarGrams: r.SugarGrams,
		Calories:   r.Calories,
		Category:   model.ParseCategory(r.Category),
		Method:     method,
	}
}

// Timestamp is epoch milliseconds on the wire, accepting either a JSON
// number or an RFC 3339 string.
type Timestamp int64

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*t = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			*t = Timestamp(ms)
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parse timestamp %q: %w", s, err)
		}
		*t = Timestamp(parsed.UnixMilli())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse timestamp: %w", err)
	}
	*t = Timestamp(int64(f))
	return nil
}
