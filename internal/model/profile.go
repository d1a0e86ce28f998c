package model

import "math"

// Activity is the user's latest activity snapshot.
type Activity struct {
	Steps      int     `json:"steps" validate:"gte=0"`
	SleepHours float64 `json:"sleep_hours" validate:"gte=0"`
}

// Profile is the identity and physiology snapshot of the user.
//
// AnonymousID is the stable client-chosen identity used for backend lookups;
// RemoteID is assigned by the backend once a record exists. The two are
// independent keys and must never be assumed equal.
type Profile struct {
	AnonymousID string   `json:"anonymous_id,omitempty"`
	RemoteID    string   `json:"remote_id,omitempty"`
	Username    string   `json:"username,omitempty"`
	Name        string   `json:"name"`
	Age         int      `json:"age" validate:"gt=0"`
	Gender      string   `json:"gender,omitempty"`
	Height      float64  `json:"height_cm" validate:"gt=0"`
	Weight      float64  `json:"weight_kg" validate:"gt=0"`
	BMI         float64  `json:"bmi"`
	DailyLimit  float64  `json:"daily_limit_g" validate:"gt=0"`
	Onboarded   bool     `json:"onboarded"`
	Avatar      string   `json:"avatar,omitempty"`
	Activity    Activity `json:"activity"`
	Points      int      `json:"points" validate:"gte=0"`
}

// Default profile values used on first launch and after logout.
const (
	DefaultAge        = 22
	DefaultHeight     = 170
	DefaultWeight     = 70
	DefaultDailyLimit = 30
	DefaultSteps      = 4500
	DefaultSleepHours = 7
	DefaultAvatar     = "👤"
)

// DefaultProfile returns the profile a fresh install starts with.
func DefaultProfile() Profile {
	p := Profile{
		Age:        DefaultAge,
		DailyLimit: DefaultDailyLimit,
		Avatar:     DefaultAvatar,
		Activity:   Activity{Steps: DefaultSteps, SleepHours: DefaultSleepHours},
	}
	return p.WithBody(DefaultHeight, DefaultWeight)
}

// WithBody returns a copy of p with the given height (cm) and weight (kg)
// and a BMI recomputed from them. It is the only way BMI changes.
func (p Profile) WithBody(heightCm, weightKg float64) Profile {
	p.Height = heightCm
	p.Weight = weightKg
	p.BMI = ComputeBMI(heightCm, weightKg)
	return p
}

// HasIdentity reports whether the profile carries a stable anonymous identifier.
func (p Profile) HasIdentity() bool {
	return p.AnonymousID != ""
}

// ComputeBMI returns weight / (height in metres)^2 rounded to one decimal.
// Returns 0 when height is not positive.
func ComputeBMI(heightCm, weightKg float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10
}

// ProfileUpdate is a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Username   *string  `json:"username,omitempty"`
	Name       *string  `json:"name,omitempty"`
	Age        *int     `json:"age,omitempty"`
	Gender     *string  `json:"gender,omitempty"`
	Height     *float64 `json:"height_cm,omitempty"`
	Weight     *float64 `json:"weight_kg,omitempty"`
	DailyLimit *float64 `json:"daily_limit_g,omitempty"`
	Avatar     *string  `json:"avatar,omitempty"`
	Steps      *int     `json:"steps,omitempty"`
	SleepHours *float64 `json:"sleep_hours,omitempty"`
	Onboarded  *bool    `json:"onboarded,omitempty"`
}

// ChangesBody reports whether the update touches height or weight.
func (u ProfileUpdate) ChangesBody() bool {
	return u.Height != nil || u.Weight != nil
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u == ProfileUpdate{}
}

// Apply returns p with the update merged in. BMI is recomputed only when
// height or weight is part of the update.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Username != nil {
		p.Username = *u.Username
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.DailyLimit != nil {
		p.DailyLimit = *u.DailyLimit
	}
	if u.Avatar != nil {
		p.Avatar = *u.Avatar
	}
	if u.Steps != nil {
		p.Activity.Steps = *u.Steps
	}
	if u.SleepHours != nil {
		p.Activity.SleepHours = *u.SleepHours
	}
	if u.Onboarded != nil {
		p.Onboarded = *u.Onboarded
	}
	if u.ChangesBody() {
		h, w := p.Height, p.Weight
		if u.Height != nil {
			h = *u.Height
		}
		if u.Weight != nil {
			w = *u.Weight
		}
		p = p.WithBody(h, w)
	}
	return p
}
