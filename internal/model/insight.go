package model

// RecommendationType is the kind of corrective action suggested.
type RecommendationType string

const (
	RecommendActivity  RecommendationType = "activity"
	RecommendHydration RecommendationType = "hydration"
	RecommendNutrition RecommendationType = "nutrition"
)

// Recommendation is a single corrective action offered to the user.
type Recommendation struct {
	Action string             `json:"action"`
	Type   RecommendationType `json:"type"`
	Icon   string             `json:"icon"`
	Reason string             `json:"reason"`
}

// Insight is the engine's output for one evaluation. It is never persisted.
type Insight struct {
	Text           string          `json:"text"`
	Why            string          `json:"why"`
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// Notification is transient gamification feedback shown after the backend
// awards points.
type Notification struct {
	Points   int      `json:"points"`
	Messages []string `json:"messages"`
}

// Reward is the backend's reconciliation payload for a submitted event.
type Reward struct {
	Streak         int      `json:"streak"`
	PointsEarned   int      `json:"points_earned"`
	PointsMessages []string `json:"points_messages"`
	RemoteEventID  string   `json:"remote_event_id,omitempty"`
}
