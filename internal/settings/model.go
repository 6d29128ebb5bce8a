package settings

import "time"

// Settings is the flat per-user preference record. Persistence is
// last-write-wins; there is no versioning or merge.
type Settings struct {
	UserID        string    `json:"-" bson:"user_id"`
	Theme         string    `json:"theme" bson:"theme"`
	FontScale     float64   `json:"fontScale" bson:"font_scale"`
	ReducedMotion bool      `json:"reducedMotion" bson:"reduced_motion"`
	HighContrast  bool      `json:"highContrast" bson:"high_contrast"`
	AIStyle       string    `json:"aiStyle" bson:"ai_style"`
	Language      string    `json:"language" bson:"language"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updated_at"`
}

// Defaults returns the settings applied before a user ever saves.
func Defaults() Settings {
	return Settings{
		Theme:     "system",
		FontScale: 1.0,
		AIStyle:   "balanced",
		Language:  "en",
	}
}
