package models

// Review is a reviewed game resolved for display on a profile.
type Review struct {
	Game   GameDetail `json:"game"`
	Notes  string     `json:"notes"`
	Score  *float64   `json:"score,omitempty"`
	Status string     `json:"status"`
}

type ProfileSnapshot struct {
	User         User              `json:"user"`
	Favorite     *GameDetail       `json:"favorite,omitempty"`
	Completed    []GameDetail      `json:"completed"`
	Reviews      []Review          `json:"reviews"`
	Friends      []Friend          `json:"friends"`
	IsOwn        bool              `json:"is_own"`
	Relationship RelationshipState `json:"relationship"`
}
