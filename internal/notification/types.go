package notification

import "time"

// DeviceToken is one registered push target for a user.
type DeviceToken struct {
	Token      string    `json:"token"`
	Platform   string    `json:"platform"` // "android", "ios", "web"
	Registered time.Time `json:"registered"`
}

// Devices is the per-user device document.
type Devices struct {
	UserID string        `json:"user_id"`
	Tokens []DeviceToken `json:"tokens"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// Alert is a push-worthy message derived from a detected pattern.
type Alert struct {
	UserID string         `json:"user_id"`
	Title  string         `json:"title"`
	Body   string         `json:"body"`
	Data   map[string]any `json:"data,omitempty"`
}
