package models

// BackendConfig is the connection payload served at /backend-config.
type BackendConfig struct {
	APIKey            string `json:"apiKey"`
	AuthDomain        string `json:"authDomain"`
	ProjectID         string `json:"projectId"`
	StorageBucket     string `json:"storageBucket,omitempty"`
	MessagingSenderID string `json:"messagingSenderId,omitempty"`
	AppID             string `json:"appId,omitempty"`
	MeasurementID     string `json:"measurementId,omitempty"`
	// DatabaseURL overrides the locally configured Postgres DSN when set.
	DatabaseURL string `json:"databaseUrl,omitempty"`
}
