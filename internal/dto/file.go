package dto

import "time"

// FileResponse identifies a stored object and a signed link to it.
type FileResponse struct {
	FileID    string    `json:"fileId"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
