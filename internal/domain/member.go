package domain

// GroupProfile is a resolved messaging-platform profile. It is rebuilt on
// every resolution request and never persisted here.
type GroupProfile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl,omitempty"`
	StatusMessage string `json:"statusMessage,omitempty"`
	Email         string `json:"email,omitempty"`
}
