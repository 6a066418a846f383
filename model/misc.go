package model

// SessionUser is the authenticated identity carried in the session cookie.
type SessionUser struct {
	ID       string
	Username string
	Admin    bool
}

// BaseData holds the navigation state and flash messages for the base layout
type BaseData struct {
	Active      string
	CurrentUser *SessionUser
	Success     []string
	Error       []string
}
