package model

// Response is the standard JSON envelope used by every endpoint, matching
// the shape clients of the site already consume.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// LoginData is the payload of a successful login response.
type LoginData struct {
	User  AdminUser `json:"user"`
	Token string    `json:"token"`
}
