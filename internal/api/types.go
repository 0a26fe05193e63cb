package api

import (
	"github.com/styrcan/pulse/internal/access"
)

// User is the platform's user record. The local copy is a cache; the
// remote API is authoritative.
type User struct {
	ID         string      `json:"id"`
	Email      string      `json:"email"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Role       access.Role `json:"role"`
	EmployeeID string      `json:"employee_id,omitempty"`
	CompanyID  string      `json:"company_id"`
}

// DisplayName returns the user's full name, falling back to email.
func (u User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Company is the tenant a session is scoped to.
type Company struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Plan         string `json:"plan,omitempty"`
}

// AuthResponse is the payload returned by login and register.
type AuthResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         User    `json:"user"`
	Company      Company `json:"company"`
}

// RegisterRequest creates a new user and company.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
}

// ProfileUpdate carries the mutable fields of the current user.
type ProfileUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
