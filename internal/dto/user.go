package dto

import (
	"time"

	"github.com/emrahsandernet/kasarcim/internal/models"
	"github.com/emrahsandernet/kasarcim/internal/service"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150" example:"ayse"`
	Email     string `json:"email" binding:"required,email" example:"ayse@example.com"`
	Password  string `json:"password" binding:"required" example:"gizli-parola"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
}

func (r RegisterRequest) Input() service.RegisterInput {
	return service.RegisterInput{
		Username:  r.Username,
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ayse@example.com"`
	Password string `json:"password" binding:"required"`
}

type ProfileResponse struct {
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

type UserResponse struct {
	ID         uuid.UUID        `json:"id"`
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	FirstName  string           `json:"first_name"`
	LastName   string           `json:"last_name"`
	IsStaff    bool             `json:"is_staff"`
	Profile    *ProfileResponse `json:"profile,omitempty"`
	DateJoined time.Time        `json:"date_joined"`
}

func NewUser(u *models.User) UserResponse {
	r := UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsStaff:    u.IsStaff,
		DateJoined: u.CreatedAt,
	}
	if p := u.Profile; p != nil {
		r.Profile = &ProfileResponse{
			PhoneNumber: p.PhoneNumber,
			Address:     p.Address,
			City:        p.City,
			PostalCode:  p.PostalCode,
			Country:     p.Country,
		}
	}
	return r
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func NewAuth(a *service.AuthResult) AuthResponse {
	return AuthResponse{Token: a.Token, ExpiresAt: a.ExpiresAt, User: NewUser(a.User)}
}

// ProfilePatchRequest updates only the fields present in the body.
type ProfilePatchRequest struct {
	FirstName   *string `json:"first_name" binding:"omitempty,max=150"`
	LastName    *string `json:"last_name" binding:"omitempty,max=150"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=15"`
	Address     *string `json:"address"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	PostalCode  *string `json:"postal_code" binding:"omitempty,max=10"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
}

func (r ProfilePatchRequest) Patch() service.ProfilePatch {
	return service.ProfilePatch{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
		City:        r.City,
		PostalCode:  r.PostalCode,
		Country:     r.Country,
	}
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type AddressRequest struct {
	Title       string `json:"title" example:"Ev"`
	AddressType string `json:"address_type" binding:"omitempty,oneof=billing shipping" example:"shipping"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number" binding:"max=15"`
	Address     string `json:"address"`
	City        string `json:"city"`
	District    string `json:"district"`
	PostalCode  string `json:"postal_code" binding:"max=10"`
	Country     string `json:"country"`
	IsDefault   bool   `json:"is_default"`
}

func (r AddressRequest) Input() service.AddressInput {
	return service.AddressInput{
		Title:       r.Title,
		AddressType: models.AddressType(r.AddressType),
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		Address:     r.Address,
		City:        r.City,
		District:    r.District,
		PostalCode:  r.PostalCode,
		Country:     r.Country,
		IsDefault:   r.IsDefault,
	}
}

type AddressResponse struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	AddressType models.AddressType `json:"address_type"`
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	PhoneNumber string             `json:"phone_number"`
	Address     string             `json:"address"`
	City        string             `json:"city"`
	District    string             `json:"district"`
	PostalCode  string             `json:"postal_code"`
	Country     string             `json:"country"`
	IsDefault   bool               `json:"is_default"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func NewAddress(a *models.Address) AddressResponse {
	return AddressResponse{
		ID:          a.ID,
		Title:       a.Title,
		AddressType: a.AddressType,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		PhoneNumber: a.PhoneNumber,
		Address:     a.Address,
		City:        a.City,
		District:    a.District,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
		IsDefault:   a.IsDefault,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func NewAddresses(as []models.Address) []AddressResponse {
	out := make([]AddressResponse, 0, len(as))
	for i := range as {
		out = append(out, NewAddress(&as[i]))
	}
	return out
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=150"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone" binding:"max=30"`
	Subject string `json:"subject" binding:"required,max=100"`
	Message string `json:"message" binding:"required"`
}

func (r ContactRequest) Input() service.ContactInput {
	return service.ContactInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Subject: r.Subject, Message: r.Message}
}

type ContactResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func NewContact(m *models.ContactMessage) ContactResponse {
	return ContactResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Subject:   m.Subject,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func NewContacts(ms []models.ContactMessage) []ContactResponse {
	out := make([]ContactResponse, 0, len(ms))
	for i := range ms {
		out = append(out, NewContact(&ms[i]))
	}
	return out
}
