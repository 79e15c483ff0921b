package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ValidationError is one field-level failure. Validators return the full
// list, never just the first hit.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope every error reply uses.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

// FlexFloat decodes from a JSON number or a numeric string. Clients send
// form-sourced payloads where numbers arrive quoted.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return err
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt decodes from a JSON integer or a numeric string.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return err
		}
		*i = FlexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*i = FlexInt(v)
	return nil
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Terms    bool   `json:"terms"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateActivityRequest struct {
	Name            string    `json:"name"`
	Price           FlexFloat `json:"price"`
	Date            string    `json:"date"`
	Duration        *FlexInt  `json:"duration"`
	Location        string    `json:"location"`
	MinParticipants FlexInt   `json:"minParticipants"`
	MaxParticipants FlexInt   `json:"maxParticipants"`
	Status          string    `json:"status"`
}

// UpdateActivityRequest carries only the fields present in the patch; nil
// means "leave as is", which is distinct from an explicit zero.
type UpdateActivityRequest struct {
	Name            *string    `json:"name"`
	Price           *FlexFloat `json:"price"`
	Date            *string    `json:"date"`
	Duration        *FlexInt   `json:"duration"`
	Location        *string    `json:"location"`
	MinParticipants *FlexInt   `json:"minParticipants"`
	MaxParticipants *FlexInt   `json:"maxParticipants"`
	Status          *string    `json:"status"`
}

type CreateBookingRequest struct {
	ActivityID   string  `json:"activityId"`
	Participants FlexInt `json:"participants"`
}

// BookingActivityInfo is the denormalized activity slice included in
// enriched booking responses.
type BookingActivityInfo struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	Price    float64 `json:"price"`
	Date     string  `json:"date"`
	Duration int     `json:"duration"`
	Location string  `json:"location"`
	Status   string  `json:"status"`
}

type BookingResponse struct {
	ID            string              `json:"id"`
	ActivityID    string              `json:"activityId"`
	UserID        string              `json:"userId"`
	Participants  int                 `json:"participants"`
	CreatedAt     string              `json:"createdAt"`
	PaymentID     string              `json:"paymentId,omitempty"`
	PaymentStatus string              `json:"paymentStatus"`
	Activity      BookingActivityInfo `json:"activity"`
}

// ApiUserDto is the outward user shape; external ids are numeric.
type ApiUserDto struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Terms    bool   `json:"terms"`
}

type AuthResponse struct {
	User        ApiUserDto `json:"user"`
	AccessToken string     `json:"accessToken"`
}
