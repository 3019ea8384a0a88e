// ABOUTME: Request field validation with the bounds the API accepts
// ABOUTME: Date is the YYYY-MM-DD JSON date type used by every request and response

package library

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Wox1e/LibraryAPI/internal/store"
)

// Earliest accepted user birth date.
var minUserBirthDate = time.Date(1850, 1, 1, 0, 0, 0, 0, time.UTC)

// Date is a calendar date serialized as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate wraps t.
func NewDate(t time.Time) Date {
	return Date{Time: t}
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(store.DateLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string in %s form", store.DateLayout)
	}
	t, err := time.Parse(store.DateLayout, s)
	if err != nil {
		return fmt.Errorf("date %q is not in %s form", s, store.DateLayout)
	}
	d.Time = t
	return nil
}

// ValidationError lists every field problem found in a request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// fieldChecker accumulates problems across a request's fields.
type fieldChecker struct {
	problems []string
}

func (c *fieldChecker) addf(format string, args ...any) {
	c.problems = append(c.problems, fmt.Sprintf(format, args...))
}

func (c *fieldChecker) length(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		c.addf("%s must be between %d and %d characters", field, min, max)
	}
}

func (c *fieldChecker) positive(field string, value int64) {
	if value <= 0 {
		c.addf("%s must be greater than 0", field)
	}
}

func (c *fieldChecker) dateBetween(field string, value Date, min, max time.Time) {
	switch {
	case value.IsZero():
		c.addf("%s is required", field)
	case value.Before(min) || value.After(max):
		c.addf("%s must be between %s and %s", field, min.Format(store.DateLayout), max.Format(store.DateLayout))
	}
}

func (c *fieldChecker) dateNotAfter(field string, value Date, max time.Time) {
	switch {
	case value.IsZero():
		c.addf("%s is required", field)
	case value.After(max):
		c.addf("%s must not be after %s", field, max.Format(store.DateLayout))
	}
}

func (c *fieldChecker) dateNotBefore(field string, value Date, min time.Time) {
	switch {
	case value.IsZero():
		c.addf("%s is required", field)
	case value.Before(min):
		c.addf("%s must not be before %s", field, min.Format(store.DateLayout))
	}
}

func (c *fieldChecker) err() error {
	if len(c.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: c.problems}
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	BirthDate  Date   `json:"birth_date"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

func (r *RegisterRequest) validate(today time.Time) error {
	var c fieldChecker
	c.length("first_name", r.FirstName, 2, 100)
	c.length("second_name", r.SecondName, 2, 100)
	c.dateBetween("birth_date", r.BirthDate, minUserBirthDate, today)
	c.length("username", r.Username, 2, 16)
	c.length("password", r.Password, 8, 32)
	return c.err()
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) validate() error {
	var c fieldChecker
	c.length("username", r.Username, 2, 16)
	c.length("password", r.Password, 8, 32)
	return c.err()
}

// ProfileRequest is the body of PUT /profile.
type ProfileRequest struct {
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	BirthDate  Date   `json:"birth_date"`
}

func (r *ProfileRequest) validate(today time.Time) error {
	var c fieldChecker
	c.length("first_name", r.FirstName, 2, 100)
	c.length("second_name", r.SecondName, 2, 100)
	c.dateBetween("birth_date", r.BirthDate, minUserBirthDate, today)
	return c.err()
}

// AuthorRequest is the body of author create and update.
type AuthorRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	BirthDate Date   `json:"birth_date"`
}

func (r *AuthorRequest) validate(today time.Time) error {
	var c fieldChecker
	c.length("name", r.Name, 2, 100)
	c.length("bio", r.Bio, 2, 1000)
	c.dateNotAfter("birth_date", r.BirthDate, today)
	return c.err()
}

// BookRequest is the body of book create and update.
type BookRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PublicationDate Date   `json:"publication_date"`
	AuthorID        int64  `json:"author_id"`
	Genre           string `json:"genre"`
	Quantity        int64  `json:"quantity"`
}

func (r *BookRequest) validate(today time.Time) error {
	var c fieldChecker
	c.length("name", r.Name, 2, 64)
	c.length("description", r.Description, 2, 1000)
	c.dateNotAfter("publication_date", r.PublicationDate, today)
	c.positive("author_id", r.AuthorID)
	c.length("genre", r.Genre, 2, 32)
	c.positive("quantity", r.Quantity)
	if r.Quantity > 1<<31-1 {
		c.addf("quantity is out of range")
	}
	return c.err()
}

// RentRequest is the body of POST /book/rent.
type RentRequest struct {
	ReaderID   int64 `json:"reader_id"`
	BookID     int64 `json:"book_id"`
	ReturnDate Date  `json:"return_date"`
}

func (r *RentRequest) validate(today time.Time) error {
	var c fieldChecker
	c.positive("reader_id", r.ReaderID)
	c.positive("book_id", r.BookID)
	c.dateNotBefore("return_date", r.ReturnDate, today)
	return c.err()
}

// ReturnRequest is the body of POST /book/return.
type ReturnRequest struct {
	RentID int64 `json:"rent_id"`
}

func (r *ReturnRequest) validate() error {
	var c fieldChecker
	c.positive("rent_id", r.RentID)
	return c.err()
}
