// ABOUTME: Tests for the JSON date type and field bounds
// ABOUTME: Boundary values on both sides of each limit

package library

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDate_JSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-02-29"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := d.Format("2006-01-02"); got != "2024-02-29" {
		t.Errorf("date = %s, want 2024-02-29", got)
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2024-02-29"` {
		t.Errorf("marshal = %s", out)
	}

	for _, bad := range []string{`"2023-02-29"`, `"29.02.2024"`, `20240229`, `"2024-02-29T00:00:00Z"`} {
		if err := json.Unmarshal([]byte(bad), &d); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}

	out, _ = json.Marshal(Date{})
	if string(out) != "null" {
		t.Errorf("zero date = %s, want null", out)
	}
}

func TestFieldBounds(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		err     error
		wantErr string
	}{
		{"username min", (&LoginRequest{Username: "ab", Password: "12345678"}).validate(), ""},
		{"username max", (&LoginRequest{Username: strings.Repeat("u", 16), Password: strings.Repeat("p", 32)}).validate(), ""},
		{"password too long", (&LoginRequest{Username: "ab", Password: strings.Repeat("p", 33)}).validate(), "password"},
		{"multibyte counted as runes", (&LoginRequest{Username: "жё", Password: "пароль12"}).validate(), ""},
		{"birth date today", (&ProfileRequest{FirstName: "Ab", SecondName: "Cd", BirthDate: NewDate(today)}).validate(today), ""},
		{"birth date earliest", (&ProfileRequest{FirstName: "Ab", SecondName: "Cd", BirthDate: NewDate(minUserBirthDate)}).validate(today), ""},
		{"return date today", (&RentRequest{ReaderID: 1, BookID: 1, ReturnDate: NewDate(today)}).validate(today), ""},
		{"rent ids", (&RentRequest{ReturnDate: NewDate(today)}).validate(today), "reader_id must be greater than 0; book_id must be greater than 0"},
		{"rent id", (&ReturnRequest{}).validate(), "rent_id"},
		{"quantity overflow", (&BookRequest{Name: "Ab", Description: "Cd", PublicationDate: NewDate(today), AuthorID: 1, Genre: "Ef", Quantity: 1 << 40}).validate(today), "quantity is out of range"},
		{"author bio max", (&AuthorRequest{Name: "Ab", Bio: strings.Repeat("b", 1001), BirthDate: NewDate(today)}).validate(today), "bio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr == "" {
				if tt.err != nil {
					t.Errorf("unexpected error: %v", tt.err)
				}
				return
			}
			if tt.err == nil || !strings.Contains(tt.err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", tt.err, tt.wantErr)
			}
		})
	}
}
