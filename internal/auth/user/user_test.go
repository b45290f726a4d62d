package user

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "lowercases and trims", input: "  Alice  ", want: "alice"},
		{name: "keeps dots and dashes", input: "a.b-c_d", want: "a.b-c_d"},
		{name: "empty", input: "   ", wantErr: ErrEmptyUsername},
		{name: "too short", input: "ab", wantErr: ErrInvalidUsername},
		{name: "too long", input: "abcdefghijklmnopqrstuvwxyz0123456789", wantErr: ErrInvalidUsername},
		{name: "rejects spaces", input: "a b c", wantErr: ErrInvalidUsername},
		{name: "rejects symbols", input: "alice!", wantErr: ErrInvalidUsername},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeUsername(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize username: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewUser(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	u, err := NewUser("Alice", func() time.Time { return fixed }, func() (string, error) { return "user-1", nil })
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	if u.ID != "user-1" {
		t.Fatalf("id = %q, want %q", u.ID, "user-1")
	}
	if u.Username != "alice" {
		t.Fatalf("username = %q, want %q", u.Username, "alice")
	}
	if !u.CreatedAt.Equal(fixed) {
		t.Fatalf("created at = %v, want %v", u.CreatedAt, fixed)
	}
}

func TestNewUserRejectsInvalidInput(t *testing.T) {
	if _, err := NewUser("!!", nil, nil); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("err = %v, want %v", err, ErrInvalidUsername)
	}
}

func TestNewUserDefaultsGenerators(t *testing.T) {
	u, err := NewUser("alice", nil, nil)
	if err != nil {
		t.Fatalf("new user: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if u.CreatedAt.IsZero() {
		t.Fatal("expected created at")
	}
}
