package authutil

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		pw   string
		want error
	}{
		{"abc123", ErrPasswordTooShort},
		{"abcdefgh", ErrPasswordWeak},
		{"12345678", ErrPasswordWeak},
		{"abcd1234", nil},
		{"pässwörd1", nil},
		{strings.Repeat("a1", 40), ErrPasswordTooLong},
	}
	for _, tt := range tests {
		if err := ValidatePassword(tt.pw); !errors.Is(err, tt.want) {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.pw, err, tt.want)
		}
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("abcd1234")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "abcd1234" {
		t.Fatal("hash must not equal the password")
	}
	if !CheckPassword("abcd1234", hash) {
		t.Error("CheckPassword should match the original password")
	}
	if CheckPassword("abcd12345", hash) {
		t.Error("CheckPassword should reject a different password")
	}
	if CheckPassword("abcd1234", "") {
		t.Error("CheckPassword should reject an empty hash")
	}
}

func TestPasswordRulesMentionsLength(t *testing.T) {
	if !strings.Contains(PasswordRules(), "8") {
		t.Errorf("PasswordRules() = %q", PasswordRules())
	}
}
