package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUser_ViewOmitsDigest(t *testing.T) {
	u := &User{
		FirstName:      "Ann",
		LastName:       "Lee",
		Phone:          "5551234567",
		HashedPassword: "$argon2id$secret",
		TOSAgreement:   true,
	}

	data, err := json.Marshal(u.View())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "hashedPassword") || strings.Contains(string(data), "argon2id") {
		t.Errorf("View() leaked the digest: %s", data)
	}
	if !strings.Contains(string(data), `"firstName":"Ann"`) {
		t.Errorf("View() = %s, missing firstName", data)
	}
}

func TestUser_JSONFieldNames(t *testing.T) {
	var u User
	in := `{"firstName":"A","lastName":"B","phone":"5551234567","hashedPassword":"h","tosAgreement":true}`
	if err := json.Unmarshal([]byte(in), &u); err != nil {
		t.Fatal(err)
	}
	if u.FirstName != "A" || u.LastName != "B" || u.Phone != "5551234567" || u.HashedPassword != "h" || !u.TOSAgreement {
		t.Errorf("unexpected decode: %+v", u)
	}
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"5551234567", true},
		{"555123456", false},
		{"55512345678", false},
		{"", false},
		{"éééééééééé", true},
	}
	for _, tt := range tests {
		if got := IsValidPhone(tt.in); got != tt.want {
			t.Errorf("IsValidPhone(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

type validateSample struct {
	Name  string `validate:"required"`
	Phone string `validate:"phone"`
	ID    string `validate:"omitempty,tokenid"`
	TOS   bool   `validate:"eq=true"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      validateSample
		wantErr bool
	}{
		{"valid", validateSample{Name: "a", Phone: "5551234567", TOS: true}, false},
		{"valid with id", validateSample{Name: "a", Phone: "5551234567", ID: strings.Repeat("a", 20), TOS: true}, false},
		{"missing name", validateSample{Phone: "5551234567", TOS: true}, true},
		{"short phone", validateSample{Name: "a", Phone: "555", TOS: true}, true},
		{"bad id", validateSample{Name: "a", Phone: "5551234567", ID: "short", TOS: true}, true},
		{"tos false", validateSample{Name: "a", Phone: "5551234567"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
