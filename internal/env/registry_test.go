package env

import (
	"errors"
	"testing"
)

func TestNewRegistry_DuplicateKey(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(
		ServiceDefinition{Name: "A", Keys: []KeyDefinition{{Key: "SHARED", Type: TypeString}}},
		ServiceDefinition{Name: "B", Keys: []KeyDefinition{{Key: "SHARED", Type: TypeString}}},
	)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("NewRegistry() error = %v, want ErrDuplicateKey", err)
	}
}

func TestNewRegistry_InvalidKey(t *testing.T) {
	t.Parallel()

	for _, key := range []Key{"", "1ABC", "HAS SPACE", "DASH-KEY"} {
		_, err := NewRegistry(ServiceDefinition{Name: "A", Keys: []KeyDefinition{{Key: key}}})
		if !errors.Is(err, ErrInvalidKey) {
			t.Errorf("NewRegistry(%q) error = %v, want ErrInvalidKey", key, err)
		}
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	tests := []struct {
		key        Key
		service    string
		wantAuto   bool
		wantSecret bool
	}{
		{KeyAppURL, "General", true, false},
		{KeyDatabaseURL, "Database", false, true},
		{KeyAuthSecret, "Auth", true, true},
		{KeyClerkEncryptionKey, "Clerk", true, true},
		{KeyStripeAPIKey, "Stripe", false, true},
		{KeyResendEmailFrom, "Resend", true, false},
	}
	for _, tt := range tests {
		def, svc, ok := reg.Lookup(string(tt.key))
		if !ok {
			t.Errorf("Lookup(%s) not found", tt.key)
			continue
		}
		if svc.Name != tt.service {
			t.Errorf("Lookup(%s) service = %q, want %q", tt.key, svc.Name, tt.service)
		}
		if def.HasAutoValue() != tt.wantAuto {
			t.Errorf("%s HasAutoValue() = %v, want %v", tt.key, def.HasAutoValue(), tt.wantAuto)
		}
		if def.Type.IsSecret() != tt.wantSecret {
			t.Errorf("%s IsSecret() = %v, want %v", tt.key, def.Type.IsSecret(), tt.wantSecret)
		}
	}

	if def, _, _ := reg.Lookup(string(KeyAppURL)); def.Default != "http://localhost:3000" {
		t.Errorf("NEXT_PUBLIC_APP_URL default = %q", def.Default)
	}
	if got := reg.ServiceOf("NOT_REGISTERED"); got != OtherService {
		t.Errorf("ServiceOf(unknown) = %q, want %q", got, OtherService)
	}
}

func TestRegistry_ServicesIsACopy(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	svcs := reg.Services()
	svcs[0].Name = "mutated"
	svcs[0].Keys[0].Default = "mutated"

	if reg.Services()[0].Name == "mutated" {
		t.Error("Services() exposed the registry's service slice")
	}
	if def, _, _ := reg.Lookup(string(KeyAppURL)); def.Default == "mutated" {
		t.Error("Services() exposed the registry's key slice")
	}
}

func TestKeyType_Label(t *testing.T) {
	t.Parallel()

	tests := map[KeyType]string{
		TypeDatabaseURL: "Database Url",
		TypePassword:    "Password",
		TypeEmail:       "Email",
	}
	for typ, want := range tests {
		if got := typ.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", typ, got, want)
		}
	}
}
