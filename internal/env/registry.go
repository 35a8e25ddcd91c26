package env

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key is a known environment variable name.
type Key string

// Keys known to the registry.
const (
	KeyAppURL Key = "NEXT_PUBLIC_APP_URL"

	KeyDatabaseURL Key = "DATABASE_URL"

	KeyAuthSecret       Key = "AUTH_SECRET"
	KeyAuthGitHubID     Key = "AUTH_GITHUB_ID"
	KeyAuthGitHubSecret Key = "AUTH_GITHUB_SECRET"
	KeyAuthGoogleID     Key = "AUTH_GOOGLE_ID"
	KeyAuthGoogleSecret Key = "AUTH_GOOGLE_SECRET"

	KeyClerkPublishableKey Key = "NEXT_PUBLIC_CLERK_PUBLISHABLE_KEY"
	KeyClerkSecretKey      Key = "CLERK_SECRET_KEY"
	KeyClerkEncryptionKey  Key = "CLERK_ENCRYPTION_KEY"

	KeyStripePublishableKey Key = "NEXT_PUBLIC_STRIPE_PUBLISHABLE_KEY"
	KeyStripeAPIKey         Key = "STRIPE_API_KEY"
	KeyStripeWebhookSecret  Key = "STRIPE_WEBHOOK_SECRET"

	KeyPolarAccessToken   Key = "POLAR_ACCESS_TOKEN"
	KeyPolarWebhookSecret Key = "POLAR_WEBHOOK_SECRET"
	KeyPolarEnvironment   Key = "POLAR_ENVIRONMENT"

	KeyResendAPIKey    Key = "RESEND_API_KEY"
	KeyResendEmailFrom Key = "NEXT_PUBLIC_RESEND_EMAIL_FROM"

	KeyUploadthingToken  Key = "UPLOADTHING_TOKEN"
	KeyUploadthingSecret Key = "UPLOADTHING_SECRET"
)

// KeyType is the semantic type of a value.
type KeyType string

const (
	TypeString      KeyType = "string"
	TypeEmail       KeyType = "email"
	TypePassword    KeyType = "password"
	TypeNumber      KeyType = "number"
	TypeBoolean     KeyType = "boolean"
	TypeDatabaseURL KeyType = "database-url"
)

// IsSecret reports whether values of this type should be masked on input.
func (t KeyType) IsSecret() bool {
	return t == TypePassword || t == TypeDatabaseURL
}

// Label returns a display label such as "Database Url".
func (t KeyType) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(t), "-", " "))
}

// KeyDefinition describes one environment key owned by a service. Hidden
// keys are counted, not named, in listings.
type KeyDefinition struct {
	Key          Key        `yaml:"key"`
	Type         KeyType    `yaml:"type"`
	Default      string     `yaml:"default,omitempty"`
	Generator    *Generator `yaml:"generator,omitempty"`
	Instruction  string     `yaml:"instruction,omitempty"`
	Hidden       bool       `yaml:"hidden,omitempty"`
	DashboardURL string     `yaml:"dashboard_url,omitempty"`
}

// HasAutoValue reports whether the key can be filled without asking.
func (d KeyDefinition) HasAutoValue() bool {
	return d.Default != "" || d.Generator != nil
}

// ServiceDefinition groups the keys of one external service.
type ServiceDefinition struct {
	Name         string          `yaml:"name"`
	DashboardURL string          `yaml:"dashboard_url,omitempty"`
	Keys         []KeyDefinition `yaml:"keys"`
}

// OtherService names the group of keys the registry does not know.
const OtherService = "Other"

var keyNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// ValidKeyName reports whether name can be used as an environment key.
func ValidKeyName(name string) bool {
	return keyNamePattern.MatchString(name)
}

type registryEntry struct {
	def     KeyDefinition
	service int
}

// Registry is an immutable set of services indexed by key.
type Registry struct {
	services []ServiceDefinition
	byKey    map[Key]registryEntry
}

// NewRegistry builds a Registry. Every key must be a valid name and
// belong to exactly one service.
func NewRegistry(services ...ServiceDefinition) (*Registry, error) {
	r := &Registry{
		services: slices.Clone(services),
		byKey:    make(map[Key]registryEntry),
	}
	for i, svc := range r.services {
		r.services[i].Keys = slices.Clone(svc.Keys)
		for _, def := range svc.Keys {
			if !ValidKeyName(string(def.Key)) {
				return nil, fmt.Errorf("%w: %q in service %s", ErrInvalidKey, def.Key, svc.Name)
			}
			if prev, dup := r.byKey[def.Key]; dup {
				return nil, fmt.Errorf("%w: %s in %s and %s",
					ErrDuplicateKey, def.Key, r.services[prev.service].Name, svc.Name)
			}
			r.byKey[def.Key] = registryEntry{def: def, service: i}
		}
	}
	return r, nil
}

// Lookup returns the definition of key and the service owning it.
func (r *Registry) Lookup(key string) (KeyDefinition, ServiceDefinition, bool) {
	if r == nil {
		return KeyDefinition{}, ServiceDefinition{}, false
	}
	e, ok := r.byKey[Key(key)]
	if !ok {
		return KeyDefinition{}, ServiceDefinition{}, false
	}
	return e.def, r.services[e.service], true
}

// ServiceOf returns the service name owning key, or OtherService.
func (r *Registry) ServiceOf(key string) string {
	if _, svc, ok := r.Lookup(key); ok {
		return svc.Name
	}
	return OtherService
}

// Services returns a copy of the registered services in declaration order.
func (r *Registry) Services() []ServiceDefinition {
	if r == nil {
		return nil
	}
	out := make([]ServiceDefinition, len(r.services))
	for i, svc := range r.services {
		svc.Keys = slices.Clone(svc.Keys)
		out[i] = svc
	}
	return out
}

func secretGenerator(purpose string) *Generator {
	return &Generator{Charset: CharsetAlphanumeric, Purpose: purpose}
}

// DefaultServices returns the services reliverse templates ship with.
func DefaultServices() []ServiceDefinition {
	return []ServiceDefinition{
		{
			Name: "General",
			Keys: []KeyDefinition{
				{Key: KeyAppURL, Type: TypeString, Default: "http://localhost:3000",
					Instruction: "The public URL of the app. Use your domain in production."},
			},
		},
		{
			Name:         "Database",
			DashboardURL: "https://console.neon.tech",
			Keys: []KeyDefinition{
				{Key: KeyDatabaseURL, Type: TypeDatabaseURL,
					Instruction: "A Postgres connection string, e.g. from Neon: Dashboard > Connection Details.",
					DashboardURL: "https://console.neon.tech"},
			},
		},
		{
			Name:         "Auth",
			DashboardURL: "https://github.com/settings/developers",
			Keys: []KeyDefinition{
				{Key: KeyAuthSecret, Type: TypePassword, Generator: secretGenerator("auth-secret"), Hidden: true},
				{Key: KeyAuthGitHubID, Type: TypeString,
					Instruction: "GitHub OAuth app Client ID. Callback: <app url>/api/auth/callback/github."},
				{Key: KeyAuthGitHubSecret, Type: TypePassword,
					Instruction: "GitHub OAuth app Client Secret."},
				{Key: KeyAuthGoogleID, Type: TypeString,
					Instruction: "Google OAuth Client ID from Google Cloud Console > Credentials.",
					DashboardURL: "https://console.cloud.google.com/apis/credentials"},
				{Key: KeyAuthGoogleSecret, Type: TypePassword,
					Instruction:  "Google OAuth Client Secret.",
					DashboardURL: "https://console.cloud.google.com/apis/credentials"},
			},
		},
		{
			Name:         "Clerk",
			DashboardURL: "https://dashboard.clerk.com",
			Keys: []KeyDefinition{
				{Key: KeyClerkPublishableKey, Type: TypeString,
					Instruction: "Clerk Dashboard > API Keys > Publishable key (pk_...)."},
				{Key: KeyClerkSecretKey, Type: TypePassword,
					Instruction: "Clerk Dashboard > API Keys > Secret key (sk_...)."},
				{Key: KeyClerkEncryptionKey, Type: TypePassword, Generator: secretGenerator("clerk-encryption-key"), Hidden: true},
			},
		},
		{
			Name:         "Stripe",
			DashboardURL: "https://dashboard.stripe.com/test/apikeys",
			Keys: []KeyDefinition{
				{Key: KeyStripePublishableKey, Type: TypeString,
					Instruction: "Stripe Developers > API keys > Publishable key (pk_...)."},
				{Key: KeyStripeAPIKey, Type: TypePassword,
					Instruction: "Stripe Developers > API keys > Secret key (sk_...)."},
				{Key: KeyStripeWebhookSecret, Type: TypePassword,
					Instruction:  "Stripe Developers > Webhooks > Signing secret (whsec_...).",
					DashboardURL: "https://dashboard.stripe.com/test/webhooks"},
			},
		},
		{
			Name:         "Polar",
			DashboardURL: "https://polar.sh/dashboard",
			Keys: []KeyDefinition{
				{Key: KeyPolarAccessToken, Type: TypePassword,
					Instruction: "Polar Settings > Developers > New token."},
				{Key: KeyPolarWebhookSecret, Type: TypePassword,
					Instruction: "Polar Settings > Webhooks > Secret."},
				{Key: KeyPolarEnvironment, Type: TypeString, Default: "production"},
			},
		},
		{
			Name:         "Resend",
			DashboardURL: "https://resend.com/api-keys",
			Keys: []KeyDefinition{
				{Key: KeyResendAPIKey, Type: TypePassword,
					Instruction: "Resend > API Keys > Create API Key (re_...)."},
				{Key: KeyResendEmailFrom, Type: TypeEmail, Default: "onboarding@resend.dev",
					Instruction: "Sender address; must belong to a domain verified in Resend."},
			},
		},
		{
			Name:         "Uploadthing",
			DashboardURL: "https://uploadthing.com/dashboard",
			Keys: []KeyDefinition{
				{Key: KeyUploadthingToken, Type: TypePassword,
					Instruction: "Uploadthing Dashboard > API Keys > V7 token."},
				{Key: KeyUploadthingSecret, Type: TypePassword,
					Instruction: "Uploadthing Dashboard > API Keys > Secret key (sk_live_...)."},
			},
		},
	}
}

// DefaultRegistry returns the registry built from DefaultServices.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultServices()...)
	if err != nil {
		panic(fmt.Sprintf("env: invalid built-in registry: %v", err))
	}
	return r
}
