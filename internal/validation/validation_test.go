package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"bob", "alice_2", "User123", strings.Repeat("a", 32)}
	invalid := []string{"", "ab", "has space", "dash-ed", "émile", strings.Repeat("a", 33)}

	for _, u := range valid {
		assert.NoError(t, ValidateUsername(u), u)
	}
	for _, u := range invalid {
		assert.Error(t, ValidateUsername(u), u)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.co", "user.name+tag@example.org"}
	invalid := []string{"", "plain", "@example.com", "a@b", "a b@example.com",
		strings.Repeat("a", 250) + "@x.com"}

	for _, e := range valid {
		assert.NoError(t, ValidateEmail(e), e)
	}
	for _, e := range invalid {
		assert.Error(t, ValidateEmail(e), e)
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Str0ng!Passw0rd", false},
		{"too short", "Sh0rt!pw", true},
		{"no upper", "str0ng!passw0rd", true},
		{"no lower", "STR0NG!PASSW0RD", true},
		{"no digit", "Strong!Password", true},
		{"no special", "Str0ngPassw0rd", true},
		{"too long", "Aa1!" + strings.Repeat("x", 128), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	assert.NoError(t, ValidateSlug("my-first-post"))
	assert.Error(t, ValidateSlug("ab"), "too short")
	assert.Error(t, ValidateSlug("Has-Upper"))
	assert.Error(t, ValidateSlug("under_score"))
	assert.Error(t, ValidateSlug("admin"), "reserved")
	assert.Error(t, ValidateSlug("blogs"), "reserved")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"Hello, World!", "hello-world"},
		{"  Spaces  everywhere  ", "spaces-everywhere"},
		{"Already-slugged", "already-slugged"},
		{"Ünïcode Dröps", "n-code-dr-ps"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, Slugify(tt.in), tt.in)
	}
}

func TestValidateContactMessage(t *testing.T) {
	assert.Error(t, ValidateContactMessage("too short"))
	assert.Error(t, ValidateContactMessage("         padded        "))
	assert.NoError(t, ValidateContactMessage("This is a real inquiry."))
	assert.Error(t, ValidateContactMessage(strings.Repeat("x", 5001)))
}
