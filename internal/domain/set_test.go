package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSet(t *testing.T) {
	set, err := NewSet("Example.com.", "www.example.com", "*.example.com")
	require.NoError(t, err)

	assert.Equal(t, Set{"example.com", "www.example.com", "*.example.com"}, set)
	assert.Equal(t, "example.com", set.Primary())
	assert.Equal(t, []string{"www.example.com", "*.example.com"}, set.Alternatives())
	assert.False(t, set.Empty())
}

func TestNewSet_PrimaryOnly(t *testing.T) {
	set, err := NewSet("example.com")
	require.NoError(t, err)

	assert.Len(t, set, 1)
	assert.Nil(t, set.Alternatives())
}

func TestNewSet_Errors(t *testing.T) {
	tests := []struct {
		name         string
		primary      string
		alternatives []string
		err          error
	}{
		{name: "empty primary", primary: "", err: ErrEmptySet},
		{name: "blank primary", primary: "   ", err: ErrEmptySet},
		{name: "empty label", primary: "example..com", err: ErrInvalidName},
		{name: "empty alternative", primary: "example.com", alternatives: []string{""}, err: ErrInvalidName},
		{name: "duplicate alternative", primary: "example.com", alternatives: []string{"www.example.com", "WWW.example.com."}, err: ErrDuplicateName},
		{name: "space in label", primary: "exa mple.com", err: ErrInvalidName},
		{name: "space in alternative", primary: "example.com", alternatives: []string{"www example.com"}, err: ErrInvalidName},
		{name: "leading hyphen", primary: "-example.com", err: ErrInvalidName},
		{name: "trailing hyphen", primary: "example-.com", err: ErrInvalidName},
		{name: "underscore", primary: "my_host.example.com", err: ErrInvalidName},
		{name: "inner wildcard", primary: "www.*.example.com", err: ErrInvalidName},
		{name: "partial wildcard", primary: "w*.example.com", err: ErrInvalidName},
		{name: "bare wildcard", primary: "*", err: ErrInvalidName},
		{name: "label too long", primary: strings.Repeat("a", 64) + ".com", err: ErrInvalidName},
		{name: "alternative equals primary", primary: "example.com", alternatives: []string{"example.com"}, err: ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSet(tt.primary, tt.alternatives...)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNewSet_ValidNames(t *testing.T) {
	for _, name := range []string{
		"example.com",
		"*.example.com",
		"xn--bcher-kva.example",
		"a-b.c0.example.com",
		"localhost",
		strings.Repeat("a", 63) + ".com",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewSet(name)
			assert.NoError(t, err)
		})
	}
}

func TestSet_CoveredBy(t *testing.T) {
	sans := []string{"a.com", "b.com", "c.com"}

	ab, err := NewSet("a.com", "b.com")
	require.NoError(t, err)
	assert.True(t, ab.CoveredBy(sans))

	ad, err := NewSet("a.com", "d.com")
	require.NoError(t, err)
	assert.False(t, ad.CoveredBy(sans))

	only, err := NewSet("a.com")
	require.NoError(t, err)
	assert.True(t, only.CoveredBy(nil))
}
