package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cfd-certificate/internal/provider"
)

func TestZoneResolver_Resolve(t *testing.T) {
	dns := newFakeDNS(
		provider.HostedZone{ID: "/hostedzone/COM", Name: "com."},
		provider.HostedZone{ID: "/hostedzone/EXAMPLE", Name: "example.com."},
		provider.HostedZone{ID: "/hostedzone/DEV", Name: "dev.example.com."},
	)

	tests := []struct {
		name   string
		domain string
		wantID string
	}{
		{"最长匹配", "api.dev.example.com", "/hostedzone/DEV"},
		{"带末尾点", "_x1.api.dev.example.com.", "/hostedzone/DEV"},
		{"父区域", "www.example.com", "/hostedzone/EXAMPLE"},
		{"区域本身", "example.com.", "/hostedzone/EXAMPLE"},
		{"大小写", "API.Example.COM", "/hostedzone/EXAMPLE"},
		{"标签对齐", "badexample.com", "/hostedzone/COM"},
	}

	resolver := NewZoneResolver(dns)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, err := resolver.Resolve(context.Background(), tt.domain)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, zone.ID)
		})
	}
}

func TestZoneResolver_PrefersPublicZone(t *testing.T) {
	tests := []struct {
		name  string
		zones []provider.HostedZone
	}{
		{"私有区域在前", []provider.HostedZone{
			{ID: "/hostedzone/PRIVATE", Name: "example.com.", Private: true},
			{ID: "/hostedzone/PUBLIC", Name: "example.com."},
		}},
		{"公有区域在前", []provider.HostedZone{
			{ID: "/hostedzone/PUBLIC", Name: "example.com."},
			{ID: "/hostedzone/PRIVATE", Name: "example.com.", Private: true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, err := NewZoneResolver(newFakeDNS(tt.zones...)).Resolve(context.Background(), "_x.example.com.")
			require.NoError(t, err)
			assert.Equal(t, "/hostedzone/PUBLIC", zone.ID)
		})
	}
}

func TestZoneResolver_PrivateZoneOnly(t *testing.T) {
	dns := newFakeDNS(provider.HostedZone{ID: "/hostedzone/PRIVATE", Name: "example.com.", Private: true})

	zone, err := NewZoneResolver(dns).Resolve(context.Background(), "_x.example.com.")
	require.NoError(t, err)
	assert.Equal(t, "/hostedzone/PRIVATE", zone.ID)
}

func TestZoneResolver_NotFound(t *testing.T) {
	dns := newFakeDNS(
		provider.HostedZone{ID: "/hostedzone/EXAMPLE", Name: "example.com."},
	)

	_, err := NewZoneResolver(dns).Resolve(context.Background(), "foo.org")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrZoneNotFound))
	assert.Contains(t, err.Error(), "foo.org")
}

func TestZoneResolver_Pagination(t *testing.T) {
	dns := &fakeDNS{pages: map[string]*provider.ZonePage{
		"": {
			Zones:       []provider.HostedZone{{ID: "/hostedzone/A", Name: "a.com."}},
			NextMarker:  "m1",
			IsTruncated: true,
		},
		"m1": {
			Zones:       []provider.HostedZone{{ID: "/hostedzone/B", Name: "b.com."}},
			NextMarker:  "m2",
			IsTruncated: true,
		},
		"m2": {
			Zones: []provider.HostedZone{{ID: "/hostedzone/C", Name: "c.com."}},
		},
	}}

	resolver := NewZoneResolver(dns)
	zone, err := resolver.Resolve(context.Background(), "www.c.com")
	require.NoError(t, err)
	assert.Equal(t, "/hostedzone/C", zone.ID)

	zones, err := resolver.Zones(context.Background())
	require.NoError(t, err)
	assert.Len(t, zones, 3)
	assert.Equal(t, []string{"", "m1", "m2"}, dns.listCalls)
}

func TestZoneResolver_ListsOnce(t *testing.T) {
	dns := newFakeDNS(provider.HostedZone{ID: "/hostedzone/A", Name: "a.com."})
	resolver := NewZoneResolver(dns)

	for _, name := range []string{"x.a.com", "y.a.com", "z.a.com"} {
		_, err := resolver.Resolve(context.Background(), name)
		require.NoError(t, err)
	}
	assert.Len(t, dns.listCalls, 1)
}

func TestZoneResolver_InvalidMarker(t *testing.T) {
	dns := &fakeDNS{pages: map[string]*provider.ZonePage{
		"": {IsTruncated: true},
	}}

	_, err := NewZoneResolver(dns).Zones(context.Background())
	assert.Error(t, err)
}

func TestZoneResolver_ListError(t *testing.T) {
	dns := newFakeDNS()
	dns.listErr = provider.ErrAccessDenied

	_, err := NewZoneResolver(dns).Resolve(context.Background(), "a.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrAccessDenied))
}
