package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, IsPrivateIP("127.0.0.1"))
	assert.True(t, IsPrivateIP("10.1.2.3"))
	assert.True(t, IsPrivateIP("192.168.0.10"))
	assert.False(t, IsPrivateIP("203.0.113.7"))
	assert.False(t, IsPrivateIP("not-an-ip"))
}

func TestLookupIPGeoSkipsUnusableAddresses(t *testing.T) {
	for _, ip := range []string{"", "Unknown", "127.0.0.1", "10.0.0.5", "garbage"} {
		loc, err := LookupIPGeo(context.Background(), ip)
		require.NoError(t, err, "ip=%q", ip)
		assert.Equal(t, GeoLocation{}, loc, "ip=%q", ip)
	}
}

func TestGeoCacheRoundTrip(t *testing.T) {
	want := GeoLocation{Country: "Germany", City: "Berlin", Region: "Berlin"}
	geoCacheSet("198.51.100.77", want)

	got, ok := geoCacheGet("198.51.100.77")
	require.True(t, ok)
	assert.Equal(t, want, got)

	loc, err := LookupIPGeo(context.Background(), "198.51.100.77")
	require.NoError(t, err)
	assert.Equal(t, want, loc)
}

func TestLookupIPGeoCachedNeverHitsRemote(t *testing.T) {
	_, ok := LookupIPGeoCached(context.Background(), "198.51.100.200")
	assert.False(t, ok)

	want := GeoLocation{Country: "France", City: "Paris", Region: "IDF"}
	StoreIPGeo("198.51.100.200", want)

	got, ok := LookupIPGeoCached(context.Background(), "198.51.100.200")
	require.True(t, ok)
	assert.Equal(t, want, got)

	// Addresses that cannot resolve report a hit with the zero location.
	for _, ip := range []string{"", "Unknown", "127.0.0.1", "garbage"} {
		loc, ok := LookupIPGeoCached(context.Background(), ip)
		assert.True(t, ok, "ip=%q", ip)
		assert.Equal(t, GeoLocation{}, loc, "ip=%q", ip)
	}
}
