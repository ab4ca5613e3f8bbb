package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

var geoHTTPClient = &http.Client{Timeout: 3 * time.Second}

// GeoLocation is the coarse location derived from a viewer IP.
type GeoLocation struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region"`
}

type geoAPIResp struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"regionName"`
}

// simple in-memory TTL cache in front of Redis
type geoCacheEntry struct {
	value     GeoLocation
	expiresAt time.Time
}

var (
	geoCacheMu sync.RWMutex
	geoCache   = make(map[string]geoCacheEntry)
	geoTTL     = 24 * time.Hour
)

// IsPrivateIP returns true for RFC1918 and loopback ranges.
func IsPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}

// LookupIPGeoCached resolves a location from the caches only, never the
// remote API. Addresses that could never resolve (empty, private,
// unparseable) report the zero location as a hit so callers skip them.
func LookupIPGeoCached(ctx context.Context, ip string) (GeoLocation, bool) {
	if ip == "" || ip == "Unknown" || IsPrivateIP(ip) || net.ParseIP(ip) == nil {
		return GeoLocation{}, true
	}
	if v, ok := geoCacheGet(ip); ok {
		return v, true
	}
	if v, ok := geoRedisGet(ctx, ip); ok {
		geoCacheSet(ip, v)
		return v, true
	}
	return GeoLocation{}, false
}

// StoreIPGeo records a resolved location in both cache tiers.
func StoreIPGeo(ip string, loc GeoLocation) {
	geoCacheSet(ip, loc)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	geoRedisSet(ctx, ip, loc)
}

// LookupIPGeo resolves country/city/region for a public IP using the remote
// geo API, with in-memory and Redis caching. Private, empty, and unparseable
// addresses resolve to the zero location without error.
func LookupIPGeo(ctx context.Context, ip string) (GeoLocation, error) {
	if ip == "" || ip == "Unknown" || IsPrivateIP(ip) || net.ParseIP(ip) == nil {
		return GeoLocation{}, nil
	}
	if v, ok := geoCacheGet(ip); ok {
		return v, nil
	}
	if v, ok := geoRedisGet(ctx, ip); ok {
		geoCacheSet(ip, v)
		return v, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://ip-api.com/json/"+ip+"?fields=status,country,city,regionName", nil)
	if err != nil {
		return GeoLocation{}, err
	}
	resp, err := geoHTTPClient.Do(req)
	if err != nil {
		return GeoLocation{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GeoLocation{}, errors.New("geo api non-200")
	}
	var body geoAPIResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return GeoLocation{}, err
	}
	if body.Status != "success" {
		return GeoLocation{}, nil
	}
	loc := GeoLocation{Country: body.Country, City: body.City, Region: body.Region}
	StoreIPGeo(ip, loc)
	return loc, nil
}

func geoCacheGet(ip string) (GeoLocation, bool) {
	geoCacheMu.RLock()
	e, ok := geoCache[ip]
	geoCacheMu.RUnlock()
	if !ok {
		return GeoLocation{}, false
	}
	if time.Now().After(e.expiresAt) {
		geoCacheMu.Lock()
		delete(geoCache, ip)
		geoCacheMu.Unlock()
		return GeoLocation{}, false
	}
	return e.value, true
}

func geoCacheSet(ip string, loc GeoLocation) {
	geoCacheMu.Lock()
	geoCache[ip] = geoCacheEntry{value: loc, expiresAt: time.Now().Add(geoTTL)}
	geoCacheMu.Unlock()
}

func geoRedisKey(ip string) string { return "ipgeo:" + ip }

func geoRedisGet(ctx context.Context, ip string) (GeoLocation, bool) {
	cli := GetRedis()
	if cli == nil {
		return GeoLocation{}, false
	}
	ctx2, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	raw, err := cli.Get(ctx2, geoRedisKey(ip)).Bytes()
	if err != nil || len(raw) == 0 {
		return GeoLocation{}, false
	}
	var loc GeoLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		return GeoLocation{}, false
	}
	return loc, true
}

func geoRedisSet(ctx context.Context, ip string, loc GeoLocation) {
	cli := GetRedis()
	if cli == nil {
		return
	}
	b, err := json.Marshal(loc)
	if err != nil {
		return
	}
	ctx2, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_ = cli.Set(ctx2, geoRedisKey(ip), b, geoTTL).Err()
}
