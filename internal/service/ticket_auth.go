package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ValidateProfileTicket verifies a signed login ticket issued by the
// account portal. The ticket is a query string carrying at least
// username and issued_at plus a hex HMAC-SHA256 over the remaining
// fields sorted by key. Tickets older than 1 hour are rejected to
// mitigate replay.
func ValidateProfileTicket(ticket, secret string) (url.Values, bool) {
	values, err := url.ParseQuery(ticket)
	if err != nil {
		return nil, false
	}

	sig := values.Get("sig")
	if sig == "" {
		return nil, false
	}
	values.Del("sig")

	var dataCheck []string
	for k, v := range values {
		dataCheck = append(dataCheck, k+"="+strings.Join(v, ""))
	}

	sort.Strings(dataCheck)
	dataString := strings.Join(dataCheck, "\n")

	key := sha256.Sum256([]byte(secret))
	h := hmac.New(sha256.New, key[:])
	h.Write([]byte(dataString))

	calculated := h.Sum(nil)
	provided, err := hex.DecodeString(sig)
	if err != nil {
		return nil, false
	}

	if !hmac.Equal(calculated, provided) {
		return nil, false
	}

	// Freshness check: require issued_at within the last hour
	issuedAtStr := values.Get("issued_at")
	if issuedAtStr == "" {
		return nil, false
	}
	issuedAt, err := strconv.ParseInt(issuedAtStr, 10, 64)
	if err != nil {
		return nil, false
	}

	now := time.Now().Unix()
	// allow small clock skew, but reject anything older than 1 hour
	if now-issuedAt > 3600 || issuedAt-now > 300 {
		return nil, false
	}

	if values.Get("username") == "" {
		return nil, false
	}

	return values, true
}
