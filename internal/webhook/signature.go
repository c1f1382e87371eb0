// Package webhook verifies and decodes signed identity events delivered
// by the external identity provider.
//
// Deliveries carry three headers: a message ID, a unix-seconds timestamp
// and a signature list. The signed content is "{id}.{timestamp}.{body}"
// and the signature is a base64 HMAC-SHA256 under a shared secret the
// provider hands out with a "whsec_" prefix.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Delivery headers set by the provider.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// timestampTolerance bounds the accepted clock skew between the
// provider and this service; deliveries outside it are rejected to
// block replay of captured requests.
const timestampTolerance = 5 * time.Minute

var (
	// ErrMissingHeaders indicates one or more delivery headers are absent.
	ErrMissingHeaders = errors.New("missing webhook headers")

	// ErrInvalidTimestamp indicates a malformed or out-of-tolerance timestamp.
	ErrInvalidTimestamp = errors.New("invalid webhook timestamp")

	// ErrSignatureMismatch indicates no signature candidate matched the payload.
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)

// timeNow is swapped in tests to pin the verification clock.
var timeNow = time.Now

// Validator checks delivery signatures against the shared signing secret.
type Validator struct {
	key []byte
}

// NewValidator decodes the provider's signing secret. The "whsec_"
// prefix is optional; the remainder must be standard base64.
func NewValidator(secret string) (*Validator, error) {
	raw := strings.TrimPrefix(secret, "whsec_")
	if raw == "" {
		return nil, fmt.Errorf("webhook signing secret is required")
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode webhook signing secret: %w", err)
	}
	return &Validator{key: key}, nil
}

// Verify authenticates a delivery. The signature header may hold several
// space-separated "v1,<base64>" candidates (the provider sends multiple
// during secret rotation); any single match passes. Comparison is
// constant time.
func (v *Validator) Verify(payload []byte, msgID, timestamp, sigHeader string) error {
	if msgID == "" || timestamp == "" || sigHeader == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: not unix seconds", ErrInvalidTimestamp)
	}
	if skew := timeNow().Sub(time.Unix(ts, 0)); skew > timestampTolerance || skew < -timestampTolerance {
		return fmt.Errorf("%w: outside tolerance", ErrInvalidTimestamp)
	}

	expected := v.sign(msgID, timestamp, payload)
	for _, candidate := range strings.Split(sigHeader, " ") {
		version, encoded, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		sig, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return ErrSignatureMismatch
}

// Sign computes the "v1,<base64>" signature for a payload, exactly as
// the provider would. Intended for producing test deliveries.
func (v *Validator) Sign(msgID string, ts time.Time, payload []byte) string {
	sig := v.sign(msgID, strconv.FormatInt(ts.Unix(), 10), payload)
	return "v1," + base64.StdEncoding.EncodeToString(sig)
}

func (v *Validator) sign(msgID, timestamp string, payload []byte) []byte {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
