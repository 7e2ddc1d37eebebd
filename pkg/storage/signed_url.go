package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken covers malformed or tampered download tokens.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("download token expired")
)

// DownloadClaims is the payload carried by a signed download token.
type DownloadClaims struct {
	JobID     string
	CenterID  string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates HMAC-signed download tokens of the
// form <job>.<center>.<expiry>.<path>.<signature>.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a signed token for the given job file.
func (s *SignedURLSigner) Generate(jobID, centerID, relPath string) (string, time.Time, error) {
	if jobID == "" || centerID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("%w: job, center and path required", ErrInvalidToken)
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, errors.New("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	parts := []string{
		jobID,
		centerID,
		strconv.FormatInt(expiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(relPath)),
	}
	parts = append(parts, s.sign(parts))
	return strings.Join(parts, "."), expiresAt, nil
}

// Parse validates a token and returns the embedded claims. When allowExpired
// is true the expiry check is skipped so cleanup can still locate files.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (DownloadClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 5 {
		return DownloadClaims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(s.sign(parts[:4])), []byte(parts[4])) {
		return DownloadClaims{}, ErrInvalidToken
	}
	expUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrInvalidToken
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(parts[3])
	if err != nil {
		return DownloadClaims{}, ErrInvalidToken
	}
	claims := DownloadClaims{
		JobID:     parts[0],
		CenterID:  parts[1],
		Path:      string(rawPath),
		ExpiresAt: time.Unix(expUnix, 0),
	}
	if !allowExpired && s.now().After(claims.ExpiresAt) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

func (s *SignedURLSigner) sign(parts []string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
