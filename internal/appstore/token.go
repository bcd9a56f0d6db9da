package appstore

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sudokufaceoff/faceoff/internal/constants"
	"github.com/ubuntu/decorate"
)

var (
	// ErrMissingCredentials is returned when the key ID or issuer ID is empty.
	ErrMissingCredentials = errors.New("missing App Store Connect credentials")
)

// Signer creates the short-lived tokens authorizing App Store Connect requests.
type Signer struct {
	keyID    string
	issuerID string
	key      *ecdsa.PrivateKey

	lifetime time.Duration
	now      func() time.Time
}

// claims are the token claims. Apple wants "aud" as a plain string, which RegisteredClaims
// would encode as an array.
type claims struct {
	Audience string `json:"aud"`
	jwt.RegisteredClaims
}

// NewSigner returns a Signer using the ES256 private key of the key ID.
func NewSigner(keyID, issuerID string, key *ecdsa.PrivateKey) (*Signer, error) {
	if keyID == "" || issuerID == "" {
		return nil, fmt.Errorf("%w: keyId and issuerId are required", ErrMissingCredentials)
	}
	if key == nil {
		return nil, fmt.Errorf("%w: private key is required", ErrMissingCredentials)
	}

	return &Signer{
		keyID:    keyID,
		issuerID: issuerID,
		key:      key,
		lifetime: constants.AppStoreTokenLifetime,
		now:      time.Now,
	}, nil
}

// LoadKey reads the PKCS#8 PEM (.p8) private key downloaded from App Store Connect.
func LoadKey(path string) (key *ecdsa.PrivateKey, err error) {
	defer decorate.OnError(&err, "could not load App Store Connect key %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseECPrivateKeyFromPEM(data)
}

// Token returns a signed token valid from now for the signer lifetime, along with its expiry.
func (s *Signer) Token() (token string, expiry time.Time, err error) {
	now := s.now()
	expiry = now.Add(s.lifetime)

	t := jwt.NewWithClaims(jwt.SigningMethodES256, claims{
		Audience: constants.AppStoreConnectAudience,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	})
	t.Header["kid"] = s.keyID

	token, err = t.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("could not sign App Store Connect token: %v", err)
	}
	return token, expiry, nil
}
