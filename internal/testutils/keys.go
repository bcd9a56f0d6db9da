package testutils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// GenerateP8Key writes a new App Store Connect style P-256 private key (PKCS#8 PEM) in dir
// and returns its path with the key itself.
func GenerateP8Key(t *testing.T, dir string) (string, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "Setup: could not generate EC key")

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err, "Setup: could not marshal EC key")

	p := filepath.Join(dir, "AuthKey_TEST.p8")
	data := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	require.NoError(t, os.WriteFile(p, data, 0600), "Setup: could not write key file")

	return p, key
}
