// Package auth signs Kalshi REST requests with RSA-PSS.
package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Header names set on every signed request.
const (
	HeaderKey       = "KALSHI-ACCESS-KEY"
	HeaderTimestamp = "KALSHI-ACCESS-TIMESTAMP"
	HeaderSignature = "KALSHI-ACCESS-SIGNATURE"
)

// Credentials holds the API key and private key for signing requests.
type Credentials struct {
	KeyID      string          // API key ID from Kalshi dashboard
	PrivateKey *rsa.PrivateKey // RSA private key for signing

	now func() time.Time
}

// LoadCredentials builds credentials from a key ID and either an inline PEM
// string or a PEM file path. The inline PEM wins when both are set.
func LoadCredentials(keyID, privateKeyPEM, privateKeyPath string) (*Credentials, error) {
	if keyID == "" {
		return nil, errors.New("API key ID is required")
	}

	var (
		key *rsa.PrivateKey
		err error
	)
	switch {
	case privateKeyPEM != "":
		key, err = ParsePrivateKey([]byte(privateKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse inline private key: %w", err)
		}
	case privateKeyPath != "":
		key, err = LoadPrivateKey(privateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("load private key: %w", err)
		}
	default:
		return nil, errors.New("private key PEM or path is required")
	}

	return &Credentials{
		KeyID:      keyID,
		PrivateKey: key,
	}, nil
}

// LoadPrivateKey loads an RSA private key from a PEM file.
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return ParsePrivateKey(data)
}

// ParsePrivateKey decodes a PKCS#8 or PKCS#1 RSA key. Keys pasted into
// environment variables often arrive with literal "\n" sequences or CRLF
// endings; those are normalized before decoding.
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(normalizePEM(string(data))))
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	// Try PKCS#8 first (newer format)
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("key is not an RSA private key")
		}
		return rsaKey, nil
	}

	// Fall back to PKCS#1 (older format)
	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return rsaKey, nil
}

// normalizePEM rebuilds a PEM block whose line breaks were mangled in
// transit. Non-base64 characters inside the body are discarded.
func normalizePEM(raw string) string {
	pemText := strings.ReplaceAll(strings.TrimSpace(raw), `\n`, "\n")
	pemText = strings.ReplaceAll(pemText, "\r", "")

	for _, label := range []string{"RSA PRIVATE KEY", "PRIVATE KEY"} {
		begin := "-----BEGIN " + label + "-----"
		end := "-----END " + label + "-----"
		start := strings.Index(pemText, begin)
		stop := strings.Index(pemText, end)
		if start < 0 || stop < start {
			continue
		}

		body := pemText[start+len(begin) : stop]
		var b64 strings.Builder
		for _, r := range body {
			if isBase64Char(r) {
				b64.WriteRune(r)
			}
		}

		var out strings.Builder
		out.WriteString(begin)
		out.WriteByte('\n')
		data := b64.String()
		for len(data) > 64 {
			out.WriteString(data[:64])
			out.WriteByte('\n')
			data = data[64:]
		}
		if data != "" {
			out.WriteString(data)
			out.WriteByte('\n')
		}
		out.WriteString(end)
		out.WriteByte('\n')
		return out.String()
	}

	return pemText
}

func isBase64Char(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') ||
		r == '+' || r == '/' || r == '='
}

// SignRequest generates authentication headers for a Kalshi API request.
// The path must include the API prefix (e.g. "/trade-api/v2/markets"); any
// query string is stripped before signing.
func (c *Credentials) SignRequest(method, path string) (headers map[string]string, err error) {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	timestampMs := now().UnixMilli()

	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	signature, err := c.generateSignature(timestampMs, method, path)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		HeaderKey:       c.KeyID,
		HeaderTimestamp: strconv.FormatInt(timestampMs, 10),
		HeaderSignature: signature,
	}, nil
}

// generateSignature creates an RSA-PSS signature for the given request.
// Message format: timestamp_ms + method + path
func (c *Credentials) generateSignature(timestampMs int64, method, path string) (string, error) {
	message := strconv.FormatInt(timestampMs, 10) + method + path
	hashed := sha256.Sum256([]byte(message))

	signature, err := rsa.SignPSS(
		rand.Reader,
		c.PrivateKey,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
	)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}
