// Package provision mints TOTP secrets and turns them into something a
// phone can scan: the standard otpauth:// URI rendered as a QR PNG.
package provision

import (
	"bytes"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the TOTP time step in seconds.
	Period = 30
	// Skew is how many adjacent steps are accepted either side of now.
	Skew = 1

	qrSize = 256
)

// Credential is a freshly minted enrollment: the shared secret, its
// provisioning URI, and the URI rendered as a PNG QR code. Derived data;
// nothing here is persisted.
type Credential struct {
	Secret string
	URL    string
	QR     []byte
}

// Provisioner creates and verifies TOTP credentials for one issuer.
type Provisioner struct {
	issuer string
}

func New(issuer string) *Provisioner {
	return &Provisioner{issuer: issuer}
}

// Issuer returns the issuer label embedded in provisioning URIs.
func (p *Provisioner) Issuer() string { return p.issuer }

// Provision mints a fresh base32 secret for the account. The returned URL
// has the standard otpauth://totp/{issuer}:{account}?...&secret=... form
// authenticator apps consume; the QR is that URL as a 256x256 PNG. Each
// call produces a new secret.
func (p *Provisioner) Provision(account string) (*Credential, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: account,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp key: %w", err)
	}

	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}

	return &Credential{Secret: key.Secret(), URL: key.URL(), QR: buf.Bytes()}, nil
}

// Verify reports whether code is the 6-digit TOTP for secret at the current
// time, accepting one step of clock drift either side. The comparison is
// constant-time.
func (p *Provisioner) Verify(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    Period,
		Skew:      Skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
