package provision

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base32Secret = regexp.MustCompile(`^[A-Z2-7]+$`)

func TestProvision(t *testing.T) {
	p := New("VerifyGate")

	cred, err := p.Provision("123456789")
	require.NoError(t, err)

	assert.Regexp(t, base32Secret, cred.Secret)
	assert.True(t, bytes.HasPrefix(cred.QR, []byte("\x89PNG\r\n\x1a\n")), "artifact should be a PNG")
}

func TestProvision_URI(t *testing.T) {
	p := New("VerifyGate")

	cred, err := p.Provision("123456789")
	require.NoError(t, err)

	u, err := url.Parse(cred.URL)
	require.NoError(t, err)

	assert.Equal(t, "otpauth", u.Scheme)
	assert.Equal(t, "totp", u.Host)
	assert.True(t, strings.HasPrefix(strings.TrimPrefix(u.Path, "/"), "VerifyGate:123456789"),
		"label should be issuer:account, got %q", u.Path)

	q := u.Query()
	assert.Equal(t, cred.Secret, q.Get("secret"), "URI embeds exactly the minted secret")
	assert.Equal(t, "VerifyGate", q.Get("issuer"))
}

func TestProvision_FreshSecretPerCall(t *testing.T) {
	p := New("VerifyGate")

	first, err := p.Provision("123456789")
	require.NoError(t, err)
	second, err := p.Provision("123456789")
	require.NoError(t, err)

	assert.NotEqual(t, first.Secret, second.Secret)
}

func TestVerify_CurrentStep(t *testing.T) {
	p := New("VerifyGate")
	cred, err := p.Provision("u")
	require.NoError(t, err)

	code, err := totp.GenerateCode(cred.Secret, time.Now())
	require.NoError(t, err)

	assert.True(t, p.Verify(cred.Secret, code))
}

func TestVerify_AdjacentSteps(t *testing.T) {
	p := New("VerifyGate")
	cred, err := p.Provision("u")
	require.NoError(t, err)

	// Anchor away from a step boundary so "now" stays inside the same step
	// for the duration of the test.
	now := time.Now()
	if s := now.Unix() % Period; s < 5 || s > Period-5 {
		time.Sleep(6 * time.Second)
		now = time.Now()
	}

	previous, err := totp.GenerateCode(cred.Secret, now.Add(-Period*time.Second))
	require.NoError(t, err)
	next, err := totp.GenerateCode(cred.Secret, now.Add(Period*time.Second))
	require.NoError(t, err)

	assert.True(t, p.Verify(cred.Secret, previous), "one step behind is inside the skew window")
	assert.True(t, p.Verify(cred.Secret, next), "one step ahead is inside the skew window")
}

func TestVerify_Rejections(t *testing.T) {
	p := New("VerifyGate")
	cred, err := p.Provision("u")
	require.NoError(t, err)
	other, err := p.Provision("someone-else")
	require.NoError(t, err)

	otherCode, err := totp.GenerateCode(other.Secret, time.Now())
	require.NoError(t, err)
	assert.False(t, p.Verify(cred.Secret, otherCode), "code from a different secret")

	stale, err := totp.GenerateCode(cred.Secret, time.Now().Add(-10*Period*time.Second))
	require.NoError(t, err)
	assert.False(t, p.Verify(cred.Secret, stale), "code far outside the skew window")

	assert.False(t, p.Verify(cred.Secret, "000000"))
	assert.False(t, p.Verify(cred.Secret, "not-a-code"))
}
