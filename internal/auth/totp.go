package auth

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// totpOpts pins the parameters every mainstream authenticator app ships with:
// SHA-1, 6 digits, 30-second step, plus one step of skew either side to absorb
// clock drift between the phone and the server.
var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// VerifyCode reports whether code is a valid TOTP code for secret at the
// current time. Malformed input is simply invalid; this never returns an
// error to the login path.
func VerifyCode(code, secret string) bool {
	return verifyCodeAt(code, secret, time.Now())
}

func verifyCodeAt(code, secret string, at time.Time) bool {
	code = stripWhitespace(code)
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}

	valid, err := totp.ValidateCustom(code, secret, at, totpOpts)
	if err != nil {
		return false
	}
	return valid
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// ProvisioningURI formats an otpauth:// enrollment URI for an existing secret.
// Used only for operator setup, never on the login path.
func ProvisioningURI(secret, issuer, account string) string {
	params := url.Values{}
	params.Set("secret", secret)
	params.Set("issuer", issuer)
	params.Set("algorithm", "SHA1")
	params.Set("digits", "6")
	params.Set("period", "30")

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: params.Encode(),
	}
	return u.String()
}

// GenerateSecret creates a fresh random TOTP secret for enrollment.
func GenerateSecret(issuer, account string) (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      30,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}
	return key, nil
}

// EnrollmentQR renders a provisioning URI as a PNG data URI suitable for
// scanning with an authenticator app.
func EnrollmentQR(provisioningURI string) (string, error) {
	png, err := qrcode.Encode(provisioningURI, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
