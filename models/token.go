package models

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the bearer credential a device presents to the server. The
// device id travels in the "sub" claim.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	SignedString string `json:"-"`
	DeviceID     string `json:"-"`
}

// GetDeviceID reads the subject claim. An empty subject is an error.
func (t *Token) GetDeviceID() (string, error) {
	deviceID, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("read device id claim: %w", err)
	}
	if deviceID == "" {
		return "", errors.New("read device id claim: empty subject")
	}

	return deviceID, nil
}

func (t *Token) String() string {
	return t.SignedString
}
