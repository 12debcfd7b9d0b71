package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// authService is the concrete implementation of AuthService. It signs
// device tokens with HMAC-SHA256 and, when a device list is configured,
// accepts only the listed devices.
type authService struct {
	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	// An empty key disables authentication.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// devices is the allow-list of device ids; nil allows any device.
	devices map[string]struct{}

	logger *logger.Logger
}

// NewAuthService constructs an AuthService populated with the token
// parameters from cfg.
func NewAuthService(cfg config.App, logger *logger.Logger) AuthService {
	var devices map[string]struct{}
	if len(cfg.Devices) > 0 {
		devices = make(map[string]struct{}, len(cfg.Devices))
		for _, d := range cfg.Devices {
			devices[d] = struct{}{}
		}
	}

	return &authService{
		tokenSignKey:  cfg.TokenSignKey,
		tokenIssuer:   cfg.TokenIssuer,
		tokenDuration: cfg.TokenDuration,
		devices:       devices,
		logger:        logger,
	}
}

func (a *authService) Enabled() bool {
	return a.tokenSignKey != ""
}

// IssueToken signs a token for deviceID.
//
// Returns ErrAuthDisabled without a sign key, ErrUnknownDevice for a device
// outside the allow-list, or a wrapped error if JWT generation fails.
func (a *authService) IssueToken(ctx context.Context, deviceID string) (models.Token, error) {
	if !a.Enabled() {
		return models.Token{}, ErrAuthDisabled
	}
	if deviceID == "" {
		return models.Token{}, ErrInvalidDataProvided
	}
	if !a.knownDevice(deviceID) {
		return models.Token{}, fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}

	token, err := utils.GenerateJWTToken(a.tokenIssuer, deviceID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "authService.IssueToken").Str("device", deviceID).Msg("error generating token")
		return models.Token{}, fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// ParseToken validates a raw JWT string. Any validation failure (expired,
// wrong issuer, malformed) is normalised to ErrTokenIsExpiredOrInvalid.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	if !a.Enabled() {
		return models.Token{}, ErrAuthDisabled
	}

	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("token rejected")
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}
	if !a.knownDevice(token.DeviceID) {
		return models.Token{}, fmt.Errorf("%w: %s", ErrUnknownDevice, token.DeviceID)
	}

	return token, nil
}

func (a *authService) knownDevice(deviceID string) bool {
	if a.devices == nil {
		return true
	}
	_, ok := a.devices[deviceID]
	return ok
}
