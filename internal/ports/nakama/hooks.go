package nakama

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// NewAfterAuthenticateDevice returns the hook run after device
// authentication. New accounts get a name, a default profile and the
// welcome tokens.
func NewAfterAuthenticateDevice(deps *Deps) func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, *api.Session, *api.AuthenticateDeviceRequest) error {
	return func(ctx context.Context, logger runtime.Logger, _ *sql.DB, _ runtime.NakamaModule, out *api.Session, _ *api.AuthenticateDeviceRequest) error {
		if !out.GetCreated() {
			return nil
		}
		return onboard(ctx, logger, deps, out)
	}
}

func onboard(ctx context.Context, logger runtime.Logger, deps *Deps, out *api.Session) error {
	userID, err := sessionUserID(ctx, out.GetToken())
	if err != nil {
		logger.Error("AfterAuthenticateDevice: %v", err)
		return err
	}

	result, err := deps.Onboarding.OnboardNewUser(ctx, userID)
	if result.ProfileUpdateErr != nil {
		logger.Warn("AfterAuthenticateDevice: could not name account %s: %v", userID, result.ProfileUpdateErr)
	}
	if err != nil {
		logger.Error("AfterAuthenticateDevice: onboarding failed for %s: %v", userID, err)
		return err
	}
	logger.Info("AfterAuthenticateDevice: onboarded %s as %q, welcome tokens granted: %v",
		userID, result.Profile.Name, result.WelcomeBonusGranted)
	return nil
}

// sessionUserID prefers the runtime context and falls back to the uid
// claim of the freshly issued session token. Nakama signed the token a
// moment ago, so the signature is not checked again.
func sessionUserID(ctx context.Context, token string) (string, error) {
	if id, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok && id != "" {
		return id, nil
	}
	if token == "" {
		return "", errors.New("session carries no token")
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	uid, _ := claims["uid"].(string)
	if uid == "" {
		return "", errors.New("session token has no uid claim")
	}
	return uid, nil
}
