package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dealerbridge/dealerbridge/internal/client/api"
	"github.com/dealerbridge/dealerbridge/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and drives the session state machine.
//
// When the account has 2FA enabled the first attempt comes back with an
// OTP challenge and the user is prompted for a code right away. A rejected
// code keeps the challenge open, so "otp" can be used to try again without
// re-entering the password.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	err = a.session.Login(ctx, api.Credentials{Username: username, Password: password})
	switch {
	case err == nil:
		a.reportLoggedIn(ctx)
		return nil
	case errors.Is(err, common.ErrOtpRequired):
		fmt.Println("This account requires a one-time code.")
		return a.SubmitOtp(ctx)
	case errors.Is(err, common.ErrTwoFaSetupRequired):
		fmt.Println("Two-factor auth must be set up first, run 'setup2fa'.")
		return err
	case errors.Is(err, common.ErrInvalidCredentials):
		fmt.Println("Invalid username or password.")
		return err
	default:
		fmt.Printf("Login failed: %v\n", err)
		return err
	}
}

// SubmitOtp answers a pending OTP challenge.
func (a *App) SubmitOtp(ctx context.Context) error {
	if !a.needsOtp() {
		fmt.Println("No pending login, run 'login' first.")
		return common.ErrNoSession
	}

	otp, err := getSimpleText(a.reader, "Enter one-time code", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.session.RetryWithOtp(ctx, otp); err != nil {
		if errors.Is(err, common.ErrOtpInvalid) {
			fmt.Println("Code rejected, run 'otp' to try again.")
		} else {
			fmt.Printf("Login failed: %v\n", err)
		}
		return err
	}

	a.reportLoggedIn(ctx)
	return nil
}

// Logout tears down the push channel and drops the persisted session.
func (a *App) Logout(ctx context.Context) error {
	a.closeChannel()
	a.session.Logout(ctx)
	fmt.Println("Logged out.")
	return nil
}

func (a *App) reportLoggedIn(ctx context.Context) {
	snap := a.session.Snapshot()
	fmt.Printf("Logged in as %s (%s)\n", snap.Username, snap.Role)
	a.afterLogin(ctx)
}
