package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pquerna/otp/totp"

	"github.com/dealerbridge/dealerbridge/internal/common"
)

// validateTotp is a test seam for totp.Validate.
var validateTotp = totp.Validate

// SetupTwoFA runs the 2FA enrollment flow: fetch a fresh secret for the
// account, have the user add it to their authenticator, then confirm with
// a generated code.
//
// The entered code is checked locally against the new secret before it is
// sent to the server, to catch typos and clock skew without burning the
// round trip.
func (a *App) SetupTwoFA(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	setup, err := a.session.SetupTwoFA(ctx, username, password)
	if err != nil {
		fmt.Printf("Setup failed: %v\n", err)
		return err
	}

	fmt.Println("Add this secret to your authenticator app (or scan the QR code in the portal):")
	fmt.Println("  " + setup.Secret)

	otp, err := getSimpleText(a.reader, "Enter a code from your authenticator", os.Stdout)
	if err != nil {
		return err
	}

	if setup.Secret != "" && !validateTotp(otp, setup.Secret) {
		fmt.Println("That code does not match the new secret, check your authenticator clock.")
		return common.ErrOtpInvalid
	}

	if err := a.session.VerifyTwoFA(ctx, username, password, otp); err != nil {
		fmt.Printf("Verification failed: %v\n", err)
		return err
	}

	fmt.Println("Two-factor auth enabled. Run 'login' to continue.")
	return nil
}
