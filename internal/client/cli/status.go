package cli

import (
	"fmt"

	"github.com/dealerbridge/dealerbridge/internal/common"
)

// menuSections lists the portal sections in display order. Which of them
// actually show up for a user depends on the role in the access token.
var menuSections = []struct {
	path  string
	label string
}{
	{"/orders", "Orders"},
	{"/products", "Products"},
	{"/dealers", "Dealers"},
	{"/payments", "Payments"},
	{"/defects", "Defects"},
	{"/reports", "Reports"},
	{"/notifications", "Notifications"},
}

// WhoAmI prints the identity decoded from the current access token.
func (a *App) WhoAmI() error {
	snap := a.session.Snapshot()
	if !snap.IsAuthenticated {
		fmt.Println("Not logged in.")
		return common.ErrNoSession
	}
	fmt.Printf("%s (role %s, user id %d)\n", snap.Username, snap.Role, snap.UserID)
	return nil
}

// Menu prints the portal sections the current role may open.
func (a *App) Menu() error {
	snap := a.session.Snapshot()
	if !snap.IsAuthenticated {
		fmt.Println("Not logged in.")
		return common.ErrNoSession
	}

	fmt.Println("Available sections:")
	for _, s := range menuSections {
		if a.authorizer.CanAccess(snap.Role, s.path) {
			fmt.Printf("  %-15s %s\n", s.label, s.path)
		}
	}
	return nil
}
