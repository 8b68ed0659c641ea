package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	needsOtp() bool
	Login(ctx context.Context) error
	SubmitOtp(ctx context.Context) error
	Logout(ctx context.Context) error
	SetupTwoFA(ctx context.Context) error
	ListNotifications(ctx context.Context) error
	ReadNotification(ctx context.Context, id string) error
	ReadAllNotifications(ctx context.Context) error
	Menu() error
	WhoAmI() error
}

func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	switch {
	case snap.IsAuthenticated:
		if unread := a.notifications.Unread(); unread > 0 {
			return fmt.Sprintf("(%s %s, %d unread)", snap.Username, snap.Role, unread)
		}
		return fmt.Sprintf("(%s %s)", snap.Username, snap.Role)
	case snap.NeedsOtp:
		return "(otp pending)"
	default:
		return ""
	}
}

// Root starts the interactive loop over stdin.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to the DealerBridge CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// runREPL reads one line per iteration, takes the first token as the
// command and dispatches to a. It exits on scanner EOF or on "exit".
// Command handlers print their own errors; the loop just keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("db %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			switch {
			case a.isLoggedIn():
				printlnFn("Available commands: (n)otifications, read <id>, readall, menu, whoami, logout, exit")
			case a.needsOtp():
				printlnFn("Available commands: otp, login, exit")
			default:
				printlnFn("Available commands: login, setup2fa, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "otp":
			_ = a.SubmitOtp(ctx)

		case "setup2fa":
			_ = a.SetupTwoFA(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "n", "notifications":
			_ = a.ListNotifications(ctx)

		case "read":
			id := ""
			if len(args) > 0 {
				id = args[0]
			}
			_ = a.ReadNotification(ctx, id)

		case "readall":
			_ = a.ReadAllNotifications(ctx)

		case "menu":
			_ = a.Menu()

		case "whoami":
			_ = a.WhoAmI()

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
