package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dealerbridge/dealerbridge/internal/common"
)

// ListNotifications re-fetches the notification list and prints it,
// unread entries first marked with an asterisk.
func (a *App) ListNotifications(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Not logged in.")
		return common.ErrNoSession
	}

	if err := a.notifications.Refresh(ctx); err != nil {
		fmt.Printf("Could not load notifications: %v\n", err)
		return err
	}

	items := a.notifications.All()
	if len(items) == 0 {
		fmt.Println("No notifications.")
		return nil
	}

	for _, n := range items {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		fmt.Printf("%s %-7s %s  %s: %s (id=%s)\n",
			mark, n.Level, n.CreatedAt.Format("2006-01-02 15:04"), n.Title, n.Message, n.ID)
	}
	return nil
}

// ReadNotification marks a single notification as read. With an empty id
// the user is prompted for one.
func (a *App) ReadNotification(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		fmt.Println("Not logged in.")
		return common.ErrNoSession
	}

	if id == "" {
		var err error
		id, err = getSimpleText(a.reader, "Enter notification id", os.Stdout)
		if err != nil {
			return err
		}
	}

	if err := a.notifications.MarkRead(ctx, id); err != nil {
		fmt.Printf("Could not mark notification as read: %v\n", err)
		return err
	}
	fmt.Println("Marked as read.")
	return nil
}

// ReadAllNotifications marks every cached notification as read.
func (a *App) ReadAllNotifications(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Not logged in.")
		return common.ErrNoSession
	}

	if err := a.notifications.MarkAllRead(ctx); err != nil {
		fmt.Printf("Could not mark notifications as read: %v\n", err)
		return err
	}
	fmt.Println("All notifications marked as read.")
	return nil
}
