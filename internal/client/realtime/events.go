package realtime

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dealerbridge/dealerbridge/internal/client/signals"
)

// bareNotificationEvent is the synthetic event name assigned to messages
// that arrive as a bare notification object instead of an envelope.
const bareNotificationEvent = "notification"

// eventSignals maps inbound push event names to local broadcast names.
// Events missing from this table are dropped without error.
var eventSignals = map[string]string{
	"orders.status":       signals.OrdersChanged,
	"payments.new":        signals.PaymentsChanged,
	"defects.new":         signals.DefectsChanged,
	bareNotificationEvent: signals.NotificationsChanged,
}

// Toast is the transient user-visible summary of an accepted push message.
type Toast struct {
	ID      string
	Level   string
	Title   string
	Message string
}

// ToastFunc renders a toast. The CLI prints it; a GUI would pop it up.
type ToastFunc func(Toast)

type toastTemplate struct {
	level   string
	title   string
	message string
}

// toastTemplates picks the summary text per event name. Fields in braces
// are read from the event data, with an empty string for missing fields.
var toastTemplates = map[string]toastTemplate{
	"orders.status":       {level: "info", title: "Orders", message: "Order {order} → {status}"},
	"payments.new":        {level: "info", title: "Payments", message: "Payment {amount} from {dealer}"},
	"defects.new":         {level: "warning", title: "Defects", message: "Defect reported on order {order}"},
	bareNotificationEvent: {level: "info", title: "Notification", message: "{title}: {message}"},
}

// expand substitutes {field} placeholders with values from data. A field
// absent from data expands to the empty string.
func expand(template string, data map[string]any) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			b.WriteString(template)
			return b.String()
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			b.WriteString(template)
			return b.String()
		}
		b.WriteString(template[:open])
		field := template[open+1 : open+end]
		if v, ok := data[field]; ok && v != nil {
			b.WriteString(fmt.Sprintf("%v", v))
		}
		template = template[open+end+1:]
	}
}

// makeToast builds the toast for an accepted event, or ok=false when the
// event has no template.
func makeToast(event string, data map[string]any) (Toast, bool) {
	tmpl, ok := toastTemplates[event]
	if !ok {
		return Toast{}, false
	}
	return Toast{
		ID:      uuid.NewString(),
		Level:   tmpl.level,
		Title:   tmpl.title,
		Message: expand(tmpl.message, data),
	}, true
}
