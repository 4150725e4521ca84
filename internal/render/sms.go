// Package render turns view models into what users see: JSON cards with
// SMS links, a plain text table, or a spreadsheet
package render

import (
	"net/url"
	"strings"
)

// DefaultSMSRecipient is the short code that answers stop-code texts
const DefaultSMSRecipient = "89882"

// SMSLink builds an sms: URI addressed to recipient with body as the
// message text. The body is percent-encoded with %20 for spaces so that
// messaging apps do not show literal plus signs.
func SMSLink(recipient, body string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(body), "+", "%20")
	return "sms:" + recipient + "?body=" + encoded
}
