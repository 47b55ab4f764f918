package layout

import (
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

// ContactKind identifies a contact line
type ContactKind string

// Contact line kinds, in print order
const (
	ContactEmail    ContactKind = "email"
	ContactPhone    ContactKind = "phone"
	ContactAddress  ContactKind = "address"
	ContactLinkedIn ContactKind = "linkedin"
	ContactWebsite  ContactKind = "website"
)

// Contact is one printable contact line. URL is empty for non-actionable lines.
type Contact struct {
	Kind  ContactKind
	Label string
	Value string
	URL   string
}

// Contacts lists the non-empty contact lines of info with their link targets
func Contacts(info types.PersonalInfo, loc Locale) []Contact {
	var out []Contact
	if v := strings.TrimSpace(info.Email); v != "" {
		out = append(out, Contact{Kind: ContactEmail, Label: loc.EmailLabel, Value: v, URL: MailLink(v)})
	}
	if v := strings.TrimSpace(info.Phone); v != "" {
		out = append(out, Contact{Kind: ContactPhone, Label: loc.PhoneLabel, Value: v, URL: TelLink(v)})
	}
	if v := strings.TrimSpace(info.Address); v != "" {
		out = append(out, Contact{Kind: ContactAddress, Label: loc.AddressLabel, Value: v})
	}
	if v := strings.TrimSpace(info.LinkedIn); v != "" {
		out = append(out, Contact{Kind: ContactLinkedIn, Label: loc.LinkedInLabel, Value: v, URL: WebLink(v)})
	}
	if v := strings.TrimSpace(info.Website); v != "" {
		out = append(out, Contact{Kind: ContactWebsite, Label: loc.WebsiteLabel, Value: v, URL: WebLink(v)})
	}
	return out
}

// MailLink returns a mailto: target
func MailLink(email string) string {
	return "mailto:" + strings.TrimSpace(email)
}

// TelLink returns a tel: target with spaces and punctuation other than "+" removed
func TelLink(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if (r >= '0' && r <= '9') || (r == '+' && b.Len() == 0) {
			b.WriteRune(r)
		}
	}
	return "tel:" + b.String()
}

// WebLink returns value as an absolute URL, inferring https when no scheme is given
func WebLink(value string) string {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return v
	}
	return "https://" + strings.TrimPrefix(v, "//")
}
