package teams

import (
	"html"
	"strings"
)

const EntityTypeMention = "mention"

// NewMention builds a mention entity for account. Teams requires the entity text
// to appear verbatim in the message text.
func NewMention(account ChannelAccount) Entity {
	mentioned := account
	return Entity{
		Type:      EntityTypeMention,
		Mentioned: &mentioned,
		Text:      "<at>" + html.EscapeString(account.Name) + "</at>",
	}
}

// RemoveRecipientMention strips every mention of the activity's recipient
// from the text and returns the trimmed remainder.
func RemoveRecipientMention(a *Activity) string {
	text := a.Text
	for _, e := range a.Entities {
		if e.Type != EntityTypeMention || e.Mentioned == nil {
			continue
		}
		if e.Mentioned.ID != a.Recipient.ID || e.Text == "" {
			continue
		}
		text = strings.ReplaceAll(text, e.Text, "")
	}
	return strings.TrimSpace(text)
}
