package teams

import (
	"encoding/json"
	"time"
)

// ActivityType identifies the Bot Framework activity variants this service reacts to.
type ActivityType string

const (
	TypeMessage            ActivityType = "message"
	TypeConversationUpdate ActivityType = "conversationUpdate"
	TypeMessageReaction    ActivityType = "messageReaction"
	TypeInvoke             ActivityType = "invoke"
	TypeInvokeResponse     ActivityType = "invokeResponse"
)

// Invoke activity names.
const (
	InvokeFetchTask    = "composeExtension/fetchTask"
	InvokeSubmitAction = "composeExtension/submitAction"
	InvokeQuery        = "composeExtension/query"
	InvokeQueryLink    = "composeExtension/queryLink"
	InvokeTaskFetch    = "task/fetch"
	InvokeTaskSubmit   = "task/submit"
)

const (
	ConversationTypePersonal  = "personal"
	ConversationTypeGroupChat = "groupChat"
	ConversationTypeChannel   = "channel"
)

const TextFormatXML = "xml"

type ChannelAccount struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	AADObjectID string `json:"aadObjectId,omitempty"`
	Role        string `json:"role,omitempty"`
}

type ConversationAccount struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	ConversationType string `json:"conversationType,omitempty"`
	IsGroup          bool   `json:"isGroup,omitempty"`
	TenantID         string `json:"tenantId,omitempty"`
}

// Attachment is a card or file carried by an activity or an invoke response.
type Attachment struct {
	ContentType string      `json:"contentType"`
	Content     any         `json:"content,omitempty"`
	ContentURL  string      `json:"contentUrl,omitempty"`
	Name        string      `json:"name,omitempty"`
	Preview     *Attachment `json:"preview,omitempty"`
}

// Entity covers the entity shapes used here; mentions are the only one produced.
type Entity struct {
	Type      string          `json:"type"`
	Mentioned *ChannelAccount `json:"mentioned,omitempty"`
	Text      string          `json:"text,omitempty"`
}

type MessageReaction struct {
	Type string `json:"type"`
}

// Activity is the subset of the Bot Framework activity schema exchanged with Teams.
type Activity struct {
	Type           ActivityType        `json:"type"`
	ID             string              `json:"id,omitempty"`
	Timestamp      *time.Time          `json:"timestamp,omitempty"`
	ServiceURL     string              `json:"serviceUrl,omitempty"`
	ChannelID      string              `json:"channelId,omitempty"`
	From           ChannelAccount      `json:"from"`
	Conversation   ConversationAccount `json:"conversation"`
	Recipient      ChannelAccount      `json:"recipient"`
	Text           string              `json:"text,omitempty"`
	TextFormat     string              `json:"textFormat,omitempty"`
	Attachments    []Attachment        `json:"attachments,omitempty"`
	Entities       []Entity            `json:"entities,omitempty"`
	MembersAdded   []ChannelAccount    `json:"membersAdded,omitempty"`
	MembersRemoved []ChannelAccount    `json:"membersRemoved,omitempty"`
	ReactionsAdded []MessageReaction   `json:"reactionsAdded,omitempty"`
	ReplyToID      string              `json:"replyToId,omitempty"`
	Name           string              `json:"name,omitempty"`
	Value          json.RawMessage     `json:"value,omitempty"`
	ChannelData    json.RawMessage     `json:"channelData,omitempty"`
}

// ResourceResponse is returned by the connector for every posted activity.
type ResourceResponse struct {
	ID string `json:"id"`
}

// MessageText builds a plain outbound message.
func MessageText(text string) *Activity {
	return &Activity{Type: TypeMessage, Text: text}
}

// MessageAttachments builds an outbound message carrying only attachments.
func MessageAttachments(attachments ...Attachment) *Activity {
	return &Activity{Type: TypeMessage, Attachments: attachments}
}

// IsPersonal reports whether the conversation is a one-to-one chat.
func (a *Activity) IsPersonal() bool {
	return a.Conversation.ConversationType == ConversationTypePersonal
}

// DecodeValue unmarshals the invoke value into out.
func (a *Activity) DecodeValue(out any) error {
	if len(a.Value) == 0 {
		return nil
	}
	return json.Unmarshal(a.Value, out)
}
