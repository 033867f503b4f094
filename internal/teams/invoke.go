package teams

import "encoding/json"

const (
	AttachmentLayoutList = "list"
	ResultTypeResult     = "result"
	TaskTypeContinue     = "continue"
)

// MessagingExtensionAction is the value of composeExtension/fetchTask and submitAction invokes.
type MessagingExtensionAction struct {
	CommandID      string          `json:"commandId"`
	CommandContext string          `json:"commandContext,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

type MessagingExtensionParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MessagingExtensionQuery is the value of a composeExtension/query invoke.
type MessagingExtensionQuery struct {
	CommandID  string                        `json:"commandId"`
	Parameters []MessagingExtensionParameter `json:"parameters,omitempty"`
}

// AppBasedLinkQuery is the value of a composeExtension/queryLink invoke.
type AppBasedLinkQuery struct {
	URL string `json:"url"`
}

// TaskModuleRequest is the value of task/fetch and task/submit invokes.
type TaskModuleRequest struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Context json.RawMessage `json:"context,omitempty"`
}

// TaskModuleTaskInfo describes a modal: either URL or Card is set.
type TaskModuleTaskInfo struct {
	Title  string      `json:"title,omitempty"`
	URL    string      `json:"url,omitempty"`
	Card   *Attachment `json:"card,omitempty"`
	Width  int         `json:"width,omitempty"`
	Height int         `json:"height,omitempty"`
}

type TaskModuleContinueResponse struct {
	Type  string              `json:"type"`
	Value *TaskModuleTaskInfo `json:"value"`
}

type TaskModuleResponse struct {
	Task *TaskModuleContinueResponse `json:"task,omitempty"`
}

type MessagingExtensionResult struct {
	Type             string       `json:"type"`
	AttachmentLayout string       `json:"attachmentLayout"`
	Attachments      []Attachment `json:"attachments"`
}

type MessagingExtensionResponse struct {
	ComposeExtension *MessagingExtensionResult `json:"composeExtension,omitempty"`
}

type MessagingExtensionActionResponse struct {
	Task             *TaskModuleContinueResponse `json:"task,omitempty"`
	ComposeExtension *MessagingExtensionResult   `json:"composeExtension,omitempty"`
}

// ContinueTask wraps info in a {task:{type:"continue"}} envelope.
func ContinueTask(info TaskModuleTaskInfo) *TaskModuleContinueResponse {
	return &TaskModuleContinueResponse{Type: TaskTypeContinue, Value: &info}
}

// ListResult wraps attachments in a {type:"result", attachmentLayout:"list"} envelope.
// A nil slice is emitted as an empty array.
func ListResult(attachments []Attachment) *MessagingExtensionResult {
	if attachments == nil {
		attachments = []Attachment{}
	}
	return &MessagingExtensionResult{
		Type:             ResultTypeResult,
		AttachmentLayout: AttachmentLayoutList,
		Attachments:      attachments,
	}
}
