// Package cards is a typed model of the adaptive card and hero card payloads the
// bots return. Templates are plain constructor functions so every request gets a
// fresh value.
package cards

import "github.com/ent0n29/teamsguide/internal/teams"

const (
	ContentTypeAdaptive = "application/vnd.microsoft.card.adaptive"
	ContentTypeHero     = "application/vnd.microsoft.card.hero"

	AdaptiveSchema  = "http://adaptivecards.io/schemas/adaptive-card.json"
	AdaptiveVersion = "1.0"
)

// Element is any adaptive card body element.
type Element interface {
	ElementType() string
}

// Action is any adaptive card action.
type Action interface {
	ActionType() string
}

type AdaptiveCard struct {
	Schema  string    `json:"$schema,omitempty"`
	Type    string    `json:"type"`
	Version string    `json:"version"`
	Body    []Element `json:"body"`
	Actions []Action  `json:"actions,omitempty"`
}

// NewAdaptiveCard returns an empty version 1.0 card.
func NewAdaptiveCard(body ...Element) *AdaptiveCard {
	return &AdaptiveCard{
		Type:    "AdaptiveCard",
		Version: AdaptiveVersion,
		Body:    body,
	}
}

type TextBlock struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Size     string `json:"size,omitempty"`
	Weight   string `json:"weight,omitempty"`
	Spacing  string `json:"spacing,omitempty"`
	IsSubtle bool   `json:"isSubtle,omitempty"`
	Wrap     bool   `json:"wrap,omitempty"`
}

func NewTextBlock(text string) *TextBlock {
	return &TextBlock{Type: "TextBlock", Text: text}
}

func (*TextBlock) ElementType() string { return "TextBlock" }

type Container struct {
	Type  string    `json:"type"`
	ID    string    `json:"id,omitempty"`
	Items []Element `json:"items"`
}

func NewContainer(id string, items ...Element) *Container {
	return &Container{Type: "Container", ID: id, Items: items}
}

func (*Container) ElementType() string { return "Container" }

type Column struct {
	Type  string    `json:"type"`
	Width string    `json:"width,omitempty"`
	Items []Element `json:"items"`
}

type ColumnSet struct {
	Type    string    `json:"type"`
	ID      string    `json:"id,omitempty"`
	Columns []*Column `json:"columns"`
}

func NewColumnSet(id string, columns ...*Column) *ColumnSet {
	return &ColumnSet{Type: "ColumnSet", ID: id, Columns: columns}
}

func NewColumn(width string, items ...Element) *Column {
	return &Column{Type: "Column", Width: width, Items: items}
}

func (*ColumnSet) ElementType() string { return "ColumnSet" }

type Image struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
	Size    string `json:"size,omitempty"`
}

func NewImage(url string) *Image {
	return &Image{Type: "Image", URL: url}
}

func (*Image) ElementType() string { return "Image" }

type Fact struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Value string `json:"value"`
}

type FactSet struct {
	Type  string  `json:"type"`
	ID    string  `json:"id,omitempty"`
	Facts []*Fact `json:"facts"`
}

func NewFactSet(facts ...*Fact) *FactSet {
	return &FactSet{Type: "FactSet", Facts: facts}
}

func (*FactSet) ElementType() string { return "FactSet" }

type Choice struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type ChoiceSet struct {
	Type    string   `json:"type"`
	ID      string   `json:"id"`
	Choices []Choice `json:"choices"`
}

func NewChoiceSet(id string, choices []Choice) *ChoiceSet {
	if choices == nil {
		choices = []Choice{}
	}
	return &ChoiceSet{Type: "Input.ChoiceSet", ID: id, Choices: choices}
}

func (*ChoiceSet) ElementType() string { return "Input.ChoiceSet" }

type InputText struct {
	Type        string `json:"type"`
	ID          string `json:"id"`
	Value       string `json:"value"`
	Placeholder string `json:"placeholder,omitempty"`
}

func NewInputText(id, value string) *InputText {
	return &InputText{Type: "Input.Text", ID: id, Value: value}
}

func (*InputText) ElementType() string { return "Input.Text" }

type OpenURLAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func NewOpenURLAction(title, url string) *OpenURLAction {
	return &OpenURLAction{Type: "Action.OpenUrl", Title: title, URL: url}
}

func (*OpenURLAction) ActionType() string { return "Action.OpenUrl" }

type SubmitAction struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Data  any    `json:"data,omitempty"`
}

func NewSubmitAction(title string) *SubmitAction {
	return &SubmitAction{Type: "Action.Submit", Title: title}
}

func (*SubmitAction) ActionType() string { return "Action.Submit" }

// Adaptive wraps card in an attachment.
func Adaptive(card *AdaptiveCard) teams.Attachment {
	return teams.Attachment{ContentType: ContentTypeAdaptive, Content: card}
}
