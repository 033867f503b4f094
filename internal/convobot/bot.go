// Package convobot is the conversational bot: keyword replies, a help dialog,
// a welcome card, reaction echoes and YouTube task modules.
package convobot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ent0n29/teamsguide/internal/bot"
	"github.com/ent0n29/teamsguide/internal/dialog"
	"github.com/ent0n29/teamsguide/internal/logger"
	"github.com/ent0n29/teamsguide/internal/policy"
	"github.com/ent0n29/teamsguide/internal/state"
	"github.com/ent0n29/teamsguide/internal/tab"
	"github.com/ent0n29/teamsguide/internal/teams"
)

const (
	Name = "conversational"

	helloText     = "Oh, hello to you as well!"
	exerciseText  = `Exercise - Creating conversational bots for Microsoft Teams <a href="https://docs.microsoft.com/en-us/learn/modules/msteams-conversation-bots/3-exercise-conversation-bots">Link</a>`
	untrainedText = "I'm terribly sorry, but my master hasn't trained me to do anything yet..."
	channelText   = "*We are in a channel conversation*"
)

type snapshotKey struct{}

type Bot struct {
	state    *state.ConversationState
	dialogs  *dialog.Set
	hostname string
	log      *logger.Logger
}

// New wires the bot to its conversation state. hostname is used for absolute
// player and asset URLs.
func New(conversationState *state.ConversationState, hostname string, log *logger.Logger) *Bot {
	dialogs := dialog.NewSet(state.NewProperty[dialog.State](dialog.PropertyName))
	dialogs.Add(HelpDialog{})
	return &Bot{
		state:    conversationState,
		dialogs:  dialogs,
		hostname: hostname,
		log:      log.With("bot", Name),
	}
}

func (*Bot) Name() string { return Name }

func (b *Bot) appRoot() string { return "https://" + b.hostname }

// snapshot loads conversation state once per turn and caches it on the turn.
func (b *Bot) snapshot(ctx context.Context, tc *bot.TurnContext) (*state.Snapshot, error) {
	if snap, ok := tc.Value(snapshotKey{}).(*state.Snapshot); ok {
		return snap, nil
	}
	snap, err := b.state.Load(ctx, tc.Activity)
	if err != nil {
		return nil, fmt.Errorf("load conversation state: %w", err)
	}
	tc.SetValue(snapshotKey{}, snap)
	return snap, nil
}

func (b *Bot) OnMessage(ctx context.Context, tc *bot.TurnContext) error {
	text := strings.ToLower(teams.RemoveRecipientMention(tc.Activity))
	b.log.Debug("message received", "conversation_id", tc.Activity.Conversation.ID, "text", policy.RedactForLog(text))

	switch {
	case strings.HasPrefix(text, "mentionme"):
		if tc.Activity.IsPersonal() {
			return b.mentionOneOnOne(ctx, tc)
		}
		return b.mentionInChannel(ctx, tc)
	case strings.HasPrefix(text, "hello"):
		return tc.SendText(ctx, helloText)
	case strings.HasPrefix(text, "help"):
		snap, err := b.snapshot(ctx, tc)
		if err != nil {
			return err
		}
		dc, err := b.dialogs.CreateContext(tc, snap)
		if err != nil {
			return err
		}
		_, err = dc.BeginDialog(ctx, HelpDialogID, nil)
		return err
	case strings.HasPrefix(text, "exercise"):
		return tc.SendText(ctx, exerciseText)
	case strings.HasPrefix(text, "learn"):
		_, err := tc.SendActivity(ctx, teams.MessageAttachments(learnCard()))
		return err
	default:
		return tc.SendText(ctx, untrainedText)
	}
}

func (b *Bot) mentionOneOnOne(ctx context.Context, tc *bot.TurnContext) error {
	mention := teams.NewMention(tc.Activity.From)
	reply := teams.MessageText("Hi " + mention.Text + " from a 1:1 chat.")
	reply.Entities = []teams.Entity{mention}
	_, err := tc.SendActivity(ctx, reply)
	return err
}

func (b *Bot) mentionInChannel(ctx context.Context, tc *bot.TurnContext) error {
	mention := teams.NewMention(tc.Activity.From)
	reply := teams.MessageText("Hi " + mention.Text + "!")
	reply.Entities = []teams.Entity{mention}
	_, err := tc.SendActivities(ctx, reply, teams.MessageText(channelText))
	return err
}

// OnMembersAdded sends the welcome card once for every added member that is the bot itself.
func (b *Bot) OnMembersAdded(ctx context.Context, tc *bot.TurnContext, members []teams.ChannelAccount) error {
	for _, m := range members {
		if m.ID != tc.Activity.Recipient.ID {
			continue
		}
		if _, err := tc.SendActivity(ctx, teams.MessageAttachments(welcomeCard(b.hostname))); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) OnReactionsAdded(ctx context.Context, tc *bot.TurnContext, reactions []teams.MessageReaction) error {
	if len(reactions) == 0 {
		return nil
	}
	reply := teams.MessageText("That was an interesting reaction (<b>" + reactions[0].Type + "</b>)")
	reply.TextFormat = teams.TextFormatXML
	_, err := tc.SendActivity(ctx, reply)
	return err
}

// OnTaskModuleFetch opens the player or the selector named by the learn card button.
func (b *Bot) OnTaskModuleFetch(_ context.Context, _ *bot.TurnContext, req teams.TaskModuleRequest) (*teams.TaskModuleResponse, error) {
	var data learnVideo
	if len(req.Data) > 0 {
		if err := json.Unmarshal(req.Data, &data); err != nil {
			return nil, fmt.Errorf("decode task fetch data: %w", err)
		}
	}

	var info teams.TaskModuleTaskInfo
	switch data.TaskModule {
	case TaskModulePlayer:
		info = tab.PlayerTask(b.appRoot(), data.VideoID)
	case TaskModuleSelector:
		info = tab.SelectorCardTask(data.VideoID)
	default:
		b.log.Debug("unknown task module, showing default video", "task_module", data.TaskModule)
		info = tab.DefaultPlayerTask(b.appRoot())
	}
	return &teams.TaskModuleResponse{Task: teams.ContinueTask(info)}, nil
}

// OnTaskModuleSubmit plays the video id entered in the selector card.
func (b *Bot) OnTaskModuleSubmit(_ context.Context, _ *bot.TurnContext, req teams.TaskModuleRequest) (*teams.TaskModuleResponse, error) {
	videoID, err := tab.SubmittedVideoID(req.Data)
	if err != nil {
		return nil, fmt.Errorf("decode task submit data: %w", err)
	}
	return &teams.TaskModuleResponse{Task: teams.ContinueTask(tab.PlayerTask(b.appRoot(), videoID))}, nil
}

// OnTurnEnd persists conversation state after every turn, changed or not.
func (b *Bot) OnTurnEnd(ctx context.Context, tc *bot.TurnContext) error {
	snap, err := b.snapshot(ctx, tc)
	if err != nil {
		return err
	}
	if err := b.state.SaveChanges(ctx, snap); err != nil {
		return fmt.Errorf("save conversation state: %w", err)
	}
	return nil
}
