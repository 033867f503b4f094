package convobot

import (
	"context"

	"github.com/ent0n29/teamsguide/internal/dialog"
)

const (
	HelpDialogID = "help"
	helpText     = "I'm just a friendly but rather stupid bot, and right now I don't have any valuable help for you!"
)

// HelpDialog answers with a canned reply and ends itself in the same turn.
type HelpDialog struct{}

func (HelpDialog) ID() string { return HelpDialogID }

func (HelpDialog) Begin(ctx context.Context, dc *dialog.Context, _ any) (dialog.Result, error) {
	if err := dc.Turn.SendText(ctx, helpText); err != nil {
		return dialog.Result{}, err
	}
	return dc.EndDialog(ctx, nil)
}
