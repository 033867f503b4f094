package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ent0n29/teamsguide/internal/teams"
)

// ErrNotImplemented is returned for commands a bot does not know.
var ErrNotImplemented = errors.New("NotImplemented")

// InvokeResponse is the synchronous HTTP answer to an invoke activity.
type InvokeResponse struct {
	Status int `json:"status"`
	Body   any `json:"body,omitempty"`
}

// Bot is the minimum a handler implements; the optional interfaces below opt into activity kinds.
type Bot interface {
	Name() string
}

type MessageHandler interface {
	OnMessage(ctx context.Context, tc *TurnContext) error
}

type MembersAddedHandler interface {
	OnMembersAdded(ctx context.Context, tc *TurnContext, members []teams.ChannelAccount) error
}

type ReactionsAddedHandler interface {
	OnReactionsAdded(ctx context.Context, tc *TurnContext, reactions []teams.MessageReaction) error
}

type FetchTaskHandler interface {
	OnMessagingExtensionFetchTask(ctx context.Context, tc *TurnContext, action teams.MessagingExtensionAction) (*teams.MessagingExtensionActionResponse, error)
}

type SubmitActionHandler interface {
	OnMessagingExtensionSubmitAction(ctx context.Context, tc *TurnContext, action teams.MessagingExtensionAction) (*teams.MessagingExtensionActionResponse, error)
}

type QueryHandler interface {
	OnMessagingExtensionQuery(ctx context.Context, tc *TurnContext, query teams.MessagingExtensionQuery) (*teams.MessagingExtensionResponse, error)
}

type LinkQueryHandler interface {
	OnAppBasedLinkQuery(ctx context.Context, tc *TurnContext, query teams.AppBasedLinkQuery) (*teams.MessagingExtensionResponse, error)
}

type TaskModuleHandler interface {
	OnTaskModuleFetch(ctx context.Context, tc *TurnContext, req teams.TaskModuleRequest) (*teams.TaskModuleResponse, error)
	OnTaskModuleSubmit(ctx context.Context, tc *TurnContext, req teams.TaskModuleRequest) (*teams.TaskModuleResponse, error)
}

// TurnEndHandler runs after every routed turn, including ones no other handler claimed.
type TurnEndHandler interface {
	OnTurnEnd(ctx context.Context, tc *TurnContext) error
}

// Process routes one activity to b. The returned InvokeResponse is nil for non-invoke activities.
func Process(ctx context.Context, b Bot, tc *TurnContext) (*InvokeResponse, error) {
	resp, err := route(ctx, b, tc)
	if err != nil {
		return nil, err
	}
	if h, ok := b.(TurnEndHandler); ok {
		if err := h.OnTurnEnd(ctx, tc); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func route(ctx context.Context, b Bot, tc *TurnContext) (*InvokeResponse, error) {
	a := tc.Activity
	switch a.Type {
	case teams.TypeMessage:
		if h, ok := b.(MessageHandler); ok {
			return nil, h.OnMessage(ctx, tc)
		}
	case teams.TypeConversationUpdate:
		if h, ok := b.(MembersAddedHandler); ok && len(a.MembersAdded) > 0 {
			return nil, h.OnMembersAdded(ctx, tc, a.MembersAdded)
		}
	case teams.TypeMessageReaction:
		if h, ok := b.(ReactionsAddedHandler); ok && len(a.ReactionsAdded) > 0 {
			return nil, h.OnReactionsAdded(ctx, tc, a.ReactionsAdded)
		}
	case teams.TypeInvoke:
		return routeInvoke(ctx, b, tc)
	}
	return nil, nil
}

func routeInvoke(ctx context.Context, b Bot, tc *TurnContext) (*InvokeResponse, error) {
	a := tc.Activity
	switch a.Name {
	case teams.InvokeFetchTask, teams.InvokeSubmitAction:
		var action teams.MessagingExtensionAction
		if err := a.DecodeValue(&action); err != nil {
			return badRequest(), nil
		}
		if a.Name == teams.InvokeFetchTask {
			if h, ok := b.(FetchTaskHandler); ok {
				return ok200(h.OnMessagingExtensionFetchTask(ctx, tc, action))
			}
		} else if h, ok := b.(SubmitActionHandler); ok {
			return ok200(h.OnMessagingExtensionSubmitAction(ctx, tc, action))
		}
	case teams.InvokeQuery:
		var query teams.MessagingExtensionQuery
		if err := a.DecodeValue(&query); err != nil {
			return badRequest(), nil
		}
		if h, ok := b.(QueryHandler); ok {
			return ok200(h.OnMessagingExtensionQuery(ctx, tc, query))
		}
	case teams.InvokeQueryLink:
		var query teams.AppBasedLinkQuery
		if err := a.DecodeValue(&query); err != nil {
			return badRequest(), nil
		}
		if h, ok := b.(LinkQueryHandler); ok {
			return ok200(h.OnAppBasedLinkQuery(ctx, tc, query))
		}
	case teams.InvokeTaskFetch, teams.InvokeTaskSubmit:
		var req teams.TaskModuleRequest
		if err := a.DecodeValue(&req); err != nil {
			return badRequest(), nil
		}
		if h, ok := b.(TaskModuleHandler); ok {
			if a.Name == teams.InvokeTaskFetch {
				return ok200(h.OnTaskModuleFetch(ctx, tc, req))
			}
			return ok200(h.OnTaskModuleSubmit(ctx, tc, req))
		}
	}
	return &InvokeResponse{Status: http.StatusNotImplemented}, nil
}

func ok200[T any](body *T, err error) (*InvokeResponse, error) {
	if err != nil {
		return nil, fmt.Errorf("invoke handler: %w", err)
	}
	return &InvokeResponse{Status: http.StatusOK, Body: body}, nil
}

func badRequest() *InvokeResponse {
	return &InvokeResponse{Status: http.StatusBadRequest}
}
