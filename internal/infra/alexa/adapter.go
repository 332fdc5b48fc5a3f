package alexa

import (
	"context"
	"fmt"
	"log/slog"

	"stocks-skill/internal/domain"
)

// Session attribute keys used to carry the last reply between turns.
const (
	AttrSpeechOutput   = "speechOutput"
	AttrRepromptSpeech = "repromptSpeech"
)

const (
	speechPlainText = "PlainText"
	cardSimple      = "Simple"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, req *domain.Request) (*domain.Response, error)
}

// Adapter translates between the Alexa envelope and the dispatcher.
// It is shared by the webhook server and the Lambda handler.
type Adapter struct {
	appID      string
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewAdapter returns an adapter that only accepts requests for appID. An
// empty appID disables the check.
func NewAdapter(appID string, dispatcher Dispatcher, logger *slog.Logger) *Adapter {
	return &Adapter{
		appID:      appID,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (a *Adapter) Handle(ctx context.Context, env *RequestEnvelope) (*ResponseEnvelope, error) {
	if env == nil {
		return nil, fmt.Errorf("empty request envelope")
	}

	if a.appID != "" {
		if got := ApplicationID(env); got != a.appID {
			a.logger.Warn("rejecting request for foreign application",
				"request_id", env.Request.RequestID,
				"application_id", got,
			)
			return nil, domain.ErrInvalidApplicationID
		}
	}

	resp, err := a.dispatcher.Dispatch(ctx, ToDomain(env))
	if err != nil {
		return nil, err
	}
	return FromDomain(resp), nil
}

// ApplicationID returns the skill id the request was addressed to. Session
// requests carry it in the session, out-of-session requests only in the
// context.
func ApplicationID(env *RequestEnvelope) string {
	if env.Session != nil && env.Session.Application.ApplicationID != "" {
		return env.Session.Application.ApplicationID
	}
	if env.Context != nil {
		return env.Context.System.Application.ApplicationID
	}
	return ""
}

func ToDomain(env *RequestEnvelope) *domain.Request {
	req := &domain.Request{
		ID:            env.Request.RequestID,
		Type:          domain.RequestType(env.Request.Type),
		Locale:        env.Request.Locale,
		ApplicationID: ApplicationID(env),
	}

	if env.Request.Intent != nil {
		req.Intent = env.Request.Intent.Name
		if len(env.Request.Intent.Slots) > 0 {
			req.Slots = make(map[string]string, len(env.Request.Intent.Slots))
			for name, slot := range env.Request.Intent.Slots {
				req.Slots[name] = slot.Value
			}
		}
	}

	if env.Session != nil {
		req.Session = domain.Session{
			LastSpeech:   stringAttr(env.Session.Attributes, AttrSpeechOutput),
			LastReprompt: stringAttr(env.Session.Attributes, AttrRepromptSpeech),
		}
	}

	return req
}

func FromDomain(resp *domain.Response) *ResponseEnvelope {
	out := &ResponseEnvelope{
		Version: Version,
		Response: Response{
			ShouldEndSession: resp.EndSession,
		},
	}

	if resp.Speech != "" {
		out.Response.OutputSpeech = &OutputSpeech{Type: speechPlainText, Text: resp.Speech}
	}
	if resp.Reprompt != "" && !resp.EndSession {
		out.Response.Reprompt = &Reprompt{
			OutputSpeech: OutputSpeech{Type: speechPlainText, Text: resp.Reprompt},
		}
	}
	if resp.Card != nil {
		out.Response.Card = &Card{
			Type:    cardSimple,
			Title:   resp.Card.Title,
			Content: resp.Card.Content,
		}
	}
	if !resp.Session.Empty() {
		out.SessionAttributes = map[string]any{
			AttrSpeechOutput:   resp.Session.LastSpeech,
			AttrRepromptSpeech: resp.Session.LastReprompt,
		}
	}

	return out
}

func stringAttr(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}
