package domain

type IntentName string

const (
	IntentLaunch       IntentName = "LaunchRequest"
	IntentStocks       IntentName = "StocksIntent"
	IntentHelp         IntentName = "AMAZON.HelpIntent"
	IntentRepeat       IntentName = "AMAZON.RepeatIntent"
	IntentStop         IntentName = "AMAZON.StopIntent"
	IntentCancel       IntentName = "AMAZON.CancelIntent"
	IntentSessionEnded IntentName = "SessionEndedRequest"
	IntentUnhandled    IntentName = "Unhandled"
)

// SlotStock carries the company name in StocksIntent.
const SlotStock = "Stock"

type RequestType string

const (
	RequestLaunch       RequestType = "LaunchRequest"
	RequestIntent       RequestType = "IntentRequest"
	RequestSessionEnded RequestType = "SessionEndedRequest"
)

// Request is a host-neutral view of one voice interaction.
type Request struct {
	ID            string
	Type          RequestType
	Intent        string
	Locale        string
	ApplicationID string
	Slots         map[string]string
	Session       Session
}

// Session holds the state persisted between turns by the host.
type Session struct {
	LastSpeech   string
	LastReprompt string
}

func (s Session) Empty() bool {
	return s.LastSpeech == "" && s.LastReprompt == ""
}

type Card struct {
	Title   string
	Content string
}

// Reply is the localized text for one turn.
type Reply struct {
	Speech   string
	Reprompt string
	Card     *Card
}

// Response is what the host renders back to the user.
type Response struct {
	Speech     string
	Reprompt   string
	Card       *Card
	EndSession bool
	Session    Session
}
