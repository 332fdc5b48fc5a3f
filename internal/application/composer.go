package application

import (
	"fmt"
	"strings"

	"stocks-skill/internal/domain"
	"stocks-skill/internal/i18n"
)

// Composer turns an intent and its outcome into localized text. All wording
// comes from the catalog.
type Composer struct {
	catalog *i18n.Catalog
}

func NewComposer(catalog *i18n.Catalog) *Composer {
	return &Composer{catalog: catalog}
}

// Supports reports domain.ErrMissingLocale for locales without a bundle.
func (c *Composer) Supports(locale string) error {
	_, err := c.catalog.Localizer(locale)
	return err
}

func (c *Composer) Compose(locale string, intent domain.IntentName, outcome domain.Outcome) (*domain.Reply, error) {
	l, err := c.catalog.Localizer(locale)
	if err != nil {
		return nil, err
	}
	r := &renderer{l: l}

	var reply *domain.Reply
	switch intent {
	case domain.IntentLaunch:
		reply = &domain.Reply{
			Speech:   r.t(i18n.WelcomeMessage, i18n.Params{i18n.ParamSkillName: r.t(i18n.SkillName, nil)}),
			Reprompt: r.t(i18n.WelcomeReprompt, nil),
		}

	case domain.IntentStocks:
		reply, err = c.composeStocks(r, outcome)
		if err != nil {
			return nil, err
		}

	case domain.IntentHelp, domain.IntentRepeat, domain.IntentUnhandled:
		reply = &domain.Reply{
			Speech:   r.t(i18n.HelpMessage, nil),
			Reprompt: r.t(i18n.HelpReprompt, nil),
		}

	case domain.IntentStop, domain.IntentCancel, domain.IntentSessionEnded:
		reply = &domain.Reply{Speech: r.t(i18n.StopMessage, nil)}

	default:
		return nil, fmt.Errorf("no reply for intent %s", intent)
	}

	if r.err != nil {
		return nil, r.err
	}
	return reply, nil
}

func (c *Composer) composeStocks(r *renderer, outcome domain.Outcome) (*domain.Reply, error) {
	company := string(outcome.Company)

	switch outcome.Kind {
	case domain.OutcomeSuccess, domain.OutcomeFetchFailed:
		var speech string
		if outcome.Kind == domain.OutcomeSuccess {
			speech = r.t(i18n.StockMessage, i18n.Params{
				i18n.ParamCompany: company,
				i18n.ParamPrice:   outcome.Price.Rounded().String(),
			})
		} else {
			speech = r.t(i18n.StockMessageRequestFail, i18n.Params{i18n.ParamCompany: company})
		}
		title := r.t(i18n.DisplayCardTitle, i18n.Params{
			i18n.ParamSkillName: r.t(i18n.SkillName, nil),
			i18n.ParamCompany:   company,
		})
		return &domain.Reply{
			Speech:   speech,
			Reprompt: r.t(i18n.RepeatMessage, nil),
			Card:     &domain.Card{Title: title, Content: speech},
		}, nil

	case domain.OutcomeNotFound:
		var item string
		if outcome.Company.IsBlank() {
			item = r.t(i18n.NotFoundWithoutItemName, nil)
		} else {
			item = r.t(i18n.NotFoundWithItemName, i18n.Params{i18n.ParamCompany: company})
		}
		reprompt := r.t(i18n.NotFoundReprompt, nil)
		return &domain.Reply{
			Speech:   strings.Join([]string{r.t(i18n.NotFoundMessage, nil), item, reprompt}, " "),
			Reprompt: reprompt,
		}, nil

	default:
		return nil, fmt.Errorf("stocks reply without outcome")
	}
}

// renderer keeps the first rendering error so replies can be assembled
// without checking every message.
type renderer struct {
	l   *i18n.Localizer
	err error
}

func (r *renderer) t(key i18n.Key, params i18n.Params) string {
	if r.err != nil {
		return ""
	}
	s, err := r.l.T(key, params)
	if err != nil {
		r.err = err
	}
	return s
}
