package i18n

// Key identifies a user-facing message.
type Key string

const (
	SkillName               Key = "SKILL_NAME"
	WelcomeMessage          Key = "WELCOME_MESSAGE"
	WelcomeReprompt         Key = "WELCOME_REPROMPT"
	DisplayCardTitle        Key = "DISPLAY_CARD_TITLE"
	StockMessage            Key = "STOCK_MESSAGE"
	StockMessageRequestFail Key = "STOCK_MESSAGE_REQUEST_FAIL"
	HelpMessage             Key = "HELP_MESSAGE"
	HelpReprompt            Key = "HELP_REPROMPT"
	StopMessage             Key = "STOP_MESSAGE"
	RepeatMessage           Key = "REPEAT_MESSAGE"
	NotFoundMessage         Key = "NOT_FOUND_MESSAGE"
	NotFoundWithItemName    Key = "NOT_FOUND_WITH_ITEM_NAME"
	NotFoundWithoutItemName Key = "NOT_FOUND_WITHOUT_ITEM_NAME"
	NotFoundReprompt        Key = "NOT_FOUND_REPROMPT"
)

// Template parameter names.
const (
	ParamSkillName = "SkillName"
	ParamCompany   = "Company"
	ParamPrice     = "Price"
)

// Params binds template parameter names to values.
type Params map[string]any

// messageParams lists every key together with the exact parameters its
// template must reference.
var messageParams = map[Key][]string{
	SkillName:               nil,
	WelcomeMessage:          {ParamSkillName},
	WelcomeReprompt:         nil,
	DisplayCardTitle:        {ParamSkillName, ParamCompany},
	StockMessage:            {ParamCompany, ParamPrice},
	StockMessageRequestFail: {ParamCompany},
	HelpMessage:             nil,
	HelpReprompt:            nil,
	StopMessage:             nil,
	RepeatMessage:           nil,
	NotFoundMessage:         nil,
	NotFoundWithItemName:    {ParamCompany},
	NotFoundWithoutItemName: nil,
	NotFoundReprompt:        nil,
}
