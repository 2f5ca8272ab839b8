package bus

// Channel names a front-end.
type Channel string

const (
	ChannelSlack    Channel = "slack"
	ChannelTelegram Channel = "telegram"
	ChannelCLI      Channel = "cli"
	ChannelWeb      Channel = "web"
	ChannelAlerts   Channel = "alerts"
)

// ChatIDDirect is the chat id used by single-user front-ends.
const ChatIDDirect = "direct"
