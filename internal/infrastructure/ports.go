package infrastructure

import "chatbot_platform/internal/interfaces"

var (
	_ interfaces.Completer     = (*OpenAICompleter)(nil)
	_ interfaces.Completer     = EchoCompleter{}
	_ interfaces.AgentNotifier = (*RelayNotifier)(nil)
	_ interfaces.Messenger     = (*TelegramManager)(nil)
	_ interfaces.AgentRegistry = (*MemoryAgentRegistry)(nil)
	_ interfaces.Backend       = (*BackendClient)(nil)
)
