package config

const (
	// DefaultAgentURL matches the agent's local development address.
	DefaultAgentURL = "http://localhost:8000/hospital-rag-agent"

	// LegacyURLEnv is the environment variable the docker compose deployment
	// used for the endpoint. It is honored alongside HOSPITALCHAT_AGENT_URL.
	LegacyURLEnv = "CHATBOT_URL"

	defaultWebListen = "127.0.0.1:8501"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Agent: AgentConfig{
			URL: DefaultAgentURL,
		},
		Web: WebConfig{
			Listen: defaultWebListen,
		},
	}
}
