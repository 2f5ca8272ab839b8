package mcp

// Transport selects how the backend is reached.
type Transport string

const (
	TransportStdio     Transport = "stdio"
	TransportSSE       Transport = "sse"
	TransportInProcess Transport = "inprocess"
)

// Config holds the connection parameters for the tool backend.
// URL set selects SSE; otherwise Command is spawned over stdio.
type Config struct {
	Command string
	Args    []string
	Env     map[string]string
	URL     string
	Headers map[string]string

	// ArtifactTools names the backend tools whose replies carry documents.
	ArtifactTools []string
}

// Transport reports the transport implied by the configuration.
func (c Config) Transport() Transport {
	if c.URL != "" {
		return TransportSSE
	}
	return TransportStdio
}

func (c Config) envList() []string {
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	return out
}
