package tool

// BackendConfig describes the tool backend connection: a URL selects SSE,
// otherwise Command is spawned as a stdio subprocess. With neither set the
// tool server runs embedded in-process.
type BackendConfig struct {
	URL     string            `json:"serverUrl,omitempty" yaml:"serverUrl,omitempty"`
	Command string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// ArtifactTools are the backend tools whose replies carry a document payload.
	ArtifactTools []string `json:"artifactTools" yaml:"artifactTools"`
}

func DefaultBackendConfig() BackendConfig {
	return BackendConfig{ArtifactTools: []string{"tailor_resume", "generate_cover_letter"}}
}
