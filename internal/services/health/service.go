package health

// Status is the health payload.
type Status struct {
	OK               bool   `json:"ok"`
	GeminiConfigured bool   `json:"geminiConfigured"`
	Model            string `json:"model,omitempty"`
	SnapshotEnabled  bool   `json:"snapshotEnabled"`
}

// Service encapsulates health-related checks.
type Service struct {
	geminiConfigured bool
	model            string
	snapshotEnabled  bool
}

// NewService constructs a new health service.
func NewService(geminiConfigured bool, model string, snapshotEnabled bool) *Service {
	return &Service{geminiConfigured: geminiConfigured, model: model, snapshotEnabled: snapshotEnabled}
}

// Status reports process liveness and whether audits can reach the model. A
// missing key leaves the process healthy; audits then fail with a
// configuration error.
func (s *Service) Status() Status {
	if s == nil {
		return Status{OK: true}
	}
	return Status{
		OK:               true,
		GeminiConfigured: s.geminiConfigured,
		Model:            s.model,
		SnapshotEnabled:  s.snapshotEnabled,
	}
}
