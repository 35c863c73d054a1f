package pipeline

import "sync/atomic"

// Settings are the runtime toggles a user may flip while the pipeline runs.
type Settings struct {
	DeepScanEnabled      bool `json:"deep_scan_enabled"`
	NotificationsEnabled bool `json:"notifications_enabled"`
}

type settingsValue struct {
	v atomic.Pointer[Settings]
}

func (s *settingsValue) load() Settings {
	if p := s.v.Load(); p != nil {
		return *p
	}
	return Settings{}
}

func (s *settingsValue) store(next Settings) {
	s.v.Store(&next)
}
