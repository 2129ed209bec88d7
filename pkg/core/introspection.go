package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType    string   `json:"store_type"`
	Capabilities []string `json:"capabilities"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	storeType := "unknown"
	if s.store != nil {
		storeType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	var caps []string
	if _, ok := s.store.(LedgerProvider); ok {
		caps = append(caps, "ledger")
	}
	if _, ok := s.store.(Statistician); ok {
		caps = append(caps, "stats")
	}
	if _, ok := s.store.(Watchable); ok {
		caps = append(caps, "watch")
	}

	return ServiceState{
		StoreType:    storeType,
		Capabilities: caps,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
