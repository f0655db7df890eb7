package handlers

import (
	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/core/store"
	"github.com/fieldworks/woms/internal/realtime"
	"github.com/fieldworks/woms/internal/scheduling"
)

// API bundles the dependencies shared by the resource handlers.
type API struct {
	Store     *store.Store
	Scheduler *scheduling.Service
	Hub       *realtime.Hub
	Logger    *zap.Logger
}

// NewAPI wires the resource handlers.
func NewAPI(st *store.Store, scheduler *scheduling.Service, hub *realtime.Hub, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{Store: st, Scheduler: scheduler, Hub: hub, Logger: logger}
}

// publish forwards an event to the realtime hub when one is attached.
func (a *API) publish(rooms []string, event string, payload any) {
	if a == nil || a.Hub == nil {
		return
	}
	a.Hub.Publish(rooms, event, payload)
}
