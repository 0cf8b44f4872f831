// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"log/slog"

	"github.com/chainreact/chainreact/pkg/actions/approval"
	"github.com/chainreact/chainreact/pkg/actions/condition"
	"github.com/chainreact/chainreact/pkg/actions/httprequest"
	logaction "github.com/chainreact/chainreact/pkg/actions/log"
	"github.com/chainreact/chainreact/pkg/actions/setvariable"
	"github.com/chainreact/chainreact/pkg/actions/switchnode"
	"github.com/chainreact/chainreact/pkg/actions/transform"
	"github.com/chainreact/chainreact/pkg/actions/trigger"
	"github.com/chainreact/chainreact/pkg/actions/wait"
	"github.com/chainreact/chainreact/pkg/registry"
)

func registerNativeActions(reg *registry.Registry) {
	reg.RegisterAction(httprequest.NewActionFactory())
	reg.RegisterAction(transform.NewActionFactory())
	reg.RegisterAction(logaction.NewActionFactory())
	reg.RegisterAction(setvariable.NewActionFactory())
	reg.RegisterAction(wait.NewActionFactory())
	reg.RegisterAction(approval.NewActionFactory())
	reg.RegisterAction(condition.NewActionFactory())
	reg.RegisterAction(switchnode.NewActionFactory())
}

func registerNativeTriggers(reg *registry.Registry) {
	reg.RegisterAction(trigger.NewManualFactory())
	reg.RegisterAction(trigger.NewWebhookFactory())
	reg.RegisterAction(trigger.NewScheduleFactory())
}

// NewRegistry builds the node catalog with every built-in node type
// registered.
func NewRegistry(log *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(log)

	registerNativeTriggers(reg)
	registerNativeActions(reg)

	return reg
}
