package cmd

import (
	"log/slog"

	"github.com/journeyd/journeyd/pkg/actions/condition"
	"github.com/journeyd/journeyd/pkg/actions/personalization"
	"github.com/journeyd/journeyd/pkg/actions/promocode"
	"github.com/journeyd/journeyd/pkg/actions/pushnotification"
	smsaction "github.com/journeyd/journeyd/pkg/actions/sms"
	whatsappaction "github.com/journeyd/journeyd/pkg/actions/whatsapp"
	"github.com/journeyd/journeyd/pkg/expression"
	"github.com/journeyd/journeyd/pkg/persistence"
	"github.com/journeyd/journeyd/pkg/providers"
	"github.com/journeyd/journeyd/pkg/providers/audience"
	"github.com/journeyd/journeyd/pkg/providers/push"
	"github.com/journeyd/journeyd/pkg/providers/rules"
	"github.com/journeyd/journeyd/pkg/providers/sms"
	"github.com/journeyd/journeyd/pkg/providers/whatsapp"
	"github.com/journeyd/journeyd/pkg/registry"
	"github.com/journeyd/journeyd/pkg/sources/queue"
	"github.com/journeyd/journeyd/pkg/sources/schedule"
)

// NewRegistry builds the registry with every native action and source
// registered. Delivery providers share one credential store.
func NewRegistry(
	logger *slog.Logger,
	store persistence.Persistence,
	credentials providers.CredentialStore,
) *registry.Registry {
	reg := registry.NewRegistry(logger)

	registerNativeActions(reg, logger, store, credentials)
	registerNativeSources(reg)

	return reg
}

func registerNativeActions(
	reg *registry.Registry,
	logger *slog.Logger,
	store persistence.Persistence,
	credentials providers.CredentialStore,
) {
	engine := expression.NewEngine()

	reg.RegisterAction(pushnotification.NewActionFactory(
		push.NewHTTPSender(credentials, logger),
		audience.NewHTTPResolver(credentials, logger),
	))
	reg.RegisterAction(whatsappaction.NewActionFactory(whatsapp.NewHTTPClient(credentials, logger)))
	reg.RegisterAction(smsaction.NewActionFactory(sms.NewHTTPClient(credentials, logger)))
	reg.RegisterAction(promocode.NewActionFactory(store.PromoCodes()))
	reg.RegisterAction(condition.NewActionFactory(engine))
	reg.RegisterAction(personalization.NewActionFactory(rules.NewHTTPClient(credentials, logger)))
}

func registerNativeSources(reg *registry.Registry) {
	reg.RegisterSource(queue.NewSourceFactory())
	reg.RegisterSource(schedule.NewSourceFactory())
}
