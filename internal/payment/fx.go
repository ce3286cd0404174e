package payment

import (
	"github.com/smallbiznis/entitle/internal/payment/client"
	"github.com/smallbiznis/entitle/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(client.New),
	fx.Provide(webhook.New),
)
