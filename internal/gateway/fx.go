package gateway

import "go.uber.org/fx"

var Module = fx.Module("gateway",
	fx.Provide(
		NewDriveApplier,
		NewVPNApplier,
		NewObjectStorageClient,
		NewFanout,
	),
)
