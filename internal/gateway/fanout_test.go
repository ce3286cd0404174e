package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/entitle/internal/config"
	"github.com/smallbiznis/entitle/internal/gateway"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type gatewayRecorder struct {
	mu       sync.Mutex
	status   int
	requests []string
}

func (g *gatewayRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		g.requests = append(g.requests, r.Method+" "+r.URL.Path)
		status := g.status
		g.mu.Unlock()
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	})
}

func (g *gatewayRecorder) recorded() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.requests...)
}

func setupFanout(t *testing.T) (*gateway.Fanout, *gatewayRecorder, *gatewayRecorder) {
	t.Helper()

	drive := &gatewayRecorder{}
	driveSrv := httptest.NewServer(drive.handler())
	t.Cleanup(driveSrv.Close)

	vpn := &gatewayRecorder{}
	vpnSrv := httptest.NewServer(vpn.handler())
	t.Cleanup(vpnSrv.Close)

	cfg := config.Config{
		Gateways: config.GatewayConfig{
			DriveURL:    driveSrv.URL,
			DriveSecret: "drive-secret",
			VPNURL:      vpnSrv.URL,
			VPNSecret:   "vpn-secret",
		},
	}
	fanout := gateway.NewFanout(gateway.FanoutParams{
		Log:   zap.NewNop(),
		Drive: gateway.NewDriveApplier(cfg),
		VPN:   gateway.NewVPNApplier(cfg),
	})
	return fanout, drive, vpn
}

func fanoutTier(t *testing.T, features tierdomain.Features) tierdomain.Tier {
	t.Helper()

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	return tierdomain.Tier{
		ID:       node.Generate(),
		Features: datatypes.NewJSONType(features),
	}
}

func TestFanoutApplyPushesToEveryGateway(t *testing.T) {
	fanout, drive, vpn := setupFanout(t)
	tier := fanoutTier(t, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 40},
		VPN:   tierdomain.VPNFeature{Enabled: true, FeatureID: "vpn-standard"},
	})

	failed := fanout.Apply(context.Background(), "user-1", tier)

	require.Zero(t, failed)
	require.Equal(t, []string{"POST /entitlement"}, drive.recorded())
	require.Equal(t, []string{"POST /entitlement"}, vpn.recorded())
}

func TestFanoutRevokeConvergesEveryGateway(t *testing.T) {
	fanout, drive, vpn := setupFanout(t)
	tier := fanoutTier(t, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 40},
		VPN:   tierdomain.VPNFeature{Enabled: true, FeatureID: "vpn-standard"},
	})

	failed := fanout.Revoke(context.Background(), "user-1", tier)

	require.Zero(t, failed)
	require.Equal(t, []string{"DELETE /entitlement/user-1"}, drive.recorded())
	require.Equal(t, []string{"DELETE /entitlement/user-1"}, vpn.recorded())
}

func TestFanoutRevokeContinuesPastFailingGateway(t *testing.T) {
	fanout, drive, vpn := setupFanout(t)
	drive.status = http.StatusBadGateway
	tier := fanoutTier(t, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 40},
	})

	failed := fanout.Revoke(context.Background(), "user-1", tier)

	require.Equal(t, 1, failed)
	require.Equal(t, []string{"DELETE /entitlement/user-1"}, vpn.recorded())
}

func TestFanoutApplyCountsFailures(t *testing.T) {
	fanout, drive, vpn := setupFanout(t)
	vpn.status = http.StatusInternalServerError
	tier := fanoutTier(t, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 40},
		VPN:   tierdomain.VPNFeature{Enabled: true, FeatureID: "vpn-standard"},
	})

	failed := fanout.Apply(context.Background(), "user-1", tier)

	require.Equal(t, 1, failed)
	require.Equal(t, []string{"POST /entitlement"}, drive.recorded())
}
