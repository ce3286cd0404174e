package service

import (
	"math/rand"
	"testing"

	"github.com/bwmarrin/snowflake"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newTier(t *testing.T, node *snowflake.Node, features tierdomain.Features) tierdomain.Tier {
	t.Helper()
	return tierdomain.Tier{
		ID:          node.Generate(),
		ProductID:   "prod_" + node.Generate().String(),
		BillingType: tierdomain.BillingTypeSubscription,
		Features:    datatypes.NewJSONType(features),
	}
}

func testNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func TestMergeEmptyInput(t *testing.T) {
	_, err := Merge(nil)
	assert.ErrorIs(t, err, tierdomain.ErrTierNotFound)
}

func TestMergeBusinessOutranksLargerIndividual(t *testing.T) {
	node := testNode(t)

	// The individual allotment is far bigger than the per-seat one; the
	// business tier must still win outright.
	individual := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 40},
	})
	business := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{
			Enabled: true,
			Workspaces: tierdomain.WorkspaceFeature{
				Enabled:              true,
				MinimumSeats:         3,
				MaximumSeats:         50,
				MaxSpaceBytesPerSeat: 1 << 30,
			},
		},
	})

	for _, tiers := range [][]tierdomain.Tier{
		{individual, business},
		{business, individual},
	} {
		got, err := Merge(tiers)
		require.NoError(t, err)
		assert.True(t, got.Drive.Workspace)
		assert.Equal(t, business.ID, got.Drive.SourceTierID)
		assert.Equal(t, int64(1<<30), got.Drive.MaxSpaceBytesPerSeat)
		assert.Equal(t, 3, got.Drive.MinimumSeats)
		assert.Equal(t, 50, got.Drive.MaximumSeats)
		assert.Zero(t, got.Drive.MaxSpaceBytes)
	}
}

func TestMergeIndividualPicksLargestAllotment(t *testing.T) {
	node := testNode(t)

	small := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 10 << 30},
	})
	large := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 200 << 30},
	})

	got, err := Merge([]tierdomain.Tier{small, large})
	require.NoError(t, err)
	assert.False(t, got.Drive.Workspace)
	assert.Equal(t, int64(200<<30), got.Drive.MaxSpaceBytes)
	assert.Equal(t, large.ID, got.Drive.SourceTierID)
}

func TestMergeDriveTieKeepsFirstSeen(t *testing.T) {
	node := testNode(t)

	first := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 50 << 30},
	})
	second := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 50 << 30},
	})

	got, err := Merge([]tierdomain.Tier{first, second})
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.Drive.SourceTierID)

	got, err = Merge([]tierdomain.Tier{second, first})
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.Drive.SourceTierID)
}

func TestMergeScalarMaxForMailAndMeet(t *testing.T) {
	node := testNode(t)

	a := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 30},
		Mail:  tierdomain.MailFeature{Enabled: true, AddressesPerUser: 5},
		Meet:  tierdomain.MeetFeature{Enabled: true, PaxPerCall: 50},
	})
	b := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 2 << 30},
		Mail:  tierdomain.MailFeature{Enabled: true, AddressesPerUser: 10},
		Meet:  tierdomain.MeetFeature{Enabled: true, PaxPerCall: 8},
	})

	got, err := Merge([]tierdomain.Tier{a, b})
	require.NoError(t, err)

	assert.Equal(t, 10, got.Mail.AddressesPerUser)
	assert.Equal(t, b.ID, got.Mail.SourceTierID)
	assert.Equal(t, 50, got.Meet.PaxPerCall)
	assert.Equal(t, a.ID, got.Meet.SourceTierID)
}

func TestMergeVPNKeepsFirstEnabler(t *testing.T) {
	node := testNode(t)

	withoutVPN := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 30},
	})
	basic := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 30},
		VPN:   tierdomain.VPNFeature{Enabled: true, FeatureID: "vpn-basic"},
	})
	premium := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 30},
		VPN:   tierdomain.VPNFeature{Enabled: true, FeatureID: "vpn-premium"},
	})

	got, err := Merge([]tierdomain.Tier{withoutVPN, basic, premium})
	require.NoError(t, err)
	assert.True(t, got.VPN.Enabled)
	assert.Equal(t, "vpn-basic", got.VPN.FeatureID)
	assert.Equal(t, basic.ID, got.VPN.SourceTierID)
}

func TestMergeOutcomeIsOrderIndependent(t *testing.T) {
	node := testNode(t)

	// Distinct maxima and single enablers everywhere, so the full outcome
	// including source tiers must survive any input permutation.
	tiers := []tierdomain.Tier{
		newTier(t, node, tierdomain.Features{
			Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 200 << 30},
			Mail:  tierdomain.MailFeature{Enabled: true, AddressesPerUser: 5},
		}),
		newTier(t, node, tierdomain.Features{
			Drive: tierdomain.DriveFeature{
				Enabled: true,
				Workspaces: tierdomain.WorkspaceFeature{
					Enabled:              true,
					MinimumSeats:         3,
					MaximumSeats:         25,
					MaxSpaceBytesPerSeat: 1 << 30,
				},
			},
			Meet: tierdomain.MeetFeature{Enabled: true, PaxPerCall: 50},
		}),
		newTier(t, node, tierdomain.Features{
			Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 10 << 30},
			Mail:  tierdomain.MailFeature{Enabled: true, AddressesPerUser: 12},
			VPN:   tierdomain.VPNFeature{Enabled: true, FeatureID: "vpn-premium"},
		}),
		newTier(t, node, tierdomain.Features{
			Meet:      tierdomain.MeetFeature{Enabled: true, PaxPerCall: 8},
			Antivirus: tierdomain.ToggleFeature{Enabled: true},
			Backups:   tierdomain.ToggleFeature{Enabled: true},
		}),
	}

	baseline, err := Merge(tiers)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]tierdomain.Tier(nil), tiers...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := Merge(shuffled)
		require.NoError(t, err)
		assert.Equal(t, baseline, got)
	}
}

func TestMergeAnyTierEnablesToggles(t *testing.T) {
	node := testNode(t)

	plain := newTier(t, node, tierdomain.Features{
		Drive: tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 30},
	})
	security := newTier(t, node, tierdomain.Features{
		Drive:     tierdomain.DriveFeature{Enabled: true, MaxSpaceBytes: 1 << 30},
		Antivirus: tierdomain.ToggleFeature{Enabled: true},
		Backups:   tierdomain.ToggleFeature{Enabled: true},
	})

	got, err := Merge([]tierdomain.Tier{plain, security})
	require.NoError(t, err)
	assert.True(t, got.Antivirus.Enabled)
	assert.Equal(t, security.ID, got.Antivirus.SourceTierID)
	assert.True(t, got.Backups.Enabled)
	assert.Equal(t, security.ID, got.Backups.SourceTierID)
}
