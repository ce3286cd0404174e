package service

import (
	"github.com/smallbiznis/entitle/internal/entitlement/domain"
	tierdomain "github.com/smallbiznis/entitle/internal/tier/domain"
)

// Merge computes one effective entitlement from every tier applicable to a
// user. It is pure and deterministic: shuffling the input changes at most
// which tier is recorded as source on a true tie, never the numeric outcome.
//
// Drive is never merged field by field. Business (workspace-capable) tiers
// strictly outrank individual ones regardless of byte counts, because the
// drive gateway cannot represent a grant mixing a personal quota with a
// per-seat one. Within a partition the largest allotment wins, first seen on
// ties.
func Merge(tiers []tierdomain.Tier) (domain.Entitlement, error) {
	var out domain.Entitlement

	drive, err := mergeDrive(tiers)
	if err != nil {
		return domain.Entitlement{}, err
	}
	out.Drive = drive

	for _, t := range tiers {
		features := t.FeatureSet()

		if mail := features.Mail; mail.Enabled {
			if !out.Mail.Enabled || mail.AddressesPerUser > out.Mail.AddressesPerUser {
				out.Mail = domain.MailGrant{
					Enabled:          true,
					AddressesPerUser: mail.AddressesPerUser,
					SourceTierID:     t.ID,
				}
			}
		}

		if meet := features.Meet; meet.Enabled {
			if !out.Meet.Enabled || meet.PaxPerCall > out.Meet.PaxPerCall {
				out.Meet = domain.MeetGrant{
					Enabled:      true,
					PaxPerCall:   meet.PaxPerCall,
					SourceTierID: t.ID,
				}
			}
		}

		// The first tier enabling vpn fixes the feature id; there is no
		// defined ranking across different vpn feature ids.
		if vpn := features.VPN; vpn.Enabled && !out.VPN.Enabled {
			out.VPN = domain.VPNGrant{
				Enabled:      true,
				FeatureID:    vpn.FeatureID,
				SourceTierID: t.ID,
			}
		}

		if features.Antivirus.Enabled && !out.Antivirus.Enabled {
			out.Antivirus = domain.ToggleGrant{Enabled: true, SourceTierID: t.ID}
		}
		if features.Backups.Enabled && !out.Backups.Enabled {
			out.Backups = domain.ToggleGrant{Enabled: true, SourceTierID: t.ID}
		}
	}

	return out, nil
}

func mergeDrive(tiers []tierdomain.Tier) (domain.DriveGrant, error) {
	var business, individual *tierdomain.Tier
	var bestPerSeat, bestBytes int64

	for i := range tiers {
		features := tiers[i].FeatureSet()
		if ws := features.Drive.Workspaces; ws.Enabled {
			if business == nil || ws.MaxSpaceBytesPerSeat > bestPerSeat {
				business = &tiers[i]
				bestPerSeat = ws.MaxSpaceBytesPerSeat
			}
			continue
		}
		if business != nil {
			continue
		}
		if individual == nil || features.Drive.MaxSpaceBytes > bestBytes {
			individual = &tiers[i]
			bestBytes = features.Drive.MaxSpaceBytes
		}
	}

	if business != nil {
		ws := business.FeatureSet().Drive.Workspaces
		return domain.DriveGrant{
			Enabled:              true,
			Workspace:            true,
			MaxSpaceBytesPerSeat: ws.MaxSpaceBytesPerSeat,
			MinimumSeats:         ws.MinimumSeats,
			MaximumSeats:         ws.MaximumSeats,
			SourceTierID:         business.ID,
		}, nil
	}
	if individual != nil {
		drive := individual.FeatureSet().Drive
		return domain.DriveGrant{
			Enabled:       drive.Enabled,
			MaxSpaceBytes: drive.MaxSpaceBytes,
			SourceTierID:  individual.ID,
		}, nil
	}

	return domain.DriveGrant{}, tierdomain.ErrTierNotFound
}
