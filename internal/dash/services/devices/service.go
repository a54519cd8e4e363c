// Package devices joins the filter's network table with dashboard nicknames
// and answers per-device statistics by resolving a MAC to its IP.
package devices

import (
	"context"
	"strings"
	"time"

	"github.com/haukened/pihole-dash/internal/dash/domain"
)

// Network is the device side of the query log.
type Network interface {
	NetworkDevices(ctx context.Context) ([]domain.NetworkDevice, error)
	ClientSummary(ctx context.Context, ip string, since int64) (domain.Summary, error)
	ClientActivity(ctx context.Context, ip string, since int64) ([]domain.TimeBucket, error)
	ClientTopDomains(ctx context.Context, ip string, since int64, limit int) ([]domain.DomainCount, error)
	ClientTopBlocked(ctx context.Context, ip string, since int64, limit int) ([]domain.DomainCount, error)
}

// Nicknames is the dashboard-owned label store.
type Nicknames interface {
	ListNicknames(ctx context.Context) (map[string]domain.DeviceNickname, error)
	UpsertNickname(ctx context.Context, n domain.DeviceNickname) error
}

type ReferenceClock interface {
	Since(ctx context.Context, d time.Duration) int64
}

type Options struct {
	Network   Network
	Nicknames Nicknames
	Clock     ReferenceClock
}

type Service struct {
	network   Network
	nicknames Nicknames
	clock     ReferenceClock
}

func NewService(opts Options) *Service {
	return &Service{network: opts.Network, nicknames: opts.Nicknames, clock: opts.Clock}
}

// List returns every known device with its nickname and icon, if any.
func (s *Service) List(ctx context.Context) ([]domain.NetworkDevice, error) {
	devs, err := s.network.NetworkDevices(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.nicknames.ListNicknames(ctx)
	if err != nil {
		return nil, err
	}
	for i := range devs {
		if n, ok := names[devs[i].MAC]; ok {
			nick := n.Nickname
			devs[i].Nickname = &nick
			devs[i].Icon = n.Icon
		}
	}
	return devs, nil
}

// SetNickname labels mac, replacing any earlier label.
func (s *Service) SetNickname(ctx context.Context, mac, nickname string, icon *string) (domain.DeviceNickname, error) {
	n := domain.DeviceNickname{MAC: strings.TrimSpace(mac), Nickname: nickname, Icon: icon}
	if err := s.nicknames.UpsertNickname(ctx, n); err != nil {
		return domain.DeviceNickname{}, err
	}
	return n, nil
}

// lookupIP returns the first IP recorded for mac, or "" when none is known.
func (s *Service) lookupIP(ctx context.Context, mac string) (string, error) {
	devs, err := s.network.NetworkDevices(ctx)
	if err != nil {
		return "", err
	}
	for _, d := range devs {
		if d.MAC == mac {
			if d.IP == nil {
				return "", nil
			}
			return *d.IP, nil
		}
	}
	return "", nil
}

// Stats summarises a device's queries. Unknown devices get a zero summary.
func (s *Service) Stats(ctx context.Context, mac string, hours int) (domain.Summary, error) {
	ip, err := s.lookupIP(ctx, mac)
	if err != nil || ip == "" {
		return domain.Summary{}, err
	}
	return s.network.ClientSummary(ctx, ip, s.clock.Since(ctx, time.Duration(hours)*time.Hour))
}

// Activity buckets a device's queries over time. Unknown devices get none.
func (s *Service) Activity(ctx context.Context, mac string, hours int) ([]domain.TimeBucket, error) {
	ip, err := s.lookupIP(ctx, mac)
	if err != nil {
		return nil, err
	}
	if ip == "" {
		return []domain.TimeBucket{}, nil
	}
	return s.network.ClientActivity(ctx, ip, s.clock.Since(ctx, time.Duration(hours)*time.Hour))
}

// TopDomains lists a device's most queried domains over the last day.
func (s *Service) TopDomains(ctx context.Context, mac string, limit int) ([]domain.DomainCount, error) {
	ip, err := s.lookupIP(ctx, mac)
	if err != nil {
		return nil, err
	}
	if ip == "" {
		return []domain.DomainCount{}, nil
	}
	return s.network.ClientTopDomains(ctx, ip, s.clock.Since(ctx, 24*time.Hour), limit)
}

// TopBlocked lists a device's most blocked domains over the last day.
func (s *Service) TopBlocked(ctx context.Context, mac string, limit int) ([]domain.DomainCount, error) {
	ip, err := s.lookupIP(ctx, mac)
	if err != nil {
		return nil, err
	}
	if ip == "" {
		return []domain.DomainCount{}, nil
	}
	return s.network.ClientTopBlocked(ctx, ip, s.clock.Since(ctx, 24*time.Hour), limit)
}
