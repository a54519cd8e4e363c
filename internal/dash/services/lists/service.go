// Package lists manages the filter's domain lists. Reads go to the list
// database; additions and removals go through the filter binary so the
// filter stays authoritative for its own data.
package lists

import (
	"context"
	"fmt"

	"github.com/haukened/pihole-dash/internal/dash/common/utils"
	"github.com/haukened/pihole-dash/internal/dash/domain"
	"github.com/haukened/pihole-dash/internal/dash/gateways/pihole"
)

type Repository interface {
	Domains(ctx context.Context, kind *domain.ListKind) ([]domain.DomainListEntry, error)
	DomainByID(ctx context.Context, id int64) (domain.DomainListEntry, error)
	SetEnabled(ctx context.Context, id int64, enabled bool) error
	Adlists(ctx context.Context) ([]domain.Adlist, error)
}

type Filter interface {
	Add(ctx context.Context, kind domain.ListKind, value, comment string) (pihole.Result, error)
	Remove(ctx context.Context, kind domain.ListKind, value string) (pihole.Result, error)
	ReloadLists(ctx context.Context) error
}

type Options struct {
	Repo   Repository
	Filter Filter
}

type Service struct {
	repo   Repository
	filter Filter
}

func NewService(opts Options) *Service {
	return &Service{repo: opts.Repo, filter: opts.Filter}
}

// List returns entries of kind, or every entry when kind is nil.
func (s *Service) List(ctx context.Context, kind *domain.ListKind) ([]domain.DomainListEntry, error) {
	return s.repo.Domains(ctx, kind)
}

// Add puts value on the kind list and returns the filter's output.
// Plain domains are normalised; regular expressions are passed through.
func (s *Service) Add(ctx context.Context, kind domain.ListKind, value, comment string) (string, error) {
	switch kind {
	case domain.ListBlacklist, domain.ListWhitelist, domain.ListWildcard:
		name, err := utils.NormalizeDomain(value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidDomain, err)
		}
		value = name
	case domain.ListRegexBlack:
	default:
		return "", fmt.Errorf("%w: cannot add %s", domain.ErrUnsupportedListKind, kind)
	}
	res, err := s.filter.Add(ctx, kind, value, comment)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Delete removes entry id via the command matching its list.
func (s *Service) Delete(ctx context.Context, id int64) error {
	entry, err := s.repo.DomainByID(ctx, id)
	if err != nil {
		return err
	}
	kind, err := domain.ListKindFromGravityType(entry.Type)
	if err != nil {
		return err
	}
	if kind == domain.ListRegexWhite {
		return fmt.Errorf("%w: cannot remove %s entries", domain.ErrUnsupportedListKind, kind)
	}
	_, err = s.filter.Remove(ctx, kind, entry.Domain)
	return err
}

// SetEnabled toggles entry id and reloads the filter's lists.
func (s *Service) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	if err := s.repo.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}
	return s.filter.ReloadLists(ctx)
}

// Adlists returns the subscribed block lists.
func (s *Service) Adlists(ctx context.Context) ([]domain.Adlist, error) {
	return s.repo.Adlists(ctx)
}

// Presets returns the curated one-click bundles keyed by slug.
func (s *Service) Presets() map[string]domain.Preset {
	return domain.Presets
}
