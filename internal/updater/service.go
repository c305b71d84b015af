// Package updater checks for and applies released binaries via GitHub
// releases.
package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/creativeprojects/go-selfupdate"
)

// repoSlug is the GitHub repository releases are published to.
const repoSlug = "smazurov/busylightd"

// ErrNoRelease means the repository has no published release for this
// platform.
var ErrNoRelease = errors.New("no release found")

// Status is the result of a version check.
type Status struct {
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version"`
	UpdateAvailable bool  `json:"update_available"`
	ReleaseNotes   string `json:"release_notes,omitempty"`
	ReleaseURL     string `json:"release_url,omitempty"`
}

// Service performs update checks and self-replacement.
type Service struct {
	logger  *slog.Logger
	current string
}

// New creates an update service for the given running version.
func New(current string, logger *slog.Logger) *Service {
	return &Service{logger: logger, current: current}
}

// Check queries the latest release without changing anything.
func (s *Service) Check(ctx context.Context) (*Status, error) {
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return nil, fmt.Errorf("detecting latest release: %w", err)
	}
	if !found {
		return nil, ErrNoRelease
	}

	return &Status{
		CurrentVersion:  s.current,
		LatestVersion:   latest.Version(),
		UpdateAvailable: !latest.LessOrEqual(s.current),
		ReleaseNotes:    latest.ReleaseNotes,
		ReleaseURL:      latest.URL,
	}, nil
}

// Apply replaces the running binary with the latest release. The caller
// is responsible for restarting the process afterwards.
func (s *Service) Apply(ctx context.Context) (*Status, error) {
	status, err := s.Check(ctx)
	if err != nil {
		return nil, err
	}
	if !status.UpdateAvailable {
		s.logger.Info("already up to date", "version", s.current)
		return status, nil
	}

	s.logger.Info("updating", "from", s.current, "to", status.LatestVersion)
	release, err := selfupdate.UpdateSelf(ctx, s.current, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return nil, fmt.Errorf("applying update: %w", err)
	}

	s.logger.Info("update applied", "version", release.Version())
	status.CurrentVersion = release.Version()
	status.UpdateAvailable = false
	return status, nil
}
