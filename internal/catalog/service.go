package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/heimdex/prproj-export/internal/rows"
)

// ConfigAuthToken is the config key holding the API bearer token.
const ConfigAuthToken = "auth_token"

type CatalogService interface {
	Begin(ctx context.Context, c *Conversion) error
	Complete(ctx context.Context, c *Conversion, sequenceID, sequence string, rs []rows.Row) error
	Fail(ctx context.Context, c *Conversion, cause error) error
	Lookup(ctx context.Context, contentHash, optionsKey string) (*Conversion, error)
	Get(ctx context.Context, id string) (*Conversion, error)
	History(ctx context.Context, limit int) ([]*Conversion, error)
	Delete(ctx context.Context, id string) (bool, error)
	EnsureAuthToken(ctx context.Context) (string, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// HashContent returns the hex sha256 of raw project bytes.
func HashContent(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Begin stores c as running, assigning an id and timestamps when unset.
func (s *Service) Begin(ctx context.Context, c *Conversion) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	now := time.Now()
	c.Status = StatusRunning
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.repo.CreateConversion(ctx, c); err != nil {
		return fmt.Errorf("create conversion: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("conversion started", "conversion_id", c.ID, "filename", c.Filename, "size", c.Size)
	}
	return nil
}

func (s *Service) Complete(ctx context.Context, c *Conversion, sequenceID, sequence string, rs []rows.Row) error {
	if rs == nil {
		rs = []rows.Row{}
	}
	c.SequenceID = sequenceID
	c.Sequence = sequence
	c.Rows = rs
	c.RowCount = len(rs)
	c.Status = StatusCompleted
	c.Error = ""
	c.UpdatedAt = time.Now()

	if err := s.repo.CompleteConversion(ctx, c); err != nil {
		return fmt.Errorf("complete conversion %s: %w", c.ID, err)
	}
	if s.logger != nil {
		s.logger.Info("conversion completed", "conversion_id", c.ID, "sequence", sequence, "rows", c.RowCount)
	}
	return nil
}

func (s *Service) Fail(ctx context.Context, c *Conversion, cause error) error {
	c.Status = StatusFailed
	c.Error = cause.Error()
	c.UpdatedAt = time.Now()

	if err := s.repo.FailConversion(ctx, c.ID, c.Error); err != nil {
		return fmt.Errorf("fail conversion %s: %w", c.ID, err)
	}
	if s.logger != nil {
		s.logger.Warn("conversion failed", "conversion_id", c.ID, "filename", c.Filename, "error", cause)
	}
	return nil
}

func (s *Service) Lookup(ctx context.Context, contentHash, optionsKey string) (*Conversion, error) {
	return s.repo.FindCompleted(ctx, contentHash, optionsKey)
}

func (s *Service) Get(ctx context.Context, id string) (*Conversion, error) {
	return s.repo.GetConversion(ctx, id)
}

func (s *Service) History(ctx context.Context, limit int) ([]*Conversion, error) {
	return s.repo.ListConversions(ctx, limit)
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.DeleteConversion(ctx, id)
}

// EnsureAuthToken returns the stored API token, generating one on first use.
func (s *Service) EnsureAuthToken(ctx context.Context) (string, error) {
	token, err := s.repo.GetConfig(ctx, ConfigAuthToken)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}

	token = NewID()
	if err := s.repo.SetConfig(ctx, ConfigAuthToken, token); err != nil {
		return "", fmt.Errorf("store auth token: %w", err)
	}
	if s.logger != nil {
		s.logger.Info("generated API auth token")
	}
	return token, nil
}
