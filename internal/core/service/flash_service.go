package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

// FlashService stores flash messages on the caller's session record.
type FlashService struct {
	sessions ports.SessionStore
}

func NewFlashService(sessions ports.SessionStore) *FlashService {
	return &FlashService{sessions: sessions}
}

// AddFlash appends f to the session, creating an anonymous session when
// sessionID is empty, expired or deleted meanwhile. It returns the id of the
// session written.
func (s *FlashService) AddFlash(ctx context.Context, sessionID string, f ports.Flash) (string, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess != nil {
		sess.Flashes = append(sess.Flashes, f)
		err := s.sessions.Update(ctx, sess)
		if err == nil {
			return sess.ID, nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return "", fmt.Errorf("add flash: %w", err)
		}
	}

	sess = &ports.Session{ID: uuid.NewString(), Flashes: []ports.Flash{f}, CreatedAt: time.Now().UTC()}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("add flash: %w", err)
	}
	return sess.ID, nil
}

// PopFlashes returns and clears the pending flashes. A session deleted while
// its flashes are read stays deleted.
func (s *FlashService) PopFlashes(ctx context.Context, sessionID string) ([]ports.Flash, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil || sess == nil || len(sess.Flashes) == 0 {
		return nil, err
	}

	flashes := sess.Flashes
	sess.Flashes = nil
	if err := s.sessions.Update(ctx, sess); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("pop flashes: %w", err)
	}
	return flashes, nil
}

func (s *FlashService) load(ctx context.Context, sessionID string) (*ports.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}
