package medical

import (
	"context"
	"fmt"

	"github.com/Ayash-Bera/medquery/internal/auth"
	"github.com/sirupsen/logrus"
)

// Service joins the credentials provider with the client. It satisfies the
// container's Submitter.
type Service struct {
	client      *Client
	credentials auth.Provider
	logger      *logrus.Logger
}

func NewService(client *Client, credentials auth.Provider, logger *logrus.Logger) *Service {
	return &Service{
		client:      client,
		credentials: credentials,
		logger:      logger,
	}
}

func (s *Service) Submit(ctx context.Context, query string) (QueryResponse, error) {
	creds, err := s.credentials.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: credentials unavailable: %w", ErrRequestFailed, err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":      creds.UserID,
		"query_length": len(query),
	}).Debug("Submitting medical query")

	return s.client.Query(ctx, creds.Token, NewQueryRequest(query, creds.UserID))
}

func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}
