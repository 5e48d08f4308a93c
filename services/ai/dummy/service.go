// Package aidummy provides a scripted core.TextGenerator for tests.
package aidummy

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/njia/core"
)

type Response struct {
	Payload json.RawMessage
	Err     error
}

// Service replays scripted responses in order and records every prompt it
// receives, so tests can assert which calls were (not) made.
type Service struct {
	mu        sync.Mutex
	responses []Response
	calls     int

	Prompts []string
}

var _ core.TextGenerator = (*Service)(nil)

func NewService(responses ...Response) *Service {
	return &Service{responses: responses}
}

func (svc *Service) GenerateJSON(_ context.Context, prompt string) (json.RawMessage, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.Prompts = append(svc.Prompts, prompt)
	if svc.calls >= len(svc.responses) {
		return nil, errors.New("aidummy: no scripted response left")
	}
	res := svc.responses[svc.calls]
	svc.calls++
	return res.Payload, res.Err
}

func (svc *Service) CallCount() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.calls
}
