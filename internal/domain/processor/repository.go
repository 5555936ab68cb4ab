package processor

import (
	"context"
	"strconv"
	"strings"
)

// Repository resolves processor configuration
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Processor, error)
}

// ErrProcessorNotFound indicates an unknown processor
type ErrProcessorNotFound struct {
	ProcessorID int64
}

func (e ErrProcessorNotFound) Error() string {
	return "payment processor not found: " + strconv.FormatInt(e.ProcessorID, 10)
}

// ErrMisconfigured indicates the processor is missing required settings
type ErrMisconfigured struct {
	ProcessorID int64
	Problems    []string
}

func (e ErrMisconfigured) Error() string {
	return "payment processor " + strconv.FormatInt(e.ProcessorID, 10) + " is misconfigured: " + strings.Join(e.Problems, "; ")
}

// ErrProcessorInactive indicates the processor exists but is disabled
type ErrProcessorInactive struct {
	ProcessorID int64
}

func (e ErrProcessorInactive) Error() string {
	return "payment processor is inactive: " + strconv.FormatInt(e.ProcessorID, 10)
}

// Resolve loads a processor and checks it is usable: active and fully configured
func Resolve(ctx context.Context, repo Repository, id int64) (*Processor, error) {
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProcessorInactive{ProcessorID: id}
	}
	if err := p.CheckConfig(); err != nil {
		return nil, err
	}
	return p, nil
}
