// README: Travel plan aggregate and validation.
package plans

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("travel plan not found")
	ErrInvalid  = errors.New("invalid travel plan")
)

const StatusDraft = "draft"

// Draft is the caller-supplied part of a plan.
type Draft struct {
	Destination string   `json:"destination"`
	Duration    int      `json:"duration"`
	Budget      float64  `json:"budget"`
	Interests   []string `json:"interests"`
}

type Plan struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	Duration    int       `json:"duration"`
	Budget      float64   `json:"budget"`
	Interests   []string  `json:"interests"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (d Draft) validate() (Draft, error) {
	d.Destination = strings.TrimSpace(d.Destination)
	if d.Destination == "" {
		return d, fmt.Errorf("%w: destination is required", ErrInvalid)
	}
	if d.Duration < 1 {
		return d, fmt.Errorf("%w: duration must be at least 1 day", ErrInvalid)
	}
	if d.Budget < 0 {
		return d, fmt.Errorf("%w: budget cannot be negative", ErrInvalid)
	}
	if d.Interests == nil {
		d.Interests = []string{}
	}
	return d, nil
}
