package provider

import (
	"fmt"

	"github.com/lherron/todu/internal/domain"
)

// PullRequestError is returned when a single-item lookup resolves to a pull request
type PullRequestError struct {
	System domain.System
	Repo   string
	Number int
}

func (e *PullRequestError) Error() string {
	return fmt.Sprintf("%s: %s#%d is a pull request, not an issue", e.System, e.Repo, e.Number)
}
