// Package commands holds the command directory and the built-in command
// catalog.
package commands

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/services"
	"github.com/safatanc/hypergiga-core/internal/infrastructures"
	"github.com/safatanc/hypergiga-core/pkg/resilience"
	"github.com/sirupsen/logrus"
)

// Handler runs one command invocation. Replies go through c; a returned error
// is translated into a single user message by the caller.
type Handler func(ctx context.Context, c *Context) error

type Command struct {
	models.CommandMetadata
	Handler Handler
}

// Context is the per-event state handed to a handler.
type Context struct {
	RequestID string
	Event     *models.Event
	User      *models.User
	Role      models.Role
	// Invoked is the token the user typed, which may be an alias.
	Invoked string
	Args    []string
	Logger  *logrus.Entry

	mu      sync.Mutex
	replies []models.Reply
}

func (c *Context) Reply(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, models.Reply{Text: text})
}

func (c *Context) ReplyHTML(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, models.Reply{Text: text, ParseMode: models.ParseModeHTML})
}

// Replies returns the messages produced so far, in order.
func (c *Context) Replies() []models.Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Reply(nil), c.replies...)
}

func (c *Context) UserID() int64 {
	return c.Event.FromID
}

// Backend performs the external work of a stub command, such as a download or
// a model call. operation names the backend and doubles as its circuit key.
type Backend func(ctx context.Context, operation string) error

// Deps are the collaborators shared by the catalog handlers.
type Deps struct {
	Quota      *services.QuotaService
	Breakers   *resilience.Breakers
	Validator  *infrastructures.Validator
	Backend    Backend
	RetryDelay time.Duration
	StartedAt  time.Time
	Now        func() time.Time
}

// SimulatedBackend stands in for real media and AI processing by waiting for
// delay.
func SimulatedBackend(delay time.Duration) Backend {
	return func(ctx context.Context, _ string) error {
		if delay <= 0 {
			return nil
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return errors.NewTemporaryError(ctx.Err(), "Processing cancelled")
		case <-timer.C:
			return nil
		}
	}
}

// process runs operation on the backend behind its circuit breaker, retrying
// retryable failures.
func (d *Deps) process(ctx context.Context, operation string) error {
	err := d.Breakers.Execute(ctx, operation, func(ctx context.Context) error {
		return resilience.Retry(ctx, func(ctx context.Context) error {
			return d.Backend(ctx, operation)
		}, resilience.WithDelay(d.RetryDelay), resilience.WithRetryIf(errors.IsRetryable))
	})
	if stderrors.Is(err, resilience.ErrOpen) {
		return errors.NewTemporaryError(err, operation+" backend unavailable")
	}
	return err
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// usageError reports malformed arguments and points at the command's help.
func usageError(meta models.CommandMetadata) error {
	err := errors.NewValidationError("invalid arguments for /" + meta.Name)
	err.UserMessage = "Invalid input. See /help " + meta.Name
	return err
}
