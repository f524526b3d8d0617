// Package dispatch admits inbound command events and runs their handlers.
package dispatch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/safatanc/hypergiga-core/internal/app/commands"
	"github.com/safatanc/hypergiga-core/internal/app/errors"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/internal/app/observability"
	"github.com/safatanc/hypergiga-core/internal/app/services"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Outcome string

const (
	OutcomePassThrough  Outcome = "pass_through"
	OutcomeRateLimited  Outcome = "rate_limited"
	OutcomeQuotaDenied  Outcome = "quota_denied"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeForbidden    Outcome = "forbidden"
	OutcomeHandlerError Outcome = "handler_error"
	// OutcomeUnavailable means a store behind an admission stage failed.
	OutcomeUnavailable Outcome = "unavailable"
	OutcomeSuccess     Outcome = "success"
)

// unknownCommand is the per_command key charged for unregistered commands.
const unknownCommand = "unknown"

const (
	textRateLimited = "⏰ Rate limit exceeded. Try again in %d seconds."
	textQuotaDenied = "📊 Daily command quota exceeded. Resets at %s"
	textNotFound    = "❌ Command not found: %s"
	textForbidden   = "🚫 You don't have permission to use this command"
)

// Result is what the transport sends back for one event.
type Result struct {
	Outcome   Outcome        `json:"outcome"`
	Messages  []models.Reply `json:"messages"`
	Command   string         `json:"command,omitempty"`
	RequestID string         `json:"request_id"`
}

type PipelineConfig struct {
	BotUsername string
}

type Pipeline struct {
	registry *commands.Registry
	limiter  *services.RateLimitService
	quota    *services.QuotaService
	users    *services.UserService
	metrics  observability.Metrics
	tracer   trace.Tracer
	logger   *logrus.Logger
	config   PipelineConfig
	newID    func() string
}

func NewPipeline(
	registry *commands.Registry,
	limiter *services.RateLimitService,
	quota *services.QuotaService,
	users *services.UserService,
	metrics observability.Metrics,
	logger *logrus.Logger,
	config PipelineConfig,
) *Pipeline {
	return &Pipeline{
		registry: registry,
		limiter:  limiter,
		quota:    quota,
		users:    users,
		metrics:  metrics,
		tracer:   observability.Tracer(),
		logger:   logger,
		config:   config,
		newID:    uuid.NewString,
	}
}

// event carries the state of one admission run between stages.
type event struct {
	*models.Event
	requestID  string
	invocation Invocation
	user       *models.User
	role       models.Role
	command    *commands.Command
	replies    []models.Reply
	log        *logrus.Entry
}

// name is the canonical command name when resolved, else what the user typed.
func (e *event) name() string {
	if e.command != nil {
		return e.command.Name
	}
	return e.invocation.Name
}

// Handle runs the admission stages for one inbound event in order: rate
// limit, identify, quota, resolve, authorize, execute. It never returns an
// error; every failure is translated into the result's messages.
func (p *Pipeline) Handle(ctx context.Context, in *models.Event) *Result {
	requestID := p.newID()
	invocation, ok := Parse(in.Text, p.config.BotUsername)
	if !ok {
		return &Result{Outcome: OutcomePassThrough, RequestID: requestID}
	}

	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "admission", trace.WithAttributes(
		attribute.String("request.id", requestID),
		attribute.String("command.invoked", invocation.Name),
		attribute.Int64("user.id", in.FromID),
		attribute.Int64("chat.id", in.ChatID),
	))
	defer span.End()

	ev := &event{
		Event:      in,
		requestID:  requestID,
		invocation: invocation,
	}
	// The directory is not read until the event clears the rate limits.
	ev.role = p.users.RoleOf(in)
	// Resolution is a map lookup, so the canonical name is known up front and
	// aliases share one per_command counter.
	if cmd, found := p.registry.Get(invocation.Name); found {
		ev.command = cmd
	}
	ev.log = p.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    in.FromID,
		"chat_id":    in.ChatID,
		"command":    ev.name(),
		"role":       ev.role,
	})
	ev.log.Debug("Command received")

	outcome, err := p.admit(ctx, ev)
	result := &Result{
		Outcome:   outcome,
		Messages:  ev.replies,
		Command:   ev.name(),
		RequestID: requestID,
	}
	if err != nil {
		result.Messages = append(result.Messages, models.Reply{Text: message(outcome, ev, err)})
	}

	p.record(ctx, ev, outcome, err, time.Since(start))
	span.SetAttributes(attribute.String("admission.outcome", string(outcome)))
	return result
}

func (p *Pipeline) admit(ctx context.Context, ev *event) (Outcome, error) {
	stages := []struct {
		name   string
		denial errors.Kind
		denied Outcome
		run    stageFunc
	}{
		{StageRateLimit, errors.KindRateLimit, OutcomeRateLimited, func(ctx context.Context) error { return p.checkRateLimits(ctx, ev) }},
		{StageIdentify, "", OutcomeUnavailable, func(ctx context.Context) error {
			ev.user, ev.role = p.users.Resolve(ctx, ev.Event)
			ev.log = ev.log.WithField("role", ev.role)
			return nil
		}},
		{StageQuota, errors.KindQuota, OutcomeQuotaDenied, func(ctx context.Context) error {
			return p.quota.ConsumeQuota(ctx, ev.FromID, models.QuotaCommands, 1, ev.role)
		}},
		{StageResolve, errors.KindNotFound, OutcomeNotFound, func(context.Context) error {
			if ev.command == nil {
				return errors.NewNotFoundError("command not registered")
			}
			return nil
		}},
		{StageAuthorize, errors.KindPermission, OutcomeForbidden, func(context.Context) error {
			if !ev.command.Allows(ev.role) {
				return errors.NewPermissionError(fmt.Sprintf("role %s may not run /%s", ev.role, ev.command.Name))
			}
			return nil
		}},
		{StageExecute, "", OutcomeHandlerError, func(ctx context.Context) error { return p.execute(ctx, ev) }},
	}

	for _, stage := range stages {
		err := traced(p.tracer, stage.name, stage.run)(ctx)
		switch {
		case err == nil:
			continue
		case stage.denial == "" || errors.Is(err, stage.denial):
			return stage.denied, err
		default:
			return OutcomeUnavailable, err
		}
	}
	return OutcomeSuccess, nil
}

func (p *Pipeline) checkRateLimits(ctx context.Context, ev *event) error {
	// Unregistered names share one counter so made-up commands cannot mint keys.
	command := unknownCommand
	if ev.command != nil {
		command = ev.command.Name
	}
	checks := services.CanonicalChecks(ev.FromID, ev.ChatID, command)
	result, err := p.limiter.TryConsumeAll(ctx, checks, ev.role)
	if err != nil {
		return err
	}
	if !result.Allowed {
		ev.log.WithFields(logrus.Fields{
			"class":       result.BlockedClass,
			"retry_after": result.RetryAfter,
		}).Info("Rate limit exceeded")
		return errors.NewRateLimitError(result.RetryAfter)
	}
	return nil
}

// execute runs the handler. Replies sent before a failure are kept.
func (p *Pipeline) execute(ctx context.Context, ev *event) (err error) {
	c := &commands.Context{
		RequestID: ev.requestID,
		Event:     ev.Event,
		User:      ev.user,
		Role:      ev.role,
		Invoked:   ev.invocation.Name,
		Args:      ev.invocation.Args,
		Logger:    ev.log,
	}
	defer func() {
		if r := recover(); r != nil {
			ev.log.WithField("stack", string(debug.Stack())).Error("Command handler panicked")
			err = errors.NewInternalServerError(fmt.Errorf("panic: %v", r), "Command handler panicked")
		}
		ev.replies = c.Replies()
	}()

	return ev.command.Handler(ctx, c)
}

func message(outcome Outcome, ev *event, err error) string {
	appErr := errors.From(err)
	switch outcome {
	case OutcomeRateLimited:
		return fmt.Sprintf(textRateLimited, errors.Seconds(appErr.RetryAfter))
	case OutcomeQuotaDenied:
		return fmt.Sprintf(textQuotaDenied, appErr.ResetTime.UTC().Format(errors.ResetTimeLayout))
	case OutcomeNotFound:
		return fmt.Sprintf(textNotFound, ev.invocation.Name)
	case OutcomeForbidden:
		return textForbidden
	default:
		return errors.UserText(err)
	}
}

func (p *Pipeline) record(ctx context.Context, ev *event, outcome Outcome, err error, latency time.Duration) {
	var category models.CommandCategory
	if ev.command != nil {
		category = ev.command.Category
	}
	p.metrics.CommandExecuted(ctx, ev.name(), category, ev.role, outcome == OutcomeSuccess, latency)

	log := ev.log.WithFields(logrus.Fields{
		"outcome":     outcome,
		"duration_ms": latency.Milliseconds(),
	})
	if err == nil {
		log.Debug("Command completed")
		return
	}

	kind := errors.KindOf(err)
	p.metrics.ErrorRecorded(ctx, string(kind), ev.name(), ev.role)
	log = log.WithError(err).WithField("error_kind", kind)
	switch {
	case kind == errors.KindInternal:
		log.Error("Command failed")
	case outcome == OutcomeHandlerError || outcome == OutcomeUnavailable:
		log.Warn("Command failed")
	default:
		log.Info("Command rejected")
	}
}
