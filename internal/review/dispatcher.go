package review

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"brc/internal/models"
	"brc/internal/notifications"
	"brc/internal/observability"
	"brc/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// StubReason is the system-generated reason attached to claims issued from
// UIs that collect no reason text.
const StubReason = "STUB_REASON"

// minReasonLength is the shortest acceptable human-supplied reason.
const minReasonLength = 5

// Request asks the dispatcher to perform one review transition.
type Request struct {
	BotID    models.Snowflake
	Reason   string
	Action   models.Action
	Reviewer models.Snowflake
	// Resend skips the source-state precondition and re-runs delivery.
	// It exists to repair lists that missed the original webhook; the
	// state write it performs is idempotent.
	Resend bool
	// TargetLists optionally narrows delivery to the given list IDs.
	// Empty means every trusted list.
	TargetLists []string
}

// Dispatcher coordinates one review transition end to end: validation,
// the single conditional state write, concurrent webhook fan-out with
// per-list outcome isolation, the audit append, and the panel event.
type Dispatcher struct {
	subs     repository.SubmissionRepository
	lists    repository.ListRepository
	audit    repository.ActionRepository
	notifier Notifier
	events   *notifications.Notifier
	logger   *slog.Logger
}

// NewDispatcher wires a Dispatcher from its collaborators. events may be
// nil when no Redis is available.
func NewDispatcher(
	subs repository.SubmissionRepository,
	lists repository.ListRepository,
	audit repository.ActionRepository,
	notifier Notifier,
	events *notifications.Notifier,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		subs:     subs,
		lists:    lists,
		audit:    audit,
		notifier: notifier,
		events:   events,
		logger:   logger,
	}
}

// Request performs one review transition. It always returns a Response;
// domain rejections are carried in Response.Message, never as errors.
func (d *Dispatcher) Request(ctx context.Context, req Request) *Response {
	span, ctx := observability.NewSpan(ctx, "review.dispatch")
	defer span.End()
	span.AddAttributes(
		attribute.String("review.action", req.Action.String()),
		attribute.String("review.bot_id", req.BotID.String()),
		attribute.Bool("review.resend", req.Resend),
	)

	resp := d.dispatch(ctx, req)
	result := "accepted"
	if !resp.Accepted() {
		result = "rejected"
	}
	observability.ReviewRequestsTotal.WithLabelValues(req.Action.String(), result).Inc()
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) *Response {
	spec, err := specFor(req.Action)
	if err != nil {
		return &Response{Message: "Unknown action"}
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" && req.Action == models.ActionClaim {
		reason = StubReason
	}
	if len(reason) < minReasonLength {
		return &Response{Message: "Reason must be at least 5 characters"}
	}

	sub, err := d.subs.GetByID(ctx, req.BotID)
	if err != nil {
		if appErr, ok := err.(*models.AppError); ok && appErr.Code == "NOT_FOUND" {
			return &Response{Message: "Bot not found"}
		}
		d.logger.ErrorContext(ctx, "submission read failed",
			slog.String("bot_id", req.BotID.String()),
			slog.String("error", err.Error()),
		)
		return &Response{Message: "Internal error: could not read submission"}
	}

	if !req.Resend && !stateAllowed(sub.State, spec.allowedSources) {
		return &Response{Message: spec.rejection}
	}

	// Reviewer assignment is part of the transition, never of a resend:
	// a resend repairs delivery, it does not re-claim.
	fields := map[string]any{}
	if !req.Resend {
		switch req.Action {
		case models.ActionClaim:
			fields["reviewer"] = int64(req.Reviewer)
		case models.ActionUnclaim:
			fields["reviewer"] = nil
		}
	}

	// The single authoritative state write. On the normal path it is
	// conditioned on the allowed source states so a concurrent transition
	// loses cleanly; on resend it re-writes the resulting state, which is
	// idempotent. If this write fails nothing is delivered.
	if req.Resend {
		fields["state"] = int(spec.newState)
		if err := d.subs.UpdateFields(ctx, req.BotID, fields); err != nil {
			d.logger.ErrorContext(ctx, "state write failed",
				slog.String("bot_id", req.BotID.String()),
				slog.String("error", err.Error()),
			)
			return &Response{Message: "Internal error: state update failed"}
		}
	} else {
		rows, err := d.subs.UpdateStateIfCurrent(ctx, req.BotID, spec.allowedSources, spec.newState, fields)
		if err != nil {
			d.logger.ErrorContext(ctx, "state write failed",
				slog.String("bot_id", req.BotID.String()),
				slog.String("error", err.Error()),
			)
			return &Response{Message: "Internal error: state update failed"}
		}
		if rows == 0 {
			// Lost the race: someone else moved the submission between
			// our read and our write.
			return &Response{Message: spec.rejection}
		}
	}

	// Mirror the write into the in-memory copy used for payloads.
	sub.State = spec.newState
	if !req.Resend {
		switch req.Action {
		case models.ActionClaim:
			reviewer := req.Reviewer
			sub.Reviewer = &reviewer
		case models.ActionUnclaim:
			sub.Reviewer = nil
		}
	}

	outcomes := d.fanOut(ctx, sub, spec, req, reason)

	d.appendAudit(ctx, sub, req, reason)
	d.publishEvent(ctx, sub, req)

	return &Response{Lists: outcomes}
}

// fanOut delivers the transition to every eligible list concurrently.
// Failures are isolated per list: a timeout or bad response from one never
// aborts delivery to the rest, and nothing here ever rolls back the state
// write that already happened.
func (d *Dispatcher) fanOut(ctx context.Context, sub *models.Submission, spec actionSpec, req Request, reason string) map[string]Outcome {
	lists, err := d.lists.ListAll(ctx)
	if err != nil {
		d.logger.ErrorContext(ctx, "list registry read failed", slog.String("error", err.Error()))
		return map[string]Outcome{}
	}

	targets := map[string]bool{}
	for _, id := range req.TargetLists {
		targets[id] = true
	}

	outcomes := make(map[string]Outcome)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := range lists {
		list := lists[i]
		if !list.State.Trusted() {
			continue
		}
		if len(targets) > 0 && !targets[list.ID] {
			continue
		}

		payload := buildPayload(sub, req.Action, reason, req.Reviewer, payloadIsFull(sub, &list))
		url := spec.callback(&list)
		label := list.Label()

		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			out := d.notifier.Call(ctx, url, list.SecretKey, payload)

			status := "delivered"
			if !out.Delivered() {
				status = "failed"
				d.logger.WarnContext(ctx, "webhook delivery failed",
					slog.String("list", label),
					slog.Int("status", out.Status),
					slog.String("detail", out.Msg),
				)
			}
			observability.ObserveDelivery(label, status, start)

			mu.Lock()
			outcomes[label] = out
			mu.Unlock()
		}()
	}

	wg.Wait()
	return outcomes
}

// appendAudit records the accepted transition. The audit trail is decoupled
// from delivery: a failed append is logged but never fails the request,
// since the state change and the deliveries already happened.
func (d *Dispatcher) appendAudit(ctx context.Context, sub *models.Submission, req Request, reason string) {
	entry := &models.ReviewAction{
		BotID:      sub.BotID,
		Action:     req.Action,
		Reason:     reason,
		Reviewer:   req.Reviewer,
		ListSource: sub.ListSource,
	}
	if err := d.audit.Append(ctx, entry); err != nil {
		d.logger.ErrorContext(ctx, "audit append failed",
			slog.String("bot_id", sub.BotID.String()),
			slog.String("action", req.Action.String()),
			slog.String("error", err.Error()),
		)
	}
}

func (d *Dispatcher) publishEvent(ctx context.Context, sub *models.Submission, req Request) {
	ev := notifications.ReviewEvent{
		BotID:    sub.BotID,
		Action:   req.Action.String(),
		State:    sub.State.String(),
		Reviewer: req.Reviewer,
		Resend:   req.Resend,
		At:       time.Now().UTC(),
	}
	if err := d.events.PublishReview(ctx, ev); err != nil {
		d.logger.WarnContext(ctx, "review event publish failed", slog.String("error", err.Error()))
	}
}

func stateAllowed(s models.State, allowed []models.State) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
