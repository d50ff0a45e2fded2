package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"omnibridge-console/billing"
	"omnibridge-console/logger"
	"omnibridge-console/metrics"
	"omnibridge-console/models"
	"omnibridge-console/utils"
)

const (
	WorkflowCreateSubscription = models.WorkItemTypeCreateSubscription

	DefaultKeyTTL = 24 * time.Hour
)

// Recorder receives one observation per execution.
type Recorder interface {
	Observe(outcome string, elapsed time.Duration)
}

type promRecorder struct{}

func (promRecorder) Observe(outcome string, elapsed time.Duration) {
	metrics.WorkflowExecutions.WithLabelValues(WorkflowCreateSubscription, outcome).Inc()
	metrics.WorkflowDuration.WithLabelValues(WorkflowCreateSubscription).Observe(elapsed.Seconds())
}

type Options struct {
	Clock   utils.Clock
	IDs     utils.IDGenerator
	Logger  logger.Logger
	KeyTTL  time.Duration
	Metrics Recorder
}

// Executor runs the create-subscription workflow.
type Executor struct {
	store   Store
	billing billing.Client
	guard   *Guard
	clock   utils.Clock
	ids     utils.IDGenerator
	log     logger.Logger
	metrics Recorder
}

func NewExecutor(store Store, billingClient billing.Client, opts Options) *Executor {
	if opts.Clock == nil {
		opts.Clock = utils.SystemClock{}
	}
	if opts.IDs == nil {
		opts.IDs = utils.UUIDGenerator{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.KeyTTL <= 0 {
		opts.KeyTTL = DefaultKeyTTL
	}
	if opts.Metrics == nil {
		opts.Metrics = promRecorder{}
	}
	log := opts.Logger.WithFields(map[string]interface{}{"workflow": WorkflowCreateSubscription})
	return &Executor{
		store:   store,
		billing: billingClient,
		guard:   NewGuard(store, WorkflowCreateSubscription, opts.KeyTTL, log),
		clock:   opts.Clock,
		ids:     opts.IDs,
		log:     log,
		metrics: opts.Metrics,
	}
}

// Execute creates a subscription schedule at most once per idempotency key.
// The error is non-nil only for ErrUnauthorized; every other outcome is a result.
func (e *Executor) Execute(ctx context.Context, actor Actor, in CreateSubscriptionInput) (CreateSubscriptionResult, error) {
	if strings.TrimSpace(actor.UserID) == "" {
		return CreateSubscriptionResult{}, ErrUnauthorized
	}

	started := time.Now()
	res, outcome := e.execute(ctx, actor, in)
	e.metrics.Observe(outcome, time.Since(started))
	return res, nil
}

func (e *Executor) execute(ctx context.Context, actor Actor, in CreateSubscriptionInput) (CreateSubscriptionResult, string) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if actor.RequestID == "" {
		actor.RequestID = e.ids.NewID()
	}
	log := e.log.WithFields(map[string]interface{}{
		"idempotency_key": key,
		"customer_id":     in.CustomerID,
		"user_id":         actor.UserID,
		"request_id":      actor.RequestID,
	})

	if key == "" {
		return e.fail(log, invalid("Idempotency key is required."))
	}
	in.IdempotencyKey = key
	hash := Fingerprint(in)

	item, payload, err := e.guard.Lookup(ctx, in.CustomerID, key, hash)
	if err != nil {
		return e.fail(log, err)
	}
	if item != nil {
		return e.cached(ctx, log, item, payload), metrics.OutcomeCached
	}

	if err := e.guard.Reserve(ctx, key, actor.UserID, hash); err != nil {
		return e.fail(log, err)
	}

	// Once the key is reserved the workflow runs to completion regardless of the caller,
	// so a release or a created schedule is never abandoned.
	ctx = context.WithoutCancel(ctx)

	sched, err := Validate(in, e.clock.Now())
	if err != nil {
		e.guard.Release(ctx, key)
		return e.fail(log, err)
	}

	req := scheduleRequest(in, sched, key)

	schedule, err := e.billing.CreateSubscriptionSchedule(ctx, req)
	if err != nil {
		e.guard.Release(ctx, key)
		return e.fail(log, &ProviderError{Err: err})
	}

	workItem, audit, err := e.records(actor, in, hash, req, schedule)
	if err == nil {
		err = e.store.RecordCompletion(ctx, workItem, audit)
	}
	if err != nil {
		// The reservation is kept: a retry must not create a second schedule before
		// the orphan is reconciled.
		log.Error("subscription schedule created but not recorded", map[string]interface{}{
			"schedule_id":     schedule.ID,
			"subscription_id": schedule.SubscriptionID,
			"error":           err.Error(),
		})
		return e.fail(log, &PersistenceError{ScheduleID: schedule.ID, Err: err})
	}

	log.Info("subscription schedule created", map[string]interface{}{
		"work_item_id": workItem.ID,
		"schedule_id":  schedule.ID,
		"audit_log_id": audit.ID,
	})
	return CreateSubscriptionResult{
		Success:                true,
		WorkItemID:             workItem.ID,
		ProviderScheduleID:     schedule.ID,
		ProviderSubscriptionID: schedule.SubscriptionID,
		AuditLogID:             audit.ID,
	}, metrics.OutcomeSuccess
}

func (e *Executor) cached(ctx context.Context, log logger.Logger, item *models.WorkItem, payload *models.CreateSubscriptionPayload) CreateSubscriptionResult {
	res := CreateSubscriptionResult{
		Success:                true,
		WorkItemID:             item.ID,
		ProviderScheduleID:     payload.ProviderScheduleID,
		ProviderSubscriptionID: payload.ProviderSubscriptionID,
	}
	audit, err := e.store.FindAuditLogForWorkItem(ctx, item.ID)
	if err != nil {
		log.Warn("audit log lookup failed for completed work item", map[string]interface{}{
			"work_item_id": item.ID,
			"error":        err.Error(),
		})
	} else if audit != nil {
		res.AuditLogID = audit.ID
	}
	log.Info("returning completed result for idempotency key", map[string]interface{}{"work_item_id": item.ID})
	return res
}

func (e *Executor) fail(log logger.Logger, err error) (CreateSubscriptionResult, string) {
	kind, _ := KindOf(err)
	res := CreateSubscriptionResult{Success: false, Error: userMessage(err), ErrorKind: kind}

	var outcome string
	switch kind {
	case KindConflict:
		outcome = metrics.OutcomeConflict
		log.Info("idempotency conflict", map[string]interface{}{"error": err.Error()})
	case KindValidation:
		outcome = metrics.OutcomeValidationError
		log.Info("invalid subscription input", map[string]interface{}{"error": err.Error()})
	case KindProvider:
		outcome = metrics.OutcomeProviderError
		log.Warn("billing provider rejected subscription schedule", map[string]interface{}{"error": err.Error()})
	default:
		outcome = metrics.OutcomePersistenceError
		res.ErrorKind = KindPersistence
		log.Error("workflow store failure", map[string]interface{}{"error": err.Error()})
	}
	return res, outcome
}

func userMessage(err error) string {
	var (
		ve *ValidationError
		pe *ProviderError
		se *PersistenceError
		be *billing.Error
	)
	switch {
	case errors.Is(err, ErrConflict):
		return "Duplicate request detected. Please wait and retry."
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &pe):
		if errors.As(pe.Err, &be) && be.Message != "" {
			return be.Message
		}
		return pe.Err.Error()
	case errors.As(err, &se) && se.ScheduleID != "":
		return fmt.Sprintf("Subscription schedule %s was created but could not be recorded. Contact support to reconcile it.", se.ScheduleID)
	}
	return "Could not save the request. Please retry."
}

// scheduleRequest builds one phase covering [start, end] with every line item.
// A future billing date becomes the phase's trial end.
func scheduleRequest(in CreateSubscriptionInput, sched *Schedule, key string) billing.ScheduleRequest {
	items := make([]billing.PhaseItem, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		items = append(items, billing.PhaseItem{PriceID: strings.TrimSpace(li.PriceID), Quantity: li.Quantity})
	}
	return billing.ScheduleRequest{
		CustomerRef: in.BillingProviderCustomerID,
		StartDate:   sched.Start,
		EndBehavior: billing.EndBehaviorCancel,
		Phases: []billing.Phase{{
			StartDate:         sched.Start,
			EndDate:           sched.End,
			Items:             items,
			ProrationBehavior: billing.ProrationNone,
			TrialEnd:          sched.BillingDate,
		}},
		IdempotencyKey: key,
	}
}

func (e *Executor) records(actor Actor, in CreateSubscriptionInput, hash string, req billing.ScheduleRequest, schedule *billing.Schedule) (*models.WorkItem, *models.AuditLog, error) {
	workItemID := e.ids.NewID()

	lineItems := make([]models.PayloadLineItem, 0, len(in.LineItems))
	auditItems := make([]models.AuditLineItem, 0, len(in.LineItems))
	for _, li := range in.LineItems {
		lineItems = append(lineItems, models.PayloadLineItem{
			PriceID:    li.PriceID,
			Nickname:   li.Nickname,
			UnitAmount: li.UnitAmount,
			Currency:   li.Currency,
			Interval:   li.Interval,
			Quantity:   li.Quantity,
		})
		auditItems = append(auditItems, models.AuditLineItem{PriceID: li.PriceID, Nickname: li.Nickname, Quantity: li.Quantity})
	}

	itemPayload, err := models.EncodePayload(models.CreateSubscriptionPayload{
		Type:                   models.WorkItemTypeCreateSubscription,
		SchemaVersion:          models.PayloadSchemaVersion,
		IdempotencyKey:         in.IdempotencyKey,
		RequestHash:            hash,
		ProviderScheduleID:     schedule.ID,
		ProviderSubscriptionID: schedule.SubscriptionID,
		ProviderCustomerID:     in.BillingProviderCustomerID,
		CustomerName:           in.CustomerName,
		LineItems:              lineItems,
		StartDate:              in.StartDate,
		EndDate:                in.EndDate,
		BillingMode:            string(in.BillingMode),
		BillingDate:            in.BillingDate,
	})
	if err != nil {
		return nil, nil, err
	}

	params, err := json.Marshal(req)
	if err != nil {
		return nil, nil, fmt.Errorf("encode schedule params: %w", err)
	}
	auditPayload, err := models.EncodePayload(models.SubscriptionCreatedAudit{
		Action:                 models.AuditActionSubscriptionCreated,
		SchemaVersion:          models.PayloadSchemaVersion,
		WorkItemID:             workItemID,
		ProviderScheduleID:     schedule.ID,
		ProviderSubscriptionID: schedule.SubscriptionID,
		ScheduleParams:         params,
		LineItems:              auditItems,
		StartDate:              in.StartDate,
		EndDate:                in.EndDate,
		BillingMode:            string(in.BillingMode),
		BillingDate:            in.BillingDate,
	})
	if err != nil {
		return nil, nil, err
	}

	now := e.clock.Now()
	item := &models.WorkItem{
		ID:             workItemID,
		Type:           models.WorkItemTypeCreateSubscription,
		Status:         models.WorkItemCompleted,
		CustomerID:     in.CustomerID,
		CreatedByID:    actor.UserID,
		IdempotencyKey: in.IdempotencyKey,
		PayloadJSON:    itemPayload,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	audit := &models.AuditLog{
		ID:          e.ids.NewID(),
		ActorUserID: actor.UserID,
		Action:      models.AuditActionSubscriptionCreated,
		TargetType:  models.AuditTargetSubscriptionSchedule,
		TargetID:    schedule.ID,
		RequestID:   actor.RequestID,
		CustomerID:  in.CustomerID,
		WorkItemID:  &workItemID,
		PayloadJSON: auditPayload,
		CreatedAt:   now,
	}
	return item, audit, nil
}
