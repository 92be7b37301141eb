package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"ordering/internal/core/domain/model/actor"
	"ordering/internal/core/domain/model/dms"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/core/domain/services"
	"ordering/internal/core/ports"
	"ordering/internal/pkg/errs"
)

// SyncDMSCommandHandler runs DMS reconciliation passes.
//
// Passes never overlap: a request arriving while a pass runs joins it and
// receives the same result. A pass belongs to the handler, not to the caller
// that started it. It keeps running while at least one caller still waits
// for it, and is cancelled when the last one gives up or on Close. Cancelled
// passes stop between orders. Each matched order is written in its own unit
// of work through the OrderWriter, so reconciliation takes the same per-order
// key and row lock as manual transitions and a failure on one order never
// undoes another. Documents already applied are filtered out up front and
// again by the unique constraint when the match is recorded.
type SyncDMSCommandHandler struct {
	uowFactory UoWFactory
	writer     *OrderWriter
	client     ports.DMSClient
	matcher    services.DocumentMatcher
	audit      ports.AuditSink
	clock      kernel.Clock
	logger     *slog.Logger

	root context.Context
	stop context.CancelFunc

	mu      sync.Mutex
	current *syncPass
}

// syncPass is one reconciliation run shared by every caller waiting on it.
type syncPass struct {
	ctx     context.Context
	cancel  context.CancelFunc
	detach  func() bool
	waiters int
	done    chan struct{}

	result SyncDMSResult
	err    error
}

func NewSyncDMSCommandHandler(
	uowFactory UoWFactory,
	writer *OrderWriter,
	client ports.DMSClient,
	audit ports.AuditSink,
	clock kernel.Clock,
	logger *slog.Logger,
) *SyncDMSCommandHandler {
	root, stop := context.WithCancel(context.Background())
	return &SyncDMSCommandHandler{
		uowFactory: uowFactory,
		writer:     writer,
		client:     client,
		matcher:    services.NewDocumentMatcher(),
		audit:      audit,
		clock:      clock,
		logger:     logger.With("component", "dms_sync"),
		root:       root,
		stop:       stop,
	}
}

// Handle runs a pass, or joins the one in progress, and waits for its result.
// When ctx ends first Handle returns the context error at once; the pass goes
// on for the callers still waiting on it.
func (h *SyncDMSCommandHandler) Handle(ctx context.Context, cmd SyncDMSCommand) (SyncDMSResult, error) {
	if err := cmd.Validate(); err != nil {
		return SyncDMSResult{}, err
	}

	caller := cmd.Actor()
	if !caller.CanGlobally(actor.SyncDMS) {
		return SyncDMSResult{}, errs.NewForbiddenError(string(actor.SyncDMS), caller.ID().String())
	}

	pass, joined, err := h.join(ctx, caller)
	if err != nil {
		return SyncDMSResult{}, err
	}
	defer h.leave(pass)

	if joined {
		h.logger.DebugContext(ctx, "Joined running DMS sync", "actor", caller.ID().String())
	}

	select {
	case <-pass.done:
		return pass.result, pass.err
	case <-ctx.Done():
		return SyncDMSResult{}, ctx.Err()
	}
}

// Close cancels the running pass, if any, waits for it to stop and refuses
// further passes.
func (h *SyncDMSCommandHandler) Close() {
	h.stop()

	h.mu.Lock()
	pass := h.current
	h.mu.Unlock()

	if pass != nil {
		<-pass.done
	}
}

// join registers the caller on the current pass, starting one when none
// runs. A pass every caller has left is still winding down; a new one starts
// only after it returned.
func (h *SyncDMSCommandHandler) join(ctx context.Context, caller actor.Actor) (*syncPass, bool, error) {
	for {
		h.mu.Lock()
		if err := h.root.Err(); err != nil {
			h.mu.Unlock()
			return nil, false, fmt.Errorf("dms sync is shut down: %w", err)
		}

		pass := h.current
		if pass != nil && pass.ctx.Err() != nil {
			h.mu.Unlock()
			select {
			case <-pass.done:
				continue
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}

		joined := pass != nil
		if !joined {
			passCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
			pass = &syncPass{
				ctx:    passCtx,
				cancel: cancel,
				detach: context.AfterFunc(h.root, cancel),
				done:   make(chan struct{}),
			}
			h.current = pass
			go h.execute(pass, caller)
		}
		pass.waiters++
		h.mu.Unlock()

		return pass, joined, nil
	}
}

func (h *SyncDMSCommandHandler) leave(pass *syncPass) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pass.waiters--
	if pass.waiters == 0 {
		pass.cancel()
	}
}

func (h *SyncDMSCommandHandler) execute(pass *syncPass, caller actor.Actor) {
	defer func() {
		h.mu.Lock()
		if h.current == pass {
			h.current = nil
		}
		h.mu.Unlock()

		pass.detach()
		pass.cancel()
		close(pass.done)
	}()

	pass.result, pass.err = h.run(pass.ctx, caller)
}

type orderBatch struct {
	orderID kernel.UUID
	docs    []dms.Document
}

func (h *SyncDMSCommandHandler) run(ctx context.Context, caller actor.Actor) (SyncDMSResult, error) {
	started := h.clock.Now()
	result := SyncDMSResult{Errors: make([]SyncError, 0)}

	batches, err := h.plan(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "DMS sync failed", "error", err)
		return result, err
	}

	for _, batch := range batches {
		if err = ctx.Err(); err != nil {
			result.Message = fmt.Sprintf("interrupted after %d document(s)", result.Synced)
			h.logger.WarnContext(ctx, "DMS sync interrupted", "synced", result.Synced)
			return result, err
		}

		applied, applyErr := h.apply(ctx, batch)
		result.Synced += applied

		switch {
		case applyErr == nil:
		case errors.Is(applyErr, ErrNothingToApply):
			h.logger.InfoContext(ctx, "Order no longer reconcilable, skipped",
				"order_id", batch.orderID.String())
		default:
			h.logger.WarnContext(ctx, "Failed to apply DMS documents",
				"order_id", batch.orderID.String(), "error", applyErr)
			for _, doc := range batch.docs {
				result.Errors = append(result.Errors, SyncError{
					OrderID:     batch.orderID.String(),
					ExternalRef: doc.ExternalRef,
					Error:       applyErr.Error(),
				})
			}
		}
	}

	result.Message = fmt.Sprintf("%d document(s) applied, %d error(s)", result.Synced, len(result.Errors))

	h.audit.Record(ctx, ports.AuditRecord{
		Action:    "dms.sync.completed",
		ActorID:   caller.ID().String(),
		ActorName: caller.DisplayName(),
		At:        h.clock.Now(),
		Details: map[string]any{
			"synced":   result.Synced,
			"errors":   len(result.Errors),
			"duration": h.clock.Now().Sub(started).String(),
		},
	})
	h.logger.InfoContext(ctx, "DMS sync completed",
		"synced", result.Synced, "errors", len(result.Errors))

	return result, nil
}

// plan loads the candidates and documents and groups the matches per order,
// in the order the matcher produced them.
func (h *SyncDMSCommandHandler) plan(ctx context.Context) ([]orderBatch, error) {
	uow := h.uowFactory.Create()

	mappings, err := uow.DMSRepository().ActiveMappings(ctx)
	if err != nil {
		return nil, err
	}

	codesByCompany := make(map[kernel.UUID][]string)
	companyIDs := make([]kernel.UUID, 0, len(mappings))
	clientCodes := make([]string, 0, len(mappings))
	for _, m := range mappings {
		if !m.Active {
			continue
		}
		if _, seen := codesByCompany[m.CompanyID]; !seen {
			companyIDs = append(companyIDs, m.CompanyID)
		}
		codesByCompany[m.CompanyID] = append(codesByCompany[m.CompanyID], m.ClientCode)
		clientCodes = append(clientCodes, m.ClientCode)
	}
	if len(companyIDs) == 0 {
		return nil, nil
	}

	orders, err := uow.OrderRepository().ListReconcilable(ctx, companyIDs)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	candidates := make([]services.Candidate, 0, len(orders))
	since := orders[0].CreatedAt()
	for _, o := range orders {
		if o.CreatedAt().Before(since) {
			since = o.CreatedAt()
		}
		for _, code := range codesByCompany[o.CompanyID()] {
			candidates = append(candidates, services.Candidate{Order: o, ClientCode: code})
		}
	}
	y, m, d := since.UTC().Date()
	since = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	sort.Strings(clientCodes)
	documents, err := h.client.FetchDocuments(ctx, clientCodes, since)
	if err != nil {
		return nil, err
	}

	documents, err = h.dropMatched(ctx, uow.DMSRepository(), documents)
	if err != nil {
		return nil, err
	}

	matches := h.matcher.Match(candidates, documents)

	batches := make([]orderBatch, 0)
	index := make(map[kernel.UUID]int)
	for _, match := range matches {
		id := match.Order.ID()
		i, ok := index[id]
		if !ok {
			i = len(batches)
			index[id] = i
			batches = append(batches, orderBatch{orderID: id})
		}
		batches[i].docs = append(batches[i].docs, match.Document)
	}

	return batches, nil
}

func (h *SyncDMSCommandHandler) dropMatched(
	ctx context.Context,
	repo ports.DMSRepository,
	documents []dms.Document,
) ([]dms.Document, error) {
	if len(documents) == 0 {
		return documents, nil
	}

	refs := make([]string, 0, len(documents))
	for _, doc := range documents {
		refs = append(refs, doc.ExternalRef)
	}

	matched, err := repo.MatchedRefs(ctx, refs)
	if err != nil {
		return nil, err
	}

	fresh := make([]dms.Document, 0, len(documents))
	for _, doc := range documents {
		if !matched[doc.ExternalRef] {
			fresh = append(fresh, doc)
		}
	}
	return fresh, nil
}

// apply writes every document of one order in a single unit of work and
// returns how many were applied.
func (h *SyncDMSCommandHandler) apply(ctx context.Context, batch orderBatch) (int, error) {
	docs := make([]dms.Document, len(batch.docs))
	copy(docs, batch.docs)
	// Delivery note before invoice.
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Kind == dms.DeliveryNote && docs[j].Kind != dms.DeliveryNote
	})

	system := actor.SystemActor()
	uow := h.uowFactory.Create()
	applied := 0

	_, err := h.writer.Write(ctx, uow, batch.orderID, Mutation{
		Action: "order.reconciled",
		Actor:  system,
		Apply: func(o *order.Order, now time.Time) ([]order.Status, error) {
			if o.Status() != order.Validated && o.Status() != order.Preparation {
				return nil, ErrNothingToApply
			}

			target := order.Unknown
			for _, doc := range docs {
				recorded, err := h.record(ctx, uow.DMSRepository(), o, doc, now)
				if err != nil {
					return nil, err
				}
				if !recorded {
					continue
				}
				applied++
				switch doc.Kind {
				case dms.DeliveryNote:
					if target != order.Invoiced {
						target = order.Shipped
					}
				case dms.Invoice:
					target = order.Invoiced
				}
			}
			if applied == 0 {
				return nil, ErrNothingToApply
			}

			return advance(o, target, system, now)
		},
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// record stores the match and attaches the reference to o. It reports false
// when the document was already applied by someone else.
func (h *SyncDMSCommandHandler) record(
	ctx context.Context,
	repo ports.DMSRepository,
	o *order.Order,
	doc dms.Document,
	now time.Time,
) (bool, error) {
	err := repo.RecordMatch(ctx, dms.MatchRecord{
		ExternalRef: doc.ExternalRef,
		Kind:        doc.Kind,
		OrderID:     o.ID(),
		MatchedAt:   now,
	})
	if errors.Is(err, dms.ErrDocumentAlreadyMatched) {
		h.logger.InfoContext(ctx, "Document already matched, skipped",
			"external_ref", doc.ExternalRef, "order_id", o.ID().String())
		return false, nil
	}
	if err != nil {
		return false, err
	}

	switch doc.Kind {
	case dms.DeliveryNote:
		err = o.AttachDeliveryNote(doc.ExternalRef, now)
	case dms.Invoice:
		err = o.AttachInvoice(doc.ExternalRef, now)
	default:
		err = errs.NewValueIsInvalidError("kind")
	}
	return err == nil, err
}

// advance walks o edge by edge to target, checking each edge against the
// capabilities of the reconciling actor.
func advance(o *order.Order, target order.Status, by actor.Actor, now time.Time) ([]order.Status, error) {
	path, err := o.Status().PathTo(target)
	if err != nil {
		return nil, err
	}

	from := o.Status()
	for _, next := range path {
		capability, ok := services.RequiredCapability(from, next)
		if !ok || !by.Can(capability, o.CompanyID()) {
			return nil, errs.NewForbiddenError(string(capability), by.ID().String())
		}
		from = next
	}

	return o.AdvanceTo(target, now)
}
