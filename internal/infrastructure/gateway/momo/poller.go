package momo

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// Reconciler consumes a gateway verdict for a transaction reference. The
// reconciliation use case implements it.
type Reconciler interface {
	Reconcile(ctx context.Context, reference string, status port.GatewayStatus) error
}

// Poller implements port.StatusWatcher by polling the gateway until the
// transaction reaches a terminal state or the attempt budget runs out. It is
// a safety net for missed webhooks; the reconciler makes duplicate verdicts
// harmless, so webhook and poller may race freely.
type Poller struct {
	gateway    port.MoneyGateway
	reconciler Reconciler
	logger     *slog.Logger

	attempts int
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller with the given attempt budget and interval
// between attempts.
func NewPoller(gateway port.MoneyGateway, reconciler Reconciler, logger *slog.Logger, attempts int, interval time.Duration) *Poller {
	if attempts <= 0 {
		attempts = 10
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		gateway:    gateway,
		reconciler: reconciler,
		logger:     logger,
		attempts:   attempts,
		interval:   interval,
		ctx:        ctx,
		cancel:     cancel,
	}
}

var _ port.StatusWatcher = (*Poller)(nil)

// Watch starts a background polling loop for the reference. It returns
// immediately.
func (p *Poller) Watch(reference string, txType valueobject.TransactionType) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.poll(reference, txType)
	}()
}

// Shutdown stops all polling loops and waits for them to exit.
func (p *Poller) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

func (p *Poller) poll(reference string, txType valueobject.TransactionType) {
	check := p.gateway.TransferStatus
	if txType.Equal(valueobject.TransactionTypeRepayment) {
		check = p.gateway.RequestToPayStatus
	}

	for attempt := 1; attempt <= p.attempts; attempt++ {
		select {
		case <-p.ctx.Done():
			return
		case <-time.After(p.interval):
		}

		status, err := check(p.ctx, reference)
		if err != nil {
			p.logger.Warn("gateway status check failed",
				"reference", reference, "attempt", attempt, "error", err)
			continue
		}
		if status.Pending {
			continue
		}

		if err := p.reconciler.Reconcile(p.ctx, reference, status); err != nil {
			p.logger.Error("reconciliation from poller failed",
				"reference", reference, "error", err)
		}
		return
	}

	p.logger.Warn("gave up polling gateway status",
		"reference", reference, "attempts", p.attempts)
}
