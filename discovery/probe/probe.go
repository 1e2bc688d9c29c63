// Package probe periodically resolves a canary service so that a
// misconfigured selector or revoked RBAC binding shows up in metrics
// before any caller notices.
package probe

import (
	"context"
	"time"

	"codnect.io/chrono"
	"github.com/kubelookup/kubelookup/config"
	"github.com/kubelookup/kubelookup/discovery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var (
	probeTargets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kubelookup_probe_targets",
		Help: "Number of targets the last probe lookup resolved.",
	})
	probeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kubelookup_probe_failures_total",
		Help: "Probe lookups that failed, by error kind.",
	}, []string{"kind"})
)

type Probe struct {
	resolver  discovery.Resolver
	cfg       config.ProbeConfig
	scheduler chrono.TaskScheduler
}

// Start schedules the probe if it is enabled; a nil Probe with no error
// means probing is off.
func Start(resolver discovery.Resolver, cfg config.ProbeConfig) (*Probe, error) {
	if !cfg.Enabled || cfg.IntervalMillis <= 0 {
		log.Debug().Msg("Discovery probe is disabled")
		return nil, nil
	}

	p := &Probe{
		resolver:  resolver,
		cfg:       cfg,
		scheduler: chrono.NewDefaultTaskScheduler(),
	}

	period := time.Duration(cfg.IntervalMillis) * time.Millisecond
	log.Info().Msgf("Scheduling probe lookup of [%s] every %v", cfg.ServiceName, period)

	_, err := p.scheduler.ScheduleAtFixedRate(func(ctx context.Context) {
		p.run(ctx)
	}, period)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Probe) run(ctx context.Context) {
	resolved, err := p.resolver.Lookup(ctx, discovery.Query{
		ServiceName: p.cfg.ServiceName,
		PortName:    p.cfg.PortName,
	})
	if err != nil {
		probeFailures.WithLabelValues(discovery.KindOf(err)).Inc()
		log.Error().Err(err).Msgf("Probe lookup of [%s] failed", p.cfg.ServiceName)
		return
	}

	probeTargets.Set(float64(len(resolved.Targets)))
}

func (p *Probe) Stop() {
	if p == nil {
		return
	}
	p.scheduler.Shutdown()
}
