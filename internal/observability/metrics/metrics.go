package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	organizationsCreated metric.Int64Counter
	proposalsCreated     metric.Int64Counter
	votesCast            metric.Int64Counter
	proposalsPassed      metric.Int64Counter
	treasuryFunded       metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "assembly"
	}
	meter := provider.Meter(name)

	organizationsCreated, err := meter.Int64Counter("assembly_organizations_created_total")
	if err != nil {
		return nil, err
	}
	proposalsCreated, err := meter.Int64Counter("assembly_proposals_created_total")
	if err != nil {
		return nil, err
	}
	votesCast, err := meter.Int64Counter("assembly_votes_cast_total")
	if err != nil {
		return nil, err
	}
	proposalsPassed, err := meter.Int64Counter("assembly_proposals_passed_total")
	if err != nil {
		return nil, err
	}
	treasuryFunded, err := meter.Int64Counter("assembly_treasury_funded_sats_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		organizationsCreated: organizationsCreated,
		proposalsCreated:     proposalsCreated,
		votesCast:            votesCast,
		proposalsPassed:      proposalsPassed,
		treasuryFunded:       treasuryFunded,
	}, nil
}

// RecordOrganizationCreated increments organization creation counts.
func (m *Metrics) RecordOrganizationCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.organizationsCreated.Add(ctx, 1)
}

// RecordProposalCreated increments proposal creation counts.
func (m *Metrics) RecordProposalCreated(ctx context.Context, orgID, actionType string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("action_type", strings.TrimSpace(actionType)),
	)
	m.proposalsCreated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordVoteCast increments vote counts.
func (m *Metrics) RecordVoteCast(ctx context.Context, orgID, choice string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("choice", strings.TrimSpace(choice)),
	)
	m.votesCast.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordProposalPassed increments passed-proposal counts.
func (m *Metrics) RecordProposalPassed(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("org_id", strings.TrimSpace(orgID)))
	m.proposalsPassed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTreasuryFunded adds funded sats to the treasury counter.
func (m *Metrics) RecordTreasuryFunded(ctx context.Context, orgID string, amountSats int64) {
	if m == nil || amountSats <= 0 {
		return
	}
	attrs := FilterAttributes(attribute.String("org_id", strings.TrimSpace(orgID)))
	m.treasuryFunded.Add(ctx, amountSats, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":      {},
	"choice":      {},
	"action_type": {},
	"endpoint":    {},
	"status_code": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
