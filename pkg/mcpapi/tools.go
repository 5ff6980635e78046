package mcpapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fortitude-run/fortitude/pkg/classifier"
	"github.com/fortitude-run/fortitude/pkg/config"
	"github.com/fortitude-run/fortitude/pkg/ferrors"
	"github.com/fortitude-run/fortitude/pkg/research"
)

// researchQueryArgs is the JSON schema for the research_query tool.
type researchQueryArgs struct {
	Text           string                  `json:"text"`
	AudienceLevel  string                  `json:"audience_level,omitempty"`
	AudienceDomain string                  `json:"audience_domain,omitempty"`
	AudienceFormat string                  `json:"audience_format,omitempty"`
	Domain         *research.DomainContext `json:"domain,omitempty"`
}

func (s *Server) handleResearchQuery(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	var args researchQueryArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}

	query := &research.Query{Text: args.Text, Domain: args.Domain}
	if args.AudienceLevel != "" || args.AudienceDomain != "" || args.AudienceFormat != "" {
		query.Audience = &research.AudienceContext{
			Level:  args.AudienceLevel,
			Domain: args.AudienceDomain,
			Format: args.AudienceFormat,
		}
	}
	if err := query.Validate(); err != nil {
		return nil, &ferrors.InvalidInputError{Field: "text", Message: err.Error()}
	}

	result, err := s.deps.Pipeline.Process(ctx, query)
	if err != nil {
		return nil, err
	}
	return encodeResult(result)
}

// classifyQueryArgs is the JSON schema for the classify_query tool.
type classifyQueryArgs struct {
	Text string `json:"text"`
}

func (s *Server) handleClassifyQuery(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	var args classifyQueryArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}

	query := &research.Query{Text: args.Text}
	classified, err := s.deps.Classifier.Classify(ctx, query, classifier.Options{
		EnableAdvanced:         true,
		EnableContextDetection: true,
		ConfidenceThreshold:    0.3,
		IncludeExplanations:    true,
	})
	if err != nil {
		return nil, err
	}
	return encodeResult(classified)
}

// detectContextArgs is the JSON schema for the detect_context tool.
type detectContextArgs struct {
	Text string `json:"text"`
}

// detectContextResult reports only the context dimensions, omitting
// the research-type classification detect_context's callers don't
// need.
type detectContextResult struct {
	AudienceLevel   *research.DimensionResult `json:"audience_level,omitempty"`
	TechnicalDomain *research.DimensionResult `json:"technical_domain,omitempty"`
	UrgencyLevel    *research.DimensionResult `json:"urgency_level,omitempty"`
}

func (s *Server) handleDetectContext(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	var args detectContextArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}

	query := &research.Query{Text: args.Text}
	classified, err := s.deps.Classifier.Classify(ctx, query, classifier.Options{
		EnableContextDetection: true,
		ConfidenceThreshold:    0,
	})
	if err != nil {
		return nil, err
	}

	return encodeResult(detectContextResult{
		AudienceLevel:   classified.AudienceLevel,
		TechnicalDomain: classified.TechnicalDomain,
		UrgencyLevel:    classified.UrgencyLevel,
	})
}

func (s *Server) handleProactiveStart(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	if s.deps.Proactive == nil {
		return nil, ferrors.ErrNotImplemented
	}
	if err := s.deps.Proactive.Start(ctx); err != nil {
		return nil, err
	}
	return encodeResult(s.deps.Proactive.Status())
}

func (s *Server) handleProactiveStop(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	if s.deps.Proactive == nil {
		return nil, ferrors.ErrNotImplemented
	}
	s.deps.Proactive.Stop()
	return encodeResult(s.deps.Proactive.Status())
}

func (s *Server) handleProactiveStatus(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	if s.deps.Proactive == nil {
		return nil, ferrors.ErrNotImplemented
	}
	return encodeResult(s.deps.Proactive.Status())
}

// proactiveConfigureArgs is the JSON schema for proactive_configure.
type proactiveConfigureArgs struct {
	WatchPaths         []string `json:"watch_paths,omitempty"`
	ScanSchedule       string   `json:"scan_schedule,omitempty"`
	StalenessThreshold string   `json:"staleness_threshold,omitempty"`
}

func (s *Server) handleProactiveConfigure(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	if s.deps.Proactive == nil {
		return nil, ferrors.ErrNotImplemented
	}
	var args proactiveConfigureArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}

	update := config.ProactiveConfig{WatchPaths: args.WatchPaths, ScanSchedule: args.ScanSchedule}
	if args.StalenessThreshold != "" {
		d, err := time.ParseDuration(args.StalenessThreshold)
		if err != nil {
			return nil, &ferrors.InvalidInputError{Field: "staleness_threshold", Message: err.Error()}
		}
		update.StalenessThreshold = d
	}

	s.deps.Proactive.Configure(update)
	return encodeResult(s.deps.Proactive.Status())
}

func (s *Server) handleProactiveListTasks(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	if s.deps.Proactive == nil {
		return nil, ferrors.ErrNotImplemented
	}
	return encodeResult(s.deps.Proactive.ListTasks())
}

// proactiveNotificationsArgs is the JSON schema for
// proactive_get_notifications.
type proactiveNotificationsArgs struct {
	Max int `json:"max,omitempty"`
}

func (s *Server) handleProactiveNotifications(ctx context.Context, rawArgs json.RawMessage) (json.RawMessage, error) {
	if s.deps.Proactive == nil {
		return nil, ferrors.ErrNotImplemented
	}
	var args proactiveNotificationsArgs
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}
	if args.Max <= 0 {
		args.Max = 50
	}
	return encodeResult(s.deps.Proactive.Notifications(args.Max))
}
