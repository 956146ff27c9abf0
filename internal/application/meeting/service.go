package meeting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-onboard-api/internal/domain"
	"golang.org/x/sync/errgroup"
)

// profileFanOutLimit bounds the concurrent per-member profile fetches.
const profileFanOutLimit = 8

// MessagingClient is the LINE Messaging API surface the service needs.
type MessagingClient interface {
	GroupMemberIDs(ctx context.Context, groupID string) ([]string, error)
	GetProfile(ctx context.Context, userID string) (*domain.GroupProfile, error)
	Push(ctx context.Context, payload interface{}) (*domain.DispatchResult, error)
}

// WorkflowClient proxies event payloads to the workflow-automation service.
type WorkflowClient interface {
	Trigger(ctx context.Context, payload interface{}) (json.RawMessage, error)
}

// GroupStore persists the key -> group id bindings.
type GroupStore interface {
	Put(ctx context.Context, key, groupID string) error
	Get(ctx context.Context, key string) (*domain.GroupBinding, error)
}

// RegistrationLister feeds the registered-participant resolution.
type RegistrationLister interface {
	List(ctx context.Context) ([]domain.RegistrationRecord, error)
}

// NotifyResult is the full outcome of a meeting notification: the normalized
// event, the workflow service's opaque response, and the push result.
type NotifyResult struct {
	Event    *domain.MeetingEvent   `json:"event"`
	Workflow json.RawMessage        `json:"workflow"`
	Dispatch *domain.DispatchResult `json:"dispatch"`
}

// Service resolves group membership, builds meeting events and dispatches
// the invitation message.
type Service interface {
	ResolveMembers(ctx context.Context, groupID string) ([]domain.GroupProfile, error)
	ResolveRegistered(ctx context.Context) ([]domain.GroupProfile, error)
	Notify(ctx context.Context, form domain.MeetingForm) (*NotifyResult, error)
	BindGroup(ctx context.Context, key, groupID string) error
	GroupID(ctx context.Context, key string) (string, error)
}

// ServiceDeps wires the service's collaborators.
type ServiceDeps struct {
	Line          MessagingClient
	Workflow      WorkflowClient
	Groups        GroupStore
	Registrations RegistrationLister
	UTCOffset     string
	TimeZone      string
}

type service struct {
	deps ServiceDeps
}

func NewService(deps ServiceDeps) Service {
	return &service{deps: deps}
}

// ResolveMembers expands a group id into member profiles. The id list is a
// single call and its failure fails the resolution; the per-id profile
// fetches run in parallel and individual failures only shrink the result.
func (s *service) ResolveMembers(ctx context.Context, groupID string) ([]domain.GroupProfile, error) {
	ids, err := s.deps.Line.GroupMemberIDs(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch member ids for group %s: %w", groupID, err)
	}
	return s.fetchProfiles(ctx, ids, nil), nil
}

// ResolveRegistered resolves LINE profiles for every committed registration,
// with the registration email attached to each surviving profile.
func (s *service) ResolveRegistered(ctx context.Context) ([]domain.GroupProfile, error) {
	recs, err := s.deps.Registrations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	ids := make([]string, 0, len(recs))
	emails := make(map[string]string, len(recs))
	for _, rec := range recs {
		if rec.LineUserID == "" {
			continue
		}
		ids = append(ids, rec.LineUserID)
		emails[rec.LineUserID] = rec.Email
	}
	return s.fetchProfiles(ctx, ids, emails), nil
}

// fetchProfiles runs the bounded fan-out. Results keep the input id order:
// each goroutine writes its own slot and failed slots are filtered out after
// the wait, so identical inputs always produce the identical sequence.
func (s *service) fetchProfiles(ctx context.Context, ids []string, emails map[string]string) []domain.GroupProfile {
	results := make([]*domain.GroupProfile, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileFanOutLimit)
	for i, uid := range ids {
		g.Go(func() error {
			p, err := s.deps.Line.GetProfile(gctx, uid)
			if err != nil {
				// Partial resolution failure is recovered here and never
				// aborts the surrounding request.
				slog.Warn("profile fetch failed", "user_id", uid, "err", err)
				return nil
			}
			results[i] = p
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.GroupProfile, 0, len(ids))
	for i, p := range results {
		if p == nil {
			continue
		}
		if email, ok := emails[ids[i]]; ok {
			p.Email = email
		}
		out = append(out, *p)
	}
	return out
}

// Notify runs the full meeting-notification flow: resolve membership, build
// the event, hand it to the workflow service, then push the invitation.
func (s *service) Notify(ctx context.Context, form domain.MeetingForm) (*NotifyResult, error) {
	key := form.GroupKey
	if key == "" {
		key = domain.DefaultGroupKey
	}
	groupID, err := s.GroupID(ctx, key)
	if err != nil {
		return nil, err
	}

	profiles, err := s.ResolveMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	event, err := BuildEvent(form, profiles, groupID, s.deps.UTCOffset, s.deps.TimeZone)
	if err != nil {
		return nil, err
	}

	workflowRes, err := s.deps.Workflow.Trigger(ctx, event)
	if err != nil {
		return nil, err
	}

	dispatch, err := s.deps.Line.Push(ctx, BuildFlexMessage(event, groupID, form.MeetingLink))
	if err != nil {
		return nil, err
	}
	if !dispatch.Sent {
		slog.Warn("meeting invitation rejected by messaging api",
			"group_id", groupID, "status", dispatch.Status, "body", dispatch.Body)
	}

	return &NotifyResult{Event: event, Workflow: workflowRes, Dispatch: dispatch}, nil
}

func (s *service) BindGroup(ctx context.Context, key, groupID string) error {
	if groupID == "" {
		return fmt.Errorf("group_id required: %w", domain.ErrBadRequest)
	}
	if key == "" {
		key = domain.DefaultGroupKey
	}
	return s.deps.Groups.Put(ctx, key, groupID)
}

func (s *service) GroupID(ctx context.Context, key string) (string, error) {
	b, err := s.deps.Groups.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("no group bound for key %s: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return b.GroupID, nil
}
