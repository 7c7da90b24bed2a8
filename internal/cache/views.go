// Package cache holds the short-lived read views that clients poll: the
// patient's waiting room and the professional's queue.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/nkosi-ncube/CareIQ/internal/model"
	"github.com/nkosi-ncube/CareIQ/pkg/logger"
	"github.com/nkosi-ncube/CareIQ/pkg/messaging"
	"github.com/nkosi-ncube/CareIQ/pkg/metrics"
)

const (
	InvalidationChannel = "careiq:views:invalidate"
	invalidationType    = "consultation.changed"

	viewWaitingRoom = "waiting_room"
	viewQueue       = "queue"
)

type invalidation struct {
	ConsultationID uuid.UUID `json:"consultationId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
}

type Views struct {
	local   *gocache.Cache
	broker  messaging.Broker
	origin  string
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewViews builds the view cache. A nil broker keeps invalidation local.
func NewViews(ttl, cleanup time.Duration, broker messaging.Broker, log *logger.Logger, m *metrics.Metrics) *Views {
	return &Views{
		local:   gocache.New(ttl, cleanup),
		broker:  broker,
		origin:  uuid.NewString(),
		logger:  log,
		metrics: m,
	}
}

func waitingRoomKey(id uuid.UUID) string { return "wr:" + id.String() }
func queueKey(id uuid.UUID) string       { return "queue:" + id.String() }

func (v *Views) WaitingRoom(id uuid.UUID) (*model.WaitingRoom, bool) {
	item, ok := v.local.Get(waitingRoomKey(id))
	v.metrics.ObserveCache(viewWaitingRoom, ok)
	if !ok {
		return nil, false
	}
	wr := *item.(*model.WaitingRoom)
	return &wr, true
}

func (v *Views) SetWaitingRoom(wr *model.WaitingRoom) {
	copied := *wr
	v.local.SetDefault(waitingRoomKey(wr.ID), &copied)
}

func (v *Views) Queue(professionalID uuid.UUID) ([]*model.QueueEntry, bool) {
	item, ok := v.local.Get(queueKey(professionalID))
	v.metrics.ObserveCache(viewQueue, ok)
	if !ok {
		return nil, false
	}
	cached := item.([]*model.QueueEntry)
	return append([]*model.QueueEntry(nil), cached...), true
}

func (v *Views) SetQueue(professionalID uuid.UUID, entries []*model.QueueEntry) {
	v.local.SetDefault(queueKey(professionalID), append([]*model.QueueEntry(nil), entries...))
}

// Invalidate evicts both views locally and tells other instances to do the same.
// Publish failures are logged; the TTL still bounds staleness elsewhere.
func (v *Views) Invalidate(ctx context.Context, consultationID, professionalID uuid.UUID) {
	v.evict(consultationID, professionalID)

	if v.broker == nil {
		return
	}
	msg := messaging.Message{
		Type:    invalidationType,
		Origin:  v.origin,
		Payload: invalidation{ConsultationID: consultationID, ProfessionalID: professionalID},
	}
	if err := v.broker.Publish(ctx, InvalidationChannel, msg); err != nil {
		v.logger.Error(err, "failed to broadcast view invalidation",
			"consultation_id", consultationID.String())
	}
}

func (v *Views) evict(consultationID, professionalID uuid.UUID) {
	v.local.Delete(waitingRoomKey(consultationID))
	v.local.Delete(queueKey(professionalID))
}

// Listen applies invalidations published by other instances until ctx ends.
func (v *Views) Listen(ctx context.Context) error {
	if v.broker == nil {
		return nil
	}
	msgs, err := v.broker.Subscribe(ctx, InvalidationChannel)
	if err != nil {
		return err
	}

	go func() {
		for raw := range msgs {
			v.apply(raw)
		}
	}()
	return nil
}

func (v *Views) apply(raw []byte) {
	var msg struct {
		Type    string       `json:"type"`
		Origin  string       `json:"origin"`
		Payload invalidation `json:"payload"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		v.logger.Error(err, "discarding malformed invalidation")
		return
	}
	if msg.Type != invalidationType || msg.Origin == v.origin {
		return
	}
	v.evict(msg.Payload.ConsultationID, msg.Payload.ProfessionalID)
}
