package discovery

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultRetryDelay = 2 * time.Second

// Membership is the part of the ring the syncer drives.
type Membership interface {
	AddServer(name string) error
	RemoveServer(name string) bool
	Servers() []string
}

// Syncer mirrors the healthy instances of a catalog service into a ring.
type Syncer struct {
	catalog    Catalog
	members    Membership
	service    string
	tag        string
	retryDelay time.Duration
	log        logrus.FieldLogger

	// managed holds the servers this syncer added. Not guarded: Apply must
	// not run concurrently with Run.
	managed map[string]bool
}

// NewSyncer creates a syncer for service (optionally filtered by tag).
func NewSyncer(catalog Catalog, members Membership, service, tag string, logger logrus.FieldLogger) *Syncer {
	return &Syncer{
		catalog:    catalog,
		members:    members,
		service:    service,
		tag:        tag,
		retryDelay: defaultRetryDelay,
		log:        logger.WithField("service", service),
		managed:    make(map[string]bool),
	}
}

// Run watches the catalog until ctx is cancelled. Catalog errors are
// logged and retried after a delay; the last applied view stays in place.
func (s *Syncer) Run(ctx context.Context) error {
	var index uint64
	for {
		instances, next, err := s.catalog.Healthy(ctx, s.service, s.tag, index)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.WithError(err).Warn("catalog query failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay):
			}
			continue
		}

		// Consul indexes may go backwards after a snapshot restore.
		if next < index {
			index = 0
		} else {
			index = next
		}

		added, removed := s.Apply(instances)
		if len(added) > 0 || len(removed) > 0 {
			s.log.WithFields(logrus.Fields{
				"added":   added,
				"removed": removed,
				"index":   index,
			}).Info("ring membership updated")
		}
	}
}

// Apply reconciles the ring with instances and returns what changed.
func (s *Syncer) Apply(instances []string) (added, removed []string) {
	want := make(map[string]bool, len(instances))
	for _, name := range instances {
		want[name] = true
	}

	registered := make(map[string]bool)
	for _, name := range s.members.Servers() {
		registered[name] = true
	}

	for name := range s.managed {
		if want[name] {
			continue
		}
		delete(s.managed, name)
		if s.members.RemoveServer(name) {
			removed = append(removed, name)
		}
	}

	for _, name := range instances {
		if registered[name] {
			continue
		}
		if err := s.members.AddServer(name); err != nil {
			s.log.WithError(err).WithField("server", name).Warn("failed to add server")
			continue
		}
		s.managed[name] = true
		added = append(added, name)
	}

	return added, removed
}
