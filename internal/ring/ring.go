package ring

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"sync"

	"github.com/unixpickle/essentials"

	"hashring/internal/hash"
)

var (
	// ErrEmptyRing is returned when a key is resolved against a ring with
	// no registered servers.
	ErrEmptyRing = errors.New("ring: no servers registered")
	// ErrInvalidReplicationFactor is returned by New for a replication
	// factor outside [1, hash.BucketSpace].
	ErrInvalidReplicationFactor = errors.New("ring: invalid replication factor")
	// ErrServerExists is returned when a server name is registered twice.
	ErrServerExists = errors.New("ring: server already registered")
	// ErrRingFull is returned when the bucket space cannot hold another
	// server's virtual nodes.
	ErrRingFull = errors.New("ring: bucket space exhausted")
)

// Option configures a Ring.
type Option func(*Ring)

// WithHasher replaces the default XXH64 hasher.
func WithHasher(h hash.Hasher) Option {
	return func(r *Ring) {
		r.hasher = h
	}
}

// Ring implements consistent hashing with virtual nodes over a fixed
// bucket space.
type Ring struct {
	mu                sync.RWMutex
	hasher            hash.Hasher
	replicationFactor int

	positions   map[uint64]string // position -> server
	sorted      []uint64          // ascending positions
	servers     []string          // registration order
	assignments map[string]string // key -> server
}

// New creates an empty ring that places replicationFactor virtual nodes
// per server.
func New(replicationFactor int, opts ...Option) (*Ring, error) {
	if replicationFactor <= 0 || replicationFactor > hash.BucketSpace {
		return nil, fmt.Errorf("%w: %d", ErrInvalidReplicationFactor, replicationFactor)
	}
	r := &Ring{
		hasher:            hash.NewXXHash(),
		replicationFactor: replicationFactor,
		positions:         make(map[uint64]string),
		sorted:            make([]uint64, 0),
		servers:           make([]string, 0),
		assignments:       make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ReplicationFactor returns the number of virtual nodes per server.
func (r *Ring) ReplicationFactor() int {
	return r.replicationFactor
}

// AddServer registers a server and places its virtual nodes. Assigned keys
// that now resolve to the new server are moved to it. Keys whose cached owner
// changed because a virtual node was re-placed follow the new owner; other
// assignments are left alone.
//
// A virtual node whose position is already taken is moved to the next free
// position clockwise, so every position has exactly one owner. Placement is
// recomputed from the registered servers in name order on every topology
// change, so rings with the same servers agree on every position no matter
// the order in which servers joined and left.
func (r *Ring) AddServer(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if essentials.Contains(r.servers, name) {
		return fmt.Errorf("%w: %s", ErrServerExists, name)
	}
	if len(r.sorted)+r.replicationFactor > hash.BucketSpace {
		return fmt.Errorf("%w: cannot place %d virtual nodes for %s", ErrRingFull, r.replicationFactor, name)
	}

	prevPositions, prevSorted := r.positions, r.sorted
	r.servers = append(r.servers, name)
	r.place()

	if len(r.assignments) == 0 {
		return nil
	}
	r.rebalance(name, "", prevPositions, prevSorted)
	return nil
}

// RemoveServer unregisters a server and drops all of its virtual nodes.
// Keys assigned to it are re-resolved against the remaining servers; if
// none remain, those assignments are dropped. It reports false, leaving the
// ring untouched, when the server is not registered.
func (r *Ring) RemoveServer(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.Index(r.servers, name)
	if idx < 0 {
		return false
	}
	essentials.OrderedDelete(&r.servers, idx)

	prevPositions, prevSorted := r.positions, r.sorted
	r.place()

	if len(r.assignments) == 0 {
		return true
	}
	r.rebalance("", name, prevPositions, prevSorted)
	return true
}

// MapKey returns the server owning key: the first virtual node at or after
// the key's position, wrapping past the end of the bucket space to the
// first virtual node.
func (r *Ring) MapKey(key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locate(key)
}

// AssignKey resolves key and records the resulting assignment.
func (r *Ring) AssignKey(key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	server, err := r.locate(key)
	if err != nil {
		return "", err
	}
	r.assignments[key] = server
	return server, nil
}

// SetKey records an explicit assignment without resolving it. The server
// is not required to be registered.
func (r *Ring) SetKey(key, server string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments[key] = server
}

// DeleteKey removes the assignment for key. It reports false when the key
// has no assignment.
func (r *Ring) DeleteKey(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.assignments[key]; !ok {
		return false
	}
	delete(r.assignments, key)
	return true
}

// PreferenceList returns up to n distinct servers for key, starting with
// its owner and walking clockwise.
func (r *Ring) PreferenceList(key string, n int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.sorted) == 0 {
		return nil, ErrEmptyRing
	}
	if n <= 0 {
		return []string{}, nil
	}

	idx := search(r.sorted, r.hashKey(key))
	seen := make(map[string]bool)
	result := make([]string, 0, min(n, len(r.servers)))
	for i := 0; i < len(r.sorted) && len(result) < n; i++ {
		server := r.positions[r.sorted[(idx+i)%len(r.sorted)]]
		if !seen[server] {
			seen[server] = true
			result = append(result, server)
		}
	}
	return result, nil
}

// Positions returns a copy of the position table.
func (r *Ring) Positions() map[uint64]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.positions)
}

// SortedPositions returns a copy of the ascending position list.
func (r *Ring) SortedPositions() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.sorted)
}

// Servers returns the registered servers in registration order.
func (r *Ring) Servers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.servers)
}

// Assignments returns a copy of the key assignment table.
func (r *Ring) Assignments() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.assignments)
}

// Load returns the number of assigned keys per server. Registered servers
// without keys are reported with zero.
func (r *Ring) Load() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load()
}

// Snapshot is a point-in-time copy of every table in the ring.
type Snapshot struct {
	ReplicationFactor int
	Servers           []string
	Positions         map[uint64]string
	SortedPositions   []uint64
	Assignments       map[string]string
	Load              map[string]int
}

// Snapshot copies all tables under a single read lock.
func (r *Ring) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Snapshot{
		ReplicationFactor: r.replicationFactor,
		Servers:           slices.Clone(r.servers),
		Positions:         maps.Clone(r.positions),
		SortedPositions:   slices.Clone(r.sorted),
		Assignments:       maps.Clone(r.assignments),
		Load:              r.load(),
	}
}

func (r *Ring) load() map[string]int {
	load := make(map[string]int, len(r.servers))
	for _, server := range r.servers {
		load[server] = 0
	}
	for _, server := range r.assignments {
		load[server]++
	}
	return load
}

// locate resolves key. Callers must hold r.mu.
func (r *Ring) locate(key string) (string, error) {
	if len(r.sorted) == 0 {
		return "", ErrEmptyRing
	}
	return ownerAt(r.positions, r.sorted, r.hashKey(key)), nil
}

// ownerAt returns the owner of the first position >= h in sorted, or ""
// when sorted is empty.
func ownerAt(positions map[uint64]string, sorted []uint64, h uint64) string {
	if len(sorted) == 0 {
		return ""
	}
	return positions[sorted[search(sorted, h)]]
}

// search returns the index of the first position >= h, wrapping to 0.
func search(sorted []uint64, h uint64) int {
	idx := sort.Search(len(sorted), func(i int) bool {
		return sorted[i] >= h
	})
	if idx == len(sorted) {
		return 0
	}
	return idx
}

// place rebuilds the position table and sorted list from r.servers.
// Servers are placed in name order and each virtual node probes clockwise
// from its hashed position. Callers must hold r.mu and guarantee the
// virtual nodes fit in the bucket space.
func (r *Ring) place() {
	names := slices.Clone(r.servers)
	slices.Sort(names)

	positions := make(map[uint64]string, len(names)*r.replicationFactor)
	sorted := make([]uint64, 0, len(names)*r.replicationFactor)
	for _, name := range names {
		for i := 0; i < r.replicationFactor; i++ {
			pos := r.hashKey(vnodeID(name, i))
			for {
				if _, taken := positions[pos]; !taken {
					break
				}
				pos = (pos + 1) % hash.BucketSpace
			}
			positions[pos] = name
			sorted = append(sorted, pos)
		}
	}
	essentials.VoodooSort(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	r.positions = positions
	r.sorted = sorted
}

// rebalance updates the assignment table after a topology change. prev
// describes the layout before the change. Keys of a removed server are
// re-resolved, or dropped when no servers remain. Keys resolving to an added
// server move to it. A key whose assignment matched its previous resolution
// follows its resolution when that changed. Callers must hold r.mu.
func (r *Ring) rebalance(added, removed string, prevPositions map[uint64]string, prevSorted []uint64) {
	for key, owner := range r.assignments {
		next, err := r.locate(key)
		if err != nil {
			if removed != "" && owner == removed {
				delete(r.assignments, key)
			}
			continue
		}

		prev := ownerAt(prevPositions, prevSorted, r.hashKey(key))
		switch {
		case removed != "" && owner == removed,
			added != "" && next == added,
			prev != "" && owner == prev && next != prev:
			r.assignments[key] = next
		}
	}
}

func (r *Ring) hashKey(s string) uint64 {
	return hash.String(r.hasher, s) % hash.BucketSpace
}

// vnodeID names the i-th virtual node of server: the server name followed
// by the decimal index.
func vnodeID(server string, i int) string {
	return server + strconv.Itoa(i)
}
