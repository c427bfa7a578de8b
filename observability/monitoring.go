package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ProcessSample is one reading of the process resources.
type ProcessSample struct {
	PID    int32   `json:"pid"`
	Status string  `json:"status"`
	CPU    float64 `json:"cpu_percent"`
	RSS    uint64  `json:"rss_bytes"`
}

// Stats aggregates every metric exposed on the debug endpoint.
type Stats struct {
	Connections int            `json:"connections"`
	Rooms       map[string]int `json:"rooms"`

	FramesReceived      uint64 `json:"frames_received"`
	EventsDropped       uint64 `json:"events_dropped"`
	Submissions         uint64 `json:"submissions"`
	PersistenceFailures uint64 `json:"persistence_failures"`
	HostAuthFailures    uint64 `json:"host_auth_failures"`
	ModerationNoops     uint64 `json:"moderation_noops"`
	WorkerRestarts      uint64 `json:"worker_restarts"`

	Process    ProcessSample `json:"process"`
	AllocMemMb uint64        `json:"alloc_mem_mb"`
	NumGC      uint32        `json:"num_gc"`
	Goroutines int           `json:"goroutines"`
	SampledAt  time.Time     `json:"sampled_at"`
}

// Monitoring keeps live counters and the latest sampled snapshot.
// Counters are atomics so hot paths never take the lock.
type Monitoring struct {
	log    *slog.Logger
	mu     sync.RWMutex
	latest Stats

	framesReceived      atomic.Uint64
	eventsDropped       atomic.Uint64
	submissions         atomic.Uint64
	persistenceFailures atomic.Uint64
	hostAuthFailures    atomic.Uint64
	moderationNoops     atomic.Uint64
	workerRestarts      atomic.Uint64
}

func NewMonitoring(log *slog.Logger) *Monitoring {
	return &Monitoring{
		log:    log,
		latest: Stats{Rooms: make(map[string]int)},
	}
}

func (m *Monitoring) IncrFramesReceived()      { m.framesReceived.Add(1) }
func (m *Monitoring) IncrEventsDropped()       { m.eventsDropped.Add(1) }
func (m *Monitoring) IncrSubmissions()         { m.submissions.Add(1) }
func (m *Monitoring) IncrPersistenceFailures() { m.persistenceFailures.Add(1) }
func (m *Monitoring) IncrHostAuthFailures()    { m.hostAuthFailures.Add(1) }
func (m *Monitoring) IncrModerationNoops()     { m.moderationNoops.Add(1) }
func (m *Monitoring) IncrWorkerRestarts()      { m.workerRestarts.Add(1) }

// UpdateProcess stores the latest process sample together with Go runtime stats.
func (m *Monitoring) UpdateProcess(sample ProcessSample) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest.Process = sample
	m.latest.AllocMemMb = mem.Alloc / 1024 / 1024
	m.latest.NumGC = mem.NumGC
	m.latest.Goroutines = runtime.NumGoroutine()
	m.latest.SampledAt = time.Now().UTC()
}

// UpdateRegistry stores connection and room counts keyed by room kind.
func (m *Monitoring) UpdateRegistry(connections int, rooms map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest.Connections = connections
	m.latest.Rooms = rooms
}

func (m *Monitoring) GetLatest() Stats {
	m.mu.RLock()
	stats := m.latest
	rooms := make(map[string]int, len(m.latest.Rooms))
	for k, v := range m.latest.Rooms {
		rooms[k] = v
	}
	m.mu.RUnlock()

	stats.Rooms = rooms
	stats.FramesReceived = m.framesReceived.Load()
	stats.EventsDropped = m.eventsDropped.Load()
	stats.Submissions = m.submissions.Load()
	stats.PersistenceFailures = m.persistenceFailures.Load()
	stats.HostAuthFailures = m.hostAuthFailures.Load()
	stats.ModerationNoops = m.moderationNoops.Load()
	stats.WorkerRestarts = m.workerRestarts.Load()
	return stats
}
