package automod

import (
	"errors"
	"regexp"
	"strconv"
	"sync"

	"github.com/pboennig/cs152-bot/platform"
)

var (
	// ErrIncidentNotFound means an incident identifier parsed cleanly but
	// no incident with that identifier exists.
	ErrIncidentNotFound = errors.New("automod: incident not found")
	// ErrNoIncidentPrefix means the text does not carry the incident
	// marker at all (eg, a reaction on some unrelated bot message).
	ErrNoIncidentPrefix = errors.New("automod: no incident prefix in message")
)

var incidentPrefixPattern = regexp.MustCompile(`^\*\*\[INCIDENT (\d+)\]\*\*`)

// IncidentRegistry owns the identifier counter and the id-to-incident map.
// Identifiers are monotonically increasing and never reused; closed
// incidents are retained so late reactions still resolve to a defined,
// idempotent reply.
type IncidentRegistry struct {
	mu        sync.Mutex
	nextID    int
	incidents map[int]*Incident
}

func NewIncidentRegistry() *IncidentRegistry {
	return &IncidentRegistry{
		incidents: make(map[int]*Incident),
	}
}

// Create allocates the next identifier and constructs the Incident in its
// initial state. reporter is nil for automated flags.
func (r *IncidentRegistry) Create(client platform.Client, reporter *platform.User, offending ReportedMessage, level ThreatLevel) *Incident {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc := &Incident{
		ID:        r.nextID,
		Reporter:  reporter,
		Offending: offending,
		Level:     level,
		client:    client,
		state:     ModFlowStart,
	}
	r.incidents[inc.ID] = inc
	r.nextID++
	return inc
}

func (r *IncidentRegistry) Lookup(id int) (*Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	return inc, nil
}

// Resolve extracts the embedded identifier from the canonical
// "**[INCIDENT n]**" prefix of a previously-posted moderator message and
// looks the incident up.
func (r *IncidentRegistry) Resolve(text string) (*Incident, error) {
	m := incidentPrefixPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, ErrNoIncidentPrefix
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, ErrNoIncidentPrefix
	}
	return r.Lookup(id)
}
