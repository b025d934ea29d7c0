package health

import (
	"encoding/json"
	"fmt"
)

// Target identifies a single network endpoint, grounded on
// health.Target (Host/Port/Weight/Healthy) but keyed by the
// (ip, port, hostname) triple this registry uses instead of a
// single host string.
type Target struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Hostname string `json:"hostname,omitempty"`

	// HostHeader overrides the Host: header sent during active HTTP
	// probes; if empty, Hostname then IP are used.
	HostHeader string `json:"host_header,omitempty"`
}

// Key returns the string used to index this target in the per-worker
// map and in the persisted keyspace. Hostname defaults to the IP
// string for keying when unset.
func (t Target) Key() string {
	hostname := t.Hostname
	if hostname == "" {
		hostname = t.IP
	}
	return fmt.Sprintf("%s:%d:%s", t.IP, t.Port, hostname)
}

// EffectiveHostname returns Hostname, falling back to IP.
func (t Target) EffectiveHostname() string {
	if t.Hostname != "" {
		return t.Hostname
	}
	return t.IP
}

// EffectiveHostHeader returns the Host: header value active HTTP
// probes should send: HostHeader, then Hostname, then IP.
func (t Target) EffectiveHostHeader() string {
	if t.HostHeader != "" {
		return t.HostHeader
	}
	return t.EffectiveHostname()
}

// TargetList is the ordered, serializable sequence of targets stored
// as a single blob under the target_list key (C1).
type TargetList []Target

// EncodeTargetList serializes list as the structured blob persisted
// under the target_list key.
func EncodeTargetList(list TargetList) ([]byte, error) {
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("health: encode target list: %w", err)
	}
	return data, nil
}

// DecodeTargetList deserializes a target_list blob. An empty or nil
// blob decodes to an empty list, matching "get_target_list() → list |
// empty" for a store that has never been written to.
func DecodeTargetList(data []byte) (TargetList, error) {
	if len(data) == 0 {
		return TargetList{}, nil
	}
	var list TargetList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("health: decode target list: %w", err)
	}
	return list, nil
}
