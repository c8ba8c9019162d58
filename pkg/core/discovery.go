// pkg/core/discovery.go
package core

// DiscoveryState is the persisted discovery blob layout for one sector.
type DiscoveryState struct {
	Version int      `json:"version"`
	IDs     []string `json:"ids"`
}
