package health

import "fmt"

// globalNamespace roots every key this package writes, so a store
// shared with unrelated code can never collide with it.
const globalNamespace = "relayhealth"

// keyBuilder derives the namespaced keys the engine writes:
// <global>:<name>:<role>, with per-target roles further suffixed by
// the target's key. Collisions between engine instances sharing a
// store are impossible as long as name is unique, which config.Validate
// enforces indirectly by requiring name to be set (uniqueness itself
// is a process-wide caller responsibility, same as the source design).
type keyBuilder struct {
	name string
}

func newKeyBuilder(name string) keyBuilder {
	return keyBuilder{name: name}
}

func (k keyBuilder) prefix(role string) string {
	return fmt.Sprintf("%s:%s:%s", globalNamespace, k.name, role)
}

func (k keyBuilder) targetList() string {
	return k.prefix("target_list")
}

func (k keyBuilder) targetListLock() string {
	return k.prefix("target_list_lock")
}

func (k keyBuilder) state(targetKey string) string {
	return k.prefix("state") + ":" + targetKey
}

func (k keyBuilder) counter(targetKey string) string {
	return k.prefix("counter") + ":" + targetKey
}

func (k keyBuilder) targetLock(targetKey string) string {
	return k.prefix("target_lock") + ":" + targetKey
}

func (k keyBuilder) periodLock(tick string) string {
	return k.prefix("period_lock") + ":" + tick
}
