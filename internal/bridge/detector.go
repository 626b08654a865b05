package bridge

import (
	"github.com/dokzlo13/huemqtt/internal/entity"
)

// Detect decides whether fresh should be published. It returns fresh and
// true, after storing it, when the entity was never observed or when any of
// its State keys differs from (or is missing in) the stored snapshot.
// Comparison stops at the first difference: the published payload is the
// full state either way.
func Detect(store *Store, fresh entity.Entity) (entity.Entity, bool) {
	cached, ok := store.Get(fresh.Kind, fresh.ID)
	if !ok {
		store.Put(fresh.Kind, fresh.ID, fresh)
		return fresh, true
	}

	for k, v := range fresh.State {
		old, present := cached.State[k]
		if present && entity.Equal(v, old) {
			continue
		}
		store.Put(fresh.Kind, fresh.ID, fresh)
		return fresh, true
	}
	return entity.Entity{}, false
}
