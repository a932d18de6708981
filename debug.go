package veldt

import (
	"encoding/json"

	"github.com/veldt-dev/veldt/types"
)

// DebugState returns a JSON-friendly dump of every live entity and its
// component values, in archetype-creation order then row order. Reserved
// but uncommitted entities are absent. Intended for debugging endpoints
// and test assertions, not hot paths.
func (w *World) DebugState() (types.EntityStateResponse, error) {
	state := make(types.EntityStateResponse, 0, w.liveCount)
	for i := 0; i < w.archetypes.Count(); i++ {
		archID := types.ArchetypeID(i)
		arch := w.archetypes.Archetype(archID)
		denseMetas := w.registry.Metas(arch.DenseComponents())
		for row, e := range w.archetypes.Entities(archID) {
			components := make(map[string]json.RawMessage, len(denseMetas))
			for _, meta := range denseMetas {
				col, _ := w.store.Table(arch.TableID()).Column(meta.ID())
				bz, err := meta.Encode(col.Value(types.Row(row)).Interface())
				if err != nil {
					return nil, err
				}
				components[meta.Name()] = bz
			}
			for _, m := range w.store.Maps() {
				v, ok := m.Value(e)
				if !ok {
					continue
				}
				meta, ok := w.registry.ComponentByID(m.Component())
				if !ok {
					continue
				}
				bz, err := meta.Encode(v.Interface())
				if err != nil {
					return nil, err
				}
				components[meta.Name()] = bz
			}
			state = append(state, types.EntityStateElement{
				Entity:     e,
				Components: components,
			})
		}
	}
	return state, nil
}
