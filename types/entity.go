package types

import (
	"encoding/json"
	"fmt"
	"math"
)

// InvalidIndex is reserved as a sentinel and is never handed out by the
// allocator. Reaching it during allocation means the 32-bit index space is
// exhausted.
const InvalidIndex = uint32(math.MaxUint32)

// Entity identifies one logical record in a world. The Index is recycled
// after a despawn; the Generation is bumped on every recycle so stale
// handles to the same index can be detected and rejected.
type Entity struct {
	Index      uint32 `json:"index"`
	Generation uint32 `json:"generation"`
}

// Nil is the zero Entity. Generations start at 1, so Nil never resolves.
var Nil = Entity{}

func (e Entity) IsNil() bool {
	return e.Generation == 0
}

func (e Entity) String() string {
	return fmt.Sprintf("%dv%d", e.Index, e.Generation)
}

type EntityStateResponse []EntityStateElement

// EntityStateElement is the debug/inspection shape of a single entity:
// its identity plus every component value encoded as raw JSON.
type EntityStateElement struct {
	Entity     Entity                     `json:"entity"`
	Components map[string]json.RawMessage `json:"components"`
}
