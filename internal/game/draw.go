package game

import (
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
)

// =============================================================================
// DRAWING SYSTEM
// =============================================================================

// updateDrawing stores the drawer's canvas and relays it to the viewers.
// The blob is not interpreted.
func (r *Room) updateDrawing(playerID string, blob internal.DrawingState) error {
	if !r.isDrawer(playerID) {
		return internal.ErrNotAllowed
	}
	if r.phase != internal.PhaseDrawing {
		log.Debug().Str("room", r.id).Str("phase", string(r.phase)).Msg("[updateDrawing] not drawing, ignored")
		return nil
	}

	r.drawing = slices.Clone(blob)
	r.broadcastExcept(playerID, internal.TypeDrawingUpdate, r.drawing)
	return nil
}

func (r *Room) clearDrawing(playerID string) error {
	if !r.isDrawer(playerID) {
		return internal.ErrNotAllowed
	}
	if r.phase != internal.PhaseDrawing {
		return nil
	}

	r.drawing = nil
	r.broadcastExcept(playerID, internal.TypeCanvasReset, nil)
	return nil
}
