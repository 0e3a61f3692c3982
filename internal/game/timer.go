package game

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/sketchroom/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

const TickInterval = time.Second

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates the tickers driving room countdowns. Tests swap in a
// manual clock.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct {
	t *time.Ticker
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

func (rt realTicker) C() <-chan time.Time { return rt.t.C }
func (rt realTicker) Stop()               { rt.t.Stop() }

// countdown is the single scheduled task a room owns. Its ticker channel is
// read only by the room loop, so once stopped no tick can reach the room.
type countdown struct {
	phase   internal.GamePhase
	total   int
	elapsed int
	ticker  Ticker
}

func (c *countdown) remaining() int {
	return max(c.total-c.elapsed, 0)
}

func seconds(d time.Duration) int {
	return max(int(d/time.Second), 1)
}

// startCountdown replaces any running countdown.
func (r *Room) startCountdown(phase internal.GamePhase, total int) {
	r.stopCountdown()

	r.timer = &countdown{
		phase:  phase,
		total:  total,
		ticker: r.clock.NewTicker(TickInterval),
	}
	log.Debug().Str("room", r.id).Str("phase", string(phase)).Int("seconds", total).
		Msg("[startCountdown] countdown started")

	r.broadcast(internal.TypeCountdown, internal.CountdownData{Phase: phase, SecondsRemaining: total})
}

// stopCountdown is the only place a countdown is torn down. It runs on every
// state exit and when the room closes.
func (r *Room) stopCountdown() {
	if r.timer == nil {
		return
	}
	r.timer.ticker.Stop()
	log.Debug().Str("room", r.id).Str("phase", string(r.timer.phase)).Int("remaining", r.timer.remaining()).
		Msg("[stopCountdown] countdown stopped")
	r.timer = nil
}

// tickC returns the active countdown channel, nil when idle. Receiving from
// a nil channel blocks forever, which parks that select case.
func (r *Room) tickC() <-chan time.Time {
	if r.timer == nil {
		return nil
	}
	return r.timer.ticker.C()
}

// onTick advances the active countdown by one second and fires the phase's
// terminal transition when it reaches zero.
func (r *Room) onTick() {
	if r.timer == nil {
		return
	}
	if r.timer.phase != r.phase {
		log.Warn().Str("room", r.id).Str("timer_phase", string(r.timer.phase)).Str("phase", string(r.phase)).
			Msg("[onTick] countdown does not match phase, stopping it")
		r.stopCountdown()
		return
	}

	r.timer.elapsed++
	left := r.timer.remaining()

	switch r.phase {
	case internal.PhaseDrawing:
		r.elapsedTurnTime = r.timer.elapsed
		r.revealHintIfDue()
		r.broadcast(internal.TypeCountdown, internal.CountdownData{Phase: r.phase, SecondsRemaining: left})
		if left == 0 {
			r.endTurn()
		}
	case internal.PhaseWordSelection:
		r.broadcast(internal.TypeCountdown, internal.CountdownData{Phase: r.phase, SecondsRemaining: left})
		if left == 0 {
			r.autoPickWord()
		}
	case internal.PhaseTurnEnd:
		r.broadcast(internal.TypeCountdown, internal.CountdownData{Phase: r.phase, SecondsRemaining: left})
		if left == 0 {
			r.finishTurn()
		}
	case internal.PhaseSessionEnd:
		r.broadcast(internal.TypeCountdown, internal.CountdownData{Phase: r.phase, SecondsRemaining: left})
		if left == 0 {
			r.finishSession()
		}
	case internal.PhaseLobby:
		log.Warn().Str("room", r.id).Msg("[onTick] countdown running in lobby, stopping it")
		r.stopCountdown()
	default:
		log.Error().Str("room", r.id).Str("phase", string(r.phase)).Msg("[onTick] unknown phase")
		r.stopCountdown()
	}
}

// revealHintIfDue discloses one more letter of the word when the schedule
// says so.
func (r *Room) revealHintIfDue() {
	if !DueHint(r.elapsedTurnTime, r.settings.TurnTime, r.wordChosen, r.settings.NumberOfHints, r.hintsRevealed) {
		return
	}

	idx, ok := PickHint(r.wordChosen, r.hintsRevealed, r.rng)
	if !ok {
		return
	}
	r.hintsRevealed = append(r.hintsRevealed, idx)

	log.Debug().Str("room", r.id).Ints("hints", r.hintsRevealed).Int("elapsed", r.elapsedTurnTime).
		Msg("[revealHintIfDue] hint revealed")

	r.broadcast(internal.TypeHintRevealed, r.hintData())
}
