package avatar

import "math"

// MoveTo starts the avatar walking along path (which must already exclude
// the current cell) with pending to run on arrival. A Sitting avatar
// cannot start movement. Starting movement while Emoting implicitly
// cancels the emote. If path is empty, the pending action (if any) is
// evaluated immediately by the caller via Arrive — MoveTo itself only
// sets state.
func (a *Avatar) MoveTo(path []Point, pending DeferredAction) error {
	if a.State == Sitting {
		return errSitting
	}
	a.CancelEmote()
	a.Path = path
	a.ActionAfterPath = pending
	if len(path) == 0 {
		// Target was the current cell: no walking to do, but a pending
		// action (Sit/Portal) still fires. Caller inspects ActionAfterPath
		// and calls Arrive.
		return nil
	}
	a.State = Walking
	a.Direction = facingToward(a.X, a.Y, float64(path[0].X), float64(path[0].Y))
	return nil
}

// errSitting is returned by MoveTo when the avatar is currently seated.
var errSitting = sittingError{}

type sittingError struct{}

func (sittingError) Error() string { return "avatar is sitting" }

// IsSittingError reports whether err is the "cannot move while sitting"
// sentinel, so the Room Kernel can map it to a typed ActionFailed without
// string-matching.
func IsSittingError(err error) bool {
	_, ok := err.(sittingError)
	return ok
}

// TickResult reports what changed during one Tick, so the caller only
// emits an AvatarUpdate when something observable actually moved.
type TickResult struct {
	Changed bool
	Arrived bool // path exhausted this tick; ActionAfterPath is ready
	EmoteExpired bool
}

// Tick advances a Walking avatar by speed*dt along its path, and expires
// an active Emote whose window has elapsed. now is a monotonic seconds
// clock supplied by the caller (kept out of this package so it stays
// deterministic and testable).
func (a *Avatar) Tick(dt, now float64) TickResult {
	var result TickResult

	if a.State == Emoting && now >= a.EmoteExpiry {
		a.CancelEmote()
		if len(a.Path) > 0 {
			a.State = Walking
		} else {
			a.State = Idle
		}
		result.Changed = true
		result.EmoteExpired = true
	}

	if a.State != Walking || len(a.Path) == 0 {
		return result
	}

	moveAmount := a.Speed * dt
	for moveAmount > 0 && len(a.Path) > 0 {
		next := a.Path[0]
		dx := float64(next.X) - a.X
		dy := float64(next.Y) - a.Y
		dist := math.Hypot(dx, dy)

		a.Direction = facingToward(a.X, a.Y, float64(next.X), float64(next.Y))

		if dist <= moveAmount || dist == 0 {
			a.X, a.Y = float64(next.X), float64(next.Y)
			moveAmount -= dist
			a.Path = a.Path[1:]
			result.Changed = true
			continue
		}

		ratio := moveAmount / dist
		a.X += dx * ratio
		a.Y += dy * ratio
		result.Changed = true
		moveAmount = 0
	}

	if len(a.Path) == 0 {
		result.Arrived = true
		if a.ActionAfterPath == nil {
			a.State = Idle
		}
		// Sit/Portal dispatch is the Room Kernel's job (it must recheck
		// seat/room state); the avatar stays Walking momentarily so the
		// kernel can see "arrived, action pending" before it resolves.
	}

	return result
}

// SnapSit transitions a Walking/Idle avatar to Sitting on a confirmed
// seat. The Room Kernel calls this only after re-validating the seat is
// free and still exists.
func (a *Avatar) SnapSit(seatX, seatY int, seatZ float64, facing int, instanceID string) {
	a.X, a.Y = float64(seatX), float64(seatY)
	a.Z = seatZ
	a.Direction = facing
	a.State = Sitting
	a.SittingOnInstanceID = instanceID
	a.Path = nil
	a.ActionAfterPath = nil
}

// AbandonDeferredAction clears a pending action and returns the avatar to
// Idle, used when an arrival-time recheck fails (e.g. seat taken while
// pathing).
func (a *Avatar) AbandonDeferredAction() {
	a.ActionAfterPath = nil
	a.State = Idle
}

// Stand transitions a Sitting avatar back to Idle at defaultZ. The Room
// Kernel is responsible for finding a walkable relocation cell adjacent
// to the seat and calling RelocateTo; if none exists the avatar simply
// keeps its current (x,y) per spec, which Stand alone already leaves
// intact.
func (a *Avatar) Stand(defaultZ float64) error {
	if a.State != Sitting {
		return errNotSitting
	}
	a.Z = defaultZ
	a.SittingOnInstanceID = ""
	a.State = Idle
	return nil
}

var errNotSitting = notSittingError{}

type notSittingError struct{}

func (notSittingError) Error() string { return "avatar is not sitting" }

// IsNotSittingError reports whether err is Stand's "not sitting" sentinel.
func IsNotSittingError(err error) bool {
	_, ok := err.(notSittingError)
	return ok
}

// RelocateTo moves a standing avatar to (x,y) without affecting state;
// used after Stand finds (or fails to find) a walkable adjacent cell.
func (a *Avatar) RelocateTo(x, y int) {
	a.X, a.Y = float64(x), float64(y)
}

// Emote transitions to Emoting if the avatar is not Sitting and not
// already Emoting.
func (a *Avatar) Emote(id string, durationSeconds, now float64) error {
	if a.State == Sitting {
		return errSitting
	}
	if a.State == Emoting {
		return errAlreadyEmoting
	}
	a.EmoteID = id
	a.EmoteExpiry = now + durationSeconds
	a.State = Emoting
	return nil
}

var errAlreadyEmoting = alreadyEmotingError{}

type alreadyEmotingError struct{}

func (alreadyEmotingError) Error() string { return "avatar is already emoting" }

// IsAlreadyEmotingError reports whether err is Emote's "already emoting"
// sentinel.
func IsAlreadyEmotingError(err error) bool {
	_, ok := err.(alreadyEmotingError)
	return ok
}

// PrepareRoomChange resets all transient per-room state and relocates the
// avatar to the arrival cell in the new room. Called by the World
// Director around Leave/Join, for both Portal arrivals and explicit
// ChangeRoom intents.
func (a *Avatar) PrepareRoomChange(targetRoomID string, arriveX, arriveY int, defaultZ float64) {
	a.CancelEmote()
	a.Path = nil
	a.ActionAfterPath = nil
	a.SittingOnInstanceID = ""
	a.Z = defaultZ
	a.X, a.Y = float64(arriveX), float64(arriveY)
	a.RoomID = targetRoomID
	a.State = Idle
}
