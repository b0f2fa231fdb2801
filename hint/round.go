// Copyright 2012 The Freetype-Go Authors. All rights reserved.
// Use of this source code is governed by your choice of either the
// FreeType License or the GNU General Public License version 2 (or
// any later version), both of which can be found in the LICENSE file.

package hint

import "math"

// round maps n onto the grid described by period/phase/threshold. Positive
// n is straightforward; the negative-n case reproduces an undocumented
// quirk of the reference rasterizer (see §9's open question on round()):
// magnitude is rounded as if positive, periods are added back in until the
// unsigned result is nonnegative, then the sign is reapplied.
func round(n, period, phase, threshold F26Dot6) F26Dot6 {
	if period == 0 {
		return n
	}
	neg := n < 0
	if neg {
		n = -n
	}
	i := int64(n - phase + threshold)
	p := int64(period)
	var periodCorrection int64
	for i < 0 {
		i += p
		periodCorrection++
	}
	newN := F26Dot6((i/p-periodCorrection)*p) + phase
	if n != 0 {
		for newN < 0 {
			newN += period
		}
	}
	if neg {
		return -newN
	}
	return newN
}

// roundState bundles the three values round() needs; it is the part of
// GraphicsState the RTHG/RTG/RTDG/RDTG/RUTG/ROFF/SROUND/S45ROUND family
// sets.
type roundState struct {
	period, phase, threshold F26Dot6
}

func (gs *GraphicsState) setRoundState(s roundState) {
	gs.RoundPeriod, gs.RoundPhase, gs.RoundThreshold = s.period, s.phase, s.threshold
}

func (gs *GraphicsState) round(n F26Dot6) F26Dot6 {
	return round(n, gs.RoundPeriod, gs.RoundPhase, gs.RoundThreshold)
}

var (
	roundStateRTHG = roundState{period: 1 << 6, phase: 1 << 5, threshold: 1 << 5}
	roundStateRTG  = roundState{period: 1 << 6, phase: 0, threshold: 1 << 5}
	roundStateRTDG = roundState{period: 1 << 5, phase: 0, threshold: 1 << 4}
	roundStateRDTG = roundState{period: 1 << 6, phase: 0, threshold: 0}
	roundStateRUTG = roundState{period: 1 << 6, phase: 0, threshold: (1 << 6) - 1}
	roundStateROFF = roundState{period: 1, phase: 0, threshold: 0}
)

// superRoundPeriods are the three base periods SROUND's top two bits select
// (half pixel, one pixel, two pixels); s45RoundPeriods are the same for
// S45ROUND, scaled by √2/2 per the "Set Round 45 Degrees" naming.
var superRoundPeriods = [3]F26Dot6{1 << 5, 1 << 6, 1 << 7}

var s45RoundPeriods = [3]F26Dot6{
	F26Dot6(math.Round(0.25 * math.Sqrt2 * 64)),
	F26Dot6(math.Round(0.5 * math.Sqrt2 * 64)),
	F26Dot6(math.Round(1.0 * math.Sqrt2 * 64)),
}

// decodeSuperRound turns a SROUND/S45ROUND operand byte into a roundState,
// per §4.4's bit layout.
func decodeSuperRound(n int32, periods [3]F26Dot6) (roundState, error) {
	sel := (n & sroundPeriodMask) >> sroundPeriodShift
	if sel == 3 {
		return roundState{}, &Error{Kind: ErrInvalidRoundState}
	}
	period := periods[sel]
	phaseSel := int64((n & sroundPhaseMask) >> sroundPhaseShift)
	phase := F26Dot6(int64(period) * phaseSel / 4)
	thSel := int64(n & sroundThreshold)
	var threshold F26Dot6
	if thSel == 0 {
		threshold = period - 1
	} else {
		threshold = F26Dot6(int64(period) * (thSel - 4) / 8)
	}
	return roundState{period: period, phase: phase, threshold: threshold}, nil
}
