// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package rounds is the round coordinator: top-K promotion into round 2 and
winner computation at session completion.

# Top-K

	k = min(5, groupSize + 2)

Round-1 candidates are ordered by like count descending with insertion order
as the stable tie-break; the first k are copied into round 2 with like counts
reset to zero and all descriptive metadata carried over.

# Winner scoring

The final ranking sums round-1 and round-2 like counts per candidate, so a
strong round-1 showing carries into the final. Ties break by round-2 sort
order (first encountered). Both policies are deliberate and covered by tests.

# State machine

	open → round1 → round2 → completed

TransitionToRound2 requires round 1; CompleteSession requires round 2 and a
non-empty round-2 field. Violations return ErrInvalidTransition without
mutating anything.
*/
package rounds
