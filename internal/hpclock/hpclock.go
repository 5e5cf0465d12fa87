// Package hpclock converts wall-clock deltas into HP drain and penalties.
// Every function is pure; callers supply both timestamps.
package hpclock

import "time"

// Penalty percentages applied by judge verdicts
const (
	InvalidPenaltyPercent = 20
	CounterPenaltyPercent = 15
)

// Drain returns whole seconds elapsed since turnStartedAt, floored at zero.
func Drain(turnStartedAt, now time.Time) int {
	d := now.Sub(turnStartedAt)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// Penalty returns floor(maxHP * percent / 100).
func Penalty(maxHP, percent int) int {
	if maxHP <= 0 || percent <= 0 {
		return 0
	}
	return maxHP * percent / 100
}

// Subtract removes amount from hp without going below zero.
func Subtract(hp, amount int) int {
	if amount >= hp {
		return 0
	}
	return hp - amount
}

// Live returns the HP a turn holder would have if they acted at now.
func Live(hp int, turnStartedAt, now time.Time) int {
	return Subtract(hp, Drain(turnStartedAt, now))
}
