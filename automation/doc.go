// Package automation implements the timed action scheduler driving the bot's
// delayed messages and game state transitions.
//
// The scheduler keeps pending actions ordered by when they were scheduled and
// advances them only through explicit Tick calls. It is not safe for
// concurrent use: one room loop owns one Scheduler, and all Schedule, Cancel,
// and Tick calls happen on that loop. Effects run synchronously inside Tick;
// a panicking effect is logged and isolated so the remaining due actions in
// the same tick still fire.
package automation
