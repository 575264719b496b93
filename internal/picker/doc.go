// Package picker implements the button-driven directory picker.
//
// A Session owns one navigation loop: the current State, and an explicit
// bounded Stack of parent states pushed on every descent and popped on
// "..". Input arrives as discrete Events (confirm, next, previous, jump
// forward, jump back) and a session ends with either a selected path or
// the abort outcome produced by leaving the starting directory through its
// own "..".
//
// Allowed here:
// - listing construction and its capacity policy
// - cursor and scroll bookkeeping, stack discipline
// - the blocking Run loop over Input and Display collaborators
//
// Not allowed here:
// - terminal rendering, key decoding, or anything transfer related
package picker
