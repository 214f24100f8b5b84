// Package gameserver runs duels: it opens them, gathers each turn's choices
// through a Prompter, resolves them in speed order against storage, and
// narrates the results to a Sink. Console is a line-oriented front end that
// exercises the whole flow without a chat platform.
package gameserver
