// errors.go - Fehlerarten der Binding-Schicht
// Zwei Fehlerarten sind fuer Aufrufer von Bedeutung: ErrOutOfRange als
// regulaeres Schleifenende und ErrInvalidArgument als Vorbedingungsverletzung.
// Alle anderen Engine-Fehler werden unveraendert durchgereicht.
package ml

import "errors"

var (
	// ErrOutOfRange signalisiert das Ende einer Iteration. Dieser Fehler ist
	// erwartet und nicht fatal; Aufrufer behandeln ihn als Abbruchsignal.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidArgument signalisiert eine verletzte Vorbedingung. Der Fehler
	// ist vom Aufrufer zu beheben und wird nie intern wiederholt.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFailedPrecondition signalisiert eine Operation auf einer Ressource
	// im falschen Zustand, z.B. GetNext auf einem nie initialisierten Iterator.
	ErrFailedPrecondition = errors.New("failed precondition")
)
