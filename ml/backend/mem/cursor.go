// cursor.go - Cursor ueber Dataset-Elemente
// Enthält: sliceCursor, takeCursor, skipCursor, batchCursor, prefetchCursor.
// Jeder Cursor liefert Elemente in Reihenfolge und meldet das Ende mit einem
// in ml.ErrOutOfRange eingewickelten Fehler; nach dem Ende liefert jeder
// weitere Aufruf denselben Fehler. stop gibt die Ressourcen des Cursors frei
// (insbesondere den Prefetch-Produzenten) und wird an innere Cursor
// durchgereicht; nach stop darf next nicht mehr aufgerufen werden.
package mem

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/7blacky7/tensorbind/ml"
)

type cursor interface {
	next() ([]*Tensor, error)
	stop()
}

func errEndOfSequence() error {
	return fmt.Errorf("%w: end of sequence", ml.ErrOutOfRange)
}

// sliceCursor laeuft ueber vorab materialisierte Elemente.
type sliceCursor struct {
	elems [][]*Tensor
	i     int
}

func (c *sliceCursor) next() ([]*Tensor, error) {
	if c.i >= len(c.elems) {
		return nil, errEndOfSequence()
	}
	elem := c.elems[c.i]
	c.i++
	return elem, nil
}

func (c *sliceCursor) stop() {}

// takeCursor begrenzt den inneren Cursor auf remaining Elemente.
// remaining == -1 bedeutet unbegrenzt.
type takeCursor struct {
	in        cursor
	remaining int64
}

func (c *takeCursor) next() ([]*Tensor, error) {
	if c.remaining == 0 {
		// Der innere Cursor wird nicht weiter gelesen; seine Ressourcen
		// werden hier freigegeben
		c.in.stop()
		return nil, errEndOfSequence()
	}
	elem, err := c.in.next()
	if err != nil {
		return nil, err
	}
	if c.remaining > 0 {
		c.remaining--
	}
	return elem, nil
}

func (c *takeCursor) stop() {
	c.in.stop()
}

// skipCursor verwirft die ersten toSkip Elemente des inneren Cursors.
type skipCursor struct {
	in     cursor
	toSkip int64
}

func (c *skipCursor) next() ([]*Tensor, error) {
	for c.toSkip > 0 {
		if _, err := c.in.next(); err != nil {
			return nil, err
		}
		c.toSkip--
	}
	return c.in.next()
}

func (c *skipCursor) stop() {
	c.in.stop()
}

// batchCursor gruppiert bis zu size aufeinanderfolgende Elemente und stapelt
// sie komponentenweise entlang einer neuen fuehrenden Dimension. Der letzte
// Batch darf kleiner sein; nur das Sequenzende schliesst ihn ab, jeder andere
// Fehler des inneren Cursors wird sofort weitergereicht.
type batchCursor struct {
	in   cursor
	size int64
	done bool
}

func (c *batchCursor) next() ([]*Tensor, error) {
	if c.done {
		return nil, errEndOfSequence()
	}

	var rows [][]*Tensor
	for int64(len(rows)) < c.size {
		elem, err := c.in.next()
		if err != nil {
			if !errors.Is(err, ml.ErrOutOfRange) {
				return nil, err
			}
			c.done = true
			if len(rows) > 0 {
				break
			}
			return nil, err
		}
		rows = append(rows, elem)
	}

	batch := make([]*Tensor, len(rows[0]))
	for j := range batch {
		column := make([]*Tensor, len(rows))
		for i, row := range rows {
			column[i] = row[j]
		}
		batch[j] = stack(column)
	}
	return batch, nil
}

func (c *batchCursor) stop() {
	c.in.stop()
}

// fetchResult transportiert ein Element oder den Abschlussfehler.
type fetchResult struct {
	elems []*Tensor
	err   error
}

// prefetchCursor produziert Elemente des inneren Cursors in einer eigenen
// Goroutine vor; der Kanal puffert hoechstens depth Elemente. Der Produzent
// endet mit dem ersten Fehler (regulaer: Ende der Sequenz) oder sobald stop
// den done-Kanal schliesst, damit ein vorzeitig aufgegebener Cursor keine
// blockierte Goroutine zuruecklaesst.
type prefetchCursor struct {
	ch   chan fetchResult
	done chan struct{}
	g    *errgroup.Group
	once sync.Once
	err  error
}

func newPrefetchCursor(in cursor, depth int64) cursor {
	c := &prefetchCursor{
		ch:   make(chan fetchResult, depth),
		done: make(chan struct{}),
		g:    &errgroup.Group{},
	}

	c.g.Go(func() error {
		defer in.stop()
		for {
			elems, err := in.next()
			select {
			case c.ch <- fetchResult{elems: elems, err: err}:
			case <-c.done:
				return nil
			}
			if err != nil {
				return nil
			}
		}
	})

	return c
}

func (c *prefetchCursor) next() ([]*Tensor, error) {
	if c.err != nil {
		return nil, c.err
	}

	r := <-c.ch
	if r.err != nil {
		c.err = r.err
		c.stop()
		return nil, r.err
	}
	return r.elems, nil
}

// stop beendet den Produzenten und wartet auf sein Ende.
func (c *prefetchCursor) stop() {
	c.once.Do(func() {
		close(c.done)
		c.g.Wait() //nolint:errcheck
	})
}
