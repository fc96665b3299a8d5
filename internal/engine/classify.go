package engine

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/bamsammich/fileops/internal/event"
	"github.com/bamsammich/fileops/internal/platform"
)

type outcome int

const (
	outcomeFatal outcome = iota
	outcomeRecovered
)

// classifier turns a failed native call into a typed error, or clears a
// protected destination so the attempt can be retried. It lives for one
// request and caches the destination attributes between checks.
type classifier struct {
	eng      *Engine
	req      *Request
	src, dst string
	tx       uintptr

	dstAttrs   platform.Attributes
	dstErr     error
	dstQueried bool
}

func (c *classifier) destination() (platform.Attributes, error) {
	if !c.dstQueried {
		c.dstAttrs, c.dstErr = c.eng.native.Attributes(c.tx, c.dst)
		c.dstQueried = true
	}
	return c.dstAttrs, c.dstErr
}

func (c *classifier) invalidate() { c.dstQueried = false }

func (c *classifier) classify(nerr error) (outcome, error) {
	code := platform.CodeOf(nerr)
	switch code {
	case platform.ErrorFileNotFound, platform.ErrorPathNotFound, platform.ErrorNotReady:
		return outcomeFatal, c.notFound(nerr)
	case platform.ErrorFileExists, platform.ErrorAlreadyExists:
		if c.req.Move == nil || !c.req.Move.Has(MoveReplaceExisting) {
			return outcomeFatal, &AlreadyExistsError{Path: c.dst, Err: nerr}
		}
		return outcomeFatal, c.diagnose(nerr)
	case platform.ErrorAccessDenied:
		return c.accessDenied(nerr)
	}
	return outcomeFatal, c.diagnose(nerr)
}

// notFound names the missing side: the source first, then the directory
// that should hold the destination.
func (c *classifier) notFound(nerr error) error {
	if _, err := c.eng.native.Attributes(c.tx, c.src); errors.Is(err, fs.ErrNotExist) {
		return &NotFoundError{Path: c.src, Err: nerr}
	}
	parent := filepath.Dir(c.dst)
	if _, err := c.eng.native.Attributes(c.tx, parent); errors.Is(err, fs.ErrNotExist) {
		return &NotFoundError{Path: parent, Err: nerr}
	}
	return &NotFoundError{Path: c.src, Err: nerr}
}

// diagnose is the fallback when the code alone does not explain the failure.
func (c *classifier) diagnose(nerr error) error {
	if attrs, err := c.destination(); err == nil && attrs.IsDir() {
		if srcAttrs, serr := c.eng.native.Attributes(c.tx, c.src); serr == nil && !srcAttrs.IsDir() {
			return &TypeConflictError{Path: c.dst, IsDir: true, Err: nerr}
		}
	}
	if c.req.Move != nil {
		if _, err := c.eng.native.Attributes(c.tx, c.src); errors.Is(err, fs.ErrNotExist) {
			return &NotFoundError{Path: c.src, Err: nerr}
		}
	}
	if err := c.checkSourceReadable(); err != nil {
		switch platform.CodeOf(err) {
		case platform.ErrorAccessDenied:
			return &UnauthorizedError{Path: c.src, Err: err}
		case platform.ErrorFileNotFound, platform.ErrorPathNotFound:
			return &NotFoundError{Path: c.src, Err: err}
		default:
			return &IOError{Path: c.src, Source: c.src, Destination: c.dst, Code: platform.CodeOf(err), Err: err}
		}
	}
	return &IOError{Source: c.src, Destination: c.dst, Code: platform.CodeOf(nerr), Err: nerr}
}

// checkSourceReadable opens the source for reading and closes it again.
func (c *classifier) checkSourceReadable() error {
	attrs, err := c.eng.native.Attributes(c.tx, c.src)
	if err == nil && attrs.IsDir() {
		return nil
	}
	h, err := c.eng.native.OpenRead(c.tx, c.src)
	if err != nil {
		return err
	}
	defer h.Close()
	return nil
}

func (c *classifier) accessDenied(nerr error) (outcome, error) {
	attrs, err := c.destination()
	if err != nil {
		return outcomeFatal, c.diagnose(nerr)
	}
	if attrs.Protected() && !attrs.IsDir() {
		if !c.req.recoveryAllowed() {
			return outcomeFatal, &ReadOnlyTargetError{Path: c.dst, Attributes: attrs, Err: nerr}
		}
		if err := c.eng.native.SetAttributes(c.tx, c.dst, platform.AttrNormal); err != nil {
			return outcomeFatal, &IOError{
				Path: c.dst, Source: c.src, Destination: c.dst,
				Code: platform.CodeOf(err), Err: err,
			}
		}
		c.invalidate()
		event.Send(c.eng.events, event.Event{
			Type:        event.AttributesReset,
			Source:      c.src,
			Destination: c.dst,
		})
		c.eng.log.Debug("cleared protected attributes", "dst", c.dst, "attrs", attrs)
		return outcomeRecovered, nil
	}
	srcAttrs, serr := c.eng.native.Attributes(c.tx, c.src)
	if serr == nil && srcAttrs.IsDir() != attrs.IsDir() {
		return outcomeFatal, &TypeConflictError{Path: c.dst, IsDir: attrs.IsDir(), Err: nerr}
	}
	return outcomeFatal, &UnauthorizedError{Path: c.dst, Err: nerr}
}
