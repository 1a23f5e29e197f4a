package shoal

import (
	"errors"
	"fmt"
)

// Sentinels matched by the concrete error types below through errors.Is.
var (
	ErrDuplicateSpriteID = errors.New("shoal: duplicate sprite id")
	ErrMissingTagRange   = errors.New("shoal: tag range out of bounds")
	ErrUnknownSheet      = errors.New("shoal: unknown sprite sheet")
	ErrUnknownSprite     = errors.New("shoal: unknown sprite")
	ErrMissingAnimation  = errors.New("shoal: missing required animation")
	ErrImageLoad         = errors.New("shoal: image load failed")
	// ErrInvalidSheetID rejects empty sheet ids and ids containing '/', the
	// separator in "sheet/tag" template ids.
	ErrInvalidSheetID    = errors.New("shoal: sheet id must not contain '/'")
)

// DuplicateSpriteIDError reports two raw atlas keys that collapse to the same
// sprite id once the file suffix is stripped.
type DuplicateSpriteIDError struct {
	Sheet     string
	ID        string
	FirstKey  string
	SecondKey string
}

func (e *DuplicateSpriteIDError) Error() string {
	return fmt.Sprintf("shoal: sheet %q: keys %q and %q both map to sprite id %q",
		e.Sheet, e.FirstKey, e.SecondKey, e.ID)
}

func (e *DuplicateSpriteIDError) Is(target error) bool { return target == ErrDuplicateSpriteID }

// MissingTagRangeError reports a frame tag whose [From, To] range does not fit
// the sheet's sprite list.
type MissingTagRangeError struct {
	Sheet string
	Tag   string
	From  int
	To    int
	Count int
}

func (e *MissingTagRangeError) Error() string {
	return fmt.Sprintf("shoal: sheet %q: tag %q range [%d, %d] invalid for %d sprites",
		e.Sheet, e.Tag, e.From, e.To, e.Count)
}

func (e *MissingTagRangeError) Is(target error) bool { return target == ErrMissingTagRange }

// UnknownSheetError is returned by draw calls naming a sheet that was never
// registered.
type UnknownSheetError struct {
	Sheet string
}

func (e *UnknownSheetError) Error() string {
	return fmt.Sprintf("shoal: no sprite sheet with id %q", e.Sheet)
}

func (e *UnknownSheetError) Is(target error) bool { return target == ErrUnknownSheet }

// UnknownSpriteError is returned by draw calls naming a sprite the sheet does
// not contain. Index is set (>= 0) for positional lookups.
type UnknownSpriteError struct {
	Sheet  string
	Sprite string
	Index  int
}

func (e *UnknownSpriteError) Error() string {
	if e.Sprite == "" {
		return fmt.Sprintf("shoal: sheet %q has no frame at index %d", e.Sheet, e.Index)
	}
	return fmt.Sprintf("shoal: sheet %q has no sprite with id %q", e.Sheet, e.Sprite)
}

func (e *UnknownSpriteError) Is(target error) bool { return target == ErrUnknownSprite }

// MissingAnimationError is returned by Entity.Init when a required clip's
// template is not in the catalog.
type MissingAnimationError struct {
	Entity   string
	Clip     string
	Template string
}

func (e *MissingAnimationError) Error() string {
	return fmt.Sprintf("shoal: entity %q: could not find %s animation %q",
		e.Entity, e.Clip, e.Template)
}

func (e *MissingAnimationError) Is(target error) bool { return target == ErrMissingAnimation }

// ImageLoadError wraps the failure to load or decode a sheet's backing image.
type ImageLoadError struct {
	Sheet string
	Path  string
	Err   error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("shoal: load image %q for sheet %q: %v", e.Path, e.Sheet, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

func (e *ImageLoadError) Is(target error) bool { return target == ErrImageLoad }
