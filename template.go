package shoal

// Frame tag directions as written by Aseprite.
const (
	DirectionForward         = "forward"
	DirectionReverse         = "reverse"
	DirectionPingPong        = "pingpong"
	DirectionPingPongReverse = "pingpong_reverse"
)

// TemplateKey is the compound identity of an animation template: the sheet
// it was derived from and the tag name. Keys never collide across sheets.
type TemplateKey struct {
	Sheet string
	Tag   string
}

// String returns the template id, "sheet/tag".
func (k TemplateKey) String() string {
	return k.Sheet + "/" + k.Tag
}

// AnimationFrame is one step of an animation template.
type AnimationFrame struct {
	SpriteID string
	Duration int // milliseconds
}

// Seconds returns the frame duration in seconds.
func (f AnimationFrame) Seconds() float64 {
	return float64(f.Duration) / 1000
}

// AnimationTemplate is an immutable, reusable animation description.
// Players reference templates; templates never reference players.
type AnimationTemplate struct {
	ID      string
	Key     TemplateKey
	SheetID string
	Frames  []AnimationFrame
	// TotalDuration is the sum of the frame durations in seconds.
	TotalDuration float64

	// sheet is the sheet the frames were sliced from. A reload registers a
	// new sheet; players holding this template keep drawing from this one.
	sheet *SpriteSheet
}

// AnimationTemplates derives one template per frame tag. See
// DeriveAnimationTemplates.
func (s *SpriteSheet) AnimationTemplates() (map[string]*AnimationTemplate, error) {
	return DeriveAnimationTemplates(s)
}

// DeriveAnimationTemplates slices the sheet's sprites by each frame tag's
// inclusive [from, to] range and returns the templates keyed by tag name.
// Durations are summed by sprite id rather than by slice position.
func DeriveAnimationTemplates(sheet *SpriteSheet) (map[string]*AnimationTemplate, error) {
	out := make(map[string]*AnimationTemplate, len(sheet.Meta.FrameTags))
	count := sheet.Len()
	for _, tag := range sheet.Meta.FrameTags {
		if tag.From < 0 || tag.To >= count || tag.To < tag.From {
			return nil, &MissingTagRangeError{
				Sheet: sheet.ID, Tag: tag.Name, From: tag.From, To: tag.To, Count: count,
			}
		}

		order := tagOrder(tag)
		frames := make([]AnimationFrame, 0, len(order))
		totalMs := 0
		for _, i := range order {
			sp := sheet.sprites[i]
			frames = append(frames, AnimationFrame{SpriteID: sp.ID, Duration: sp.Duration})
			byID, _ := sheet.Sprite(sp.ID)
			totalMs += byID.Duration
		}

		key := TemplateKey{Sheet: sheet.ID, Tag: tag.Name}
		out[tag.Name] = &AnimationTemplate{
			ID:            key.String(),
			Key:           key,
			SheetID:       sheet.ID,
			Frames:        frames,
			TotalDuration: float64(totalMs) / 1000,
			sheet:         sheet,
		}
	}
	return out, nil
}

// tagOrder returns the sprite indices a tag plays, honouring its direction.
func tagOrder(tag FrameTag) []int {
	n := tag.To - tag.From + 1
	fwd := make([]int, n)
	for i := range fwd {
		fwd[i] = tag.From + i
	}
	rev := make([]int, n)
	for i := range rev {
		rev[i] = tag.To - i
	}

	switch tag.Direction {
	case DirectionReverse:
		return rev
	case DirectionPingPong:
		// Interior frames on the way back; the endpoints are not repeated.
		return append(fwd, rev[1:max(n-1, 1)]...)
	case DirectionPingPongReverse:
		return append(rev, fwd[1:max(n-1, 1)]...)
	default:
		return fwd
	}
}
