package shoal

import "strings"

// catalog is the renderer's registry of sheets and templates. It is built
// during startup and replaced wholesale (copy-on-write) on reload, so the
// frame loop only ever reads a catalog that no one mutates.
type catalog struct {
	sheets    map[string]*SpriteSheet
	order     []string
	templates map[TemplateKey]*AnimationTemplate
	bySheet   map[string][]*AnimationTemplate
	// byName indexes templates by bare tag name. Tag names may repeat across
	// sheets; the most recently registered sheet wins.
	byName map[string]*AnimationTemplate
}

func newCatalog() *catalog {
	return &catalog{
		sheets:    make(map[string]*SpriteSheet),
		templates: make(map[TemplateKey]*AnimationTemplate),
		bySheet:   make(map[string][]*AnimationTemplate),
		byName:    make(map[string]*AnimationTemplate),
	}
}

// clone returns a copy whose maps can be mutated without affecting c.
// Sheets and templates are immutable and shared.
func (c *catalog) clone() *catalog {
	out := newCatalog()
	for k, v := range c.sheets {
		out.sheets[k] = v
	}
	out.order = append(out.order, c.order...)
	for k, v := range c.templates {
		out.templates[k] = v
	}
	for k, v := range c.bySheet {
		out.bySheet[k] = v
	}
	for k, v := range c.byName {
		out.byName[k] = v
	}
	return out
}

// putSheet stores the sheet and its templates, replacing any previous sheet
// with the same id. It returns the bare tag names that now shadow a template
// from another sheet.
func (c *catalog) putSheet(sheet *SpriteSheet, templates []*AnimationTemplate) []string {
	if _, exists := c.sheets[sheet.ID]; exists {
		for _, t := range c.bySheet[sheet.ID] {
			delete(c.templates, t.Key)
		}
	} else {
		c.order = append(c.order, sheet.ID)
	}
	c.sheets[sheet.ID] = sheet
	c.bySheet[sheet.ID] = templates
	for _, t := range templates {
		c.templates[t.Key] = t
	}

	var shadowed []string
	for _, t := range templates {
		if prev, ok := c.byName[t.Key.Tag]; ok && prev.SheetID != sheet.ID {
			shadowed = append(shadowed, t.Key.Tag)
		}
	}
	c.rebuildNames()
	return shadowed
}

// rebuildNames recomputes the bare-name index in registration order so the
// last registered sheet wins regardless of reload order.
func (c *catalog) rebuildNames() {
	clear(c.byName)
	for _, id := range c.order {
		for _, t := range c.bySheet[id] {
			c.byName[t.Key.Tag] = t
		}
	}
}

// lookup resolves a template id. The compound "sheet/tag" form is tried
// first, then the bare tag name.
func (c *catalog) lookup(id string) *AnimationTemplate {
	if sheet, tag, ok := strings.Cut(id, "/"); ok {
		if t, ok := c.templates[TemplateKey{Sheet: sheet, Tag: tag}]; ok {
			return t
		}
	}
	return c.byName[id]
}
