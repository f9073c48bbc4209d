package pathway

// PointRef names one point of a line.
type PointRef struct {
	LineID string `json:"lineId"`
	Index  int    `json:"index"`
	Target string `json:"target"` // The reference the point lost
}

// Changes is what a mutation hands to Propagate: the elements whose own
// geometry changed, plus any points demoted to free points on the way.
type Changes struct {
	Elements []string   `json:"elements"`
	Demoted  []PointRef `json:"demoted,omitempty"`
}

func (c *Changes) add(ids ...string) {
	for _, id := range ids {
		if !c.Has(id) {
			c.Elements = append(c.Elements, id)
		}
	}
}

// Has reports whether id is among the changed elements.
func (c Changes) Has(id string) bool {
	for _, e := range c.Elements {
		if e == id {
			return true
		}
	}
	return false
}

// Merge combines two change lists.
func (c Changes) Merge(o Changes) Changes {
	out := Changes{
		Elements: append([]string(nil), c.Elements...),
		Demoted:  append(append([]PointRef(nil), c.Demoted...), o.Demoted...),
	}
	out.add(o.Elements...)
	return out
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Elements) == 0 && len(c.Demoted) == 0
}
