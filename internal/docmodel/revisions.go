package docmodel

import "github.com/beevik/etree"

// ClampedOutlineWarnings returns one message per paragraph whose explicit
// outline level fell outside [0,8] and was therefore treated as a
// non-heading paragraph during the last Paragraphs()/Structure() call.
func (d *Document) ClampedOutlineWarnings() []string {
	return d.clampedOutlines
}

// HasTrackedChanges reports whether the body contains any unresolved
// w:ins/w:del tracked-change markers.
func (d *Document) HasTrackedChanges() bool {
	body := d.body()
	if body == nil {
		return false
	}
	return len(descendants(body, "w", "ins")) > 0 || len(descendants(body, "w", "del")) > 0
}

// AcceptAllRevisions accepts every tracked insertion (unwraps w:ins,
// keeping its content) and every tracked deletion (removes w:del and its
// content outright), matching Word's "accept all changes" behaviour.
func (d *Document) AcceptAllRevisions() {
	body := d.body()
	if body == nil {
		return
	}
	unwrapAll(body, "ins")
	removeAll(body, "del")
}

// RejectAllRevisions rejects every tracked insertion (removes w:ins and
// its content) and restores every tracked deletion (unwraps w:del,
// converting its w:delText runs back to plain w:t), matching Word's
// "reject all changes" behaviour.
func (d *Document) RejectAllRevisions() {
	body := d.body()
	if body == nil {
		return
	}
	removeAll(body, "ins")
	restoreDeletions(body)
}

func unwrapAll(root *etree.Element, local string) {
	for _, el := range findAll(root, "w", local) {
		parent := el.Parent()
		if parent == nil {
			continue
		}
		idx := childIndex(parent, el)
		for i, child := range el.ChildElements() {
			parent.InsertChildAt(idx+i, child)
		}
		parent.RemoveChild(el)
	}
}

func removeAll(root *etree.Element, local string) {
	for _, el := range findAll(root, "w", local) {
		if parent := el.Parent(); parent != nil {
			parent.RemoveChild(el)
		}
	}
}

func restoreDeletions(root *etree.Element) {
	for _, del := range findAll(root, "w", "del") {
		for _, run := range del.ChildElements() {
			for _, delText := range run.ChildElements() {
				if delText.Space == "w" && delText.Tag == "delText" {
					delText.Tag = "t"
				}
			}
		}
	}
	unwrapAll(root, "del")
}

// findAll recursively finds every descendant element matching
// prefix/local, depth-first, re-collected fresh each call since mutation
// during the walk invalidates any cached traversal.
func findAll(root *etree.Element, prefix, local string) []*etree.Element {
	return descendants(root, prefix, local)
}

func childIndex(parent, child *etree.Element) int {
	for i, c := range parent.Child {
		if e, ok := c.(*etree.Element); ok && e == child {
			return i
		}
	}
	return len(parent.Child)
}
