package parjson

import "fmt"

// mergeChunks stitches the chunk trees into one document, left to right.
// trees[0] is built from the document start and its root collects the
// document value. The returned Value has no parent links left.
func mergeChunks(trees []*chunkTree, reports []*chunkReport) (Value, error) {
	acc := trees[0].root
	var tail container = acc
	if trees[0].tail != nil {
		tail = trees[0].tail
	}

	for ci := 1; ci < len(trees); ci++ {
		if reports != nil && reports[ci].items == 0 {
			continue
		}
		next, err := mergeOne(tail, trees[ci])
		if err != nil {
			return Value{}, newParseError(-1, ci, err.Error(), ErrGrammar)
		}
		tail = next
	}

	if acc.hasVirtual() || acc.size() != 1 {
		if acc.size() > 1 {
			return Value{}, newParseError(-1, -1, "found more than one root value", ErrMultipleRoots)
		}
		return Value{}, newParseError(-1, -1, "document has no root value", ErrGrammar)
	}
	root := acc.values[0].Take()
	acc.reset()
	detachParents(&root)
	return root, nil
}

// mergeOne appends tree's content to the open container chain ending at
// tail and returns the container the next chunk continues in.
//
// The chain of virtual wrappers at the front of tree is peeled down to the
// innermost one. Its children belong to tail; the children after the
// wrapper one level up belong to tail's parent, and so on until the chunk
// root is reached.
func mergeOne(tail container, tree *chunkTree) (container, error) {
	var cur container = tree.root
	for {
		first := firstChild(cur)
		if first == nil {
			break
		}
		c := containerOf(first)
		if c == nil || !c.isVirtual() {
			break
		}
		cur = c
	}

	r := tail
	innermost := true
	for {
		keys, values := cur.children()
		if !innermost && len(values) > 0 {
			// skip the wrapper we came up from
			values = values[1:]
			if keys != nil {
				keys = keys[1:]
			}
		}
		if cur != container(tree.root) && cur.kind() != r.kind() {
			return nil, fmt.Errorf("chunk closes %s where %s is open", cur.kind(), r.kind())
		}
		if len(values) > 0 {
			if len(keys) > 0 && keys[0].IsInvalid() {
				return nil, fmt.Errorf("continuation pair in the middle of %s", r.kind())
			}
			if err := r.appendChildren(keys, values); err != nil {
				return nil, err
			}
		}
		cur.reset()

		if cur == container(tree.root) {
			break
		}
		parent := cur.parentNode()
		if parent == nil {
			return nil, fmt.Errorf("virtual wrapper detached from chunk root")
		}
		r = r.parentNode()
		if r == nil {
			return nil, fmt.Errorf("chunk closes more containers than are open")
		}
		cur = parent
		innermost = false
	}

	if tree.tail != nil {
		return tree.tail, nil
	}
	return r, nil
}

// firstChild returns the leading child of c, or nil when c is empty
func firstChild(c container) *Value {
	if p, ok := c.(*PartialJSON); ok {
		return p.first()
	}
	_, values := c.children()
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}
