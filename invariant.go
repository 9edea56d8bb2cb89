package btree

import "fmt"

// CheckInvariants walks the tree verifying the structural invariants any
// correctly built tree must hold: every non-root node's occupancy falls
// within [minLen, maxLen], every internal separator key matches its
// child's maxKey, keys within a node are strictly ordered, and every
// leaf sits at the same depth. It exists for tests to assert on, not for
// production call sites.
func (t *BTree[T]) CheckInvariants() error {
	_, err := checkNode[T](t.root, true, t.cmp)
	return err
}

func checkNode[T any](n node[T], isRoot bool, cmp compareFunc[T]) (int, error) {
	switch nd := n.(type) {
	case *leafNode[T]:
		if err := checkOccupancy(nd.len, isRoot); err != nil {
			return 0, err
		}
		for i := 1; i < nd.len; i++ {
			if cmp(nd.keys[i-1], nd.keys[i]) >= 0 {
				return 0, fmt.Errorf("btree: leaf keys out of order at index %d", i)
			}
		}
		return 0, nil
	case *internalNode[T]:
		if err := checkOccupancy(nd.len, isRoot); err != nil {
			return 0, err
		}
		for i := 1; i < nd.len; i++ {
			if cmp(nd.keys[i-1], nd.keys[i]) >= 0 {
				return 0, fmt.Errorf("btree: internal keys out of order at index %d", i)
			}
		}
		depth := -1
		for i := 0; i < nd.len; i++ {
			child := nd.children[i]
			if cmp(child.maxKey(), nd.keys[i]) != 0 {
				return 0, fmt.Errorf("btree: separator key at index %d does not match child's maxKey", i)
			}
			childDepth, err := checkNode[T](child, false, cmp)
			if err != nil {
				return 0, err
			}
			if depth == -1 {
				depth = childDepth
			} else if depth != childDepth {
				return 0, fmt.Errorf("btree: leaves at unequal depth")
			}
		}
		return depth + 1, nil
	default:
		return 0, fmt.Errorf("btree: unknown node type %T", n)
	}
}

func checkOccupancy(occupancy int, isRoot bool) error {
	if occupancy > maxLen {
		return fmt.Errorf("btree: node occupancy %d exceeds maxLen %d", occupancy, maxLen)
	}
	if !isRoot && occupancy < minLen {
		return fmt.Errorf("btree: non-root node occupancy %d below minLen %d", occupancy, minLen)
	}
	return nil
}
