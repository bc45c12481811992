package scene

import "sort"

// Visual is one frame's description of a retained node: its identity,
// paint order, and a hash of every input that shapes its geometry.
// The engine emits visuals for whatever survived culling; it never
// rebuilds ops for nodes whose hash matched the previous frame.
type Visual struct {
	Key  Key
	Z    int
	Hash uint64
}

// Diff is the outcome of one reconcile pass. Keys in each list are
// sorted, so identical frames produce identical diffs.
type Diff struct {
	// ToCreate lists nodes that did not exist last frame.
	ToCreate []Key
	// ToUpdate lists nodes whose hash or Z changed.
	ToUpdate []Key
	// ToRemove lists nodes absent from this frame. Their storage is
	// already recycled; the keys are reported for backends that keep
	// per-node state.
	ToRemove []Key
}

// Empty reports whether the diff carries no changes.
func (d Diff) Empty() bool {
	return len(d.ToCreate) == 0 && len(d.ToUpdate) == 0 && len(d.ToRemove) == 0
}

// Stats contains cache statistics for monitoring.
type Stats struct {
	// Nodes is the current retained node count, excluding the overlay.
	Nodes int
	// Created is the number of nodes allocated over the cache lifetime.
	Created uint64
	// Updated is the number of nodes rebuilt because their inputs changed.
	Updated uint64
	// Removed is the number of nodes recycled after leaving the frame.
	Removed uint64
	// Reused is the number of nodes carried over without a rebuild.
	Reused uint64
}

// ReuseRate returns the fraction of retained decisions that avoided a
// rebuild (0.0 to 1.0).
func (s Stats) ReuseRate() float64 {
	total := s.Created + s.Updated + s.Reused
	if total == 0 {
		return 0
	}
	return float64(s.Reused) / float64(total)
}

// entry pairs a retained node with the hash it was last built from.
type entry struct {
	node  *Node
	hash  uint64
	stamp uint64
}

// Cache retains scene nodes across frames, keyed by stable entity
// identity. Reconcile diffs a frame's visuals against the retained
// set; the engine then rebuilds ops only for the created and updated
// keys and replays everything else untouched.
//
// Cache is not safe for concurrent use. The engine owns it and runs
// reconcile and rebuild on the frame goroutine.
type Cache struct {
	entries map[Key]*entry
	pool    *NodePool
	overlay *Node
	stamp   uint64

	order      []*Node
	orderStale bool

	created uint64
	updated uint64
	removed uint64
	reused  uint64
}

// NewCache creates an empty cache backed by the given pool. A nil
// pool gets a private one.
func NewCache(pool *NodePool) *Cache {
	if pool == nil {
		pool = NewNodePool(0)
	}
	return &Cache{
		entries: make(map[Key]*entry),
		pool:    pool,
	}
}

// Reconcile diffs the frame against the retained set. Nodes absent
// from the frame are recycled immediately. Duplicate keys within one
// frame keep their first occurrence; later duplicates are ignored.
func (c *Cache) Reconcile(frame []Visual) Diff {
	c.stamp++
	var diff Diff

	for _, v := range frame {
		e, ok := c.entries[v.Key]
		if !ok {
			n := c.pool.Get()
			n.Key = v.Key
			n.Z = v.Z
			c.entries[v.Key] = &entry{node: n, hash: v.Hash, stamp: c.stamp}
			diff.ToCreate = append(diff.ToCreate, v.Key)
			c.created++
			continue
		}
		if e.stamp == c.stamp {
			continue
		}
		e.stamp = c.stamp
		if e.hash != v.Hash || e.node.Z != v.Z {
			e.hash = v.Hash
			e.node.Z = v.Z
			diff.ToUpdate = append(diff.ToUpdate, v.Key)
			c.updated++
			continue
		}
		c.reused++
	}

	for k, e := range c.entries {
		if e.stamp == c.stamp {
			continue
		}
		diff.ToRemove = append(diff.ToRemove, k)
		c.pool.Put(e.node)
		delete(c.entries, k)
		c.removed++
	}

	sortKeys(diff.ToCreate)
	sortKeys(diff.ToUpdate)
	sortKeys(diff.ToRemove)
	c.orderStale = true
	return diff
}

// Rebuild clears a node's ops and invokes build to refill them.
// It reports false when the key is not retained, which means the
// caller skipped Reconcile or the node left the frame.
func (c *Cache) Rebuild(key Key, build func(*Node)) bool {
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	e.node.Ops = e.node.Ops[:0]
	build(e.node)
	return true
}

// Node returns the retained node for a key.
func (c *Cache) Node(key Key) (*Node, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.node, true
}

// Nodes returns every retained node in paint order: ascending Z, ties
// broken by key. The overlay, when set, is appended last so it paints
// above the whole scene. The returned slice stays valid until the next
// mutation.
func (c *Cache) Nodes() []*Node {
	if c.orderStale {
		c.order = c.order[:0]
		for _, e := range c.entries {
			c.order = append(c.order, e.node)
		}
		sort.SliceStable(c.order, func(i, j int) bool {
			if c.order[i].Z != c.order[j].Z {
				return c.order[i].Z < c.order[j].Z
			}
			return c.order[i].Key.Less(c.order[j].Key)
		})
		c.orderStale = false
	}
	if c.overlay == nil {
		return c.order
	}
	return append(c.order[:len(c.order):len(c.order)], c.overlay)
}

// SetOverlay rebuilds the transient overlay node. The overlay is not
// reconciled: it lives until ClearOverlay and always paints last.
func (c *Cache) SetOverlay(build func(*Node)) {
	if c.overlay == nil {
		c.overlay = c.pool.Get()
		c.overlay.Key = Key{Kind: KindOverlay}
	}
	c.overlay.Ops = c.overlay.Ops[:0]
	build(c.overlay)
}

// ClearOverlay recycles the overlay node, if any.
func (c *Cache) ClearOverlay() {
	if c.overlay == nil {
		return
	}
	c.pool.Put(c.overlay)
	c.overlay = nil
}

// HasOverlay reports whether an overlay is set.
func (c *Cache) HasOverlay() bool {
	return c.overlay != nil
}

// Reset recycles every retained node and the overlay. Cumulative
// counters survive; the next Reconcile recreates the full frame.
func (c *Cache) Reset() {
	for k, e := range c.entries {
		c.pool.Put(e.node)
		delete(c.entries, k)
	}
	c.ClearOverlay()
	c.order = c.order[:0]
	c.orderStale = false
}

// Len returns the retained node count, excluding the overlay.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Stats returns cumulative cache statistics.
func (c *Cache) Stats() Stats {
	return Stats{
		Nodes:   len(c.entries),
		Created: c.created,
		Updated: c.updated,
		Removed: c.removed,
		Reused:  c.reused,
	}
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
}
