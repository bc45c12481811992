package scene

import "sync"

// NodeKind classifies a retained node by the layer it belongs to.
// Paint order between layers follows Z, not kind, but kinds keep keys
// unique across entity namespaces: an item and a link may share an ID.
type NodeKind uint8

const (
	// KindGrid is the measure/day grid layer.
	KindGrid NodeKind = iota
	// KindLane is a lane staff (lines plus label).
	KindLane
	// KindItem is a scheduled item body.
	KindItem
	// KindLink is a dependency connector.
	KindLink
	// KindOverlay is the transient interaction overlay.
	KindOverlay
)

// nodeKindNames maps NodeKind values to their string representation.
var nodeKindNames = [...]string{
	KindGrid:    "grid",
	KindLane:    "lane",
	KindItem:    "item",
	KindLink:    "link",
	KindOverlay: "overlay",
}

// String returns the string representation of a NodeKind.
func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "unknown"
}

// Key identifies a retained node across frames. ID is the stable
// entity identifier from the host model; singleton layers such as the
// grid leave it empty.
type Key struct {
	Kind NodeKind
	ID   string
}

// Less orders keys by kind then ID. Diff output and paint tie-breaking
// use this ordering so frames are deterministic.
func (k Key) Less(o Key) bool {
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	return k.ID < o.ID
}

// String returns "kind:id" for logs and dumps.
func (k Key) String() string {
	if k.ID == "" {
		return k.Kind.String()
	}
	return k.Kind.String() + ":" + k.ID
}

// Node is one retained drawable. The cache owns nodes; callers get
// them from Reconcile output and must not hold them across frames.
type Node struct {
	Key Key
	// Z is the paint order: lower paints first. Nodes with equal Z
	// paint in Key order.
	Z int
	// Ops is the node's primitive list, replayed in order.
	Ops []Op
}

// Reset clears the node for reuse. The op slice is kept to avoid
// reallocating it on the next build.
func (n *Node) Reset() {
	n.Key = Key{}
	n.Z = 0
	n.Ops = n.Ops[:0]
}

// Append adds ops to the node.
func (n *Node) Append(ops ...Op) {
	n.Ops = append(n.Ops, ops...)
}

// DefaultPoolCapacity bounds how many free nodes a pool retains.
const DefaultPoolCapacity = 256

// NodePool recycles nodes across frames. Scenes churn nodes as items
// scroll in and out of view; pooling keeps the op slices warm. The
// free list is capped: nodes returned to a full pool are dropped for
// the garbage collector.
type NodePool struct {
	mu       sync.Mutex
	free     []*Node
	capacity int
}

// NewNodePool creates a node pool. A capacity of zero or less uses
// DefaultPoolCapacity.
func NewNodePool(capacity int) *NodePool {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	return &NodePool{
		free:     make([]*Node, 0, capacity),
		capacity: capacity,
	}
}

// Get returns a reset node, reusing a pooled one when available.
func (p *NodePool) Get() *Node {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		node := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.mu.Unlock()
		node.Reset()
		return node
	}
	p.mu.Unlock()
	return &Node{}
}

// Put returns a node to the pool. Nodes offered to a full pool are
// dropped.
func (p *NodePool) Put(n *Node) {
	if n == nil {
		return
	}
	p.mu.Lock()
	if len(p.free) < p.capacity {
		p.free = append(p.free, n)
	}
	p.mu.Unlock()
}

// Warmup pre-allocates count free nodes, bounded by the pool capacity.
func (p *NodePool) Warmup(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.free) < p.capacity && count > 0 {
		p.free = append(p.free, &Node{})
		count--
	}
}

// Len returns the number of free nodes currently pooled.
func (p *NodePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Capacity returns the maximum number of free nodes retained.
func (p *NodePool) Capacity() int {
	return p.capacity
}
