package visdrone2coco

// IDKind selects the entity kind an id is allocated for.
type IDKind int

// The entity kinds with allocated ids.
const (
	ImageID IDKind = iota
	AnnotationID
	numIDKinds
)

// IDAllocator hands out ids per kind, starting at 0 and incrementing by exactly 1 per call.
//
// An allocator is scoped to a single conversion run and is not safe for concurrent use. Because
// ids are allocated right before the entity is appended to its insertion-ordered list, an id always
// equals the entity's position in that list.
type IDAllocator struct {
	next [numIDKinds]int
}

// Next returns the next unused id for kind.
func (a *IDAllocator) Next(kind IDKind) int {
	id := a.next[kind]
	a.next[kind]++
	return id
}

// Count returns the number of ids allocated for kind so far.
func (a *IDAllocator) Count(kind IDKind) int {
	return a.next[kind]
}
