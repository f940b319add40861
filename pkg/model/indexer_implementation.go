package model

// Slot is the least significant attribute, so ascending indices follow the (course, teacher, room, slot) lexicographic order
type indexerImplementation struct {
	courses  uint64
	teachers uint64
	rooms    uint64
	slots    uint64
}

func (indexer *indexerImplementation) Index(course, teacher, room, slot uint64) uint64 {
	return slot + indexer.slots*room + indexer.slots*indexer.rooms*teacher + indexer.slots*indexer.rooms*indexer.teachers*course + 1
}

func (indexer *indexerImplementation) Attributes(index uint64) (course, teacher, room, slot uint64) {
	index = index - 1
	slot = index % indexer.slots
	index = index / indexer.slots

	room = index % indexer.rooms
	index = index / indexer.rooms

	teacher = index % indexer.teachers
	index = index / indexer.teachers

	course = index % indexer.courses

	return course, teacher, room, slot
}

func (indexer *indexerImplementation) Variables() uint64 {
	return indexer.courses * indexer.teachers * indexer.rooms * indexer.slots
}
