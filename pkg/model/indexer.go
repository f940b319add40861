package model

// indexer interface is design to give a unique index to a combination of decision variable's attributes and vice versa
type indexer interface {
	// Returns a unique index (starting at 1) to a combination of decision variable's attributes
	Index(course, teacher, room, slot uint64) uint64
	// Returns a combination of decision variable's attributes from a unique index
	Attributes(index uint64) (course, teacher, room, slot uint64)
	// Returns the number of decision variables (i.e. the greatest index)
	Variables() uint64
}

func newIndexer(courses, teachers, rooms, slots uint64) indexer {
	return &indexerImplementation{
		courses:  courses,
		teachers: teachers,
		rooms:    rooms,
		slots:    slots,
	}
}
