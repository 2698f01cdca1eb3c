package task

type placement int

const (
	placeEnd placement = iota
	placeStart
	placeBefore
	placeAfter
)

// Stage describes where a task goes in a sequence being built.
type Stage struct {
	Task   Task
	where  placement
	anchor string
}

// At returns a stage appended at the end.
func At(t Task) Stage { return Stage{Task: t} }

// First returns a stage placed at the start.
func First(t Task) Stage { return Stage{Task: t, where: placeStart} }

// Before returns a stage placed before the task named anchor.
func Before(anchor string, t Task) Stage {
	return Stage{Task: t, where: placeBefore, anchor: anchor}
}

// After returns a stage placed after the task named anchor.
func After(anchor string, t Task) Stage {
	return Stage{Task: t, where: placeAfter, anchor: anchor}
}

// Builder collects stages and splices them into a [Sequence] at build time.
// Stages are applied in the order they were added, so a relative stage may
// anchor on any task added before it.
type Builder struct {
	stages []Stage
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends tasks at the end.
func (b *Builder) Add(tasks ...Task) *Builder {
	for _, t := range tasks {
		b.stages = append(b.stages, At(t))
	}
	return b
}

// Before places t before the task named anchor.
func (b *Builder) Before(anchor string, t Task) *Builder {
	b.stages = append(b.stages, Before(anchor, t))
	return b
}

// After places t after the task named anchor.
func (b *Builder) After(anchor string, t Task) *Builder {
	b.stages = append(b.stages, After(anchor, t))
	return b
}

// Stage adds prepared stage descriptors, typically contributed by a variant.
func (b *Builder) Stage(stages ...Stage) *Builder {
	b.stages = append(b.stages, stages...)
	return b
}

// Plan returns the task names in the order Build would produce, without
// running any Setup.
func (b *Builder) Plan() []string {
	var names []string
	index := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		return -1
	}
	insert := func(i int, name string) {
		names = append(names, "")
		copy(names[i+1:], names[i:])
		names[i] = name
	}
	for _, s := range b.stages {
		name := s.Task.Name()
		switch s.where {
		case placeStart:
			insert(0, name)
		case placeBefore:
			if i := index(s.anchor); i >= 0 {
				insert(i, name)
			} else {
				insert(0, name)
			}
		case placeAfter:
			if i := index(s.anchor); i >= 0 {
				insert(i+1, name)
			} else {
				names = append(names, name)
			}
		default:
			names = append(names, name)
		}
	}
	return names
}

// Build returns a new sequence with every stage spliced in.
func (b *Builder) Build() *Sequence {
	q := NewSequence()
	for _, s := range b.stages {
		switch s.where {
		case placeStart:
			q.Prepend(s.Task)
		case placeBefore:
			q.InsertBefore(s.anchor, s.Task)
		case placeAfter:
			q.InsertAfter(s.anchor, s.Task)
		default:
			q.Append(s.Task)
		}
	}
	return q
}
