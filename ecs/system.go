package ecs

// System represents a behavior that operates on entities with specific components.
// Systems can include Query, View and Singleton fields, which the Scheduler wires
// on Register, as well as custom state fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}

// executor is implemented by Query fields so the Scheduler can refresh them.
type executor interface {
	Execute()
}
