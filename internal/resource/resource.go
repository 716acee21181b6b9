package resource

// Resource is an external dependency with an explicit lifecycle. MustOpen
// panics on a dependency the service cannot run without.
type Resource interface {
	Name() string
	MustOpen()
	Close()
}

var registry = []Resource{
	DefaultMysqlResource(),
	DefaultRedisResource(),
	DefaultMinioResource(),
	DefaultKafkaResource(),
}

// MustOpenAll opens every registered resource in declaration order.
func MustOpenAll() {
	for _, r := range registry {
		r.MustOpen()
	}
}

// CloseAll releases resources in reverse order of opening.
func CloseAll() {
	for i := len(registry) - 1; i >= 0; i-- {
		registry[i].Close()
	}
}
