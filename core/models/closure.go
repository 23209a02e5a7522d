package models

// Closure is everything one component needs to build on its own.
type Closure struct {
	Component    string
	Buckets      map[Bucket]StringSet
	Packages     StringSet
	Declared     bool
	Environments bool
}

func NewClosure(component string) *Closure {
	c := &Closure{
		Component: component,
		Buckets:   make(map[Bucket]StringSet, len(Buckets)),
		Packages:  NewStringSet(),
	}
	for _, b := range Buckets {
		c.Buckets[b] = NewStringSet()
	}
	return c
}

// Bucket never returns nil.
func (c *Closure) Bucket(b Bucket) StringSet {
	set, ok := c.Buckets[b]
	if !ok {
		set = NewStringSet()
		c.Buckets[b] = set
	}
	return set
}

// DependencyCount is the number of file-bucket entries.
func (c *Closure) DependencyCount() int {
	n := 0
	for _, set := range c.Buckets {
		n += set.Len()
	}
	return n
}
