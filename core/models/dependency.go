package models

import "sort"

// StringSet holds distinct strings, used for both bucket paths and package names.
type StringSet map[string]struct{}

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func (s StringSet) Add(v string) {
	s[v] = struct{}{}
}

func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s StringSet) Len() int {
	return len(s)
}

// Union returns a new set with the members of both.
func (s StringSet) Union(other StringSet) StringSet {
	out := make(StringSet, len(s)+len(other))
	for v := range s {
		out.Add(v)
	}
	for v := range other {
		out.Add(v)
	}
	return out
}

func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// DeclaredDependencies mirrors a component's dependencies.json / dependencies.yaml.
type DeclaredDependencies struct {
	Dependencies DeclaredBuckets `json:"dependencies" yaml:"dependencies"`
}

type DeclaredBuckets struct {
	Services      []string `json:"services" yaml:"services"`
	Components    []string `json:"components" yaml:"components"`
	Models        []string `json:"models" yaml:"models"`
	SharedModules []string `json:"sharedModules" yaml:"sharedModules"`
	Assets        []string `json:"assets" yaml:"assets"`
	Environments  bool     `json:"environments" yaml:"environments"`
}

// Bucket returns the declared entries for b.
func (d *DeclaredDependencies) Bucket(b Bucket) []string {
	if d == nil {
		return nil
	}
	switch b {
	case BucketServices:
		return d.Dependencies.Services
	case BucketComponents:
		return d.Dependencies.Components
	case BucketModels:
		return d.Dependencies.Models
	case BucketShared:
		return d.Dependencies.SharedModules
	case BucketAssets:
		return d.Dependencies.Assets
	}
	return nil
}

// CopiedDependency records one closure entry placed into the output tree.
type CopiedDependency struct {
	Bucket        Bucket
	OriginalPath  string   // project-relative source
	GeneratedPath string   // output-relative destination
	Files         []string // output-relative files written
}
