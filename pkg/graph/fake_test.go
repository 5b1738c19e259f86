package graph

import (
	"fmt"
	"sync"
)

// depSpec is one entry in a fake file's source-order dependency list.
type depSpec struct {
	name   string
	target string
}

// fakeProject is an in-memory stand-in for a real resolver/transformer
// pair (the functions Options bundles), used across pkg/graph's tests
// so each test can describe a small file tree as plain data rather
// than touching a filesystem. It is safe to read from the concurrent
// goroutines the traversal engine fires, and safe to mutate between
// traversal calls to simulate edits driving an incremental pass.
type fakeProject struct {
	mu    sync.Mutex
	files map[string][]depSpec
	fail  map[string]error
}

func newFakeProject() *fakeProject {
	return &fakeProject{files: make(map[string][]depSpec), fail: make(map[string]error)}
}

func (p *fakeProject) set(path string, deps ...depSpec) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files[path] = deps
}

func (p *fakeProject) failOn(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail[path] = err
}

func (p *fakeProject) clearFail(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.fail, path)
}

func (p *fakeProject) transform(path string) (TransformResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err, ok := p.fail[path]; ok {
		return TransformResult{}, err
	}
	deps, ok := p.files[path]
	if !ok {
		return TransformResult{}, fmt.Errorf("fakeProject: no such file %s", path)
	}
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.name
	}
	return TransformResult{Dependencies: names, Output: path}, nil
}

func (p *fakeProject) resolve(fromPath, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, d := range p.files[fromPath] {
		if d.name == name {
			return d.target, nil
		}
	}
	return "", fmt.Errorf("fakeProject: %s has no dependency named %q", fromPath, name)
}

func (p *fakeProject) options(onProgress ProgressFunc) Options {
	return Options{Resolve: p.resolve, Transform: p.transform, OnProgress: onProgress}
}

// dep is shorthand for constructing a depSpec where the written name
// and the resolved target path are the same string, the common case
// in these tests.
func dep(path string) depSpec { return depSpec{name: path, target: path} }

// named constructs a depSpec whose written name differs from its
// resolved target, for the duplicate-target-under-different-names
// scenario.
func named(name, target string) depSpec { return depSpec{name: name, target: target} }

func pathsOf(mods []*Module) []string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = m.Path
	}
	return out
}
