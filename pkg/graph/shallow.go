package graph

import "fmt"

// TransformResult is what Options.Transform returns for a single
// file: the ordered list of dependency names as written in its
// source, and an opaque output artifact the engine stores verbatim.
type TransformResult struct {
	Dependencies []string
	Output       interface{}
}

// ResolveFunc maps a dependency name, as written in fromPath's source,
// to a canonical target path.
type ResolveFunc func(fromPath, name string) (string, error)

// TransformFunc reads and parses path, returning its dependency names
// in source order and an opaque output.
type TransformFunc func(path string) (TransformResult, error)

// Options bundles the external collaborators the traversal engine
// depends on. Resolve and Transform are required; OnProgress is
// optional.
type Options struct {
	Resolve    ResolveFunc
	Transform  TransformFunc
	OnProgress ProgressFunc
}

// shallowResolve transforms path, then resolves each produced
// dependency name against fromPath in source order, producing the
// module's full ordered edge list. A failure from either collaborator
// propagates unchanged to the caller, aborting whatever traversal
// invoked it.
func shallowResolve(path string, opts Options) ([]Dependency, interface{}, error) {
	result, err := opts.Transform(path)
	if err != nil {
		return nil, nil, &TransformError{Path: path, Err: err}
	}

	deps := make([]Dependency, 0, len(result.Dependencies))
	for _, name := range result.Dependencies {
		target, err := opts.Resolve(path, name)
		if err != nil {
			return nil, nil, &ResolutionError{FromPath: path, Name: name, Err: err}
		}
		deps = append(deps, Dependency{Name: name, Path: target})
	}

	return deps, result.Output, nil
}

// validate checks that the required collaborators are present,
// surfacing a clear programmer error rather than a nil-pointer panic
// deep inside a goroutine.
func (o Options) validate() error {
	if o.Resolve == nil {
		return fmt.Errorf("graph: Options.Resolve must not be nil")
	}
	if o.Transform == nil {
		return fmt.Errorf("graph: Options.Transform must not be nil")
	}
	return nil
}
