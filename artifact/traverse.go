package artifact

// Operation is applied to each artifact visited by Traverse.
type Operation func(a *Artifact) error

// Traverse applies op to every transitive dependency of the named artifact and
// then to the artifact itself, dependencies first. Each artifact is visited at
// most once even when several paths lead to it. The first error returned by op
// stops the walk and is returned as is.
func (r *Registry) Traverse(name string, op Operation) error {
	root, err := r.Get(name)
	if err != nil {
		return err
	}

	visited := make(map[*Artifact]bool)
	var visit func(a *Artifact) error
	visit = func(a *Artifact) error {
		if visited[a] {
			return nil
		}
		visited[a] = true

		for _, dep := range a.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return op(a)
	}

	return visit(root)
}
