package pipeline

import (
	"fmt"
	"sort"

	"stellab.xyz/argus/internal/config"
	"stellab.xyz/argus/internal/core"
	"stellab.xyz/argus/internal/eventbus"
	"stellab.xyz/argus/pkg/plugin"
)

// Assemble instantiates and initializes all stages of a job from the plugin
// registry and returns a ready-to-run pipeline. Transformers run in
// configured order, adjusted only where a declared dependency would
// otherwise run after its dependent.
func Assemble(jc *config.JobConfig, bus eventbus.EventBus) (*Pipeline, error) {
	extractorFactory, err := plugin.GetExtractorFactory(jc.Source.Name)
	if err != nil {
		return nil, err
	}
	extractor := extractorFactory()
	if err := extractor.Init(jc.Source.Config); err != nil {
		return nil, fmt.Errorf("%w: source %q: %v", core.ErrPluginInitFailed, jc.Source.Name, err)
	}

	transformers := make([]plugin.Transformer, 0, len(jc.Transformers))
	for _, tc := range jc.Transformers {
		factory, err := plugin.GetTransformerFactory(tc.Name)
		if err != nil {
			return nil, err
		}
		tr := factory()
		if err := tr.Init(tc.Config); err != nil {
			return nil, fmt.Errorf("%w: transformer %q: %v", core.ErrPluginInitFailed, tc.Name, err)
		}
		transformers = append(transformers, tr)
	}

	ordered, err := orderTransformers(transformers)
	if err != nil {
		return nil, err
	}

	var loader plugin.Loader
	if jc.Loader != nil {
		factory, err := plugin.GetLoaderFactory(jc.Loader.Name)
		if err != nil {
			return nil, err
		}
		loader = factory()
		if err := loader.Init(jc.Loader.Config); err != nil {
			return nil, fmt.Errorf("%w: loader %q: %v", core.ErrPluginInitFailed, jc.Loader.Name, err)
		}
	}

	return New(Config{
		Name:         jc.Name,
		Extractor:    extractor,
		Transformers: ordered,
		Loader:       loader,
		StopOnError:  jc.StopOnError,
		MaxBatches:   jc.MaxBatches,
		DryRun:       jc.DryRun,
		Bus:          bus,
	}), nil
}

// orderTransformers topologically sorts the chain by declared dependencies,
// preferring the configured order wherever the dependency graph allows it.
func orderTransformers(transformers []plugin.Transformer) ([]plugin.Transformer, error) {
	byName := make(map[string]plugin.Transformer, len(transformers))
	position := make(map[string]int, len(transformers))
	for i, tr := range transformers {
		if _, dup := byName[tr.Name()]; dup {
			return nil, fmt.Errorf("%w: transformer %q appears twice", core.ErrConfigInvalid, tr.Name())
		}
		byName[tr.Name()] = tr
		position[tr.Name()] = i
	}

	graph := make(map[string][]string)
	inDegree := make(map[string]int)
	for _, tr := range transformers {
		inDegree[tr.Name()] = 0
	}
	for _, tr := range transformers {
		aware, ok := tr.(plugin.DependencyAware)
		if !ok {
			continue
		}
		for _, dep := range aware.Dependencies() {
			if _, exists := byName[dep]; !exists {
				return nil, fmt.Errorf("%w: transformer %q requires %q, which is not in the chain",
					core.ErrConfigInvalid, tr.Name(), dep)
			}
			graph[dep] = append(graph[dep], tr.Name())
			inDegree[tr.Name()]++
		}
	}

	queue := make([]string, 0, len(transformers))
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sortByPosition(queue, position)

	result := make([]plugin.Transformer, 0, len(transformers))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, byName[current])

		for _, dependent := range graph[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		sortByPosition(queue, position)
	}

	if len(result) != len(transformers) {
		return nil, fmt.Errorf("%w: transformer dependency cycle detected", core.ErrConfigInvalid)
	}
	return result, nil
}

func sortByPosition(names []string, position map[string]int) {
	sort.Slice(names, func(i, j int) bool {
		return position[names[i]] < position[names[j]]
	})
}
