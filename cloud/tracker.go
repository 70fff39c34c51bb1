package cloud

import "fmt"

// Stage identifies one step of an ensemble's processing pipeline.
type Stage int

const (
	// StageGeometry is the ensemble generation step.
	StageGeometry Stage = iota
	// StageSimulation is the external scattering solver run.
	StageSimulation
	// StagePostprocess is the external near-field post-processing run.
	StagePostprocess
)

// String returns the stage name used by the persistence layer.
func (s Stage) String() string {
	switch s {
	case StageGeometry:
		return "geometry"
	case StageSimulation:
		return "simulation"
	case StagePostprocess:
		return "postprocess"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// CompletionTracker records which pipeline stages have finished for an
// ensemble. Completion is monotonic: a stage only reverts to not-done on an
// explicit rerun request at the tracker's implementation.
type CompletionTracker interface {
	IsDone(ensembleID string, stage Stage) (bool, error)
	MarkDone(ensembleID string, stage Stage) error
}

// EnsembleStore is the persistence boundary the generator emits ensembles
// to. The store assigns the durable ensemble identifier; the generator
// never reads ensembles back.
type EnsembleStore interface {
	SaveEnsemble(e *Ensemble) (string, error)
}
