/*package store persists ensembles and their pipeline completion state in a
single-file SQLite database.

The store is the durable side of the generation boundary: it assigns every
ensemble its identifier, keeps the particle rows needed to rebuild the
geometry, and tracks which of the geometry/simulation/postprocess stages
have run. Completion flags are monotonic and only revert through Reset.
*/
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite" // database/sql driver

	"github.com/logiclorenzo/ddcloud/cloud"
	"github.com/logiclorenzo/ddcloud/geom"
)

// Store is a CRUD interface over the ensemble database. It implements the
// cloud package's EnsembleStore and CompletionTracker boundaries.
type Store struct {
	db *sql.DB
}

var _ cloud.EnsembleStore = (*Store)(nil)
var _ cloud.CompletionTracker = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS ensembles (
	ensemble_id      TEXT     PRIMARY KEY,
	strategy         TEXT     NOT NULL,
	dipole_size      REAL     NOT NULL,
	region_x         REAL     NOT NULL,
	region_y         REAL     NOT NULL,
	region_z         REAL     NOT NULL,
	wavelength       REAL,
	eff_radius       REAL,
	seed             INTEGER,
	geometry_done    INTEGER  DEFAULT 0,
	simulation_done  INTEGER  DEFAULT 0,
	postprocess_done INTEGER  DEFAULT 0,
	created_at       DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ensemble_particles (
	ensemble_id  TEXT    NOT NULL,
	particle_idx INTEGER NOT NULL,
	material_idx INTEGER NOT NULL,
	material     TEXT    NOT NULL,
	shape        TEXT    NOT NULL,
	radius       REAL    NOT NULL,
	length       REAL,
	volume       REAL    NOT NULL,
	cx           REAL    NOT NULL,
	cy           REAL    NOT NULL,
	cz           REAL    NOT NULL,
	ax           REAL,
	ay           REAL,
	az           REAL,
	PRIMARY KEY (ensemble_id, particle_idx),
	FOREIGN KEY (ensemble_id) REFERENCES ensembles(ensemble_id)
);

CREATE TABLE IF NOT EXISTS ensemble_scattering (
	ensemble_id TEXT    NOT NULL,
	wavelength  REAL    NOT NULL,
	num_ori     INTEGER NOT NULL,
	abs_eff     REAL    NOT NULL,
	sca_eff     REAL    NOT NULL,
	abs_enh     REAL,
	PRIMARY KEY (ensemble_id, wavelength, num_ori),
	FOREIGN KEY (ensemble_id) REFERENCES ensembles(ensemble_id)
);`

// Open opens (and if needed initializes) the ensemble database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEnsemble persists an ensemble and its particles and returns the
// newly assigned ensemble identifier.
func (s *Store) SaveEnsemble(e *cloud.Ensemble) (string, error) {
	id, err := s.newKey()
	if err != nil {
		return "", err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	p := &e.Params
	_, err = tx.Exec(
		`INSERT INTO ensembles (
			ensemble_id, strategy, dipole_size,
			region_x, region_y, region_z,
			wavelength, eff_radius, seed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Strategy.String(), p.DipoleSize,
		p.Region[0], p.Region[1], p.Region[2],
		p.Wavelength, p.EffRadius, p.Seed,
	)
	if err != nil {
		return "", fmt.Errorf("insert ensemble: %w", err)
	}

	materials := materialNames(p)
	for idx, shape := range e.Shapes {
		c := shape.Center()
		var length, ax, ay, az interface{}
		if rod, isRod := shape.(geom.Rod); isRod {
			length = rod.Length
			ax, ay, az = rod.Axis[0], rod.Axis[1], rod.Axis[2]
		}
		_, err = tx.Exec(
			`INSERT INTO ensemble_particles (
				ensemble_id, particle_idx, material_idx, material, shape,
				radius, length, volume, cx, cy, cz, ax, ay, az
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, idx, shape.Material(), materials[shape.Material()],
			shape.Kind().String(), radiusOf(shape), length, shape.Volume(),
			c[0], c[1], c[2], ax, ay, az,
		)
		if err != nil {
			return "", fmt.Errorf("insert particle %d: %w", idx, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// LoadEnsemble rebuilds a stored ensemble from its rows. The species list
// of the returned params is reconstructed from the particle rows with
// realized counts, which is enough for discretization and statistics.
func (s *Store) LoadEnsemble(id string) (*cloud.Ensemble, error) {
	e := &cloud.Ensemble{}
	var strategy string
	err := s.db.QueryRow(
		`SELECT strategy, dipole_size, region_x, region_y, region_z,
			wavelength, eff_radius, seed
		FROM ensembles WHERE ensemble_id = ?`, id,
	).Scan(
		&strategy, &e.Params.DipoleSize,
		&e.Params.Region[0], &e.Params.Region[1], &e.Params.Region[2],
		&e.Params.Wavelength, &e.Params.EffRadius, &e.Params.Seed,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no ensemble with id %q", id)
	} else if err != nil {
		return nil, fmt.Errorf("select ensemble: %w", err)
	}
	if e.Params.Strategy, err = cloud.ParseStrategy(strategy); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(
		`SELECT material_idx, material, shape, radius, length,
			cx, cy, cz, ax, ay, az
		FROM ensemble_particles WHERE ensemble_id = ?
		ORDER BY particle_idx`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("select particles: %w", err)
	}
	defer rows.Close()

	species := map[cloud.Species]int{}
	var order []cloud.Species
	for rows.Next() {
		var (
			matIdx         int
			material, kind string
			radius         float64
			length         sql.NullFloat64
			c              geom.Vec
			ax, ay, az     sql.NullFloat64
		)
		err := rows.Scan(&matIdx, &material, &kind, &radius, &length,
			&c[0], &c[1], &c[2], &ax, &ay, &az)
		if err != nil {
			return nil, fmt.Errorf("scan particle: %w", err)
		}

		var shape geom.Shape
		sp := cloud.Species{
			Material:    material,
			MaterialIdx: matIdx,
			Radius:      radius,
		}
		switch kind {
		case "sphere":
			sp.Kind = geom.KindSphere
			sphere, err := geom.NewSphere(radius, matIdx)
			if err != nil {
				return nil, err
			}
			shape = sphere.At(c)
		case "rod":
			sp.Kind = geom.KindRod
			sp.Length = length.Float64
			rod, err := geom.NewRod(radius, length.Float64, matIdx)
			if err != nil {
				return nil, err
			}
			axis := geom.Vec{ax.Float64, ay.Float64, az.Float64}
			shape = rod.WithAxis(axis).At(c)
		default:
			return nil, fmt.Errorf("unknown stored shape kind %q", kind)
		}
		e.Shapes = append(e.Shapes, shape)

		if _, seen := species[sp]; !seen {
			order = append(order, sp)
		}
		species[sp]++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate particles: %w", err)
	}

	for _, sp := range order {
		sp.Count = species[sp]
		e.Params.Species = append(e.Params.Species, sp)
	}
	return e, nil
}

// DeleteEnsemble removes an ensemble and all of its child rows.
func (s *Store) DeleteEnsemble(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()
	for _, table := range []string{
		"ensemble_scattering", "ensemble_particles", "ensembles",
	} {
		q := fmt.Sprintf("DELETE FROM %s WHERE ensemble_id = ?", table)
		if _, err := tx.Exec(q, id); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// ListEnsembles returns the stored ensemble identifiers, oldest first.
func (s *Store) ListEnsembles() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT ensemble_id FROM ensembles ORDER BY created_at, ensemble_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select ensembles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// stageColumn maps a pipeline stage onto its flag column.
func stageColumn(stage cloud.Stage) (string, error) {
	switch stage {
	case cloud.StageGeometry:
		return "geometry_done", nil
	case cloud.StageSimulation:
		return "simulation_done", nil
	case cloud.StagePostprocess:
		return "postprocess_done", nil
	}
	return "", fmt.Errorf("unknown pipeline stage %v", stage)
}

// IsDone reports whether the given stage has completed for an ensemble.
func (s *Store) IsDone(id string, stage cloud.Stage) (bool, error) {
	col, err := stageColumn(stage)
	if err != nil {
		return false, err
	}
	var done int
	q := fmt.Sprintf(
		"SELECT %s FROM ensembles WHERE ensemble_id = ?", col,
	)
	if err := s.db.QueryRow(q, id).Scan(&done); err == sql.ErrNoRows {
		return false, fmt.Errorf("no ensemble with id %q", id)
	} else if err != nil {
		return false, fmt.Errorf("select %s: %w", col, err)
	}
	return done != 0, nil
}

// MarkDone records the completion of a stage for an ensemble.
func (s *Store) MarkDone(id string, stage cloud.Stage) error {
	return s.setStage(id, stage, 1)
}

// Reset clears a stage's completion flag. This is the explicit rerun
// request; nothing else ever reverts a flag.
func (s *Store) Reset(id string, stage cloud.Stage) error {
	return s.setStage(id, stage, 0)
}

func (s *Store) setStage(id string, stage cloud.Stage, val int) error {
	col, err := stageColumn(stage)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(
		"UPDATE ensembles SET %s = ? WHERE ensemble_id = ?", col,
	)
	res, err := s.db.Exec(q, val, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", col, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("no ensemble with id %q", id)
	}
	return nil
}

// AddScattering stores one row of solver output for an ensemble. absEnh
// may be NaN when no enhancement baseline exists; it is stored as NULL.
func (s *Store) AddScattering(
	id string, wavelength float64, numOri int,
	absEff, scaEff, absEnh float64,
) error {
	var enh interface{}
	if absEnh == absEnh { // not NaN
		enh = absEnh
	}
	_, err := s.db.Exec(
		`INSERT INTO ensemble_scattering (
			ensemble_id, wavelength, num_ori, abs_eff, sca_eff, abs_enh
		) VALUES (?, ?, ?, ?, ?, ?)`,
		id, wavelength, numOri, absEff, scaEff, enh,
	)
	if err != nil {
		return fmt.Errorf("insert scattering: %w", err)
	}
	return nil
}

// newKey allocates a fresh hex ensemble identifier. Collisions with stored
// ids are retried.
func (s *Store) newKey() (string, error) {
	for {
		raw := make([]byte, 5)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("generate key: %w", err)
		}
		id := hex.EncodeToString(raw)

		var n int
		err := s.db.QueryRow(
			"SELECT COUNT(*) FROM ensembles WHERE ensemble_id = ?", id,
		).Scan(&n)
		if err != nil {
			return "", fmt.Errorf("check key: %w", err)
		}
		if n == 0 {
			return id, nil
		}
	}
}

// materialNames maps material indices onto their table names so particle
// rows can be joined back to a species.
func materialNames(p *cloud.Params) map[int]string {
	names := map[int]string{}
	for i := range p.Species {
		names[p.Species[i].MaterialIdx] = p.Species[i].Material
	}
	return names
}

// radiusOf returns the radius size parameter of either shape variant.
func radiusOf(s geom.Shape) float64 {
	switch v := s.(type) {
	case geom.Sphere:
		return v.Radius
	case geom.Rod:
		return v.Radius
	}
	return 0
}
