package main

import (
	"fmt"
	"os"

	"github.com/chazu/collide/internal/config"
	"github.com/chazu/collide/internal/logging"
	"github.com/chazu/collide/pkg/bounding"
	"github.com/chazu/collide/pkg/geom"
	"github.com/chazu/collide/pkg/kernel"
	"github.com/chazu/collide/pkg/kernel/sdfx"
	"github.com/chazu/collide/pkg/scene"
	"github.com/chazu/collide/pkg/shape"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// App ties the scene engine and the SDF kernel together. Every command
// goes through it.
type App struct {
	engine *scene.Engine
	kernel kernel.Kernel
}

// BoxData is the JSON form of an AABB.
type BoxData struct {
	Min   [2]float64 `json:"min"`
	Max   [2]float64 `json:"max"`
	Valid bool       `json:"valid"`
}

// PartData describes one part of a compound.
type PartData struct {
	ID   uint32  `json:"id"`
	Kind string  `json:"kind"`
	AABB BoxData `json:"aabb"`
}

// CompoundData describes one compound.
type CompoundData struct {
	Name  string     `json:"name"`
	AABB  BoxData    `json:"aabb"`
	Parts []PartData `json:"parts"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// WarningData is a JSON-serializable validation warning.
type WarningData struct {
	Compound string   `json:"compound"`
	Parts    []uint32 `json:"parts"`
	Message  string   `json:"message"`
}

// Report is the full result of evaluating a scene.
type Report struct {
	Compounds []CompoundData  `json:"compounds"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []WarningData   `json:"warnings"`
}

// NewApp creates an App configured by cfg.
func NewApp(cfg config.Config) *App {
	return &App{
		engine: scene.NewEngineWithOptions(cfg.SceneOptions()),
		kernel: sdfx.New(),
	}
}

func boxData(a bounding.AABB) BoxData {
	return BoxData{
		Min:   [2]float64{a.Mins.X, a.Mins.Y},
		Max:   [2]float64{a.Maxs.X, a.Maxs.Y},
		Valid: a.IsValid(),
	}
}

// Evaluate takes scene source and returns the compound layout, errors and
// warnings. Slices are never nil so the JSON form always has arrays.
func (a *App) Evaluate(source string) (*scene.Scene, Report) {
	report := Report{
		Compounds: []CompoundData{},
		Errors:    []EvalErrorData{},
		Warnings:  []WarningData{},
	}

	sc, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		logging.Error("evaluate failed", "err", err)
		report.Errors = append(report.Errors, EvalErrorData{Message: err.Error()})
		return nil, report
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			report.Errors = append(report.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return nil, report
	}

	for _, nc := range sc.Compounds() {
		c := nc.Compound
		cd := CompoundData{Name: nc.Name, AABB: boxData(c.AABB())}
		for i, p := range c.Parts() {
			cd.Parts = append(cd.Parts, PartData{
				ID:   uint32(i),
				Kind: p.Shape.Kind().String(),
				AABB: boxData(c.AABBs()[i]),
			})
		}
		report.Compounds = append(report.Compounds, cd)
	}

	for _, w := range scene.Validate(sc) {
		report.Warnings = append(report.Warnings, WarningData{
			Compound: w.Compound,
			Parts:    w.Parts,
			Message:  w.Message,
		})
	}

	return sc, report
}

// Load reads and evaluates the scene file at path. Evaluation errors are
// folded into the returned error.
func (a *App) Load(path string) (*scene.Scene, Report, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, Report{}, err
	}
	sc, report := a.Evaluate(string(source))
	if sc == nil {
		return nil, report, fmt.Errorf("%s: %s", path, report.Errors[0].Message)
	}
	logging.Info("scene loaded", "path", path, "compounds", sc.CompoundCount())
	return sc, report, nil
}

// Query returns the ids of the parts of the named compound whose AABB
// intersects the box [lo, hi].
func (a *App) Query(sc *scene.Scene, name string, lo, hi v2.Vec) ([]uint32, error) {
	nc := sc.Lookup(name)
	if nc == nil {
		return nil, fmt.Errorf("no compound named %q", name)
	}
	query := bounding.New(lo, hi)
	if !query.IsValid() {
		return nil, fmt.Errorf("query box %s is empty", query)
	}
	return nc.Compound.Index().Intersecting(query), nil
}

// Hit is the outcome of a point test against a compound.
type Hit struct {
	Inside   bool
	Distance float64
	// Parts lists the parts whose profile contains the point.
	Parts []uint32
}

// Contains tests p against the named compound: the spatial index narrows
// the candidate parts and the kernel decides.
func (a *App) Contains(sc *scene.Scene, name string, p v2.Vec) (Hit, error) {
	nc := sc.Lookup(name)
	if nc == nil {
		return Hit{}, fmt.Errorf("no compound named %q", name)
	}
	c := nc.Compound

	whole, err := a.kernel.Profile(c, geom.Identity())
	if err != nil {
		return Hit{}, err
	}
	hit := Hit{Distance: whole.Distance(p)}

	var perr error
	for _, id := range c.Index().ContainingPoint(p) {
		c.MapPartAt(id, func(delta *geom.Isometry, part shape.Shape) {
			placement := geom.Identity()
			if delta != nil {
				placement = *delta
			}
			prof, err := a.kernel.Profile(part, placement)
			if err != nil {
				perr = err
				return
			}
			if prof.Contains(p) {
				hit.Parts = append(hit.Parts, id)
			}
		})
		if perr != nil {
			return Hit{}, perr
		}
	}
	hit.Inside = len(hit.Parts) > 0
	return hit, nil
}
