package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/physics"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/steering"
)

//go:embed config.schema.json
var configSchema string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("config.schema.json", configSchema)
})

// Spawner is a rectangle on the ground plane where a phase drops agents.
type Spawner struct {
	Center geometry.Vector3D `json:"center" yaml:"center"`
	Width  float64           `json:"width" yaml:"width"`
	Depth  float64           `json:"depth" yaml:"depth"`
}

// RandomPoint returns a uniform point inside the spawner.
func (s Spawner) RandomPoint(r *rand.Rand) geometry.Vector3D {
	return s.Center.Add(geometry.NewVector(
		(r.Float64()-0.5)*s.Width,
		0,
		(r.Float64()-0.5)*s.Depth,
	))
}

type Config struct {
	// World Dimensions, centred on the origin
	WorldWidth float64 `json:"worldWidth" yaml:"worldWidth"`
	WorldDepth float64 `json:"worldDepth" yaml:"worldDepth"`

	// Fixed simulation ticks per second
	TickRate int `json:"tickRate" yaml:"tickRate"`

	// Physics collaborator
	UsePhysics bool               `json:"usePhysics" yaml:"usePhysics"`
	Body       physics.BodyConfig `json:"body" yaml:"body"`

	InitialPhase int `json:"initialPhase" yaml:"initialPhase"`
	// Seed for spawning and wandering, 0 draws a random one
	Seed uint64 `json:"seed" yaml:"seed"`

	// Cell size of the neighbour lookup grid
	GridCellSize float64 `json:"gridCellSize" yaml:"gridCellSize"`

	ShowAnnotations bool   `json:"showAnnotations" yaml:"showAnnotations"`
	ScriptFile      string `json:"scriptFile,omitempty" yaml:"scriptFile,omitempty"`
	LogLevel        string `json:"logLevel" yaml:"logLevel"`

	Spawners []Spawner      `json:"spawners" yaml:"spawners"`
	Behavior steering.Config `json:"behavior" yaml:"behavior"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:      40,
		WorldDepth:      30,
		TickRate:        50,
		UsePhysics:      false,
		Body:            physics.DefaultBody(),
		InitialPhase:    int(PhaseSeek),
		GridCellSize:    5,
		ShowAnnotations: true,
		LogLevel:        "info",
		Spawners: []Spawner{
			{Center: geometry.NewVector(-10, 0, -6), Width: 4, Depth: 4},
			{Center: geometry.NewVector(10, 0, 6), Width: 4, Depth: 4},
		},
		Behavior: steering.DefaultConfig(),
	}
}

// Bounds returns the arena rectangle on the ground plane.
func (c *Config) Bounds() (minX, minZ, maxX, maxZ float64) {
	return -c.WorldWidth / 2, -c.WorldDepth / 2, c.WorldWidth / 2, c.WorldDepth / 2
}

// TickSeconds is the fixed step duration.
func (c *Config) TickSeconds() float64 {
	if c.TickRate <= 0 {
		return 0
	}
	return 1 / float64(c.TickRate)
}

// Validate checks what the schema cannot express, including the behavior
// tunables. A tick may not be longer than Behavior.TimeToTarget, otherwise
// velocity corrections overshoot and Arrive never settles. The returned error
// wraps steering.ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	if c.WorldWidth <= 0 || c.WorldDepth <= 0 {
		errs = append(errs, fmt.Errorf("world must have a positive size, got %vx%v", c.WorldWidth, c.WorldDepth))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tickRate must be > 0, got %d", c.TickRate))
	} else if c.TickSeconds() > c.Behavior.TimeToTarget {
		errs = append(errs, fmt.Errorf("tickRate %d gives a tick of %vs, longer than behavior timeToTarget %vs",
			c.TickRate, c.TickSeconds(), c.Behavior.TimeToTarget))
	}
	if c.GridCellSize <= 0 {
		errs = append(errs, fmt.Errorf("gridCellSize must be > 0, got %v", c.GridCellSize))
	}
	if len(c.Spawners) < 2 {
		errs = append(errs, fmt.Errorf("at least 2 spawners are required, got %d", len(c.Spawners)))
	}
	if _, err := ParsePhase(c.InitialPhase); err != nil {
		errs = append(errs, err)
	}
	if err := c.Behavior.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("behavior: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", steering.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// LoadConfig loads configuration from a JSON or YAML file and validates it
// against the schema. Missing fields keep their DefaultConfig value.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 3. Normalise to JSON
	doc, err := toJSON(raw, filepath.Ext(configFile))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", configFile, err)
	}

	// 4. Validate
	var v interface{}
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 5. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toJSON(raw []byte, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return raw, nil
	case ".yaml", ".yml":
		var v interface{}
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		if v == nil {
			v = map[string]interface{}{}
		}
		return json.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}
}

// WriteYAML writes the configuration as a YAML document.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
