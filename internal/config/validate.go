// CUE schema validation code
package config

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

// ErrInvalid marks configuration values that fail the cross-field checks.
var ErrInvalid = errors.New("invalid configuration")

// SchemaDefinition is the definition in the schema file that a config must satisfy.
const SchemaDefinition = "#Simulation"

// ValidateWithCue validates a YAML configuration file using a CUE schema file.
func ValidateWithCue(configFile, cueFile string) error {
	ctx := cuecontext.New()

	yamlBytes, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("cannot read YAML config: %w", err)
	}
	f, err := yaml.Extract(configFile, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(f)
	if configVal.Err() != nil {
		return fmt.Errorf("cannot build YAML config: %w", configVal.Err())
	}

	schemaBytes, err := os.ReadFile(cueFile)
	if err != nil {
		return fmt.Errorf("cannot read CUE schema: %w", err)
	}
	schemaVal := ctx.CompileBytes(schemaBytes, cue.Filename(cueFile))
	if schemaVal.Err() != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", schemaVal.Err())
	}
	def := schemaVal.LookupPath(cue.ParsePath(SchemaDefinition))
	if !def.Exists() {
		return fmt.Errorf("CUE schema %s has no %s definition", cueFile, SchemaDefinition)
	}

	final := def.Unify(configVal)
	if err := final.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// Validate checks the rules the schema cannot express. All problems are reported together.
func (c *SimulationConfig) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		fail("map size %vx%v must be positive", c.Map.Width, c.Map.Height)
	}
	if c.Herd.Count < 0 || c.Herd.Leaders < 0 || c.Herd.Loners < 0 {
		fail("herd counts must not be negative")
	}
	if c.Herd.Leaders+c.Herd.Loners > c.Herd.Count {
		fail("leaders (%d) plus loners (%d) exceed herd count %d", c.Herd.Leaders, c.Herd.Loners, c.Herd.Count)
	}
	if 2*c.Herd.SpawnInset >= c.Map.Width || 2*c.Herd.SpawnInset >= c.Map.Height || c.Herd.SpawnInset < 0 {
		fail("spawn inset %v does not fit the map", c.Herd.SpawnInset)
	}
	if c.Herd.MigrationChance < 0 || c.Herd.MigrationChance > 1 {
		fail("migration chance %v outside [0,1]", c.Herd.MigrationChance)
	}
	if len(c.ScanWaypoints) == 0 {
		fail("at least one scan waypoint is required")
	}
	if c.Drone.Battery < 0 || c.Drone.Battery > 100 {
		fail("drone battery %v outside [0,100]", c.Drone.Battery)
	}
	if c.Drone.ID == "" {
		fail("drone id is required")
	}
	if c.Base.Radius <= 0 {
		fail("base radius must be positive")
	}
	if c.TickInterval <= 0 {
		fail("tick interval must be positive")
	}
	if c.Report.Interval <= 0 {
		fail("report interval must be positive")
	}
	return errors.Join(errs...)
}
