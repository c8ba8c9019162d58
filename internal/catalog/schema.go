package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/helionav/starcharts/pkg/core"
)

// sectorFile is the on-disk sector catalog layout, one JSON file per sector
// named <SECTOR>.json.
type sectorFile struct {
	SectorID string        `json:"sectorId" validate:"required"`
	Name     string        `json:"name"`
	Center   [3]float64    `json:"center"`
	Bounds   boundsEntry   `json:"bounds"`
	Objects  []objectEntry `json:"objects" validate:"required,min=1,dive"`
}

type boundsEntry struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

type objectEntry struct {
	ID              string         `json:"id" validate:"required"`
	Type            string         `json:"type" validate:"required,oneof=star planet moon station beacon asteroid debris unknown"`
	Position        [3]float64     `json:"position"`
	DisplayName     string         `json:"displayName" validate:"required"`
	Faction         string         `json:"faction"`
	TriggerRadiusKm float64        `json:"triggerRadiusKm" validate:"gte=0"`
	Meta            map[string]any `json:"meta"`
}

var validate = validator.New()

// readSectorFile loads and converts one sector file. Every failure comes
// back wrapped in ErrDatabaseUnavailable so callers can treat missing and
// schema-invalid sources the same way.
func (d *Database) readSectorFile(sectorID string) (*core.Sector, error) {
	path := filepath.Join(d.dir, sectorID+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrDatabaseUnavailable, path, err)
	}

	var file sectorFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrDatabaseUnavailable, path, err)
	}

	if err := validateSectorFile(&file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatabaseUnavailable, path, err)
	}

	sector, err := file.toSector(sectorID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatabaseUnavailable, path, err)
	}
	return sector, nil
}

// validateSectorFile runs the struct tags and formats field failures into
// one readable message.
func validateSectorFile(f *sectorFile) error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		messages := make([]string, 0, len(verrs))
		for _, e := range verrs {
			messages = append(messages, fmt.Sprintf(
				"field '%s' failed validation: %s (value: '%v')",
				e.Field(), e.Tag(), e.Value()))
		}
		return fmt.Errorf("schema invalid: %s", strings.Join(messages, "; "))
	}
	return err
}

// toSector converts the file into immutable records, canonicalizing every
// id. Duplicate ids within the sector are schema-invalid.
func (f *sectorFile) toSector(sectorID string) (*core.Sector, error) {
	if core.CanonicalID(f.SectorID) != sectorID {
		return nil, fmt.Errorf("sector id %q does not match file sector %q", f.SectorID, sectorID)
	}

	sector := &core.Sector{
		ID:     sectorID,
		Name:   f.Name,
		Center: vec(f.Center),
		Bounds: core.Box{Min: vec(f.Bounds.Min), Max: vec(f.Bounds.Max)},
	}

	seen := make(map[string]struct{}, len(f.Objects))
	for _, entry := range f.Objects {
		cid := core.CanonicalID(entry.ID)
		if _, dup := seen[cid]; dup {
			return nil, fmt.Errorf("duplicate object id %s", cid)
		}
		seen[cid] = struct{}{}

		sector.Objects = append(sector.Objects, &core.ObjectRecord{
			ID:              cid,
			SectorID:        sectorID,
			Type:            core.ObjectType(entry.Type),
			Position:        vec(entry.Position),
			DisplayName:     entry.DisplayName,
			Faction:         entry.Faction,
			TriggerRadiusKm: entry.TriggerRadiusKm,
			Meta:            entry.Meta,
		})
	}
	return sector, nil
}

func vec(a [3]float64) core.Vector3 {
	return core.Vector3{X: a[0], Y: a[1], Z: a[2]}
}
