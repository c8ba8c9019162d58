package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/helionav/starcharts/internal/config"
	"github.com/helionav/starcharts/pkg/core"
)

var (
	seedSector  string
	seedObjects int
	seedValue   int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write a deterministic demo sector catalog",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedSector, "sector", "A0", "sector id to generate")
	seedCmd.Flags().IntVar(&seedObjects, "objects", 128, "number of objects besides the star")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 42, "random seed")
}

// catalog file layout, mirrored from internal/catalog's schema.
type seedFile struct {
	SectorID string       `json:"sectorId"`
	Name     string       `json:"name"`
	Center   [3]float64   `json:"center"`
	Bounds   seedBounds   `json:"bounds"`
	Objects  []seedObject `json:"objects"`
}

type seedBounds struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

type seedObject struct {
	ID              string     `json:"id"`
	Type            string     `json:"type"`
	Position        [3]float64 `json:"position"`
	DisplayName     string     `json:"displayName"`
	Faction         string     `json:"faction,omitempty"`
	TriggerRadiusKm float64    `json:"triggerRadiusKm,omitempty"`
}

var seedNames = []string{"Sol", "Vega", "Altair", "Deneb", "Rigel", "Procyon"}

func runSeed(cmd *cobra.Command, args []string) error {
	loadConfig()

	rng := rand.New(rand.NewSource(seedValue))
	sectorID := core.CanonicalID(seedSector)
	starName := seedNames[rng.Intn(len(seedNames))]

	file := seedFile{
		SectorID: sectorID,
		Name:     starName,
		Bounds: seedBounds{
			Min: [3]float64{-500, -500, -500},
			Max: [3]float64{500, 500, 500},
		},
		Objects: []seedObject{{
			ID:          fmt.Sprintf("%s_%s", sectorID, starName),
			Type:        string(core.TypeStar),
			DisplayName: starName,
		}},
	}

	// weighted mix: mostly asteroids and moons, a handful of majors
	kinds := []core.ObjectType{
		core.TypePlanet, core.TypeMoon, core.TypeMoon,
		core.TypeStation, core.TypeBeacon,
		core.TypeAsteroid, core.TypeAsteroid, core.TypeAsteroid,
		core.TypeDebris,
	}
	for i := 0; i < seedObjects; i++ {
		kind := kinds[rng.Intn(len(kinds))]
		obj := seedObject{
			ID:   fmt.Sprintf("%s_%s%03d", sectorID, kind, i),
			Type: string(kind),
			Position: [3]float64{
				rng.Float64()*800 - 400,
				rng.Float64()*800 - 400,
				rng.Float64()*200 - 100,
			},
			DisplayName: fmt.Sprintf("%s %s-%03d", starName, core.ObjectType(kind).Label(), i),
		}
		switch kind {
		case core.TypeStation:
			obj.Faction = "Federation"
			obj.TriggerRadiusKm = 25
		case core.TypeBeacon:
			obj.TriggerRadiusKm = 10
		}
		file.Objects = append(file.Objects, obj)
	}

	dir := config.GetCatalogConfig().Dir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating catalog dir: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(dir, sectorID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing catalog file: %w", err)
	}

	fmt.Printf("Seeded %s (%s) with %d objects: %s\n",
		sectorID, starName, len(file.Objects), path)
	return nil
}
