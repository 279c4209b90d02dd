// Command analyze prints human-readable heuristics about the procedural
// panel generator and the difficulty curve. It runs a batch of simulated
// matches per level, reports widget count and type distributions per role,
// and prints the difficulty parameters the server would use at each level.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"

	"github.com/cheggaaa/pb/v3"
	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/stat"

	"github.com/citypanic/citypanic/game/engine"
	"github.com/citypanic/citypanic/game/grid"
	"github.com/citypanic/citypanic/game/names"
)

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "simulate panel generation and print distribution statistics",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "games",
				Value: 500,
				Usage: "number of simulated matches per level",
			},
			&cli.IntFlag{
				Name:  "levels",
				Value: 10,
				Usage: "highest level to simulate",
			},
			&cli.IntFlag{
				Name:  "seed",
				Value: 1,
				Usage: "random seed for the simulation",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	games := int(cmd.Int("games"))
	levels := int(cmd.Int("levels"))
	seed := cmd.Int("seed")

	if games <= 0 || levels < 0 {
		return fmt.Errorf("games must be positive and levels non-negative")
	}

	rng := rand.New(rand.NewSource(int64(seed)))

	printDifficultyTable(levels)

	for level := 0; level <= levels; level++ {
		size := gridSizeForLevel(level)
		fmt.Printf("\n=== Level %d (grid %dx%d, %d games x 4 roles) ===\n",
			level, size, size, games)
		simulateLevel(level, size, games, rng)
	}

	return nil
}

// gridSizeForLevel mirrors the server's panel sizing.
func gridSizeForLevel(level int) int {
	size := level/2 + 2
	if size > 4 {
		size = 4
	}
	return size
}

func simulateLevel(level, size, games int, rng *rand.Rand) {
	bar := pb.StartNew(games)

	counts := make([]float64, 0, games*4)
	typeTotals := make(map[grid.WidgetType]int)
	aborted := 0

	for g := 0; g < games; g++ {
		// One name pool per match, shared across the four panels, the same
		// way the server generates a level.
		pool := names.NewGenerator(rng)
		for role := 0; role < 4; role++ {
			panel := grid.Generate(size, size, role, level, pool, rng)
			counts = append(counts, float64(len(panel.Objects)))
			for _, obj := range panel.Objects {
				typeTotals[obj.Type]++
			}
			if len(panel.Objects) == 0 {
				aborted++
			}
		}
		bar.Increment()
	}
	bar.Finish()

	mean := stat.Mean(counts, nil)
	stddev := stat.StdDev(counts, nil)
	fmt.Printf("widgets per panel: mean %.2f, stddev %.2f\n", mean, stddev)
	if aborted > 0 {
		fmt.Printf("panels aborted on name exhaustion: %d\n", aborted)
	}

	total := 0
	for _, n := range typeTotals {
		total += n
	}
	types := make([]grid.WidgetType, 0, len(typeTotals))
	for t := range typeTotals {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return typeTotals[types[i]] > typeTotals[types[j]] })
	for _, t := range types {
		fmt.Printf("  %-16s %6d (%.1f%%)\n", t, typeTotals[t],
			100*float64(typeTotals[t])/float64(total))
	}
}

func printDifficultyTable(levels int) {
	fmt.Println("=== Difficulty curve ===")
	fmt.Printf("%-5s %-10s %-8s %-10s %-10s %-10s %-8s\n",
		"level", "instr_time", "drain", "dl_rate", "heal", "penalty", "modifier")

	d := engine.DefaultDifficulty()
	for level := 0; level <= levels; level++ {
		if level > 0 {
			d.Advance()
		}
		fmt.Printf("%-5d %-10.2f %-8.2f %-10.2f %-10.2f %-10.2f %-8.2f\n",
			level, d.InstructionsTime, d.HealthDrainRate, d.DeathLimitIncreaseRate,
			d.CompletedInstructionHealthIncrease, d.ExpiredCommandHealthDecrease,
			d.GameModifierChance)
	}
}
