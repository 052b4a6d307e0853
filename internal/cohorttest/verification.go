package cohorttest

import (
	"fmt"
	"log"
)

// verifyRanklists checks ranking invariants on every retrieved ranklist.
func verifyRanklists(ranklists map[string]RanklistResponse, stats *Stats) error {
	log.Println("verifying ranklists...")

	overall, ok := ranklists[""]
	if !ok || overall.Total == 0 {
		return fmt.Errorf("no overall ranklist to verify")
	}

	for branch, rl := range ranklists {
		if err := verifyDenseRanking(rl); err != nil {
			stats.VerificationFails++
			log.Printf("ranking invariant violated for branch %q: %v", branch, err)
		}
	}

	// Branch lists must partition the overall list.
	var branchSum int
	for branch, rl := range ranklists {
		if branch == "" {
			continue
		}
		branchSum += rl.Total
	}
	if branchSum != overall.Total {
		stats.VerificationFails++
		log.Printf("branch totals (%d) do not sum to overall total (%d)", branchSum, overall.Total)
	}

	if stats.VerificationFails == 0 {
		log.Println("ranklist verification passed")
	}
	return nil
}

// verifyDenseRanking checks ordering and shared-rank invariants of one list.
//
// Ties share a rank but still consume positions: metric values
// [90, 90, 85] must rank [1, 1, 3].
func verifyDenseRanking(rl RanklistResponse) error {
	entries := rl.Ranklist
	if len(entries) == 0 {
		return nil
	}

	if entries[0].Rank != 1 {
		return fmt.Errorf("first entry has rank %d, want 1", entries[0].Rank)
	}

	if rl.TopPerformer != nil && rl.TopPerformer.RollNo != entries[0].RollNo {
		return fmt.Errorf("top performer %s does not match first entry %s",
			rl.TopPerformer.RollNo, entries[0].RollNo)
	}

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]

		if cur.SGPA > prev.SGPA {
			return fmt.Errorf("entry %d (%s) out of order: sgpa %.2f after %.2f",
				i, cur.RollNo, cur.SGPA, prev.SGPA)
		}

		switch {
		case cur.SGPA == prev.SGPA:
			if cur.Rank != prev.Rank {
				return fmt.Errorf("tied entries %s and %s have ranks %d and %d",
					prev.RollNo, cur.RollNo, prev.Rank, cur.Rank)
			}
		default:
			// A lower value must land on position i+1, skipping tied slots.
			if cur.Rank != i+1 {
				return fmt.Errorf("entry %d (%s) has rank %d, want %d",
					i, cur.RollNo, cur.Rank, i+1)
			}
		}
	}

	return nil
}

// displayTopPerformers shows the head of the overall ranklist.
func displayTopPerformers(rl RanklistResponse, verbose bool) {
	topN := 10
	if len(rl.Ranklist) < topN {
		topN = len(rl.Ranklist)
	}

	log.Printf("top %d performers:", topN)
	for i := 0; i < topN; i++ {
		entry := rl.Ranklist[i]
		log.Printf("   %d. %s (%s) - SGPA: %.2f, %.2f%%", entry.Rank, entry.Name, entry.Branch, entry.SGPA, entry.Percentage)
	}

	if verbose && len(rl.Ranklist) > 0 {
		last := rl.Ranklist[len(rl.Ranklist)-1]
		log.Printf(`score statistics:
   Average SGPA: %.2f
   Maximum SGPA: %.2f
   Minimum SGPA: %.2f
`, rl.AverageMetric, rl.Ranklist[0].SGPA, last.SGPA)
	}
}
