package core

import (
	"strconv"
	"testing"

	"pgregory.net/rapid"

	"github.com/ultrathink-mcp/ultrathink/pkg/models"
)

// Property 1: Auto-numbering. For any run of valid submissions that omit
// thought_number, the assigned number always equals the prior history length
// plus one, and the reported history length equals the number of accepted
// submissions.
func TestProperty_AutoNumberingSequential(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(rt, "n")
		total := rapid.IntRange(1, 100).Draw(rt, "total")

		svc := newTestService()
		for i := 1; i <= n; i++ {
			resp, err := svc.ProcessThought(models.ThoughtRequest{
				Thought:       "step",
				TotalThoughts: total,
				SessionID:     "trail",
			})
			if err != nil {
				rt.Fatalf("submission %d failed: %v", i, err)
			}
			if resp.ThoughtNumber != i {
				rt.Fatalf("submission %d assigned number %d", i, resp.ThoughtNumber)
			}
			if resp.ThoughtHistoryLength != i {
				rt.Fatalf("submission %d reported history %d", i, resp.ThoughtHistoryLength)
			}
		}
	})
}

// Property 2: Total auto-raise. Whenever the explicit thought number exceeds
// the estimate, the response's total equals the number; otherwise the
// estimate is untouched.
func TestProperty_TotalNeverBelowNumber(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		number := rapid.IntRange(1, 200).Draw(rt, "number")
		total := rapid.IntRange(1, 200).Draw(rt, "total")

		svc := newTestService()
		resp, err := svc.ProcessThought(models.ThoughtRequest{
			Thought:       "step",
			TotalThoughts: total,
			ThoughtNumber: &number,
		})
		if err != nil {
			rt.Fatalf("submission failed: %v", err)
		}

		want := total
		if number > total {
			want = number
		}
		if resp.TotalThoughts != want {
			rt.Fatalf("number=%d total=%d: response total %d, want %d", number, total, resp.TotalThoughts, want)
		}
		if resp.NextThoughtNeeded != (number < resp.TotalThoughts) {
			rt.Fatalf("default next_thought_needed inconsistent: number=%d total=%d got %v", number, resp.TotalThoughts, resp.NextThoughtNeeded)
		}
	})
}

// Property 3: Branch indexing. Branches index the single history sequence;
// accepting thoughts across arbitrary branch ids never changes the fact that
// history length equals the count of accepted thoughts, and every branch
// index entry refers to an accepted thought number.
func TestProperty_BranchesIndexOneSequence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 40).Draw(rt, "n")

		svc := newTestService()
		// Seed one plain thought so branch targets exist.
		if _, err := svc.ProcessThought(models.ThoughtRequest{
			Thought:       "seed",
			TotalThoughts: n,
			SessionID:     "trail",
		}); err != nil {
			rt.Fatalf("seed failed: %v", err)
		}

		accepted := 1
		for i := 2; i <= n; i++ {
			req := models.ThoughtRequest{
				Thought:       "step",
				TotalThoughts: n,
				SessionID:     "trail",
			}
			if rapid.Bool().Draw(rt, "branch") {
				from := 1
				req.BranchFromThought = &from
				req.BranchID = rapid.SampledFrom([]string{"alpha", "beta", "gamma"}).Draw(rt, "branch_id")
			}
			resp, err := svc.ProcessThought(req)
			if err != nil {
				rt.Fatalf("submission %d failed: %v", i, err)
			}
			accepted++
			if resp.ThoughtHistoryLength != accepted {
				rt.Fatalf("history %d after %d accepts", resp.ThoughtHistoryLength, accepted)
			}
		}

		session, _ := svc.Directory().Get("trail")
		numbers := make(map[int]bool)
		for _, num := range session.ThoughtNumbers() {
			numbers[num] = true
		}
		for id, nums := range session.Branches() {
			for _, num := range nums {
				if !numbers[num] {
					rt.Fatalf("branch %s indexes unknown thought %d", id, num)
				}
			}
		}
	})
}

// Property 4: Assumption lifecycle. Declared IDs stay resolvable for the life
// of the session, and invalidation is the only path from unverified to
// verified_false through the submission flow.
func TestProperty_DeclaredAssumptionsStayResolvable(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 20).Draw(rt, "count")

		svc := newTestService()
		for i := 1; i <= count; i++ {
			id := "A" + strconv.Itoa(i)
			if _, err := svc.ProcessThought(models.ThoughtRequest{
				Thought:       "declare",
				TotalThoughts: count,
				SessionID:     "trail",
				Assumptions:   []models.AssumptionInput{{ID: id, Text: "premise"}},
			}); err != nil {
				rt.Fatalf("declaring %s failed: %v", id, err)
			}
		}

		resp, err := svc.ProcessThought(models.ThoughtRequest{
			Thought:              "depend on all",
			TotalThoughts:        count + 1,
			SessionID:            "trail",
			DependsOnAssumptions: allIDs(count),
		})
		if err != nil {
			rt.Fatalf("depending on declared assumptions failed: %v", err)
		}
		if len(resp.UnresolvedReferences) != 0 {
			rt.Fatalf("local references reported unresolved: %v", resp.UnresolvedReferences)
		}
		if len(resp.Assumptions) != count {
			rt.Fatalf("expected %d assumptions, got %d", count, len(resp.Assumptions))
		}
	})
}

func allIDs(count int) []string {
	ids := make([]string, count)
	for i := 1; i <= count; i++ {
		ids[i-1] = "A" + strconv.Itoa(i)
	}
	return ids
}
