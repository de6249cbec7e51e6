// Package score reduces request results plus declarative predicates to a
// single pass/fail decision with per-predicate detail. The predicate set
// is closed (model.PredicateKind); composing cases from it keeps the
// pass/fail logic out of individual test scripts and independently
// testable.
package score

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/convocheck/internal/model"
)

// JudgeFunc asks an external judge whether text satisfies an instruction.
// Returns the verdict and a short explanation.
type JudgeFunc func(ctx context.Context, instruction, text string) (bool, string, error)

// Scorer evaluates predicates. The zero value works; Judge is optional
// and only consulted for model.Judge predicates.
type Scorer struct {
	Judge JudgeFunc
}

// Score evaluates every predicate against one result. Overall pass is the
// AND of all non-informational predicates.
func (sc *Scorer) Score(ctx context.Context, res model.RequestResult, preds []model.Predicate) model.ScoreResult {
	return sc.ScoreGroup(ctx, []model.RequestResult{res}, preds)
}

// ScoreGroup evaluates predicates against a fan-out group joined into one
// entry. Per-result predicates must hold for every member; group
// predicates (expect_distinct, expect_consistent) compare across members.
func (sc *Scorer) ScoreGroup(ctx context.Context, results []model.RequestResult, preds []model.Predicate) model.ScoreResult {
	out := model.ScoreResult{Passed: true}

	for _, p := range preds {
		var check model.CheckResult
		switch p.Kind {
		case model.ExpectDistinct, model.ExpectConsistent:
			check = evalGroup(p, results)
		case model.Judge:
			check = sc.evalJudge(ctx, p, results)
		default:
			check = evalEach(p, results)
		}
		check.Informational = check.Informational || p.Informational

		out.Checks = append(out.Checks, check)
		if !check.Passed && !check.Informational {
			out.Passed = false
		}
	}

	out.Details = details(out)
	return out
}

// evalEach applies a per-result predicate to every group member and
// reports the first failure.
func evalEach(p model.Predicate, results []model.RequestResult) model.CheckResult {
	for _, res := range results {
		check := evalOne(p, res)
		if !check.Passed {
			return check
		}
	}
	return evalOne(p, results[0])
}

func evalOne(p model.Predicate, res model.RequestResult) model.CheckResult {
	check := model.CheckResult{Name: checkName(p)}

	switch p.Kind {
	case model.StatusIn:
		check.Expected = fmt.Sprintf("status in %v", p.Statuses)
		check.Observed = fmt.Sprintf("%d", res.StatusCode)
		for _, want := range p.Statuses {
			if res.StatusCode == want {
				check.Passed = true
				break
			}
		}
		// A sentinel status is never a real backend answer; surface the
		// transport tag instead of a bare number.
		if !res.Received() {
			check.Observed = fmt.Sprintf("%d (%s)", res.StatusCode, res.Outcome)
		}

	case model.FieldPresent:
		check.Expected = fmt.Sprintf("field %q present and non-empty", p.Field)
		val, ok := lookup(res.Body, p.Field)
		text := asString(val)
		if ok && strings.TrimSpace(text) != "" {
			check.Passed = true
			check.Observed = "present"
		} else {
			check.Observed = observeMissing(res, ok)
		}

	case model.FieldContains:
		check.Expected = fmt.Sprintf("%s contains %q", p.Field, p.Value)
		val, ok := lookup(res.Body, p.Field)
		if !ok {
			check.Observed = observeMissing(res, ok)
			break
		}
		text := asString(val)
		check.Observed = truncate(text, 60)
		check.Passed = strings.Contains(strings.ToLower(text), strings.ToLower(p.Value))

	case model.WordCountMin:
		check.Expected = fmt.Sprintf(">= %d words", p.Min)
		val, ok := lookup(res.Body, p.Field)
		if !ok {
			check.Observed = observeMissing(res, ok)
			break
		}
		count := len(strings.Fields(strings.TrimSpace(asString(val))))
		check.Observed = fmt.Sprintf("%d", count)
		check.Passed = count >= p.Min

	case model.LatencyUnder:
		check.Expected = fmt.Sprintf("latency < %s", p.Under)
		check.Observed = res.Elapsed.String()
		check.Passed = res.Elapsed < p.Under

	case model.FieldOneOf:
		check.Expected = fmt.Sprintf("%s mentions one of %v", p.Field, p.Values)
		val, ok := lookup(res.Body, p.Field)
		if !ok {
			check.Observed = observeMissing(res, ok)
			break
		}
		text := strings.ToLower(asString(val))
		check.Observed = truncate(asString(val), 60)
		for _, kw := range p.Values {
			if strings.Contains(text, strings.ToLower(kw)) {
				check.Passed = true
				break
			}
		}

	default:
		check.Expected = string(p.Kind)
		check.Observed = "unknown predicate kind"
	}

	return check
}

// evalGroup handles predicates that compare field values across a fan-out.
func evalGroup(p model.Predicate, results []model.RequestResult) model.CheckResult {
	check := model.CheckResult{Name: checkName(p)}

	var values []string
	for _, res := range results {
		if val, ok := lookup(res.Body, p.Field); ok {
			values = append(values, asString(val))
		}
	}

	if len(values) < 2 {
		check.Expected = "at least 2 responses with the field (needs fanout)"
		check.Observed = fmt.Sprintf("%d", len(values))
		return check
	}

	unique := map[string]bool{}
	for _, v := range values {
		unique[v] = true
	}

	switch p.Kind {
	case model.ExpectDistinct:
		check.Expected = fmt.Sprintf("%d distinct values of %s", len(values), p.Field)
		check.Observed = fmt.Sprintf("%d distinct", len(unique))
		check.Passed = len(unique) == len(values)
	case model.ExpectConsistent:
		check.Expected = fmt.Sprintf("identical %s across %d responses", p.Field, len(values))
		check.Observed = fmt.Sprintf("%d distinct", len(unique))
		check.Passed = len(unique) == 1
	}

	return check
}

func (sc *Scorer) evalJudge(ctx context.Context, p model.Predicate, results []model.RequestResult) model.CheckResult {
	check := model.CheckResult{Name: checkName(p), Expected: p.Value}

	if sc.Judge == nil {
		check.Passed = true
		check.Informational = true
		check.Observed = "judge not configured, check skipped"
		return check
	}

	val, ok := lookup(results[0].Body, p.Field)
	if !ok {
		check.Observed = observeMissing(results[0], ok)
		return check
	}

	verdict, explanation, err := sc.Judge(ctx, p.Value, asString(val))
	if err != nil {
		check.Observed = fmt.Sprintf("judge error: %v", err)
		return check
	}

	check.Passed = verdict
	check.Observed = explanation
	return check
}

// details builds the human-readable summary line for logging. Pure
// function of the checks, so rendering stays deterministic.
func details(r model.ScoreResult) string {
	var failing []string
	for _, c := range r.Checks {
		if !c.Passed && !c.Informational {
			failing = append(failing, fmt.Sprintf("%s: got %s, want %s", c.Name, c.Observed, c.Expected))
		}
	}
	if len(failing) == 0 {
		return fmt.Sprintf("all %d checks passed", len(r.Checks))
	}
	sort.Strings(failing)
	return strings.Join(failing, "; ")
}

func checkName(p model.Predicate) string {
	if p.Field != "" {
		return fmt.Sprintf("%s(%s)", p.Kind, p.Field)
	}
	return string(p.Kind)
}

// lookup navigates a dot path ("data.response_text") into a decoded body.
func lookup(body map[string]any, field string) (any, bool) {
	if body == nil || field == "" {
		return nil, false
	}
	var cur any = body
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// observeMissing distinguishes "field absent from a real response" from
// "there was no decodable response to look in".
func observeMissing(res model.RequestResult, found bool) string {
	if found {
		return "empty"
	}
	if res.Outcome != model.OutcomeHTTP {
		return fmt.Sprintf("no decodable response (%s)", res.Outcome)
	}
	return "field missing"
}
